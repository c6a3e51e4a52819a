package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"Kindfund/config"
	"Kindfund/internal/domain/donor"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextEmail  = "email"
	ContextName   = "name"
)

// Claims emitidas pelo provedor de identidade. O subject e o id do doador.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  shared.Role `json:"role"`
}

type JwtService struct {
	secret []byte
	issuer string
}

func NewJwtService(cfg config.JWTConfig) (*JwtService, error) {
	if cfg.Secret == "" {
		logger.Warn().Msg("KINDFUND_JWT_SECRET vazio, rotas autenticadas vao recusar todos os tokens")
	}
	return &JwtService{secret: []byte(cfg.Secret), issuer: cfg.Issuer}, nil
}

func (s *JwtService) ParseToken(tokenStr string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("segredo jwt nao configurado")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token invalido")
	}
	if claims.Subject == "" {
		return nil, errors.New("token sem subject")
	}
	if claims.Role == "" {
		claims.Role = shared.RoleDonor
	}
	if !claims.Role.IsValid() {
		return nil, errors.New("papel desconhecido no token")
	}
	return claims, nil
}

// GenerateToken assina um token com as mesmas claims aceitas por ParseToken.
// Usado em testes e em ambiente de desenvolvimento.
func (s *JwtService) GenerateToken(identity donor.Identity, role shared.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: identity.Email,
		Name:  identity.Name,
		Role:  role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func AuthMiddleware(jwtSvc *JwtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondAppError(c, appErrors.NewAuthError("MISSING_TOKEN", "Token de acesso nao informado"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondAppError(c, appErrors.NewAuthError("INVALID_TOKEN_FORMAT", "Formato esperado: Bearer <token>"))
			return
		}

		claims, err := jwtSvc.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Debug().Err(err).Str("path", c.FullPath()).Msg("token rejeitado")
			respondAppError(c, appErrors.NewAuthError("INVALID_TOKEN", "Token invalido ou expirado"))
			return
		}

		if _, err := pkg.ParseID(claims.Subject); err != nil {
			respondAppError(c, appErrors.NewAuthError("INVALID_TOKEN", "Identificador do usuario invalido"))
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextName, claims.Name)
		c.Next()
	}
}

type DonorProvisioner interface {
	EnsureDonor(ctx context.Context, identity donor.Identity) (*donor.Donor, error)
}

// ProvisionDonor cria ou sincroniza o registro local do usuario autenticado.
// Deve rodar depois de AuthMiddleware.
func ProvisionDonor(donors DonorProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pkg.ParseID(c.GetString(ContextUserID))
		if err != nil {
			respondAppError(c, appErrors.ErrUnauthorized.WithError(err))
			return
		}

		_, err = donors.EnsureDonor(c.Request.Context(), donor.Identity{
			ID:    id,
			Email: c.GetString(ContextEmail),
			Name:  c.GetString(ContextName),
		})
		if err != nil {
			respondAppError(c, appErrors.FromError(err))
			return
		}

		c.Next()
	}
}

func respondAppError(c *gin.Context, err *appErrors.AppError) {
	payload := gin.H{
		"error":   err.Code,
		"message": err.Message,
	}
	if len(err.Details) > 0 {
		payload["details"] = err.Details
	}
	c.AbortWithStatusJSON(err.StatusCode, payload)
}
