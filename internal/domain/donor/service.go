package donor

import (
	"context"
	"errors"

	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Service struct {
	Repository Repository
	Clock      shared.Clock
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo}
}

// EnsureDonor garante o registro local do usuario autenticado. Nome e email
// sao sincronizados quando mudam no provedor de identidade.
func (s *Service) EnsureDonor(ctx context.Context, identity Identity) (*Donor, error) {
	if pkg.IsZeroID(identity.ID) {
		return nil, appErrors.NewValidationError("id", "identificador do doador e obrigatorio")
	}
	email := shared.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, appErrors.NewValidationError("email", "email e obrigatorio")
	}
	name := shared.NormalizeName(identity.Name)
	if name == "" {
		name = email
	}

	existing, err := s.Repository.GetByID(ctx, identity.ID)
	if err != nil && !errors.Is(err, appErrors.ErrDonorNotFound) {
		return nil, err
	}

	if existing != nil {
		fields := map[string]interface{}{}
		if existing.Email != email {
			fields["email"] = email
		}
		if identity.Name != "" && existing.Name != name {
			fields["name"] = name
		}
		if len(fields) == 0 {
			return existing, nil
		}
		fields["updated_at"] = s.Clock.Now()
		if err := s.Repository.UpdateFields(ctx, existing.Id, fields); err != nil {
			return nil, err
		}
		return s.Repository.GetByID(ctx, existing.Id)
	}

	if other, err := s.Repository.GetByEmail(ctx, email); err == nil && other.Id != identity.ID {
		return nil, appErrors.ErrEmailAlreadyInUse
	}

	now := s.Clock.Now()
	entity := &Donor{
		Id:        identity.ID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repository.Create(ctx, entity); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return s.Repository.GetByID(ctx, identity.ID)
		}
		return nil, err
	}

	logger.Info().Str("donor_id", entity.Id.String()).Msg("Doador provisionado")
	return entity, nil
}

func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*Donor, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) UpdateName(ctx context.Context, id ulid.ULID, name string) (*Donor, error) {
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "nome nao pode ser vazio")
	}
	if len(name) > 150 {
		return nil, appErrors.NewValidationError("name", "nome deve ter no maximo 150 caracteres")
	}
	if err := s.Exists(ctx, id); err != nil {
		return nil, err
	}
	err := s.Repository.UpdateFields(ctx, id, map[string]interface{}{
		"name":       name,
		"updated_at": s.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id ulid.ULID) error {
	ok, err := s.Repository.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.ErrDonorNotFound
	}
	return nil
}

func (s *Service) ListIDsAfter(ctx context.Context, after *ulid.ULID, limit int) ([]ulid.ULID, error) {
	return s.Repository.ListIDsAfter(ctx, after, limit)
}
