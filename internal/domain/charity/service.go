package charity

import (
	"context"
	"net/mail"
	"strings"

	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Service struct {
	shared.BaseService
	Repository Repository
	Clock      shared.Clock
}

func (s *Service) CreateCharity(ctx context.Context, req CreateRequest) (*Charity, error) {
	if err := s.EnsureUserExists(ctx, req.OwnerId); err != nil {
		return nil, err
	}

	name := shared.NormalizeName(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	email := shared.NormalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	entity := &Charity{
		Id:                 pkg.NewID(),
		OwnerId:            req.OwnerId,
		Name:               name,
		Description:        strings.TrimSpace(req.Description),
		Email:              email,
		VerificationStatus: VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.Repository.Create(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) UpdateCharity(ctx context.Context, id ulid.ULID, actor shared.Actor, req UpdateRequest) (*Charity, error) {
	if _, err := s.RequireManager(ctx, id, actor); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := shared.NormalizeName(*req.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Email != nil {
		email := shared.NormalizeEmail(*req.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		fields["email"] = email
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.Clock.Now()
		if err := s.Repository.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.Repository.GetByID(ctx, id)
}

func (s *Service) GetCharity(ctx context.Context, id ulid.ULID) (*Charity, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) ListCharities(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Charity, int64, error) {
	if filters != nil && filters.Status != nil && !filters.Status.IsValid() {
		return nil, 0, appErrors.NewValidationError("status", "status de verificacao invalido")
	}
	return s.Repository.List(ctx, filters, pkg.NormalizePagination(pagination))
}

func (s *Service) ApproveCharity(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Charity, error) {
	return s.review(ctx, id, actor, VerificationApproved, "")
}

func (s *Service) RejectCharity(ctx context.Context, id ulid.ULID, actor shared.Actor, reason string) (*Charity, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.NewValidationError("reason", "motivo da rejeicao e obrigatorio")
	}
	return s.review(ctx, id, actor, VerificationRejected, reason)
}

func (s *Service) review(ctx context.Context, id ulid.ULID, actor shared.Actor, status VerificationStatus, reason string) (*Charity, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}

	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity.VerificationStatus == status {
		return entity, nil
	}

	now := s.Clock.Now()
	fields := map[string]interface{}{
		"verification_status": status,
		"rejection_reason":    reason,
		"updated_at":          now,
	}
	if status == VerificationApproved {
		fields["verified_at"] = now
	} else {
		fields["verified_at"] = nil
	}

	if err := s.Repository.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	logger.Info().
		Str("charity_id", id.String()).
		Str("status", string(status)).
		Msg("Instituicao revisada")

	return s.Repository.GetByID(ctx, id)
}

func (s *Service) GetCharityStats(ctx context.Context, id ulid.ULID) (*Stats, error) {
	if _, err := s.Repository.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.Repository.GetStats(ctx, id)
}

// RequireManager devolve a instituicao quando o ator e o responsavel por ela ou um administrador.
func (s *Service) RequireManager(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Charity, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || entity.OwnerId == actor.ID {
		return entity, nil
	}
	return nil, appErrors.ErrResourceNotOwned
}

func validateName(name string) error {
	if name == "" {
		return appErrors.NewValidationError("name", "nome nao pode ser vazio")
	}
	if len(name) > 150 {
		return appErrors.NewValidationError("name", "nome deve ter no maximo 150 caracteres")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return appErrors.NewValidationError("email", "email invalido")
	}
	return nil
}
