package campaign

import (
	"context"
	"strings"
	"time"

	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/observability"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type CharityManager interface {
	GetCharity(ctx context.Context, id ulid.ULID) (*charity.Charity, error)
	RequireManager(ctx context.Context, id ulid.ULID, actor shared.Actor) (*charity.Charity, error)
}

type Service struct {
	Repository Repository
	Charities  CharityManager
	Tx         shared.TxManager
	Metrics    *observability.Metrics
	Clock      shared.Clock
}

func (s *Service) CreateCampaign(ctx context.Context, actor shared.Actor, req CreateRequest) (*Campaign, error) {
	if _, err := s.Charities.RequireManager(ctx, req.CharityId, actor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	goal := pkg.RoundMoney(req.GoalAmount)
	if !goal.IsPositive() {
		return nil, appErrors.NewValidationError("goalAmount", "meta deve ser maior que zero")
	}

	now := s.Clock.Now()
	start := now
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	if req.EndDate != nil && !req.EndDate.After(start) {
		return nil, appErrors.NewValidationError("endDate", "data de termino deve ser depois do inicio")
	}

	entity := &Campaign{
		Id:                 pkg.NewID(),
		CharityId:          req.CharityId,
		Title:              title,
		Description:        strings.TrimSpace(req.Description),
		GoalAmount:         goal,
		Status:             StatusDraft,
		StartDate:          start,
		EndDate:            req.EndDate,
		RecurrenceInterval: 1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if req.Recurrence != nil {
		if err := validateRecurrence(req.Recurrence); err != nil {
			return nil, err
		}
		applyRecurrence(entity, req.Recurrence, now)
	}

	if err := s.Repository.Create(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) UpdateCampaign(ctx context.Context, id ulid.ULID, actor shared.Actor, req UpdateRequest) (*Campaign, error) {
	entity, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if entity.Status == StatusArchived {
		return nil, appErrors.NewStatusTransitionError(string(entity.Status), "update")
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.GoalAmount != nil {
		goal := pkg.RoundMoney(*req.GoalAmount)
		if !goal.IsPositive() {
			return nil, appErrors.NewValidationError("goalAmount", "meta deve ser maior que zero")
		}
		fields["goal_amount"] = goal
	}
	if req.EndDate != nil {
		if !req.EndDate.After(entity.StartDate) {
			return nil, appErrors.NewValidationError("endDate", "data de termino deve ser depois do inicio")
		}
		fields["end_date"] = req.EndDate.UTC()
	}
	if req.Recurrence != nil {
		if entity.ParentCampaignId != nil {
			return nil, appErrors.NewValidationError("recurrence", "ocorrencias geradas nao podem ter recorrencia propria")
		}
		if err := validateRecurrence(req.Recurrence); err != nil {
			return nil, err
		}
		applyRecurrence(entity, req.Recurrence, s.Clock.Now())
		fields["is_recurring"] = true
		fields["recurrence_type"] = entity.RecurrenceType
		fields["recurrence_interval"] = entity.RecurrenceInterval
		fields["recurrence_start_date"] = entity.RecurrenceStartDate
		fields["recurrence_end_date"] = entity.RecurrenceEndDate
		fields["next_occurrence_date"] = entity.NextOccurrenceDate
		fields["auto_publish"] = entity.AutoPublish
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.Clock.Now()
		if err := s.Repository.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.Repository.GetByID(ctx, id)
}

func (s *Service) DeleteCampaign(ctx context.Context, id ulid.ULID, actor shared.Actor) error {
	if _, err := s.getManaged(ctx, id, actor); err != nil {
		return err
	}

	return s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		counted, err := s.Repository.CountCountedDonations(ctx, id)
		if err != nil {
			return err
		}
		if counted > 0 {
			return appErrors.ErrCampaignHasDonations.WithDetail("donations", counted)
		}
		if err := s.Repository.DetachDonations(ctx, id); err != nil {
			return err
		}
		return s.Repository.Delete(ctx, id)
	})
}

func (s *Service) GetCampaign(ctx context.Context, id ulid.ULID) (*Campaign, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) ListCampaigns(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Campaign, int64, error) {
	if filters != nil && filters.Status != nil && !filters.Status.IsValid() {
		return nil, 0, appErrors.NewValidationError("status", "status de campanha invalido")
	}
	return s.Repository.List(ctx, filters, pkg.NormalizePagination(pagination))
}

func (s *Service) PublishCampaign(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Campaign, error) {
	entity, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if entity.Status != StatusDraft && entity.Status != StatusClosed {
		return nil, appErrors.NewStatusTransitionError(string(entity.Status), string(StatusPublished))
	}

	owner, err := s.Charities.GetCharity(ctx, entity.CharityId)
	if err != nil {
		return nil, err
	}
	if !owner.IsApproved() {
		return nil, appErrors.ErrCharityNotApproved
	}

	return s.setStatus(ctx, id, StatusPublished)
}

func (s *Service) CloseCampaign(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Campaign, error) {
	entity, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if entity.Status != StatusPublished {
		return nil, appErrors.NewStatusTransitionError(string(entity.Status), string(StatusClosed))
	}
	return s.setStatus(ctx, id, StatusClosed)
}

// ArchiveCampaign encerra a campanha em definitivo; modelos arquivados deixam de gerar ocorrencias.
func (s *Service) ArchiveCampaign(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Campaign, error) {
	entity, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if entity.Status == StatusArchived {
		return entity, nil
	}
	return s.setStatus(ctx, id, StatusArchived)
}

func (s *Service) GetProgress(ctx context.Context, id ulid.ULID) (*Progress, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entity.Progress(), nil
}

func (s *Service) setStatus(ctx context.Context, id ulid.ULID, status Status) (*Campaign, error) {
	err := s.Repository.UpdateFields(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": s.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) getManaged(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Campaign, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Charities.RequireManager(ctx, entity.CharityId, actor); err != nil {
		return nil, err
	}
	return entity, nil
}

func validateTitle(title string) error {
	if title == "" {
		return appErrors.NewValidationError("title", "titulo nao pode ser vazio")
	}
	if len(title) > 200 {
		return appErrors.NewValidationError("title", "titulo deve ter no maximo 200 caracteres")
	}
	return nil
}

func dateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
