package donation

import (
	"context"
	"strings"
	"time"

	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/observability"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

// LedgerApplier mantem os agregados de campanha e instituicao. Deve ser
// chamado com o ctx da transacao da escrita; before e nil em criacoes e
// after e nil em exclusoes.
type LedgerApplier interface {
	ApplyTransition(ctx context.Context, before, after *Donation) error
}

type CharityResolver interface {
	GetCharity(ctx context.Context, id ulid.ULID) (*charity.Charity, error)
	RequireManager(ctx context.Context, id ulid.ULID, actor shared.Actor) (*charity.Charity, error)
}

type CampaignResolver interface {
	GetCampaign(ctx context.Context, id ulid.ULID) (*campaign.Campaign, error)
}

type MilestoneEvaluator interface {
	EvaluateDonor(ctx context.Context, donorID ulid.ULID, now time.Time) ([]*milestone.DonorMilestone, error)
}

type Service struct {
	shared.BaseService
	Repository Repository
	Ledger     LedgerApplier
	Charities  CharityResolver
	Campaigns  CampaignResolver
	Milestones MilestoneEvaluator
	Tx         shared.TxManager
	Metrics    *observability.Metrics
	Clock      shared.Clock
}

func (s *Service) CreateDonation(ctx context.Context, req CreateRequest) (*Donation, error) {
	if err := s.EnsureUserExists(ctx, req.DonorId); err != nil {
		return nil, err
	}
	amount := pkg.RoundMoney(req.Amount)
	if !amount.IsPositive() {
		return nil, appErrors.NewValidationError("amount", "valor deve ser maior que zero")
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if status != StatusPending && status != StatusCompleted {
		return nil, appErrors.NewValidationError("status", "doacao so pode ser criada como pending ou completed")
	}

	if err := s.checkTarget(ctx, req.CharityId, req.CampaignId); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	entity := &Donation{
		Id:              pkg.NewID(),
		DonorId:         req.DonorId,
		CharityId:       req.CharityId,
		CampaignId:      req.CampaignId,
		Amount:          amount,
		Status:          status,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Message:         strings.TrimSpace(req.Message),
		IsAnonymous:     req.IsAnonymous,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == StatusCompleted {
		entity.CompletedAt = &now
	}

	if req.Recurring != nil {
		if err := applyRecurring(entity, req.Recurring, now); err != nil {
			return nil, err
		}
	}

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repository.Create(ctx, entity); err != nil {
			return err
		}
		return s.Ledger.ApplyTransition(ctx, nil, entity)
	})
	if err != nil {
		return nil, err
	}

	if entity.IsCounted() {
		s.evaluateMilestones(ctx, entity.DonorId)
	}
	return entity, nil
}

func (s *Service) UpdateDonation(ctx context.Context, id, donorID ulid.ULID, req UpdateRequest) (*Donation, error) {
	var updated *Donation

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Repository.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.DonorId != donorID {
			return appErrors.ErrResourceNotOwned
		}
		if current.Status != StatusPending {
			return appErrors.ErrDonationNotEditable.WithDetail("status", string(current.Status))
		}

		before := current.Clone()
		if req.Amount != nil {
			amount := pkg.RoundMoney(*req.Amount)
			if !amount.IsPositive() {
				return appErrors.NewValidationError("amount", "valor deve ser maior que zero")
			}
			current.Amount = amount
		}
		if req.Message != nil {
			current.Message = strings.TrimSpace(*req.Message)
		}
		if req.IsAnonymous != nil {
			current.IsAnonymous = *req.IsAnonymous
		}
		current.UpdatedAt = s.Clock.Now()

		if err := s.Repository.Update(ctx, current, StatusPending); err != nil {
			return err
		}
		updated = current
		return s.Ledger.ApplyTransition(ctx, before, current)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) ConfirmDonation(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Donation, error) {
	return s.transition(ctx, id, actor, StatusCompleted, func(d *Donation, now time.Time) {
		d.CompletedAt = &now
		d.RejectionReason = ""
	})
}

func (s *Service) RejectDonation(ctx context.Context, id ulid.ULID, actor shared.Actor, reason string) (*Donation, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, id, actor, StatusRejected, func(d *Donation, _ time.Time) {
		d.RejectionReason = reason
		d.NextChargeDate = nil
	})
}

func (s *Service) RefundDonation(ctx context.Context, id ulid.ULID, actor shared.Actor, reason string) (*Donation, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, id, actor, StatusRefunded, func(d *Donation, now time.Time) {
		d.IsRefunded = true
		d.RefundedAt = &now
		if reason != "" {
			d.RejectionReason = reason
		}
	})
}

func (s *Service) transition(ctx context.Context, id ulid.ULID, actor shared.Actor, target Status, mutate func(d *Donation, now time.Time)) (*Donation, error) {
	var before, after *Donation

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Repository.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.Charities.RequireManager(ctx, current.CharityId, actor); err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(target) {
			return appErrors.NewStatusTransitionError(string(current.Status), string(target))
		}

		before = current.Clone()
		now := s.Clock.Now()
		current.Status = target
		current.UpdatedAt = now
		mutate(current, now)

		if err := s.Repository.Update(ctx, current, before.Status); err != nil {
			return err
		}
		after = current
		return s.Ledger.ApplyTransition(ctx, before, after)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("donation_id", id.String()).
		Str("from", string(before.Status)).
		Str("to", string(after.Status)).
		Str("actor_id", actor.ID.String()).
		Msg("Status da doacao alterado")

	if before.IsCounted() != after.IsCounted() {
		s.evaluateMilestones(ctx, after.DonorId)
	}
	return after, nil
}

func (s *Service) DeleteDonation(ctx context.Context, id ulid.ULID, actor shared.Actor) error {
	var removed *Donation

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Repository.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.Charities.RequireManager(ctx, current.CharityId, actor); err != nil {
			return err
		}
		if err := s.Repository.Delete(ctx, id); err != nil {
			return err
		}
		removed = current
		return s.Ledger.ApplyTransition(ctx, current, nil)
	})
	if err != nil {
		return err
	}

	if removed.IsCounted() {
		s.evaluateMilestones(ctx, removed.DonorId)
	}
	return nil
}

// CancelRecurring interrompe as proximas parcelas; parcelas ja geradas nao sao alteradas.
func (s *Service) CancelRecurring(ctx context.Context, id, donorID ulid.ULID) (*Donation, error) {
	var cancelled *Donation

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Repository.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.DonorId != donorID {
			return appErrors.ErrResourceNotOwned
		}
		if !current.IsRecurringTemplate() {
			return appErrors.ErrNotRecurring
		}
		cancelled = current
		if current.NextChargeDate == nil {
			return nil
		}

		current.NextChargeDate = nil
		current.UpdatedAt = s.Clock.Now()
		return s.Repository.UpdateFields(ctx, id, map[string]interface{}{
			"next_charge_date": nil,
			"updated_at":       current.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *Service) GetDonation(ctx context.Context, id ulid.ULID, actor shared.Actor) (*Donation, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || entity.DonorId == actor.ID {
		return entity, nil
	}
	if _, err := s.Charities.RequireManager(ctx, entity.CharityId, actor); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) ListDonorDonations(ctx context.Context, donorID ulid.ULID, filters *Filters, pagination *pkg.PaginationParams) ([]*Donation, int64, error) {
	f := copyFilters(filters)
	f.DonorId = &donorID
	return s.list(ctx, f, pagination)
}

func (s *Service) ListCharityDonations(ctx context.Context, charityID ulid.ULID, actor shared.Actor, filters *Filters, pagination *pkg.PaginationParams) ([]*Donation, int64, error) {
	if _, err := s.Charities.RequireManager(ctx, charityID, actor); err != nil {
		return nil, 0, err
	}
	f := copyFilters(filters)
	f.CharityId = &charityID
	return s.list(ctx, f, pagination)
}

func (s *Service) ListCampaignDonations(ctx context.Context, campaignID ulid.ULID, actor shared.Actor, filters *Filters, pagination *pkg.PaginationParams) ([]*Donation, int64, error) {
	c, err := s.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.Charities.RequireManager(ctx, c.CharityId, actor); err != nil {
		return nil, 0, err
	}
	f := copyFilters(filters)
	f.CampaignId = &campaignID
	return s.list(ctx, f, pagination)
}

func (s *Service) list(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Donation, int64, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, 0, appErrors.NewValidationError("status", "status de doacao invalido")
	}
	return s.Repository.List(ctx, filters, pkg.NormalizePagination(pagination))
}

// checkTarget valida a instituicao (aprovada) e, quando informada, a campanha
// (da mesma instituicao e publicada).
func (s *Service) checkTarget(ctx context.Context, charityID ulid.ULID, campaignID *ulid.ULID) error {
	target, err := s.Charities.GetCharity(ctx, charityID)
	if err != nil {
		return err
	}
	if !target.IsApproved() {
		return appErrors.ErrCharityNotApproved
	}

	if campaignID == nil {
		return nil
	}
	c, err := s.Campaigns.GetCampaign(ctx, *campaignID)
	if err != nil {
		return err
	}
	if c.CharityId != charityID {
		return appErrors.NewValidationError("campaignId", "campanha nao pertence a instituicao informada")
	}
	if !c.AcceptsDonations() {
		return appErrors.ErrCampaignNotOpen.WithDetail("status", string(c.Status))
	}
	return nil
}

// evaluateMilestones roda depois do commit; falhas nao desfazem a doacao e
// sao corrigidas pelo job periodico de marcos.
func (s *Service) evaluateMilestones(ctx context.Context, donorID ulid.ULID) {
	if s.Milestones == nil {
		return
	}
	if _, err := s.Milestones.EvaluateDonor(ctx, donorID, s.Clock.Now()); err != nil {
		logger.Warn().
			Err(err).
			Str("donor_id", donorID.String()).
			Msg("Erro ao avaliar marcos do doador")
	}
}

func applyRecurring(d *Donation, req *RecurringRequest, now time.Time) error {
	if !req.Frequency.IsValid() {
		return appErrors.NewValidationError("frequency", "frequencia deve ser weekly, monthly, quarterly ou yearly")
	}
	start := now
	if req.StartDate != nil {
		start = *req.StartDate
	}
	start = shared.StartOfDay(start)

	if req.EndDate != nil && !req.EndDate.After(start) {
		return appErrors.NewValidationError("endDate", "fim da recorrencia deve ser depois do inicio")
	}

	next := req.Frequency.Next(start, 1)
	d.IsRecurring = true
	d.RecurringFrequency = req.Frequency
	d.RecurringStartDate = &start
	d.NextChargeDate = &next
	if req.EndDate != nil {
		end := shared.StartOfDay(*req.EndDate)
		d.RecurringEndDate = &end
		if next.After(end) {
			d.NextChargeDate = nil
		}
	}
	return nil
}

func copyFilters(f *Filters) *Filters {
	if f == nil {
		return &Filters{}
	}
	clone := *f
	return &clone
}
