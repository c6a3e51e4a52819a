package donation

import (
	"context"
	"errors"
	"time"

	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

const (
	recurringBatchSize = 100
	// maxCatchUpInstallments limita quantas parcelas atrasadas um modelo gera por execucao.
	maxCatchUpInstallments = 12
)

type ProcessResult struct {
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ProcessRecurringDonations gera as parcelas vencidas das doacoes recorrentes.
// Cada modelo roda na propria transacao; uma falha nao interrompe o lote.
func (s *Service) ProcessRecurringDonations(ctx context.Context, now time.Time) (*ProcessResult, error) {
	result := &ProcessResult{}
	var cursor *ulid.ULID

	for {
		templates, err := s.Repository.ListDueRecurring(ctx, now, cursor, recurringBatchSize)
		if err != nil {
			return result, err
		}
		if len(templates) == 0 {
			break
		}

		for _, template := range templates {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Scanned++

			var created, skipped int
			err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
				// relido com lock: o modelo pode ter sido revisado ou cancelado depois da listagem
				current, err := s.Repository.GetForUpdate(ctx, template.Id)
				if err != nil {
					return err
				}
				if !current.IsRecurringTemplate() || current.Status == StatusRejected {
					return nil
				}
				created, skipped, err = s.chargeInstallments(ctx, current, now)
				return err
			})
			if err != nil {
				result.Failed++
				logger.Error().
					Err(err).
					Str("donation_id", template.Id.String()).
					Msg("Erro ao gerar parcela da doacao recorrente")
				continue
			}
			result.Created += created
			result.Skipped += skipped
		}

		last := templates[len(templates)-1].Id
		cursor = &last
		if len(templates) < recurringBatchSize {
			break
		}
	}

	s.Metrics.RecurringDonationsCreated(ctx, int64(result.Created))
	logger.Info().
		Int("scanned", result.Scanned).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Doacoes recorrentes processadas")

	return result, nil
}

func (s *Service) chargeInstallments(ctx context.Context, template *Donation, now time.Time) (created, skipped int, err error) {
	if template.NextChargeDate == nil {
		return 0, 0, nil
	}

	accepting, err := s.acceptsInstallments(ctx, template)
	if err != nil {
		return 0, 0, err
	}

	due := *template.NextChargeDate
	next := &due
	anchor := template.recurrenceAnchor(due)

	for i := 0; i < maxCatchUpInstallments && next != nil && !next.After(now); i++ {
		if template.RecurringEndDate != nil && next.After(*template.RecurringEndDate) {
			next = nil
			break
		}

		if accepting {
			installment := template.newInstallment(now)
			if err := s.Repository.Create(ctx, installment); err != nil {
				return 0, 0, err
			}
			if err := s.Ledger.ApplyTransition(ctx, nil, installment); err != nil {
				return 0, 0, err
			}
			created++
		} else {
			skipped++
		}

		following := template.RecurringFrequency.NextAfter(anchor, 1, *next)
		next = &following
	}

	if next != nil && template.RecurringEndDate != nil && next.After(*template.RecurringEndDate) {
		next = nil
	}

	// so as colunas do agendamento; status e estorno pertencem a revisao da instituicao
	fields := map[string]interface{}{"updated_at": now}
	if next == nil {
		fields["next_charge_date"] = nil
	} else {
		fields["next_charge_date"] = *next
	}
	if err := s.Repository.UpdateFields(ctx, template.Id, fields); err != nil {
		return 0, 0, err
	}
	return created, skipped, nil
}

// acceptsInstallments indica se o destino ainda recebe doacoes. Quando nao
// recebe, as parcelas do periodo sao puladas mas o agendamento avanca.
func (s *Service) acceptsInstallments(ctx context.Context, template *Donation) (bool, error) {
	target, err := s.Charities.GetCharity(ctx, template.CharityId)
	if err != nil {
		if errors.Is(err, appErrors.ErrCharityNotFound) {
			return false, nil
		}
		return false, err
	}
	if !target.IsApproved() {
		return false, nil
	}

	if template.CampaignId == nil {
		return true, nil
	}
	c, err := s.Campaigns.GetCampaign(ctx, *template.CampaignId)
	if err != nil {
		if errors.Is(err, appErrors.ErrCampaignNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.AcceptsDonations(), nil
}

func (d *Donation) newInstallment(now time.Time) *Donation {
	parentID := d.Id
	return &Donation{
		Id:               pkg.NewID(),
		DonorId:          d.DonorId,
		CharityId:        d.CharityId,
		CampaignId:       d.CampaignId,
		Amount:           d.Amount,
		Status:           StatusPending,
		ParentDonationId: &parentID,
		PaymentMethod:    d.PaymentMethod,
		Message:          d.Message,
		IsAnonymous:      d.IsAnonymous,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
