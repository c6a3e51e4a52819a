package ledger

import (
	"context"

	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/shared"
	"Kindfund/internal/logger"
	"Kindfund/internal/observability"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Service struct {
	Repository Repository
	Tx         shared.TxManager
	Metrics    *observability.Metrics
}

type target struct {
	kind Kind
	id   ulid.ULID
}

// ApplyTransition ajusta os agregados para a mudanca before -> after de uma
// doacao. Precisa rodar na mesma transacao da escrita da doacao.
func (s *Service) ApplyTransition(ctx context.Context, before, after *donation.Donation) error {
	if !before.IsCounted() && !after.IsCounted() {
		return nil
	}

	deltas := map[target]decimal.Decimal{}
	var touched []target
	add := func(t target, amount decimal.Decimal) {
		if _, ok := deltas[t]; !ok {
			touched = append(touched, t)
			deltas[t] = decimal.Zero
		}
		deltas[t] = deltas[t].Add(amount)
	}

	if before.IsCounted() {
		for _, t := range targetsOf(before) {
			add(t, before.Amount.Neg())
		}
	}
	if after.IsCounted() {
		for _, t := range targetsOf(after) {
			add(t, after.Amount)
		}
	}

	for _, t := range touched {
		delta := deltas[t]
		if !delta.IsZero() {
			if delta.IsNegative() {
				s.warnIfDrifting(ctx, t, delta)
			}
			if err := s.Repository.AdjustTotal(ctx, t.kind, t.id, delta); err != nil {
				return err
			}
		}
		if err := s.Repository.RefreshDonorsCount(ctx, t.kind, t.id); err != nil {
			return err
		}
	}

	return nil
}

// warnIfDrifting registra quando o decremento deixaria o total negativo; o
// repositorio limita o valor a zero e o comando de recalculo corrige o resto.
func (s *Service) warnIfDrifting(ctx context.Context, t target, delta decimal.Decimal) {
	cached, err := s.Repository.GetCached(ctx, t.kind, t.id)
	if err != nil {
		return
	}
	if cached.Amount.Add(delta).IsNegative() {
		logger.Warn().
			Str("kind", string(t.kind)).
			Str("id", t.id.String()).
			Str("cached", cached.Amount.String()).
			Str("delta", delta.String()).
			Msg("Total em cache ficaria negativo; limitado a zero")
		s.Metrics.DriftCorrected(ctx, string(t.kind), 1)
	}
}

func targetsOf(d *donation.Donation) []target {
	targets := []target{{kind: KindCharity, id: d.CharityId}}
	if d.CampaignId != nil {
		targets = append(targets, target{kind: KindCampaign, id: *d.CampaignId})
	}
	return targets
}
