package ledger

import (
	"context"

	"Kindfund/internal/logger"

	"github.com/oklog/ulid/v2"
)

const DefaultBatchSize = 100

type Drift struct {
	Kind   Kind      `json:"kind"`
	ID     ulid.ULID `json:"id"`
	Before Totals    `json:"before"`
	After  Totals    `json:"after"`
}

func (d *Drift) Changed() bool {
	return !d.Before.Equal(d.After)
}

type RecalculateOptions struct {
	CampaignID       *ulid.ULID
	CharityID        *ulid.ULID
	IncludeCharities bool
	DryRun           bool
	BatchSize        int
}

type Report struct {
	DryRun           bool     `json:"dryRun"`
	CampaignsScanned int      `json:"campaignsScanned"`
	CharitiesScanned int      `json:"charitiesScanned"`
	Corrected        []*Drift `json:"corrected"`
	Failed           int      `json:"failed"`
}

func (s *Service) RecalculateCampaign(ctx context.Context, id ulid.ULID) (*Drift, error) {
	return s.recalculate(ctx, KindCampaign, id, false)
}

func (s *Service) RecalculateCharity(ctx context.Context, id ulid.ULID) (*Drift, error) {
	return s.recalculate(ctx, KindCharity, id, false)
}

// RecalculateAll refaz os agregados a partir das doacoes. Com CampaignID ou
// CharityID apenas aquela entidade e verificada.
func (s *Service) RecalculateAll(ctx context.Context, opts RecalculateOptions) (*Report, error) {
	report := &Report{DryRun: opts.DryRun, Corrected: []*Drift{}}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	if opts.CampaignID != nil || opts.CharityID != nil {
		if opts.CampaignID != nil {
			if err := s.check(ctx, report, KindCampaign, *opts.CampaignID, opts.DryRun); err != nil {
				return report, err
			}
		}
		if opts.CharityID != nil {
			if err := s.check(ctx, report, KindCharity, *opts.CharityID, opts.DryRun); err != nil {
				return report, err
			}
		}
		return report, nil
	}

	kinds := []Kind{KindCampaign}
	if opts.IncludeCharities {
		kinds = append(kinds, KindCharity)
	}

	for _, kind := range kinds {
		var cursor *ulid.ULID
		for {
			ids, err := s.Repository.ListIDsAfter(ctx, kind, cursor, batch)
			if err != nil {
				return report, err
			}
			for _, id := range ids {
				if err := ctx.Err(); err != nil {
					return report, err
				}
				if err := s.check(ctx, report, kind, id, opts.DryRun); err != nil {
					report.Failed++
					logger.Error().
						Err(err).
						Str("kind", string(kind)).
						Str("id", id.String()).
						Msg("Erro ao recalcular agregados")
				}
			}
			if len(ids) < batch {
				break
			}
			last := ids[len(ids)-1]
			cursor = &last
		}
	}

	logger.Info().
		Bool("dry_run", opts.DryRun).
		Int("campaigns", report.CampaignsScanned).
		Int("charities", report.CharitiesScanned).
		Int("corrected", len(report.Corrected)).
		Int("failed", report.Failed).
		Msg("Recalculo de agregados concluido")

	return report, nil
}

func (s *Service) check(ctx context.Context, report *Report, kind Kind, id ulid.ULID, dryRun bool) error {
	drift, err := s.recalculate(ctx, kind, id, dryRun)
	if err != nil {
		return err
	}
	if kind == KindCampaign {
		report.CampaignsScanned++
	} else {
		report.CharitiesScanned++
	}
	if drift.Changed() {
		report.Corrected = append(report.Corrected, drift)
	}
	return nil
}

func (s *Service) recalculate(ctx context.Context, kind Kind, id ulid.ULID, dryRun bool) (*Drift, error) {
	var drift *Drift

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cached, err := s.Repository.GetCached(ctx, kind, id)
		if err != nil {
			return err
		}
		actual, err := s.Repository.ComputeFromDonations(ctx, kind, id)
		if err != nil {
			return err
		}

		drift = &Drift{Kind: kind, ID: id, Before: cached, After: actual}
		if !drift.Changed() || dryRun {
			return nil
		}
		return s.Repository.SetCached(ctx, kind, id, actual)
	})
	if err != nil {
		return nil, err
	}

	if drift.Changed() {
		logger.Warn().
			Str("kind", string(kind)).
			Str("id", id.String()).
			Str("cached_total", drift.Before.Amount.String()).
			Str("actual_total", drift.After.Amount.String()).
			Int64("cached_donors", drift.Before.Donors).
			Int64("actual_donors", drift.After.Donors).
			Bool("dry_run", dryRun).
			Msg("Divergencia nos agregados")
		if !dryRun {
			s.Metrics.DriftCorrected(ctx, string(kind), 1)
		}
	}

	return drift, nil
}
