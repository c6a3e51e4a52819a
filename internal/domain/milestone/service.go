package milestone

import (
	"context"
	"sort"
	"time"

	"Kindfund/internal/domain/donor"
	"Kindfund/internal/domain/shared"
	"Kindfund/internal/logger"
	"Kindfund/internal/observability"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const defaultRefreshBatch = 100

type DonorSource interface {
	GetByID(ctx context.Context, id ulid.ULID) (*donor.Donor, error)
	ListIDsAfter(ctx context.Context, after *ulid.ULID, limit int) ([]ulid.ULID, error)
}

type Service struct {
	Repository Repository
	Donors     DonorSource
	Metrics    *observability.Metrics
	Clock      shared.Clock
}

type RefreshOptions struct {
	DonorID   *ulid.ULID
	BatchSize int
}

type RefreshResult struct {
	DonorsScanned      int `json:"donorsScanned"`
	MilestonesUnlocked int `json:"milestonesUnlocked"`
	Failed             int `json:"failed"`
}

// EvaluateDonor recalcula o progresso de todos os marcos do doador e devolve
// os que foram conquistados nesta avaliacao. achieved_at nunca e limpo.
func (s *Service) EvaluateDonor(ctx context.Context, donorID ulid.ULID, now time.Time) ([]*DonorMilestone, error) {
	d, err := s.Donors.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Repository.GetDonorStats(ctx, donorID)
	if err != nil {
		return nil, err
	}
	stats.MembershipDays = d.MembershipDays(now)

	existing, err := s.Repository.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*DonorMilestone, len(existing))
	for _, m := range existing {
		byKey[m.Key] = m
	}

	var unlocked []*DonorMilestone
	for _, def := range Catalogue {
		current := stats.Value(def.Statistic)
		progress := progressOf(current, def.Threshold)
		reached := current.GreaterThanOrEqual(decimal.NewFromInt(def.Threshold))
		meta := datatypes.JSONMap{
			"progress":  progress,
			"current":   current.InexactFloat64(),
			"threshold": def.Threshold,
		}

		m, ok := byKey[def.Key]
		if !ok {
			m = &DonorMilestone{
				Id:          pkg.NewID(),
				DonorId:     donorID,
				Key:         def.Key,
				Title:       def.Title,
				Description: def.Description,
				Icon:        def.Icon,
				Meta:        meta,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if reached {
				achievedAt := now
				m.AchievedAt = &achievedAt
			}
			if err := s.Repository.Create(ctx, m); err != nil {
				if shared.IsUniqueConstraintError(err) {
					// outra avaliacao concorrente criou o registro; o proximo ciclo sincroniza
					continue
				}
				return nil, err
			}
			if reached {
				unlocked = append(unlocked, m)
			}
			continue
		}

		fields := map[string]interface{}{}
		if m.Progress() != progress || m.Current() != current.InexactFloat64() {
			fields["meta"] = meta
			m.Meta = meta
		}
		if reached && m.AchievedAt == nil {
			achievedAt := now
			m.AchievedAt = &achievedAt
			fields["achieved_at"] = achievedAt
			unlocked = append(unlocked, m)
		}
		if len(fields) == 0 {
			continue
		}
		fields["updated_at"] = now
		m.UpdatedAt = now
		if err := s.Repository.UpdateFields(ctx, m.Id, fields); err != nil {
			return nil, err
		}
	}

	for _, m := range unlocked {
		logger.Info().
			Str("donor_id", donorID.String()).
			Str("milestone", m.Key).
			Msg("Marco conquistado")
	}
	s.Metrics.MilestonesUnlocked(ctx, int64(len(unlocked)))

	return unlocked, nil
}

// RefreshDonorMilestones avalia um doador especifico ou todos, em lotes.
func (s *Service) RefreshDonorMilestones(ctx context.Context, opts RefreshOptions) (*RefreshResult, error) {
	now := s.Clock.Now()
	result := &RefreshResult{}

	if opts.DonorID != nil {
		unlocked, err := s.EvaluateDonor(ctx, *opts.DonorID, now)
		if err != nil {
			return nil, err
		}
		result.DonorsScanned = 1
		result.MilestonesUnlocked = len(unlocked)
		return result, nil
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultRefreshBatch
	}

	var cursor *ulid.ULID
	for {
		ids, err := s.Donors.ListIDsAfter(ctx, cursor, batch)
		if err != nil {
			return result, err
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.DonorsScanned++
			unlocked, err := s.EvaluateDonor(ctx, id, now)
			if err != nil {
				result.Failed++
				logger.Error().
					Err(err).
					Str("donor_id", id.String()).
					Msg("Erro ao atualizar marcos do doador")
				continue
			}
			result.MilestonesUnlocked += len(unlocked)
		}
		if len(ids) < batch {
			break
		}
		last := ids[len(ids)-1]
		cursor = &last
	}

	logger.Info().
		Int("donors", result.DonorsScanned).
		Int("unlocked", result.MilestonesUnlocked).
		Int("failed", result.Failed).
		Msg("Marcos dos doadores atualizados")

	return result, nil
}

// ListDonorMilestones devolve o catalogo completo para o doador: conquistados
// primeiro (mais recentes antes), depois por progresso.
func (s *Service) ListDonorMilestones(ctx context.Context, donorID ulid.ULID) ([]*DonorMilestone, error) {
	if _, err := s.Donors.GetByID(ctx, donorID); err != nil {
		return nil, err
	}

	rows, err := s.Repository.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*DonorMilestone, len(rows))
	for _, m := range rows {
		byKey[m.Key] = m
	}

	out := make([]*DonorMilestone, 0, len(Catalogue))
	order := make(map[string]int, len(Catalogue))
	for i, def := range Catalogue {
		order[def.Key] = i
		if m, ok := byKey[def.Key]; ok {
			out = append(out, m)
			continue
		}
		out = append(out, &DonorMilestone{
			DonorId:     donorID,
			Key:         def.Key,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			Meta: datatypes.JSONMap{
				"progress":  0,
				"current":   0,
				"threshold": def.Threshold,
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsAchieved() != b.IsAchieved() {
			return a.IsAchieved()
		}
		if a.IsAchieved() && !a.AchievedAt.Equal(*b.AchievedAt) {
			return a.AchievedAt.After(*b.AchievedAt)
		}
		if a.Progress() != b.Progress() {
			return a.Progress() > b.Progress()
		}
		return order[a.Key] < order[b.Key]
	})

	return out, nil
}
