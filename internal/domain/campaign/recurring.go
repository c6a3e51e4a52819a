package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Kindfund/internal/logger"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const recurringBatchSize = 100

type ProcessResult struct {
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// ProcessRecurringCampaigns gera as ocorrencias vencidas de cada modelo recorrente.
// Cada modelo roda na propria transacao; falhas sao registradas e o lote segue.
func (s *Service) ProcessRecurringCampaigns(ctx context.Context, now time.Time) (*ProcessResult, error) {
	result := &ProcessResult{}
	var cursor *ulid.ULID

	for {
		parents, err := s.Repository.ListDueRecurring(ctx, now, cursor, recurringBatchSize)
		if err != nil {
			return result, err
		}
		if len(parents) == 0 {
			break
		}

		for _, parent := range parents {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Scanned++

			var created int
			err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
				// relido na transacao para nao gravar sobre uma edicao concorrente
				current, err := s.Repository.GetByID(ctx, parent.Id)
				if err != nil {
					return err
				}
				if !current.IsRecurringParent() || current.Status == StatusArchived {
					return nil
				}
				created, err = s.rollForward(ctx, current, now)
				return err
			})
			if err != nil {
				result.Failed++
				logger.Error().
					Err(err).
					Str("campaign_id", parent.Id.String()).
					Msg("Erro ao gerar ocorrencias da campanha recorrente")
				continue
			}
			result.Created += created
		}

		last := parents[len(parents)-1].Id
		cursor = &last
		if len(parents) < recurringBatchSize {
			break
		}
	}

	s.Metrics.RecurringCampaignsCreated(ctx, int64(result.Created))
	logger.Info().
		Int("scanned", result.Scanned).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Msg("Campanhas recorrentes processadas")

	return result, nil
}

func (s *Service) rollForward(ctx context.Context, parent *Campaign, now time.Time) (int, error) {
	if parent.NextOccurrenceDate == nil {
		return 0, nil
	}

	next := *parent.NextOccurrenceDate
	anchor := parent.anchor(next)
	occurrence := parent.OccurrenceNumber
	duration := parent.duration()
	created := 0
	exhausted := false

	for created < MaxCatchUpOccurrences && !next.After(now) {
		if parent.RecurrenceEndDate != nil && next.After(*parent.RecurrenceEndDate) {
			exhausted = true
			break
		}

		occurrence++
		child := parent.newOccurrence(next, duration, occurrence, now)
		if err := s.Repository.Create(ctx, child); err != nil {
			return 0, err
		}
		created++

		logger.Info().
			Str("campaign_id", child.Id.String()).
			Str("parent_campaign_id", parent.Id.String()).
			Int("occurrence", occurrence).
			Msg("Ocorrencia de campanha criada")

		next = parent.RecurrenceType.NextAfter(anchor, parent.RecurrenceInterval, next)
	}

	if parent.RecurrenceEndDate != nil && next.After(*parent.RecurrenceEndDate) {
		exhausted = true
	}

	fields := map[string]interface{}{
		"occurrence_number": occurrence,
		"updated_at":        now,
	}
	if exhausted {
		fields["next_occurrence_date"] = nil
	} else {
		fields["next_occurrence_date"] = next
	}

	if err := s.Repository.UpdateFields(ctx, parent.Id, fields); err != nil {
		return 0, err
	}
	return created, nil
}

func (c *Campaign) newOccurrence(start time.Time, duration time.Duration, number int, now time.Time) *Campaign {
	parentID := c.Id
	end := start.Add(duration)
	status := StatusDraft
	if c.AutoPublish {
		status = StatusPublished
	}

	return &Campaign{
		Id:                     pkg.NewID(),
		CharityId:              c.CharityId,
		Title:                  occurrenceTitle(c.Title, start),
		Description:            c.Description,
		GoalAmount:             c.GoalAmount,
		Status:                 status,
		StartDate:              start,
		EndDate:                &end,
		TotalDonationsReceived: decimal.Zero,
		DonorsCount:            0,
		RecurrenceInterval:     1,
		ParentCampaignId:       &parentID,
		OccurrenceNumber:       number,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// occurrenceTitle acrescenta a data ao titulo respeitando o limite de 200 caracteres.
func occurrenceTitle(title string, start time.Time) string {
	suffix := fmt.Sprintf(" (%s)", dateOnly(start))
	if runes, max := []rune(title), 200-len(suffix); len(runes) > max {
		title = strings.TrimSpace(string(runes[:max]))
	}
	return title + suffix
}
