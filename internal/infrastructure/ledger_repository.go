package infrastructure

import (
	"context"
	"fmt"
	"time"

	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/ledger"
	appErrors "Kindfund/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerRepository mantem as colunas em cache de campanhas e instituicoes.
type LedgerRepository struct {
	DB *gorm.DB
}

type aggregateTable struct {
	table       string
	foreignKey  string
	notFoundErr *appErrors.AppError
}

func aggregateFor(kind ledger.Kind) (aggregateTable, error) {
	switch kind {
	case ledger.KindCampaign:
		return aggregateTable{table: "campaigns", foreignKey: "campaign_id", notFoundErr: appErrors.ErrCampaignNotFound}, nil
	case ledger.KindCharity:
		return aggregateTable{table: "charities", foreignKey: "charity_id", notFoundErr: appErrors.ErrCharityNotFound}, nil
	default:
		return aggregateTable{}, appErrors.ErrInternalServer.WithError(fmt.Errorf("ledger: tipo desconhecido %q", kind))
	}
}

type totalsRow struct {
	Amount decimal.Decimal
	Donors int64
}

func (r *LedgerRepository) AdjustTotal(ctx context.Context, kind ledger.Kind, id ulid.ULID, delta decimal.Decimal) error {
	agg, err := aggregateFor(kind)
	if err != nil {
		return err
	}

	result := conn(ctx, r.DB).Table(agg.table).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"total_donations_received": gorm.Expr(
				"CASE WHEN total_donations_received + ? < 0 THEN 0 ELSE total_donations_received + ? END",
				delta, delta,
			),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return agg.notFoundErr
	}
	return nil
}

func (r *LedgerRepository) RefreshDonorsCount(ctx context.Context, kind ledger.Kind, id ulid.ULID) error {
	agg, err := aggregateFor(kind)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(
		"UPDATE %s SET donors_count = (SELECT COUNT(DISTINCT donor_id) FROM donations WHERE %s = ? AND status = ? AND is_refunded = ?) WHERE id = ?",
		agg.table, agg.foreignKey,
	)
	result := conn(ctx, r.DB).Exec(stmt, id.String(), string(donation.StatusCompleted), false, id.String())
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return agg.notFoundErr
	}
	return nil
}

func (r *LedgerRepository) GetCached(ctx context.Context, kind ledger.Kind, id ulid.ULID) (ledger.Totals, error) {
	agg, err := aggregateFor(kind)
	if err != nil {
		return ledger.Totals{}, err
	}

	var row totalsRow
	result := conn(ctx, r.DB).Table(agg.table).
		Select("total_donations_received AS amount, donors_count AS donors").
		Where("id = ?", id.String()).
		Scan(&row)
	if result.Error != nil {
		return ledger.Totals{}, appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ledger.Totals{}, agg.notFoundErr
	}
	return ledger.Totals{Amount: row.Amount.Round(2), Donors: row.Donors}, nil
}

func (r *LedgerRepository) ComputeFromDonations(ctx context.Context, kind ledger.Kind, id ulid.ULID) (ledger.Totals, error) {
	agg, err := aggregateFor(kind)
	if err != nil {
		return ledger.Totals{}, err
	}

	var row totalsRow
	err = counted(conn(ctx, r.DB).Table("donations")).
		Select("COALESCE(SUM(amount), 0) AS amount, COUNT(DISTINCT donor_id) AS donors").
		Where(agg.foreignKey+" = ?", id.String()).
		Scan(&row).Error
	if err != nil {
		return ledger.Totals{}, appErrors.NewDatabaseError(err)
	}
	return ledger.Totals{Amount: row.Amount.Round(2), Donors: row.Donors}, nil
}

func (r *LedgerRepository) SetCached(ctx context.Context, kind ledger.Kind, id ulid.ULID, totals ledger.Totals) error {
	agg, err := aggregateFor(kind)
	if err != nil {
		return err
	}

	result := conn(ctx, r.DB).Table(agg.table).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"total_donations_received": totals.Amount,
			"donors_count":             totals.Donors,
			"updated_at":               time.Now().UTC(),
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return agg.notFoundErr
	}
	return nil
}

func (r *LedgerRepository) ListIDsAfter(ctx context.Context, kind ledger.Kind, after *ulid.ULID, limit int) ([]ulid.ULID, error) {
	agg, err := aggregateFor(kind)
	if err != nil {
		return nil, err
	}
	return listIDsAfter(conn(ctx, r.DB).Table(agg.table), after, limit)
}
