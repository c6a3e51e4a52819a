package ledger

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCampaign Kind = "campaign"
	KindCharity  Kind = "charity"
)

type Totals struct {
	Amount decimal.Decimal `json:"amount"`
	Donors int64           `json:"donors"`
}

func (t Totals) Equal(other Totals) bool {
	return t.Amount.Equal(other.Amount) && t.Donors == other.Donors
}

// Repository opera sobre as colunas em cache (total_donations_received e
// donors_count) das tabelas de campanhas e instituicoes.
type Repository interface {
	// AdjustTotal soma delta ao total em cache, limitando o resultado a zero.
	AdjustTotal(ctx context.Context, kind Kind, id ulid.ULID, delta decimal.Decimal) error
	// RefreshDonorsCount recalcula donors_count com COUNT(DISTINCT donor_id).
	RefreshDonorsCount(ctx context.Context, kind Kind, id ulid.ULID) error
	GetCached(ctx context.Context, kind Kind, id ulid.ULID) (Totals, error)
	// ComputeFromDonations soma as doacoes contabilizadas.
	ComputeFromDonations(ctx context.Context, kind Kind, id ulid.ULID) (Totals, error)
	SetCached(ctx context.Context, kind Kind, id ulid.ULID, totals Totals) error
	ListIDsAfter(ctx context.Context, kind Kind, after *ulid.ULID, limit int) ([]ulid.ULID, error)
}
