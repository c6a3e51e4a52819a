package campaign

import (
	"context"
	"time"

	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, campaign *Campaign) error
	UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	Delete(ctx context.Context, id ulid.ULID) error
	GetByID(ctx context.Context, id ulid.ULID) (*Campaign, error)
	List(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Campaign, int64, error)
	// ListDueRecurring devolve modelos recorrentes com next_occurrence_date <= now,
	// ordenados por id e a partir do cursor after.
	ListDueRecurring(ctx context.Context, now time.Time, after *ulid.ULID, limit int) ([]*Campaign, error)
	CountCountedDonations(ctx context.Context, id ulid.ULID) (int64, error)
	// DetachDonations desvincula as doacoes (nao contabilizadas) de uma campanha removida.
	DetachDonations(ctx context.Context, id ulid.ULID) error
}
