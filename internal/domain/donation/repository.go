package donation

import (
	"context"
	"time"

	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, donation *Donation) error
	// Update grava a doacao inteira se o status persistido ainda for from.
	Update(ctx context.Context, donation *Donation, from Status) error
	UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	Delete(ctx context.Context, id ulid.ULID) error
	GetByID(ctx context.Context, id ulid.ULID) (*Donation, error)
	// GetForUpdate bloqueia a linha ate o fim da transacao corrente.
	GetForUpdate(ctx context.Context, id ulid.ULID) (*Donation, error)
	List(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Donation, int64, error)
	// ListDueRecurring devolve modelos recorrentes com next_charge_date <= now, ordenados por id.
	ListDueRecurring(ctx context.Context, now time.Time, after *ulid.ULID, limit int) ([]*Donation, error)
}
