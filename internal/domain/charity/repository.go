package charity

import (
	"context"

	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, charity *Charity) error
	UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	GetByID(ctx context.Context, id ulid.ULID) (*Charity, error)
	List(ctx context.Context, filters *Filters, pagination *pkg.PaginationParams) ([]*Charity, int64, error)
	GetStats(ctx context.Context, id ulid.ULID) (*Stats, error)
}
