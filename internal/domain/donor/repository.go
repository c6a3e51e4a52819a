package donor

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, donor *Donor) error
	UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	GetByID(ctx context.Context, id ulid.ULID) (*Donor, error)
	GetByEmail(ctx context.Context, email string) (*Donor, error)
	Exists(ctx context.Context, id ulid.ULID) (bool, error)
	// ListIDsAfter pagina por cursor (id crescente) para os jobs em lote.
	ListIDsAfter(ctx context.Context, after *ulid.ULID, limit int) ([]ulid.ULID, error)
}
