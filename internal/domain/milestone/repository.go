package milestone

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	ListByDonor(ctx context.Context, donorID ulid.ULID) ([]*DonorMilestone, error)
	Create(ctx context.Context, milestone *DonorMilestone) error
	UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	// GetDonorStats agrega as doacoes contabilizadas do doador.
	GetDonorStats(ctx context.Context, donorID ulid.ULID) (*DonorStats, error)
}
