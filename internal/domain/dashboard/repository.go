package dashboard

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	GetDonorSummary(ctx context.Context, donorID ulid.ULID) (*DonorSummary, error)
	GetRecentDonations(ctx context.Context, donorID ulid.ULID, limit int) ([]*DonationSummary, error)
	CountActiveRecurring(ctx context.Context, donorID ulid.ULID) (int64, error)
}
