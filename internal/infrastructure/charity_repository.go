package infrastructure

import (
	"context"
	"errors"
	"strings"
	"time"

	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/donation"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"
	"Kindfund/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CharityRepository struct {
	DB *gorm.DB
}

type charityDB struct {
	Id                     string `gorm:"primaryKey"`
	OwnerId                string
	Name                   string
	Description            string
	Email                  string
	VerificationStatus     string
	RejectionReason        string
	TotalDonationsReceived decimal.Decimal
	DonorsCount            int64
	VerifiedAt             *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func toDomainCharity(row *charityDB) (*charity.Charity, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	ownerID, err := pkg.ParseID(row.OwnerId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &charity.Charity{
		Id:                     id,
		OwnerId:                ownerID,
		Name:                   row.Name,
		Description:            row.Description,
		Email:                  row.Email,
		VerificationStatus:     charity.VerificationStatus(row.VerificationStatus),
		RejectionReason:        row.RejectionReason,
		TotalDonationsReceived: row.TotalDonationsReceived,
		DonorsCount:            row.DonorsCount,
		VerifiedAt:             row.VerifiedAt,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}, nil
}

func toDBCharity(c *charity.Charity) *charityDB {
	return &charityDB{
		Id:                     c.Id.String(),
		OwnerId:                c.OwnerId.String(),
		Name:                   c.Name,
		Description:            c.Description,
		Email:                  c.Email,
		VerificationStatus:     string(c.VerificationStatus),
		RejectionReason:        c.RejectionReason,
		TotalDonationsReceived: c.TotalDonationsReceived,
		DonorsCount:            c.DonorsCount,
		VerifiedAt:             c.VerifiedAt,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func (r *CharityRepository) Create(ctx context.Context, c *charity.Charity) error {
	if err := conn(ctx, r.DB).Table("charities").Create(toDBCharity(c)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *CharityRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	result := conn(ctx, r.DB).Table("charities").Where("id = ?", id.String()).Updates(fields)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrCharityNotFound
	}
	return nil
}

func (r *CharityRepository) GetByID(ctx context.Context, id ulid.ULID) (*charity.Charity, error) {
	var row charityDB
	if err := conn(ctx, r.DB).Table("charities").Where("id = ?", id.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCharityNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCharity(&row)
}

func (r *CharityRepository) List(ctx context.Context, filters *charity.Filters, pagination *pkg.PaginationParams) ([]*charity.Charity, int64, error) {
	if filters == nil {
		filters = &charity.Filters{}
	}
	search := strings.ToLower(strings.TrimSpace(filters.Search))

	q := query.New[charityDB](conn(ctx, r.DB), "charities").
		WhereIf(filters.Status != nil, "verification_status = ?", statusValue(filters.Status)).
		WhereIf(filters.OwnerId != nil, "owner_id = ?", idValue(filters.OwnerId)).
		WhereIf(search != "", "LOWER(name) LIKE ?", "%"+search+"%").
		Order("created_at DESC")

	items, total, err := query.Paginate(q, pagination, toDomainCharity)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return items, total, nil
}

func (r *CharityRepository) GetStats(ctx context.Context, id ulid.ULID) (*charity.Stats, error) {
	db := conn(ctx, r.DB)

	var cached struct {
		TotalDonationsReceived decimal.Decimal
		DonorsCount            int64
	}
	result := db.Table("charities").
		Select("total_donations_received, donors_count").
		Where("id = ?", id.String()).
		Scan(&cached)
	if result.Error != nil {
		return nil, appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, appErrors.ErrCharityNotFound
	}

	stats := &charity.Stats{
		CharityId:              id,
		TotalDonationsReceived: cached.TotalDonationsReceived,
		DonorsCount:            cached.DonorsCount,
	}

	if err := db.Table("campaigns").
		Where("charity_id = ?", id.String()).
		Count(&stats.CampaignsCount).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if err := db.Table("campaigns").
		Where("charity_id = ? AND status = ?", id.String(), string(campaign.StatusPublished)).
		Count(&stats.ActiveCampaigns).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if err := db.Table("donations").
		Where("charity_id = ? AND status = ?", id.String(), string(donation.StatusPending)).
		Count(&stats.PendingDonations).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	return stats, nil
}

func statusValue[S ~string](s *S) string {
	if s == nil {
		return ""
	}
	return string(*s)
}

func idValue(id *ulid.ULID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
