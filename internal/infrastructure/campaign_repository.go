package infrastructure

import (
	"context"
	"errors"
	"time"

	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"
	"Kindfund/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CampaignRepository struct {
	DB *gorm.DB
}

type campaignDB struct {
	Id                     string `gorm:"primaryKey"`
	CharityId              string
	Title                  string
	Description            string
	GoalAmount             decimal.Decimal
	Status                 string
	StartDate              time.Time
	EndDate                *time.Time
	TotalDonationsReceived decimal.Decimal
	DonorsCount            int64
	IsRecurring            bool
	RecurrenceType         string
	RecurrenceInterval     int
	RecurrenceStartDate    *time.Time
	RecurrenceEndDate      *time.Time
	NextOccurrenceDate     *time.Time
	AutoPublish            bool
	ParentCampaignId       *string
	OccurrenceNumber       int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func toDomainCampaign(row *campaignDB) (*campaign.Campaign, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	charityID, err := pkg.ParseID(row.CharityId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	parentID, err := pkg.ParseOptionalID(row.ParentCampaignId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &campaign.Campaign{
		Id:                     id,
		CharityId:              charityID,
		Title:                  row.Title,
		Description:            row.Description,
		GoalAmount:             row.GoalAmount,
		Status:                 campaign.Status(row.Status),
		StartDate:              row.StartDate,
		EndDate:                row.EndDate,
		TotalDonationsReceived: row.TotalDonationsReceived,
		DonorsCount:            row.DonorsCount,
		IsRecurring:            row.IsRecurring,
		RecurrenceType:         shared.Frequency(row.RecurrenceType),
		RecurrenceInterval:     row.RecurrenceInterval,
		RecurrenceStartDate:    row.RecurrenceStartDate,
		RecurrenceEndDate:      row.RecurrenceEndDate,
		NextOccurrenceDate:     row.NextOccurrenceDate,
		AutoPublish:            row.AutoPublish,
		ParentCampaignId:       parentID,
		OccurrenceNumber:       row.OccurrenceNumber,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}, nil
}

func toDBCampaign(c *campaign.Campaign) *campaignDB {
	return &campaignDB{
		Id:                     c.Id.String(),
		CharityId:              c.CharityId.String(),
		Title:                  c.Title,
		Description:            c.Description,
		GoalAmount:             c.GoalAmount,
		Status:                 string(c.Status),
		StartDate:              c.StartDate,
		EndDate:                c.EndDate,
		TotalDonationsReceived: c.TotalDonationsReceived,
		DonorsCount:            c.DonorsCount,
		IsRecurring:            c.IsRecurring,
		RecurrenceType:         string(c.RecurrenceType),
		RecurrenceInterval:     c.RecurrenceInterval,
		RecurrenceStartDate:    c.RecurrenceStartDate,
		RecurrenceEndDate:      c.RecurrenceEndDate,
		NextOccurrenceDate:     c.NextOccurrenceDate,
		AutoPublish:            c.AutoPublish,
		ParentCampaignId:       pkg.IDString(c.ParentCampaignId),
		OccurrenceNumber:       c.OccurrenceNumber,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	if err := conn(ctx, r.DB).Table("campaigns").Create(toDBCampaign(c)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *CampaignRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	result := conn(ctx, r.DB).Table("campaigns").Where("id = ?", id.String()).Updates(fields)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result := conn(ctx, r.DB).Table("campaigns").Where("id = ?", id.String()).Delete(&campaignDB{})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id ulid.ULID) (*campaign.Campaign, error) {
	var row campaignDB
	if err := conn(ctx, r.DB).Table("campaigns").Where("id = ?", id.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCampaignNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCampaign(&row)
}

func (r *CampaignRepository) List(ctx context.Context, filters *campaign.Filters, pagination *pkg.PaginationParams) ([]*campaign.Campaign, int64, error) {
	if filters == nil {
		filters = &campaign.Filters{}
	}

	q := query.New[campaignDB](conn(ctx, r.DB), "campaigns").
		WhereIf(filters.CharityId != nil, "charity_id = ?", idValue(filters.CharityId)).
		WhereIf(filters.Status != nil, "status = ?", statusValue(filters.Status)).
		WhereIf(filters.ParentId != nil, "parent_campaign_id = ?", idValue(filters.ParentId)).
		Order("created_at DESC")

	items, total, err := query.Paginate(q, pagination, toDomainCampaign)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return items, total, nil
}

func (r *CampaignRepository) ListDueRecurring(ctx context.Context, now time.Time, after *ulid.ULID, limit int) ([]*campaign.Campaign, error) {
	q := query.New[campaignDB](conn(ctx, r.DB), "campaigns").
		Where("is_recurring = ? AND parent_campaign_id IS NULL", true).
		Where("status <> ?", string(campaign.StatusArchived)).
		Where("next_occurrence_date IS NOT NULL AND next_occurrence_date <= ?", now).
		WhereIf(after != nil, "id > ?", idValue(after)).
		Order("id ASC")

	rows, err := q.Find(limit)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	out := make([]*campaign.Campaign, 0, len(rows))
	for i := range rows {
		c, err := toDomainCampaign(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CampaignRepository) CountCountedDonations(ctx context.Context, id ulid.ULID) (int64, error) {
	var count int64
	err := counted(conn(ctx, r.DB).Table("donations")).
		Where("campaign_id = ?", id.String()).
		Count(&count).Error
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return count, nil
}

func (r *CampaignRepository) DetachDonations(ctx context.Context, id ulid.ULID) error {
	err := conn(ctx, r.DB).Table("donations").
		Where("campaign_id = ?", id.String()).
		Updates(map[string]interface{}{
			"campaign_id": nil,
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}
