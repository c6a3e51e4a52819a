package infrastructure

import (
	"context"
	"time"

	"Kindfund/internal/domain/dashboard"
	"Kindfund/internal/domain/donation"
	appErrors "Kindfund/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepository struct {
	DB *gorm.DB
}

func (r *DashboardRepository) GetDonorSummary(ctx context.Context, donorID ulid.ULID) (*dashboard.DonorSummary, error) {
	db := conn(ctx, r.DB)

	var row struct {
		TotalDonated       decimal.Decimal
		DonationsCount     int64
		CampaignsSupported int64
		CharitiesSupported int64
	}
	err := counted(db.Table("donations")).
		Select("COALESCE(SUM(amount), 0) AS total_donated, COUNT(*) AS donations_count, COUNT(DISTINCT campaign_id) AS campaigns_supported, COUNT(DISTINCT charity_id) AS charities_supported").
		Where("donor_id = ?", donorID.String()).
		Scan(&row).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	summary := &dashboard.DonorSummary{
		TotalDonated:       row.TotalDonated.Round(2),
		DonationsCount:     row.DonationsCount,
		CampaignsSupported: row.CampaignsSupported,
		CharitiesSupported: row.CharitiesSupported,
	}

	if err := db.Table("donations").
		Where("donor_id = ? AND status = ?", donorID.String(), string(donation.StatusPending)).
		Count(&summary.PendingDonations).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	return summary, nil
}

func (r *DashboardRepository) GetRecentDonations(ctx context.Context, donorID ulid.ULID, limit int) ([]*dashboard.DonationSummary, error) {
	var rows []struct {
		Id            string
		Amount        decimal.Decimal
		Status        string
		CharityId     string
		CharityName   string
		CampaignId    *string
		CampaignTitle *string
		CreatedAt     time.Time
	}

	err := conn(ctx, r.DB).Table("donations AS d").
		Select("d.id, d.amount, d.status, d.charity_id, c.name AS charity_name, d.campaign_id, cp.title AS campaign_title, d.created_at").
		Joins("JOIN charities c ON c.id = d.charity_id").
		Joins("LEFT JOIN campaigns cp ON cp.id = d.campaign_id").
		Where("d.donor_id = ?", donorID.String()).
		Order("d.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	out := make([]*dashboard.DonationSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, &dashboard.DonationSummary{
			Id:            row.Id,
			Amount:        row.Amount,
			Status:        row.Status,
			CharityId:     row.CharityId,
			CharityName:   row.CharityName,
			CampaignId:    row.CampaignId,
			CampaignTitle: row.CampaignTitle,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

func (r *DashboardRepository) CountActiveRecurring(ctx context.Context, donorID ulid.ULID) (int64, error) {
	var count int64
	err := conn(ctx, r.DB).Table("donations").
		Where("donor_id = ? AND is_recurring = ? AND parent_donation_id IS NULL AND next_charge_date IS NOT NULL", donorID.String(), true).
		Count(&count).Error
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return count, nil
}
