package infrastructure

import (
	"context"
	"time"

	"Kindfund/internal/domain/milestone"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MilestoneRepository struct {
	DB *gorm.DB
}

type donorMilestoneDB struct {
	Id          string `gorm:"primaryKey"`
	DonorId     string
	Key         string
	Title       string
	Description string
	Icon        string
	Meta        datatypes.JSONMap
	AchievedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func toDomainMilestone(row *donorMilestoneDB) (*milestone.DonorMilestone, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	donorID, err := pkg.ParseID(row.DonorId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &milestone.DonorMilestone{
		Id:          id,
		DonorId:     donorID,
		Key:         row.Key,
		Title:       row.Title,
		Description: row.Description,
		Icon:        row.Icon,
		Meta:        row.Meta,
		AchievedAt:  row.AchievedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func toDBMilestone(m *milestone.DonorMilestone) *donorMilestoneDB {
	return &donorMilestoneDB{
		Id:          m.Id.String(),
		DonorId:     m.DonorId.String(),
		Key:         m.Key,
		Title:       m.Title,
		Description: m.Description,
		Icon:        m.Icon,
		Meta:        m.Meta,
		AchievedAt:  m.AchievedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *MilestoneRepository) ListByDonor(ctx context.Context, donorID ulid.ULID) ([]*milestone.DonorMilestone, error) {
	var rows []donorMilestoneDB
	err := conn(ctx, r.DB).Table("donor_milestones").
		Where("donor_id = ?", donorID.String()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	out := make([]*milestone.DonorMilestone, 0, len(rows))
	for i := range rows {
		m, err := toDomainMilestone(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MilestoneRepository) Create(ctx context.Context, m *milestone.DonorMilestone) error {
	if err := conn(ctx, r.DB).Table("donor_milestones").Create(toDBMilestone(m)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *MilestoneRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	result := conn(ctx, r.DB).Table("donor_milestones").Where("id = ?", id.String()).Updates(fields)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.NewNotFoundError("Marco")
	}
	return nil
}

func (r *MilestoneRepository) GetDonorStats(ctx context.Context, donorID ulid.ULID) (*milestone.DonorStats, error) {
	var row struct {
		TotalDonated       decimal.Decimal
		DonationCount      int64
		CampaignsSupported int64
		CharitiesSupported int64
	}
	err := counted(conn(ctx, r.DB).Table("donations")).
		Select("COALESCE(SUM(amount), 0) AS total_donated, COUNT(*) AS donation_count, COUNT(DISTINCT campaign_id) AS campaigns_supported, COUNT(DISTINCT charity_id) AS charities_supported").
		Where("donor_id = ?", donorID.String()).
		Scan(&row).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	return &milestone.DonorStats{
		DonationCount:      row.DonationCount,
		TotalDonated:       row.TotalDonated.Round(2),
		CampaignsSupported: row.CampaignsSupported,
		CharitiesSupported: row.CharitiesSupported,
	}, nil
}
