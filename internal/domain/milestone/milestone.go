package milestone

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DonorMilestone struct {
	Id          ulid.ULID         `gorm:"type:varchar(26);primaryKey" json:"id"`
	DonorId     ulid.ULID         `gorm:"type:varchar(26);uniqueIndex:idx_donor_milestones_donor_key;not null" json:"donorId"`
	Key         string            `gorm:"type:varchar(50);uniqueIndex:idx_donor_milestones_donor_key;not null" json:"key"`
	Title       string            `gorm:"type:varchar(100);not null" json:"title"`
	Description string            `gorm:"type:varchar(255)" json:"description"`
	Icon        string            `gorm:"type:varchar(50)" json:"icon"`
	Meta        datatypes.JSONMap `json:"meta"`
	AchievedAt  *time.Time        `json:"achievedAt,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (DonorMilestone) TableName() string {
	return "donor_milestones"
}

func (m *DonorMilestone) IsAchieved() bool {
	return m.AchievedAt != nil
}

func (m *DonorMilestone) Progress() int {
	return int(metaNumber(m.Meta, "progress"))
}

func (m *DonorMilestone) Current() float64 {
	return metaNumber(m.Meta, "current")
}

// metaNumber le numeros do JSON tanto recem-criados (int/float64) quanto vindos do banco.
func metaNumber(meta datatypes.JSONMap, key string) float64 {
	switch v := meta[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// DonorStats sao as estatisticas do doador calculadas sobre doacoes contabilizadas.
type DonorStats struct {
	DonationCount      int64
	TotalDonated       decimal.Decimal
	CampaignsSupported int64
	CharitiesSupported int64
	MembershipDays     int
}
