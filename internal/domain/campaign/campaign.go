package campaign

import (
	"time"

	"Kindfund/internal/domain/shared"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusClosed, StatusArchived:
		return true
	}
	return false
}

type Campaign struct {
	Id                     ulid.ULID        `gorm:"type:varchar(26);primaryKey" json:"id"`
	CharityId              ulid.ULID        `gorm:"type:varchar(26);index:idx_campaigns_charity_id;not null" json:"charityId"`
	Title                  string           `gorm:"type:varchar(200);not null" json:"title"`
	Description            string           `gorm:"type:text" json:"description"`
	GoalAmount             decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"goalAmount"`
	Status                 Status           `gorm:"type:varchar(20);default:'draft';index:idx_campaigns_status;not null" json:"status"`
	StartDate              time.Time        `gorm:"not null" json:"startDate"`
	EndDate                *time.Time       `json:"endDate,omitempty"`
	TotalDonationsReceived decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"totalDonationsReceived"`
	DonorsCount            int64            `gorm:"not null;default:0" json:"donorsCount"`
	IsRecurring            bool             `gorm:"not null;default:false" json:"isRecurring"`
	RecurrenceType         shared.Frequency `gorm:"type:varchar(20)" json:"recurrenceType,omitempty"`
	RecurrenceInterval     int              `gorm:"not null;default:1" json:"recurrenceInterval"`
	RecurrenceStartDate    *time.Time       `json:"recurrenceStartDate,omitempty"`
	RecurrenceEndDate      *time.Time       `json:"recurrenceEndDate,omitempty"`
	NextOccurrenceDate     *time.Time       `gorm:"index:idx_campaigns_next_occurrence" json:"nextOccurrenceDate,omitempty"`
	AutoPublish            bool             `gorm:"not null;default:false" json:"autoPublish"`
	ParentCampaignId       *ulid.ULID       `gorm:"type:varchar(26);index:idx_campaigns_parent_id" json:"parentCampaignId,omitempty"`
	OccurrenceNumber       int              `gorm:"not null;default:0" json:"occurrenceNumber"`
	CreatedAt              time.Time        `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt              time.Time        `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

func (c *Campaign) AcceptsDonations() bool {
	return c.Status == StatusPublished
}

// IsRecurringParent indica um modelo de recorrencia (nao uma ocorrencia gerada).
func (c *Campaign) IsRecurringParent() bool {
	return c.IsRecurring && c.ParentCampaignId == nil
}

// duration e a duracao aplicada as ocorrencias geradas: a do proprio modelo,
// ou um periodo de recorrencia quando o modelo nao tem data de termino.
func (c *Campaign) duration() time.Duration {
	if c.EndDate != nil && c.EndDate.After(c.StartDate) {
		return c.EndDate.Sub(c.StartDate)
	}
	return c.RecurrenceType.Next(c.StartDate, c.RecurrenceInterval).Sub(c.StartDate)
}

type Progress struct {
	CampaignId             ulid.ULID       `json:"campaignId"`
	GoalAmount             decimal.Decimal `json:"goalAmount"`
	TotalDonationsReceived decimal.Decimal `json:"totalDonationsReceived"`
	Remaining              decimal.Decimal `json:"remaining"`
	Percentage             int             `json:"percentage"`
	DonorsCount            int64           `json:"donorsCount"`
	GoalReached            bool            `json:"goalReached"`
}

func (c *Campaign) Progress() *Progress {
	return &Progress{
		CampaignId:             c.Id,
		GoalAmount:             c.GoalAmount,
		TotalDonationsReceived: c.TotalDonationsReceived,
		Remaining:              pkg.ClampZero(c.GoalAmount.Sub(c.TotalDonationsReceived)),
		Percentage:             pkg.Percent(c.TotalDonationsReceived, c.GoalAmount),
		DonorsCount:            c.DonorsCount,
		GoalReached:            c.GoalAmount.IsPositive() && c.TotalDonationsReceived.GreaterThanOrEqual(c.GoalAmount),
	}
}

type Filters struct {
	CharityId *ulid.ULID
	Status    *Status
	ParentId  *ulid.ULID
}

type RecurrenceRequest struct {
	Type        shared.Frequency
	Interval    int
	StartDate   *time.Time
	EndDate     *time.Time
	AutoPublish bool
}

type CreateRequest struct {
	CharityId   ulid.ULID
	Title       string
	Description string
	GoalAmount  decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Recurrence  *RecurrenceRequest
}

type UpdateRequest struct {
	Title       *string
	Description *string
	GoalAmount  *decimal.Decimal
	EndDate     *time.Time
	Recurrence  *RecurrenceRequest
}
