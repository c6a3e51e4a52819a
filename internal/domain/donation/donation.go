package donation

import (
	"time"

	"Kindfund/internal/domain/shared"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusRefunded  Status = "refunded"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRejected, StatusRefunded:
		return true
	}
	return false
}

var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusRejected},
	StatusCompleted: {StatusRefunded},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Donation struct {
	Id                 ulid.ULID        `gorm:"type:varchar(26);primaryKey" json:"id"`
	DonorId            ulid.ULID        `gorm:"type:varchar(26);index:idx_donations_donor_id;not null" json:"donorId"`
	CharityId          ulid.ULID        `gorm:"type:varchar(26);index:idx_donations_charity_status;not null" json:"charityId"`
	CampaignId         *ulid.ULID       `gorm:"type:varchar(26);index:idx_donations_campaign_status" json:"campaignId,omitempty"`
	Amount             decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status             Status           `gorm:"type:varchar(20);default:'pending';index:idx_donations_charity_status;index:idx_donations_campaign_status;not null" json:"status"`
	IsRefunded         bool             `gorm:"not null;default:false" json:"isRefunded"`
	ParentDonationId   *ulid.ULID       `gorm:"type:varchar(26);index:idx_donations_parent_id" json:"parentDonationId,omitempty"`
	IsRecurring        bool             `gorm:"not null;default:false" json:"isRecurring"`
	RecurringFrequency shared.Frequency `gorm:"type:varchar(20)" json:"recurringFrequency,omitempty"`
	RecurringStartDate *time.Time       `json:"recurringStartDate,omitempty"`
	NextChargeDate     *time.Time       `gorm:"index:idx_donations_next_charge" json:"nextChargeDate,omitempty"`
	RecurringEndDate   *time.Time       `json:"recurringEndDate,omitempty"`
	PaymentMethod      string           `gorm:"type:varchar(50)" json:"paymentMethod"`
	ReferenceNumber    string           `gorm:"type:varchar(100)" json:"referenceNumber,omitempty"`
	Message            string           `gorm:"type:text" json:"message,omitempty"`
	IsAnonymous        bool             `gorm:"not null;default:false" json:"isAnonymous"`
	RejectionReason    string           `gorm:"type:text" json:"rejectionReason,omitempty"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	RefundedAt         *time.Time       `json:"refundedAt,omitempty"`
	CreatedAt          time.Time        `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Donation) TableName() string {
	return "donations"
}

// IsCounted indica se a doacao entra nos agregados de campanha, instituicao e marcos.
func (d *Donation) IsCounted() bool {
	return d != nil && d.Status == StatusCompleted && !d.IsRefunded
}

func (d *Donation) IsRecurringTemplate() bool {
	return d.IsRecurring && d.ParentDonationId == nil
}

// recurrenceAnchor e a origem da serie de parcelas; registros sem inicio usam fallback.
func (d *Donation) recurrenceAnchor(fallback time.Time) time.Time {
	if d.RecurringStartDate != nil {
		return *d.RecurringStartDate
	}
	return fallback
}

func (d *Donation) Clone() *Donation {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}

type Filters struct {
	DonorId    *ulid.ULID
	CharityId  *ulid.ULID
	CampaignId *ulid.ULID
	Status     *Status
	Recurring  *bool
}

type RecurringRequest struct {
	Frequency shared.Frequency
	StartDate *time.Time
	EndDate   *time.Time
}

type CreateRequest struct {
	DonorId         ulid.ULID
	CharityId       ulid.ULID
	CampaignId      *ulid.ULID
	Amount          decimal.Decimal
	Status          Status
	PaymentMethod   string
	ReferenceNumber string
	Message         string
	IsAnonymous     bool
	Recurring       *RecurringRequest
}

type UpdateRequest struct {
	Amount      *decimal.Decimal
	Message     *string
	IsAnonymous *bool
}
