package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecurringDonationRequest struct {
	Frequency string     `json:"frequency" binding:"required,oneof=weekly monthly quarterly yearly"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type DonationCreateRequest struct {
	CharityID       string                    `json:"charity_id" binding:"required,len=26"`
	CampaignID      *string                   `json:"campaign_id" binding:"omitempty,len=26"`
	Amount          decimal.Decimal           `json:"amount"`
	PaymentMethod   string                    `json:"payment_method" binding:"omitempty,max=50"`
	ReferenceNumber string                    `json:"reference_number" binding:"omitempty,max=100"`
	Message         string                    `json:"message" binding:"omitempty,max=1000"`
	IsAnonymous     bool                      `json:"is_anonymous"`
	Recurring       *RecurringDonationRequest `json:"recurring"`
}

type DonationUpdateRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Message     *string          `json:"message" binding:"omitempty,max=1000"`
	IsAnonymous *bool            `json:"is_anonymous"`
}
