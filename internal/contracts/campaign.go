package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecurrenceRequest struct {
	Type        string     `json:"type" binding:"required,oneof=weekly monthly quarterly yearly"`
	Interval    int        `json:"interval" binding:"omitempty,gte=1,lte=24"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	AutoPublish bool       `json:"auto_publish"`
}

type CampaignCreateRequest struct {
	CharityID   string             `json:"charity_id" binding:"required,len=26"`
	Title       string             `json:"title" binding:"required,max=200"`
	Description string             `json:"description" binding:"omitempty,max=5000"`
	GoalAmount  decimal.Decimal    `json:"goal_amount"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	Recurrence  *RecurrenceRequest `json:"recurrence"`
}

type CampaignUpdateRequest struct {
	Title       *string            `json:"title" binding:"omitempty,max=200"`
	Description *string            `json:"description" binding:"omitempty,max=5000"`
	GoalAmount  *decimal.Decimal   `json:"goal_amount"`
	EndDate     *time.Time         `json:"end_date"`
	Recurrence  *RecurrenceRequest `json:"recurrence"`
}
