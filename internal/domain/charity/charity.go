package charity

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

type Charity struct {
	Id                     ulid.ULID          `gorm:"type:varchar(26);primaryKey" json:"id"`
	OwnerId                ulid.ULID          `gorm:"type:varchar(26);index:idx_charities_owner_id;not null" json:"ownerId"`
	Name                   string             `gorm:"type:varchar(150);not null" json:"name"`
	Description            string             `gorm:"type:text" json:"description"`
	Email                  string             `gorm:"type:varchar(255)" json:"email"`
	VerificationStatus     VerificationStatus `gorm:"type:varchar(20);default:'pending';index:idx_charities_verification_status;not null" json:"verificationStatus"`
	RejectionReason        string             `gorm:"type:text" json:"rejectionReason,omitempty"`
	TotalDonationsReceived decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"totalDonationsReceived"`
	DonorsCount            int64              `gorm:"not null;default:0" json:"donorsCount"`
	VerifiedAt             *time.Time         `json:"verifiedAt,omitempty"`
	CreatedAt              time.Time          `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt              time.Time          `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Charity) TableName() string {
	return "charities"
}

func (c *Charity) IsApproved() bool {
	return c.VerificationStatus == VerificationApproved
}

type Filters struct {
	Status  *VerificationStatus
	OwnerId *ulid.ULID
	Search  string
}

type Stats struct {
	CharityId              ulid.ULID       `json:"charityId"`
	TotalDonationsReceived decimal.Decimal `json:"totalDonationsReceived"`
	DonorsCount            int64           `json:"donorsCount"`
	CampaignsCount         int64           `json:"campaignsCount"`
	ActiveCampaigns        int64           `json:"activeCampaigns"`
	PendingDonations       int64           `json:"pendingDonations"`
}

type CreateRequest struct {
	OwnerId     ulid.ULID
	Name        string
	Description string
	Email       string
}

type UpdateRequest struct {
	Name        *string
	Description *string
	Email       *string
}
