package donor

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Donor struct {
	Id        ulid.ULID `gorm:"type:varchar(26);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex:idx_donors_email;not null" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Donor) TableName() string {
	return "donors"
}

// MembershipDays conta os dias completos desde o cadastro.
func (d *Donor) MembershipDays(now time.Time) int {
	if now.Before(d.CreatedAt) {
		return 0
	}
	return int(now.Sub(d.CreatedAt).Hours() / 24)
}

// Identity e o que o provedor de identidade externo informa sobre o usuario.
type Identity struct {
	ID    ulid.ULID
	Email string
	Name  string
}
