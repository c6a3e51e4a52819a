package infrastructure

import (
	"context"
	"errors"
	"time"

	"Kindfund/internal/domain/donor"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type DonorRepository struct {
	DB *gorm.DB
}

type donorDB struct {
	Id        string `gorm:"primaryKey"`
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func toDomainDonor(row *donorDB) (*donor.Donor, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &donor.Donor{
		Id:        id,
		Name:      row.Name,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func toDBDonor(d *donor.Donor) *donorDB {
	return &donorDB{
		Id:        d.Id.String(),
		Name:      d.Name,
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *DonorRepository) Create(ctx context.Context, d *donor.Donor) error {
	if err := conn(ctx, r.DB).Table("donors").Create(toDBDonor(d)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *DonorRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	result := conn(ctx, r.DB).Table("donors").Where("id = ?", id.String()).Updates(fields)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrDonorNotFound
	}
	return nil
}

func (r *DonorRepository) GetByID(ctx context.Context, id ulid.ULID) (*donor.Donor, error) {
	return r.first(ctx, "id = ?", id.String())
}

func (r *DonorRepository) GetByEmail(ctx context.Context, email string) (*donor.Donor, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *DonorRepository) first(ctx context.Context, query string, args ...interface{}) (*donor.Donor, error) {
	var row donorDB
	if err := conn(ctx, r.DB).Table("donors").Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrDonorNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainDonor(&row)
}

func (r *DonorRepository) Exists(ctx context.Context, id ulid.ULID) (bool, error) {
	var count int64
	if err := conn(ctx, r.DB).Table("donors").Where("id = ?", id.String()).Count(&count).Error; err != nil {
		return false, appErrors.NewDatabaseError(err)
	}
	return count > 0, nil
}

func (r *DonorRepository) ListIDsAfter(ctx context.Context, after *ulid.ULID, limit int) ([]ulid.ULID, error) {
	return listIDsAfter(conn(ctx, r.DB).Table("donors"), after, limit)
}

// listIDsAfter pagina ids em ordem crescente a partir do cursor.
func listIDsAfter(db *gorm.DB, after *ulid.ULID, limit int) ([]ulid.ULID, error) {
	if after != nil {
		db = db.Where("id > ?", after.String())
	}

	var raw []string
	if err := db.Order("id ASC").Limit(limit).Pluck("id", &raw).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	ids := make([]ulid.ULID, 0, len(raw))
	for _, s := range raw {
		id, err := pkg.ParseID(s)
		if err != nil {
			return nil, appErrors.ErrInternalServer.WithError(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
