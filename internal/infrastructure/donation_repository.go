package infrastructure

import (
	"context"
	"errors"
	"time"

	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"
	"Kindfund/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DonationRepository struct {
	DB *gorm.DB
}

type donationDB struct {
	Id                 string `gorm:"primaryKey"`
	DonorId            string
	CharityId          string
	CampaignId         *string
	Amount             decimal.Decimal
	Status             string
	IsRefunded         bool
	ParentDonationId   *string
	IsRecurring        bool
	RecurringFrequency string
	RecurringStartDate *time.Time
	NextChargeDate     *time.Time
	RecurringEndDate   *time.Time
	PaymentMethod      string
	ReferenceNumber    string
	Message            string
	IsAnonymous        bool
	RejectionReason    string
	CompletedAt        *time.Time
	RefundedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func toDomainDonation(row *donationDB) (*donation.Donation, error) {
	id, err := pkg.ParseID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	donorID, err := pkg.ParseID(row.DonorId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	charityID, err := pkg.ParseID(row.CharityId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	campaignID, err := pkg.ParseOptionalID(row.CampaignId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	parentID, err := pkg.ParseOptionalID(row.ParentDonationId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	return &donation.Donation{
		Id:                 id,
		DonorId:            donorID,
		CharityId:          charityID,
		CampaignId:         campaignID,
		Amount:             row.Amount,
		Status:             donation.Status(row.Status),
		IsRefunded:         row.IsRefunded,
		ParentDonationId:   parentID,
		IsRecurring:        row.IsRecurring,
		RecurringFrequency: shared.Frequency(row.RecurringFrequency),
		RecurringStartDate: row.RecurringStartDate,
		NextChargeDate:     row.NextChargeDate,
		RecurringEndDate:   row.RecurringEndDate,
		PaymentMethod:      row.PaymentMethod,
		ReferenceNumber:    row.ReferenceNumber,
		Message:            row.Message,
		IsAnonymous:        row.IsAnonymous,
		RejectionReason:    row.RejectionReason,
		CompletedAt:        row.CompletedAt,
		RefundedAt:         row.RefundedAt,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

func toDBDonation(d *donation.Donation) *donationDB {
	return &donationDB{
		Id:                 d.Id.String(),
		DonorId:            d.DonorId.String(),
		CharityId:          d.CharityId.String(),
		CampaignId:         pkg.IDString(d.CampaignId),
		Amount:             d.Amount,
		Status:             string(d.Status),
		IsRefunded:         d.IsRefunded,
		ParentDonationId:   pkg.IDString(d.ParentDonationId),
		IsRecurring:        d.IsRecurring,
		RecurringFrequency: string(d.RecurringFrequency),
		RecurringStartDate: d.RecurringStartDate,
		NextChargeDate:     d.NextChargeDate,
		RecurringEndDate:   d.RecurringEndDate,
		PaymentMethod:      d.PaymentMethod,
		ReferenceNumber:    d.ReferenceNumber,
		Message:            d.Message,
		IsAnonymous:        d.IsAnonymous,
		RejectionReason:    d.RejectionReason,
		CompletedAt:        d.CompletedAt,
		RefundedAt:         d.RefundedAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r *DonationRepository) Create(ctx context.Context, d *donation.Donation) error {
	if err := conn(ctx, r.DB).Table("donations").Create(toDBDonation(d)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

// Update grava todas as colunas mutaveis, inclusive valores zero e nulos, desde
// que a linha ainda esteja no status from. Caso contrario outra transacao ja a
// alterou e a escrita e recusada.
func (r *DonationRepository) Update(ctx context.Context, d *donation.Donation, from donation.Status) error {
	row := toDBDonation(d)
	result := conn(ctx, r.DB).Table("donations").
		Where("id = ? AND status = ?", row.Id, string(from)).
		Select("*").
		Omit("id", "created_at").
		Updates(row)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrMoved(ctx, d)
	}
	return nil
}

// UpdateFields grava apenas as colunas informadas.
func (r *DonationRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	result := conn(ctx, r.DB).Table("donations").Where("id = ?", id.String()).Updates(fields)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrDonationNotFound
	}
	return nil
}

// missingOrMoved explica um Update sem linhas afetadas: a doacao sumiu ou mudou de status.
func (r *DonationRepository) missingOrMoved(ctx context.Context, d *donation.Donation) error {
	var status string
	result := conn(ctx, r.DB).Table("donations").Select("status").Where("id = ?", d.Id.String()).Limit(1).Scan(&status)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrDonationNotFound
	}
	return appErrors.NewStatusTransitionError(status, string(d.Status))
}

func (r *DonationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result := conn(ctx, r.DB).Table("donations").Where("id = ?", id.String()).Delete(&donationDB{})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrDonationNotFound
	}
	return nil
}

func (r *DonationRepository) GetByID(ctx context.Context, id ulid.ULID) (*donation.Donation, error) {
	return r.get(conn(ctx, r.DB), id)
}

// GetForUpdate le a doacao com SELECT ... FOR UPDATE; dentro de uma transacao
// a linha fica bloqueada ate o commit.
func (r *DonationRepository) GetForUpdate(ctx context.Context, id ulid.ULID) (*donation.Donation, error) {
	return r.get(conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *DonationRepository) get(db *gorm.DB, id ulid.ULID) (*donation.Donation, error) {
	var row donationDB
	if err := db.Table("donations").Where("id = ?", id.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrDonationNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainDonation(&row)
}

func (r *DonationRepository) List(ctx context.Context, filters *donation.Filters, pagination *pkg.PaginationParams) ([]*donation.Donation, int64, error) {
	if filters == nil {
		filters = &donation.Filters{}
	}

	q := query.New[donationDB](conn(ctx, r.DB), "donations").
		WhereIf(filters.DonorId != nil, "donor_id = ?", idValue(filters.DonorId)).
		WhereIf(filters.CharityId != nil, "charity_id = ?", idValue(filters.CharityId)).
		WhereIf(filters.CampaignId != nil, "campaign_id = ?", idValue(filters.CampaignId)).
		WhereIf(filters.Status != nil, "status = ?", statusValue(filters.Status)).
		WhereIf(filters.Recurring != nil, "is_recurring = ?", filters.Recurring != nil && *filters.Recurring).
		Order("created_at DESC")

	items, total, err := query.Paginate(q, pagination, toDomainDonation)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return items, total, nil
}

func (r *DonationRepository) ListDueRecurring(ctx context.Context, now time.Time, after *ulid.ULID, limit int) ([]*donation.Donation, error) {
	q := query.New[donationDB](conn(ctx, r.DB), "donations").
		Where("is_recurring = ? AND parent_donation_id IS NULL", true).
		Where("status <> ?", string(donation.StatusRejected)).
		Where("next_charge_date IS NOT NULL AND next_charge_date <= ?", now).
		WhereIf(after != nil, "id > ?", idValue(after)).
		Order("id ASC")

	rows, err := q.Find(limit)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	out := make([]*donation.Donation, 0, len(rows))
	for i := range rows {
		d, err := toDomainDonation(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
