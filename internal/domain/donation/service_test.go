package donation_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeRepository struct {
	items          map[ulid.ULID]*donation.Donation
	createFn       func(ctx context.Context, d *donation.Donation) error
	updateFn       func(ctx context.Context, d *donation.Donation) error
	updateFieldsFn func(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	// afterLock roda depois da leitura com lock e simula uma escrita concorrente
	afterLock func(d *donation.Donation)
	// afterList roda depois da listagem de modelos vencidos
	afterList func(due []*donation.Donation)
}

func newFakeRepository(items ...*donation.Donation) *fakeRepository {
	r := &fakeRepository{items: map[ulid.ULID]*donation.Donation{}}
	for _, d := range items {
		r.items[d.Id] = d.Clone()
	}
	return r
}

func (f *fakeRepository) Create(ctx context.Context, d *donation.Donation) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, d); err != nil {
			return err
		}
	}
	f.items[d.Id] = d.Clone()
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, d *donation.Donation, from donation.Status) error {
	if f.updateFn != nil {
		if err := f.updateFn(ctx, d); err != nil {
			return err
		}
	}
	stored, ok := f.items[d.Id]
	if !ok {
		return appErrors.ErrDonationNotFound
	}
	if stored.Status != from {
		return appErrors.NewStatusTransitionError(string(stored.Status), string(d.Status))
	}
	f.items[d.Id] = d.Clone()
	return nil
}

func (f *fakeRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	if f.updateFieldsFn != nil {
		if err := f.updateFieldsFn(ctx, id, fields); err != nil {
			return err
		}
	}
	stored, ok := f.items[id]
	if !ok {
		return appErrors.ErrDonationNotFound
	}
	for column, value := range fields {
		switch column {
		case "next_charge_date":
			switch v := value.(type) {
			case time.Time:
				stored.NextChargeDate = &v
			case *time.Time:
				stored.NextChargeDate = v
			default:
				stored.NextChargeDate = nil
			}
		case "updated_at":
			stored.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

func (f *fakeRepository) GetForUpdate(ctx context.Context, id ulid.ULID) (*donation.Donation, error) {
	d, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.afterLock != nil {
		f.afterLock(f.items[id])
	}
	return d, nil
}

func (f *fakeRepository) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := f.items[id]; !ok {
		return appErrors.ErrDonationNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id ulid.ULID) (*donation.Donation, error) {
	d, ok := f.items[id]
	if !ok {
		return nil, appErrors.ErrDonationNotFound
	}
	return d.Clone(), nil
}

func (f *fakeRepository) List(_ context.Context, filters *donation.Filters, _ *pkg.PaginationParams) ([]*donation.Donation, int64, error) {
	var out []*donation.Donation
	for _, d := range f.items {
		if filters.DonorId != nil && d.DonorId != *filters.DonorId {
			continue
		}
		if filters.CharityId != nil && d.CharityId != *filters.CharityId {
			continue
		}
		out = append(out, d.Clone())
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) ListDueRecurring(_ context.Context, at time.Time, after *ulid.ULID, limit int) ([]*donation.Donation, error) {
	var out []*donation.Donation
	for _, d := range f.items {
		if !d.IsRecurringTemplate() || d.NextChargeDate == nil || d.NextChargeDate.After(at) || d.Status == donation.StatusRejected {
			continue
		}
		if after != nil && d.Id.Compare(*after) <= 0 {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Compare(out[j].Id) < 0 })
	if len(out) > limit {
		out = out[:limit]
	}
	if f.afterList != nil {
		f.afterList(out)
	}
	return out, nil
}

func (f *fakeRepository) children(parent ulid.ULID) []*donation.Donation {
	var out []*donation.Donation
	for _, d := range f.items {
		if d.ParentDonationId != nil && *d.ParentDonationId == parent {
			out = append(out, d)
		}
	}
	return out
}

type transitionCall struct {
	before, after *donation.Donation
}

type fakeLedger struct {
	calls []transitionCall
	err   error
}

func (f *fakeLedger) ApplyTransition(_ context.Context, before, after *donation.Donation) error {
	f.calls = append(f.calls, transitionCall{before: before.Clone(), after: after.Clone()})
	return f.err
}

type fakeCharities struct {
	items    map[ulid.ULID]*charity.Charity
	managers map[ulid.ULID]ulid.ULID
}

func (f *fakeCharities) GetCharity(_ context.Context, id ulid.ULID) (*charity.Charity, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, appErrors.ErrCharityNotFound
	}
	return c, nil
}

func (f *fakeCharities) RequireManager(ctx context.Context, id ulid.ULID, actor shared.Actor) (*charity.Charity, error) {
	c, err := f.GetCharity(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || c.OwnerId == actor.ID {
		return c, nil
	}
	return nil, appErrors.ErrResourceNotOwned
}

type fakeCampaigns struct {
	items map[ulid.ULID]*campaign.Campaign
}

func (f *fakeCampaigns) GetCampaign(_ context.Context, id ulid.ULID) (*campaign.Campaign, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, appErrors.ErrCampaignNotFound
	}
	return c, nil
}

type fakeMilestones struct {
	evaluated []ulid.ULID
}

func (f *fakeMilestones) EvaluateDonor(_ context.Context, donorID ulid.ULID, _ time.Time) ([]*milestone.DonorMilestone, error) {
	f.evaluated = append(f.evaluated, donorID)
	return nil, nil
}

type fakeUsers struct {
	missing map[ulid.ULID]bool
}

func (f *fakeUsers) Exists(_ context.Context, id ulid.ULID) error {
	if f.missing[id] {
		return appErrors.ErrDonorNotFound
	}
	return nil
}

type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc        *donation.Service
	repo       *fakeRepository
	ledger     *fakeLedger
	milestones *fakeMilestones
	charities  *fakeCharities
	campaigns  *fakeCampaigns
	users      *fakeUsers

	owner    ulid.ULID
	donor    ulid.ULID
	charity  *charity.Charity
	campaign *campaign.Campaign
}

func newFixture(items ...*donation.Donation) *fixture {
	f := &fixture{
		repo:       newFakeRepository(items...),
		ledger:     &fakeLedger{},
		milestones: &fakeMilestones{},
		users:      &fakeUsers{missing: map[ulid.ULID]bool{}},
		owner:      ulid.Make(),
		donor:      ulid.Make(),
	}
	f.charity = &charity.Charity{Id: ulid.Make(), OwnerId: f.owner, VerificationStatus: charity.VerificationApproved}
	f.campaign = &campaign.Campaign{Id: ulid.Make(), CharityId: f.charity.Id, Status: campaign.StatusPublished}
	f.charities = &fakeCharities{items: map[ulid.ULID]*charity.Charity{f.charity.Id: f.charity}}
	f.campaigns = &fakeCampaigns{items: map[ulid.ULID]*campaign.Campaign{f.campaign.Id: f.campaign}}

	f.svc = &donation.Service{
		BaseService: shared.BaseService{UserChecker: shared.NewUserCheckerService(f.users)},
		Repository:  f.repo,
		Ledger:      f.ledger,
		Charities:   f.charities,
		Campaigns:   f.campaigns,
		Milestones:  f.milestones,
		Tx:          inlineTx{},
		Clock:       func() time.Time { return now },
	}
	return f
}

func (f *fixture) managerActor() shared.Actor {
	return shared.Actor{ID: f.owner, Role: shared.RoleCharityAdmin}
}

func (f *fixture) createRequest(amount string) donation.CreateRequest {
	campaignID := f.campaign.Id
	return donation.CreateRequest{
		DonorId:    f.donor,
		CharityId:  f.charity.Id,
		CampaignId: &campaignID,
		Amount:     decimal.RequireFromString(amount),
	}
}

func (f *fixture) seedDonation(status donation.Status) *donation.Donation {
	campaignID := f.campaign.Id
	d := &donation.Donation{
		Id:         ulid.Make(),
		DonorId:    f.donor,
		CharityId:  f.charity.Id,
		CampaignId: &campaignID,
		Amount:     decimal.RequireFromString("25.00"),
		Status:     status,
		CreatedAt:  now.Add(-time.Hour),
		UpdatedAt:  now.Add(-time.Hour),
	}
	f.repo.items[d.Id] = d.Clone()
	return d
}

func TestCreateDonation(t *testing.T) {
	t.Run("pendente nao avalia marcos", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.CreateDonation(context.Background(), f.createRequest("10.555"))
		require.NoError(t, err)

		assert.Equal(t, donation.StatusPending, created.Status)
		assert.Equal(t, "10.56", created.Amount.StringFixed(2))
		require.Len(t, f.ledger.calls, 1)
		assert.Nil(t, f.ledger.calls[0].before)
		assert.Empty(t, f.milestones.evaluated)
	})

	t.Run("concluida avalia marcos", func(t *testing.T) {
		f := newFixture()
		req := f.createRequest("10")
		req.Status = donation.StatusCompleted

		created, err := f.svc.CreateDonation(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, created.CompletedAt)
		assert.Equal(t, []ulid.ULID{f.donor}, f.milestones.evaluated)
	})

	tests := []struct {
		name    string
		mutate  func(f *fixture, req *donation.CreateRequest)
		wantErr *appErrors.AppError
	}{
		{
			name:    "valor zero",
			mutate:  func(_ *fixture, req *donation.CreateRequest) { req.Amount = decimal.Zero },
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "valor abaixo de um centavo",
			mutate:  func(_ *fixture, req *donation.CreateRequest) { req.Amount = decimal.RequireFromString("0.004") },
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "status reembolsado na criacao",
			mutate:  func(_ *fixture, req *donation.CreateRequest) { req.Status = donation.StatusRefunded },
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "doador inexistente",
			mutate:  func(f *fixture, req *donation.CreateRequest) { f.users.missing[req.DonorId] = true },
			wantErr: appErrors.ErrDonorNotFound,
		},
		{
			name:    "instituicao pendente de aprovacao",
			mutate:  func(f *fixture, _ *donation.CreateRequest) { f.charity.VerificationStatus = charity.VerificationPending },
			wantErr: appErrors.ErrCharityNotApproved,
		},
		{
			name:    "campanha encerrada",
			mutate:  func(f *fixture, _ *donation.CreateRequest) { f.campaign.Status = campaign.StatusClosed },
			wantErr: appErrors.ErrCampaignNotOpen,
		},
		{
			name: "campanha de outra instituicao",
			mutate: func(f *fixture, _ *donation.CreateRequest) {
				f.campaign.CharityId = ulid.Make()
			},
			wantErr: appErrors.ErrValidation,
		},
		{
			name: "recorrencia com frequencia invalida",
			mutate: func(_ *fixture, req *donation.CreateRequest) {
				req.Recurring = &donation.RecurringRequest{Frequency: "daily"}
			},
			wantErr: appErrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := f.createRequest("10")
			tt.mutate(f, &req)

			_, err := f.svc.CreateDonation(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.ledger.calls)
			assert.Empty(t, f.repo.items)
		})
	}
}

func TestCreateRecurringDonation(t *testing.T) {
	f := newFixture()
	req := f.createRequest("30")
	start := time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)
	req.Recurring = &donation.RecurringRequest{Frequency: shared.FrequencyMonthly, StartDate: &start}

	created, err := f.svc.CreateDonation(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, created.IsRecurringTemplate())
	require.NotNil(t, created.NextChargeDate)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *created.NextChargeDate)
}

func TestDonationTransitions(t *testing.T) {
	tests := []struct {
		name        string
		from        donation.Status
		apply       func(f *fixture, id ulid.ULID) (*donation.Donation, error)
		wantStatus  donation.Status
		wantErr     *appErrors.AppError
		wantLedger  bool
		wantEvalued bool
	}{
		{
			name: "confirmar pendente",
			from: donation.StatusPending,
			apply: func(f *fixture, id ulid.ULID) (*donation.Donation, error) {
				return f.svc.ConfirmDonation(context.Background(), id, f.managerActor())
			},
			wantStatus:  donation.StatusCompleted,
			wantLedger:  true,
			wantEvalued: true,
		},
		{
			name: "rejeitar pendente",
			from: donation.StatusPending,
			apply: func(f *fixture, id ulid.ULID) (*donation.Donation, error) {
				return f.svc.RejectDonation(context.Background(), id, f.managerActor(), " cartao recusado ")
			},
			wantStatus: donation.StatusRejected,
			wantLedger: true,
		},
		{
			name: "estornar concluida",
			from: donation.StatusCompleted,
			apply: func(f *fixture, id ulid.ULID) (*donation.Donation, error) {
				return f.svc.RefundDonation(context.Background(), id, f.managerActor(), "pedido do doador")
			},
			wantStatus:  donation.StatusRefunded,
			wantLedger:  true,
			wantEvalued: true,
		},
		{
			name: "confirmar rejeitada",
			from: donation.StatusRejected,
			apply: func(f *fixture, id ulid.ULID) (*donation.Donation, error) {
				return f.svc.ConfirmDonation(context.Background(), id, f.managerActor())
			},
			wantErr: appErrors.ErrInvalidStatusTransition,
		},
		{
			name: "estornar pendente",
			from: donation.StatusPending,
			apply: func(f *fixture, id ulid.ULID) (*donation.Donation, error) {
				return f.svc.RefundDonation(context.Background(), id, f.managerActor(), "")
			},
			wantErr: appErrors.ErrInvalidStatusTransition,
		},
		{
			name: "confirmar concluida novamente",
			from: donation.StatusCompleted,
			apply: func(f *fixture, id ulid.ULID) (*donation.Donation, error) {
				return f.svc.ConfirmDonation(context.Background(), id, f.managerActor())
			},
			wantErr: appErrors.ErrInvalidStatusTransition,
		},
		{
			name: "usuario que nao administra a instituicao",
			from: donation.StatusPending,
			apply: func(f *fixture, id ulid.ULID) (*donation.Donation, error) {
				return f.svc.ConfirmDonation(context.Background(), id, shared.Actor{ID: ulid.Make(), Role: shared.RoleCharityAdmin})
			},
			wantErr: appErrors.ErrResourceNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			seeded := f.seedDonation(tt.from)

			got, err := tt.apply(f, seeded.Id)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.ledger.calls)
				assert.Equal(t, tt.from, f.repo.items[seeded.Id].Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantStatus, f.repo.items[seeded.Id].Status)

			if tt.wantLedger {
				require.Len(t, f.ledger.calls, 1)
				assert.Equal(t, tt.from, f.ledger.calls[0].before.Status)
				assert.Equal(t, tt.wantStatus, f.ledger.calls[0].after.Status)
			}
			assert.Equal(t, tt.wantEvalued, len(f.milestones.evaluated) == 1)
		})
	}
}

func TestRefundMarksDonation(t *testing.T) {
	f := newFixture()
	seeded := f.seedDonation(donation.StatusCompleted)

	got, err := f.svc.RefundDonation(context.Background(), seeded.Id, f.managerActor(), "duplicada")
	require.NoError(t, err)

	assert.True(t, got.IsRefunded)
	require.NotNil(t, got.RefundedAt)
	assert.Equal(t, now, *got.RefundedAt)
	assert.Equal(t, "duplicada", got.RejectionReason)
	assert.False(t, got.IsCounted())
}

func TestTransitionFailsOnLedgerError(t *testing.T) {
	f := newFixture()
	seeded := f.seedDonation(donation.StatusPending)
	f.ledger.err = appErrors.NewDatabaseError(errors.New("deadlock"))

	_, err := f.svc.ConfirmDonation(context.Background(), seeded.Id, f.managerActor())
	assert.ErrorIs(t, err, appErrors.ErrDatabase)
	assert.Empty(t, f.milestones.evaluated)
}

func TestUpdateDonation(t *testing.T) {
	t.Run("altera pendente do proprio doador", func(t *testing.T) {
		f := newFixture()
		seeded := f.seedDonation(donation.StatusPending)
		amount := decimal.RequireFromString("99.90")
		msg := "  força!  "

		got, err := f.svc.UpdateDonation(context.Background(), seeded.Id, f.donor, donation.UpdateRequest{Amount: &amount, Message: &msg})
		require.NoError(t, err)
		assert.True(t, amount.Equal(got.Amount))
		assert.Equal(t, "força!", got.Message)
	})

	t.Run("concluida nao pode ser editada", func(t *testing.T) {
		f := newFixture()
		seeded := f.seedDonation(donation.StatusCompleted)
		amount := decimal.RequireFromString("1")

		_, err := f.svc.UpdateDonation(context.Background(), seeded.Id, f.donor, donation.UpdateRequest{Amount: &amount})
		assert.ErrorIs(t, err, appErrors.ErrDonationNotEditable)
	})

	t.Run("doacao de outro doador", func(t *testing.T) {
		f := newFixture()
		seeded := f.seedDonation(donation.StatusPending)

		_, err := f.svc.UpdateDonation(context.Background(), seeded.Id, ulid.Make(), donation.UpdateRequest{})
		assert.ErrorIs(t, err, appErrors.ErrResourceNotOwned)
	})

	t.Run("valor abaixo de um centavo", func(t *testing.T) {
		f := newFixture()
		seeded := f.seedDonation(donation.StatusPending)
		amount := decimal.RequireFromString("0.004")

		_, err := f.svc.UpdateDonation(context.Background(), seeded.Id, f.donor, donation.UpdateRequest{Amount: &amount})
		assert.ErrorIs(t, err, appErrors.ErrValidation)
		assert.True(t, seeded.Amount.Equal(f.repo.items[seeded.Id].Amount))
		assert.Empty(t, f.ledger.calls)
	})

	t.Run("confirmada apos a leitura", func(t *testing.T) {
		f := newFixture()
		seeded := f.seedDonation(donation.StatusPending)
		f.repo.afterLock = func(d *donation.Donation) { d.Status = donation.StatusCompleted }
		amount := decimal.RequireFromString("80")

		_, err := f.svc.UpdateDonation(context.Background(), seeded.Id, f.donor, donation.UpdateRequest{Amount: &amount})
		assert.ErrorIs(t, err, appErrors.ErrInvalidStatusTransition)
		assert.True(t, seeded.Amount.Equal(f.repo.items[seeded.Id].Amount))
		assert.Empty(t, f.ledger.calls)
	})
}

func TestConcurrentConfirmCountsOnce(t *testing.T) {
	f := newFixture()
	seeded := f.seedDonation(donation.StatusPending)
	// outra requisicao confirma a doacao entre a leitura e a escrita
	f.repo.afterLock = func(d *donation.Donation) {
		confirmed := now.Add(-time.Minute)
		d.Status = donation.StatusCompleted
		d.CompletedAt = &confirmed
	}

	_, err := f.svc.ConfirmDonation(context.Background(), seeded.Id, f.managerActor())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStatusTransition)
	assert.Empty(t, f.ledger.calls, "o total nao pode ser somado duas vezes")
	assert.Empty(t, f.milestones.evaluated)

	stored := f.repo.items[seeded.Id]
	assert.Equal(t, donation.StatusCompleted, stored.Status)
	assert.Equal(t, now.Add(-time.Minute), *stored.CompletedAt)
}

func TestConcurrentRefundAppliesOnce(t *testing.T) {
	f := newFixture()
	seeded := f.seedDonation(donation.StatusCompleted)
	f.repo.afterLock = func(d *donation.Donation) { d.Status = donation.StatusRefunded; d.IsRefunded = true }

	_, err := f.svc.RefundDonation(context.Background(), seeded.Id, f.managerActor(), "duplicada")
	assert.ErrorIs(t, err, appErrors.ErrInvalidStatusTransition)
	assert.Empty(t, f.ledger.calls)
}

func TestDeleteDonation(t *testing.T) {
	f := newFixture()
	seeded := f.seedDonation(donation.StatusCompleted)

	require.NoError(t, f.svc.DeleteDonation(context.Background(), seeded.Id, f.managerActor()))

	assert.NotContains(t, f.repo.items, seeded.Id)
	require.Len(t, f.ledger.calls, 1)
	assert.NotNil(t, f.ledger.calls[0].before)
	assert.Nil(t, f.ledger.calls[0].after)
	assert.Equal(t, []ulid.ULID{f.donor}, f.milestones.evaluated)
}

func TestGetDonationVisibility(t *testing.T) {
	f := newFixture()
	seeded := f.seedDonation(donation.StatusPending)

	_, err := f.svc.GetDonation(context.Background(), seeded.Id, shared.Actor{ID: f.donor, Role: shared.RoleDonor})
	assert.NoError(t, err)

	_, err = f.svc.GetDonation(context.Background(), seeded.Id, f.managerActor())
	assert.NoError(t, err)

	_, err = f.svc.GetDonation(context.Background(), seeded.Id, shared.Actor{ID: ulid.Make(), Role: shared.RoleDonor})
	assert.ErrorIs(t, err, appErrors.ErrResourceNotOwned)
}

func TestCancelRecurring(t *testing.T) {
	f := newFixture()
	next := now.AddDate(0, 1, 0)
	template := f.seedDonation(donation.StatusCompleted)
	template.IsRecurring = true
	template.RecurringFrequency = shared.FrequencyMonthly
	template.NextChargeDate = &next
	f.repo.items[template.Id] = template.Clone()

	got, err := f.svc.CancelRecurring(context.Background(), template.Id, f.donor)
	require.NoError(t, err)
	assert.Nil(t, got.NextChargeDate)
	assert.Nil(t, f.repo.items[template.Id].NextChargeDate)

	plain := f.seedDonation(donation.StatusPending)
	_, err = f.svc.CancelRecurring(context.Background(), plain.Id, f.donor)
	assert.ErrorIs(t, err, appErrors.ErrNotRecurring)
}

func TestCancelRecurringKeepsReviewColumns(t *testing.T) {
	f := newFixture()
	next := now.AddDate(0, 1, 0)
	template := f.seedDonation(donation.StatusPending)
	template.IsRecurring = true
	template.RecurringFrequency = shared.FrequencyMonthly
	template.NextChargeDate = &next
	f.repo.items[template.Id] = template.Clone()

	// a instituicao confirma o modelo enquanto o doador cancela
	confirmed := now.Add(-time.Minute)
	f.repo.afterLock = func(d *donation.Donation) {
		d.Status = donation.StatusCompleted
		d.CompletedAt = &confirmed
	}

	_, err := f.svc.CancelRecurring(context.Background(), template.Id, f.donor)
	require.NoError(t, err)

	stored := f.repo.items[template.Id]
	assert.Nil(t, stored.NextChargeDate)
	assert.Equal(t, donation.StatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, confirmed, *stored.CompletedAt)
}
