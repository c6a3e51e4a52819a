package campaign_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
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
	items    map[ulid.ULID]*campaign.Campaign
	counted  map[ulid.ULID]int64
	detached []ulid.ULID
	createFn func(c *campaign.Campaign) error
	// afterList roda depois da listagem de modelos vencidos
	afterList func(due []*campaign.Campaign)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		items:   map[ulid.ULID]*campaign.Campaign{},
		counted: map[ulid.ULID]int64{},
	}
}

func (f *fakeRepository) Create(_ context.Context, c *campaign.Campaign) error {
	if f.createFn != nil {
		if err := f.createFn(c); err != nil {
			return err
		}
	}
	clone := *c
	f.items[c.Id] = &clone
	return nil
}

// UpdateFields aplica apenas as colunas que o servico altera.
func (f *fakeRepository) UpdateFields(_ context.Context, id ulid.ULID, fields map[string]interface{}) error {
	c, ok := f.items[id]
	if !ok {
		return appErrors.ErrCampaignNotFound
	}
	for column, value := range fields {
		switch column {
		case "title":
			c.Title = value.(string)
		case "description":
			c.Description = value.(string)
		case "goal_amount":
			c.GoalAmount = value.(decimal.Decimal)
		case "status":
			c.Status = value.(campaign.Status)
		case "occurrence_number":
			c.OccurrenceNumber = value.(int)
		case "next_occurrence_date":
			if value == nil {
				c.NextOccurrenceDate = nil
				continue
			}
			switch v := value.(type) {
			case time.Time:
				c.NextOccurrenceDate = &v
			case *time.Time:
				c.NextOccurrenceDate = v
			}
		case "is_recurring":
			c.IsRecurring = value.(bool)
		case "recurrence_type":
			c.RecurrenceType = value.(shared.Frequency)
		case "recurrence_interval":
			c.RecurrenceInterval = value.(int)
		case "recurrence_start_date":
			c.RecurrenceStartDate = value.(*time.Time)
		case "recurrence_end_date":
			c.RecurrenceEndDate = value.(*time.Time)
		case "auto_publish":
			c.AutoPublish = value.(bool)
		}
	}
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id ulid.ULID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id ulid.ULID) (*campaign.Campaign, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, appErrors.ErrCampaignNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeRepository) List(_ context.Context, _ *campaign.Filters, _ *pkg.PaginationParams) ([]*campaign.Campaign, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepository) ListDueRecurring(_ context.Context, at time.Time, after *ulid.ULID, limit int) ([]*campaign.Campaign, error) {
	var out []*campaign.Campaign
	for _, c := range f.items {
		if !c.IsRecurringParent() || c.NextOccurrenceDate == nil || c.NextOccurrenceDate.After(at) || c.Status == campaign.StatusArchived {
			continue
		}
		if after != nil && c.Id.Compare(*after) <= 0 {
			continue
		}
		clone := *c
		out = append(out, &clone)
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

func (f *fakeRepository) CountCountedDonations(_ context.Context, id ulid.ULID) (int64, error) {
	return f.counted[id], nil
}

func (f *fakeRepository) DetachDonations(_ context.Context, id ulid.ULID) error {
	f.detached = append(f.detached, id)
	return nil
}

func (f *fakeRepository) children(parent ulid.ULID) []*campaign.Campaign {
	var out []*campaign.Campaign
	for _, c := range f.items {
		if c.ParentCampaignId != nil && *c.ParentCampaignId == parent {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurrenceNumber < out[j].OccurrenceNumber })
	return out
}

type fakeCharities struct {
	items map[ulid.ULID]*charity.Charity
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

type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc     *campaign.Service
	repo    *fakeRepository
	charity *charity.Charity
	manager shared.Actor
}

func newFixture() *fixture {
	owner := ulid.Make()
	c := &charity.Charity{Id: ulid.Make(), OwnerId: owner, VerificationStatus: charity.VerificationApproved}
	repo := newFakeRepository()
	return &fixture{
		repo:    repo,
		charity: c,
		manager: shared.Actor{ID: owner, Role: shared.RoleCharityAdmin},
		svc: &campaign.Service{
			Repository: repo,
			Charities:  &fakeCharities{items: map[ulid.ULID]*charity.Charity{c.Id: c}},
			Tx:         inlineTx{},
			Clock:      func() time.Time { return now },
		},
	}
}

func (f *fixture) seed(status campaign.Status) *campaign.Campaign {
	end := now.AddDate(0, 1, 0)
	c := &campaign.Campaign{
		Id:                 ulid.Make(),
		CharityId:          f.charity.Id,
		Title:              "Inverno solidario",
		GoalAmount:         decimal.NewFromInt(1000),
		Status:             status,
		StartDate:          now.AddDate(0, -1, 0),
		EndDate:            &end,
		RecurrenceInterval: 1,
	}
	f.repo.items[c.Id] = c
	return c
}

func (f *fixture) seedRecurring(next time.Time, autoPublish bool) *campaign.Campaign {
	c := f.seed(campaign.StatusPublished)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	recurrenceStart := next.AddDate(0, -1, 0)
	c.StartDate = start
	c.EndDate = &end
	c.IsRecurring = true
	c.RecurrenceType = shared.FrequencyMonthly
	c.RecurrenceStartDate = &recurrenceStart
	c.NextOccurrenceDate = &next
	c.AutoPublish = autoPublish
	return c
}

func TestCreateCampaign(t *testing.T) {
	t.Run("cria rascunho com recorrencia", func(t *testing.T) {
		f := newFixture()
		start := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

		created, err := f.svc.CreateCampaign(context.Background(), f.manager, campaign.CreateRequest{
			CharityId:  f.charity.Id,
			Title:      "  Cestas basicas  ",
			GoalAmount: decimal.RequireFromString("500.555"),
			Recurrence: &campaign.RecurrenceRequest{
				Type:      shared.FrequencyMonthly,
				Interval:  1,
				StartDate: &start,
			},
		})
		require.NoError(t, err)

		assert.Equal(t, campaign.StatusDraft, created.Status)
		assert.Equal(t, "Cestas basicas", created.Title)
		assert.Equal(t, "500.56", created.GoalAmount.StringFixed(2))
		assert.True(t, created.IsRecurringParent())
		require.NotNil(t, created.NextOccurrenceDate)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *created.NextOccurrenceDate)
		assert.Contains(t, f.repo.items, created.Id)
	})

	tests := []struct {
		name    string
		mutate  func(f *fixture, req *campaign.CreateRequest, actor *shared.Actor)
		wantErr error
	}{
		{
			name:    "titulo vazio",
			mutate:  func(_ *fixture, req *campaign.CreateRequest, _ *shared.Actor) { req.Title = "   " },
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "meta zero",
			mutate:  func(_ *fixture, req *campaign.CreateRequest, _ *shared.Actor) { req.GoalAmount = decimal.Zero },
			wantErr: appErrors.ErrValidation,
		},
		{
			name: "meta abaixo de um centavo",
			mutate: func(_ *fixture, req *campaign.CreateRequest, _ *shared.Actor) {
				req.GoalAmount = decimal.RequireFromString("0.004")
			},
			wantErr: appErrors.ErrValidation,
		},
		{
			name: "termino antes do inicio",
			mutate: func(_ *fixture, req *campaign.CreateRequest, _ *shared.Actor) {
				start := now.AddDate(0, 0, 10)
				end := now
				req.StartDate, req.EndDate = &start, &end
			},
			wantErr: appErrors.ErrValidation,
		},
		{
			name: "recorrencia sem inicio",
			mutate: func(_ *fixture, req *campaign.CreateRequest, _ *shared.Actor) {
				req.Recurrence = &campaign.RecurrenceRequest{Type: shared.FrequencyWeekly, Interval: 1}
			},
			wantErr: appErrors.ErrValidation,
		},
		{
			name:    "usuario que nao gerencia a instituicao",
			mutate:  func(_ *fixture, _ *campaign.CreateRequest, actor *shared.Actor) { actor.ID = ulid.Make() },
			wantErr: appErrors.ErrResourceNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := campaign.CreateRequest{CharityId: f.charity.Id, Title: "Campanha", GoalAmount: decimal.NewFromInt(100)}
			actor := f.manager
			tt.mutate(f, &req, &actor)

			_, err := f.svc.CreateCampaign(context.Background(), actor, req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.repo.items)
		})
	}
}

func TestCampaignStatusTransitions(t *testing.T) {
	t.Run("publica rascunho", func(t *testing.T) {
		f := newFixture()
		c := f.seed(campaign.StatusDraft)

		got, err := f.svc.PublishCampaign(context.Background(), c.Id, f.manager)
		require.NoError(t, err)
		assert.Equal(t, campaign.StatusPublished, got.Status)
	})

	t.Run("instituicao nao aprovada nao publica", func(t *testing.T) {
		f := newFixture()
		f.charity.VerificationStatus = charity.VerificationPending
		c := f.seed(campaign.StatusDraft)

		_, err := f.svc.PublishCampaign(context.Background(), c.Id, f.manager)
		assert.ErrorIs(t, err, appErrors.ErrCharityNotApproved)
	})

	t.Run("reabre campanha fechada", func(t *testing.T) {
		f := newFixture()
		c := f.seed(campaign.StatusClosed)

		got, err := f.svc.PublishCampaign(context.Background(), c.Id, f.manager)
		require.NoError(t, err)
		assert.Equal(t, campaign.StatusPublished, got.Status)
	})

	t.Run("fechar rascunho e invalido", func(t *testing.T) {
		f := newFixture()
		c := f.seed(campaign.StatusDraft)

		_, err := f.svc.CloseCampaign(context.Background(), c.Id, f.manager)
		assert.ErrorIs(t, err, appErrors.ErrInvalidStatusTransition)
	})

	t.Run("arquivada nao pode ser editada", func(t *testing.T) {
		f := newFixture()
		c := f.seed(campaign.StatusPublished)

		_, err := f.svc.ArchiveCampaign(context.Background(), c.Id, f.manager)
		require.NoError(t, err)

		title := "Novo titulo"
		_, err = f.svc.UpdateCampaign(context.Background(), c.Id, f.manager, campaign.UpdateRequest{Title: &title})
		assert.ErrorIs(t, err, appErrors.ErrInvalidStatusTransition)
	})

	t.Run("admin gerencia qualquer campanha", func(t *testing.T) {
		f := newFixture()
		c := f.seed(campaign.StatusPublished)

		got, err := f.svc.CloseCampaign(context.Background(), c.Id, shared.SystemActor)
		require.NoError(t, err)
		assert.Equal(t, campaign.StatusClosed, got.Status)
	})
}

func TestUpdateCampaign(t *testing.T) {
	f := newFixture()
	c := f.seed(campaign.StatusPublished)

	title := " Agasalhos 2024 "
	goal := decimal.RequireFromString("2500")
	got, err := f.svc.UpdateCampaign(context.Background(), c.Id, f.manager, campaign.UpdateRequest{
		Title:      &title,
		GoalAmount: &goal,
	})
	require.NoError(t, err)
	assert.Equal(t, "Agasalhos 2024", got.Title)
	assert.True(t, goal.Equal(got.GoalAmount))

	negative := decimal.NewFromInt(-1)
	_, err = f.svc.UpdateCampaign(context.Background(), c.Id, f.manager, campaign.UpdateRequest{GoalAmount: &negative})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	subCent := decimal.RequireFromString("0.004")
	_, err = f.svc.UpdateCampaign(context.Background(), c.Id, f.manager, campaign.UpdateRequest{GoalAmount: &subCent})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.True(t, goal.Equal(f.repo.items[c.Id].GoalAmount))
}

func TestUpdateCampaignRecurrenceKeepsSchedule(t *testing.T) {
	july := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	rolled := func(f *fixture) *campaign.Campaign {
		parent := f.seedRecurring(july, false)
		parent.OccurrenceNumber = 5
		return parent
	}

	t.Run("mudar so a auto publicacao mantem a proxima data", func(t *testing.T) {
		f := newFixture()
		parent := rolled(f)

		got, err := f.svc.UpdateCampaign(context.Background(), parent.Id, f.manager, campaign.UpdateRequest{
			Recurrence: &campaign.RecurrenceRequest{
				Type:        shared.FrequencyMonthly,
				Interval:    1,
				StartDate:   parent.RecurrenceStartDate,
				AutoPublish: true,
			},
		})
		require.NoError(t, err)
		assert.True(t, got.AutoPublish)
		require.NotNil(t, got.NextOccurrenceDate)
		assert.Equal(t, july, *got.NextOccurrenceDate)
		assert.Equal(t, 5, got.OccurrenceNumber)

		result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Empty(t, f.repo.children(parent.Id))
	})

	t.Run("nova agenda continua depois de hoje", func(t *testing.T) {
		f := newFixture()
		parent := rolled(f)

		got, err := f.svc.UpdateCampaign(context.Background(), parent.Id, f.manager, campaign.UpdateRequest{
			Recurrence: &campaign.RecurrenceRequest{
				Type:      shared.FrequencyMonthly,
				Interval:  2,
				StartDate: parent.RecurrenceStartDate,
			},
		})
		require.NoError(t, err)
		require.NotNil(t, got.NextOccurrenceDate)
		assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), *got.NextOccurrenceDate)

		result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
	})
}

func TestProcessRecurringCampaignsKeepsDayOfMonth(t *testing.T) {
	f := newFixture()
	parent := f.seedRecurring(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), true)
	anchor := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	parent.RecurrenceStartDate = &anchor

	_, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
	require.NoError(t, err)

	var starts []string
	for _, child := range f.repo.children(parent.Id) {
		starts = append(starts, child.StartDate.Format("2006-01-02"))
	}
	sort.Strings(starts)
	assert.Equal(t, []string{"2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31"}, starts)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), *f.repo.items[parent.Id].NextOccurrenceDate)
}

func TestProcessRecurringCampaignsSkipsArchivedAfterListing(t *testing.T) {
	f := newFixture()
	parent := f.seedRecurring(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true)
	f.repo.afterList = func(listed []*campaign.Campaign) {
		for _, c := range listed {
			f.repo.items[c.Id].Status = campaign.StatusArchived
		}
	}

	result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Empty(t, f.repo.children(parent.Id))
	assert.Equal(t, campaign.StatusArchived, f.repo.items[parent.Id].Status)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *f.repo.items[parent.Id].NextOccurrenceDate)
}

func TestDeleteCampaign(t *testing.T) {
	t.Run("com doacoes contabilizadas e recusada", func(t *testing.T) {
		f := newFixture()
		c := f.seed(campaign.StatusPublished)
		f.repo.counted[c.Id] = 3

		err := f.svc.DeleteCampaign(context.Background(), c.Id, f.manager)
		assert.ErrorIs(t, err, appErrors.ErrCampaignHasDonations)
		assert.Contains(t, f.repo.items, c.Id)
		assert.Empty(t, f.repo.detached)
	})

	t.Run("sem doacoes contabilizadas desvincula e remove", func(t *testing.T) {
		f := newFixture()
		c := f.seed(campaign.StatusDraft)

		require.NoError(t, f.svc.DeleteCampaign(context.Background(), c.Id, f.manager))
		assert.NotContains(t, f.repo.items, c.Id)
		assert.Equal(t, []ulid.ULID{c.Id}, f.repo.detached)
	})
}

func TestGetProgress(t *testing.T) {
	f := newFixture()
	c := f.seed(campaign.StatusPublished)
	c.TotalDonationsReceived = decimal.RequireFromString("1250")
	c.DonorsCount = 7

	p, err := f.svc.GetProgress(context.Background(), c.Id)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Percentage)
	assert.True(t, p.Remaining.IsZero())
	assert.True(t, p.GoalReached)
	assert.Equal(t, int64(7), p.DonorsCount)
}

func TestProcessRecurringCampaigns(t *testing.T) {
	t.Run("gera ocorrencia com a duracao do modelo", func(t *testing.T) {
		f := newFixture()
		parent := f.seedRecurring(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true)

		result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, &campaign.ProcessResult{Scanned: 1, Created: 1}, result)

		children := f.repo.children(parent.Id)
		require.Len(t, children, 1)
		child := children[0]
		assert.Equal(t, campaign.StatusPublished, child.Status)
		assert.Equal(t, "Inverno solidario (2024-06-01)", child.Title)
		assert.Equal(t, 1, child.OccurrenceNumber)
		assert.False(t, child.IsRecurring)
		assert.True(t, child.TotalDonationsReceived.IsZero())
		require.NotNil(t, child.EndDate)
		assert.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), *child.EndDate)

		updated := f.repo.items[parent.Id]
		assert.Equal(t, 1, updated.OccurrenceNumber)
		assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), *updated.NextOccurrenceDate)
	})

	t.Run("sem auto publicacao nasce como rascunho", func(t *testing.T) {
		f := newFixture()
		parent := f.seedRecurring(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), false)

		_, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, campaign.StatusDraft, f.repo.children(parent.Id)[0].Status)
	})

	t.Run("segunda execucao nao duplica", func(t *testing.T) {
		f := newFixture()
		parent := f.seedRecurring(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true)

		_, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)
		result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Created)
		assert.Len(t, f.repo.children(parent.Id), 1)
	})

	t.Run("atraso longo gera no maximo o limite", func(t *testing.T) {
		f := newFixture()
		parent := f.seedRecurring(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), true)

		result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, campaign.MaxCatchUpOccurrences, result.Created)
		children := f.repo.children(parent.Id)
		require.Len(t, children, campaign.MaxCatchUpOccurrences)
		assert.Equal(t, campaign.MaxCatchUpOccurrences, children[len(children)-1].OccurrenceNumber)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), *f.repo.items[parent.Id].NextOccurrenceDate)
	})

	t.Run("fim da recorrencia encerra o agendamento", func(t *testing.T) {
		f := newFixture()
		parent := f.seedRecurring(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true)
		end := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
		parent.RecurrenceEndDate = &end

		result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Created)
		assert.Nil(t, f.repo.items[parent.Id].NextOccurrenceDate)
	})

	t.Run("falha em um modelo nao interrompe os demais", func(t *testing.T) {
		f := newFixture()
		broken := f.seedRecurring(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true)
		healthy := f.seedRecurring(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), true)
		f.repo.createFn = func(c *campaign.Campaign) error {
			if c.ParentCampaignId != nil && *c.ParentCampaignId == broken.Id {
				return errors.New("deadlock")
			}
			return nil
		}

		result, err := f.svc.ProcessRecurringCampaigns(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Scanned)
		assert.Equal(t, 1, result.Failed)
		assert.Len(t, f.repo.children(healthy.Id), 1)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *f.repo.items[broken.Id].NextOccurrenceDate)
	})
}
