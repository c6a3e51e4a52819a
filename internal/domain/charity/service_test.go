package charity_test

import (
	"context"
	"testing"
	"time"

	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeRepository struct {
	items map[ulid.ULID]*charity.Charity
}

func (f *fakeRepository) Create(_ context.Context, c *charity.Charity) error {
	clone := *c
	f.items[c.Id] = &clone
	return nil
}

func (f *fakeRepository) UpdateFields(_ context.Context, id ulid.ULID, fields map[string]interface{}) error {
	c, ok := f.items[id]
	if !ok {
		return appErrors.ErrCharityNotFound
	}
	if v, ok := fields["name"].(string); ok {
		c.Name = v
	}
	if v, ok := fields["email"].(string); ok {
		c.Email = v
	}
	if v, ok := fields["verification_status"].(charity.VerificationStatus); ok {
		c.VerificationStatus = v
	}
	if v, ok := fields["rejection_reason"].(string); ok {
		c.RejectionReason = v
	}
	if v, ok := fields["verified_at"].(time.Time); ok {
		c.VerifiedAt = &v
	} else if _, present := fields["verified_at"]; present {
		c.VerifiedAt = nil
	}
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id ulid.ULID) (*charity.Charity, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, appErrors.ErrCharityNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeRepository) List(_ context.Context, _ *charity.Filters, _ *pkg.PaginationParams) ([]*charity.Charity, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepository) GetStats(_ context.Context, id ulid.ULID) (*charity.Stats, error) {
	return &charity.Stats{CharityId: id}, nil
}

type existingUsers struct{}

func (existingUsers) Exists(context.Context, ulid.ULID) error { return nil }

func newService() (*charity.Service, *fakeRepository) {
	repo := &fakeRepository{items: map[ulid.ULID]*charity.Charity{}}
	return &charity.Service{
		BaseService: shared.BaseService{UserChecker: shared.NewUserCheckerService(existingUsers{})},
		Repository:  repo,
		Clock:       func() time.Time { return now },
	}, repo
}

func TestCreateCharity(t *testing.T) {
	svc, repo := newService()
	owner := ulid.Make()

	created, err := svc.CreateCharity(context.Background(), charity.CreateRequest{
		OwnerId: owner,
		Name:    "  Lar   das Criancas ",
		Email:   " Contato@Lar.org ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lar das Criancas", created.Name)
	assert.Equal(t, "contato@lar.org", created.Email)
	assert.Equal(t, charity.VerificationPending, created.VerificationStatus)
	assert.Contains(t, repo.items, created.Id)

	_, err = svc.CreateCharity(context.Background(), charity.CreateRequest{OwnerId: owner, Name: "Lar", Email: "sem-arroba"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReviewCharity(t *testing.T) {
	admin := shared.Actor{ID: ulid.Make(), Role: shared.RoleAdmin}

	t.Run("somente admin aprova", func(t *testing.T) {
		svc, _ := newService()
		owner := shared.Actor{ID: ulid.Make(), Role: shared.RoleCharityAdmin}
		c, err := svc.CreateCharity(context.Background(), charity.CreateRequest{OwnerId: owner.ID, Name: "Lar"})
		require.NoError(t, err)

		_, err = svc.ApproveCharity(context.Background(), c.Id, owner)
		assert.ErrorIs(t, err, appErrors.ErrForbidden)

		approved, err := svc.ApproveCharity(context.Background(), c.Id, admin)
		require.NoError(t, err)
		assert.True(t, approved.IsApproved())
		require.NotNil(t, approved.VerifiedAt)
		assert.Equal(t, now, *approved.VerifiedAt)
	})

	t.Run("rejeicao exige motivo e limpa verificacao", func(t *testing.T) {
		svc, _ := newService()
		c, err := svc.CreateCharity(context.Background(), charity.CreateRequest{OwnerId: ulid.Make(), Name: "Lar"})
		require.NoError(t, err)
		_, err = svc.ApproveCharity(context.Background(), c.Id, admin)
		require.NoError(t, err)

		_, err = svc.RejectCharity(context.Background(), c.Id, admin, "   ")
		assert.ErrorIs(t, err, appErrors.ErrValidation)

		rejected, err := svc.RejectCharity(context.Background(), c.Id, admin, "documentacao vencida")
		require.NoError(t, err)
		assert.Equal(t, charity.VerificationRejected, rejected.VerificationStatus)
		assert.Equal(t, "documentacao vencida", rejected.RejectionReason)
		assert.Nil(t, rejected.VerifiedAt)
	})
}

func TestRequireManager(t *testing.T) {
	svc, _ := newService()
	owner := ulid.Make()
	c, err := svc.CreateCharity(context.Background(), charity.CreateRequest{OwnerId: owner, Name: "Lar"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		actor   shared.Actor
		wantErr error
	}{
		{name: "responsavel", actor: shared.Actor{ID: owner, Role: shared.RoleCharityAdmin}},
		{name: "administrador", actor: shared.Actor{ID: ulid.Make(), Role: shared.RoleAdmin}},
		{name: "outro gestor", actor: shared.Actor{ID: ulid.Make(), Role: shared.RoleCharityAdmin}, wantErr: appErrors.ErrResourceNotOwned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RequireManager(context.Background(), c.Id, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err = svc.RequireManager(context.Background(), ulid.Make(), shared.SystemActor)
	assert.ErrorIs(t, err, appErrors.ErrCharityNotFound)
}
