package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerExclusive(t *testing.T) {
	locker := scheduler.NewMemoryLocker()
	ctx := context.Background()

	release, ok, err := locker.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "segundo acquire deveria falhar enquanto o lock esta ativo")

	_, ok, err = locker.Acquire(ctx, "outro-job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "jobs diferentes nao compartilham lock")

	require.NoError(t, release(ctx))

	_, ok, err = locker.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLockerExpires(t *testing.T) {
	locker := scheduler.NewMemoryLocker()
	ctx := context.Background()

	_, ok, err := locker.Acquire(ctx, "job", time.Nanosecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(time.Millisecond)

	_, ok, err = locker.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock expirado deve poder ser readquirido")
}

func TestWithLockRejectsOverlap(t *testing.T) {
	s := scheduler.New(scheduler.NewMemoryLocker(), nil, time.Minute, time.Minute)
	ctx := context.Background()

	var inner error
	err := s.WithLock(ctx, scheduler.JobRefreshDonorMilestones, func(ctx context.Context) error {
		inner = s.WithLock(ctx, scheduler.JobRefreshDonorMilestones, func(context.Context) error {
			t.Fatal("execucao concorrente nao deveria rodar")
			return nil
		})
		return nil
	})
	require.NoError(t, err)

	appErr, ok := appErrors.AsAppError(inner)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrJobLocked.Code, appErr.Code)
}

func TestWithLockPropagatesErrorAndReleases(t *testing.T) {
	s := scheduler.New(scheduler.NewMemoryLocker(), nil, time.Minute, time.Second)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithLock(ctx, "job", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "job deve rodar com timeout")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var runs int32
	err = s.WithLock(ctx, "job", func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestRegisterRejectsInvalidSpec(t *testing.T) {
	s := scheduler.New(scheduler.NewMemoryLocker(), nil, time.Minute, time.Minute)

	err := s.Register(scheduler.Job{Name: "x", Spec: "not a cron", Run: func(context.Context) error { return nil }})
	assert.Error(t, err)

	err = s.Register(scheduler.Job{Name: "y", Run: func(context.Context) error { return nil }})
	assert.Error(t, err)

	err = s.Register(scheduler.Job{Name: "z", Spec: "5 0 * * *", Run: func(context.Context) error { return nil }})
	assert.NoError(t, err)
}
