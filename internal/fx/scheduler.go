package fx

import (
	"context"

	"Kindfund/config"
	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/logger"
	"Kindfund/internal/observability"
	"Kindfund/internal/scheduler"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// SchedulerModule fornece o lock e o agendador. Usado tambem pela CLI,
// que so precisa do lock compartilhado.
var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		newLocker,
		newScheduler,
	),
)

// SchedulerJobsModule registra e inicia os jobs periodicos da API.
var SchedulerJobsModule = fx.Module("scheduler-jobs",
	fx.Invoke(
		registerJobs,
	),
)

func newLocker(client *redis.Client) scheduler.Locker {
	if client == nil {
		logger.Warn().Msg("Redis desabilitado: lock dos jobs vale apenas para este processo")
		return scheduler.NewMemoryLocker()
	}
	return scheduler.NewRedisLocker(client)
}

func newScheduler(cfg *config.Config, locker scheduler.Locker, metrics *observability.Metrics) *scheduler.Scheduler {
	return scheduler.New(locker, metrics, cfg.Scheduler.LockTTL, cfg.Scheduler.JobTimeout)
}

func registerJobs(
	lc fx.Lifecycle,
	cfg *config.Config,
	sched *scheduler.Scheduler,
	campaignSvc *campaign.Service,
	donationSvc *donation.Service,
	milestoneSvc *milestone.Service,
) error {
	if !cfg.Scheduler.Enabled {
		logger.Info().Msg("Agendador desabilitado")
		return nil
	}

	jobs := []scheduler.Job{
		{
			Name: scheduler.JobProcessRecurringCampaigns,
			Spec: cfg.Scheduler.RecurringCampaignsSpec,
			Run: func(ctx context.Context) error {
				_, err := campaignSvc.ProcessRecurringCampaigns(ctx, campaignSvc.Clock.Now())
				return err
			},
		},
		{
			Name: scheduler.JobProcessRecurringDonations,
			Spec: cfg.Scheduler.RecurringDonationsSpec,
			Run: func(ctx context.Context) error {
				_, err := donationSvc.ProcessRecurringDonations(ctx, donationSvc.Clock.Now())
				return err
			},
		},
		{
			Name: scheduler.JobRefreshDonorMilestones,
			Spec: cfg.Scheduler.DonorMilestonesSpec,
			Run: func(ctx context.Context) error {
				_, err := milestoneSvc.RefreshDonorMilestones(ctx, milestone.RefreshOptions{})
				return err
			},
		},
	}

	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			return err
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sched.Stop(ctx)
		},
	})
	return nil
}
