package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/observability"

	"github.com/robfig/cron/v3"
)

const (
	JobProcessRecurringCampaigns = "process-recurring-campaigns"
	JobProcessRecurringDonations = "process-recurring-donations"
	JobRefreshDonorMilestones    = "refresh-donor-milestones"
	JobRecalculateTotals         = "recalculate-campaign-totals"
)

type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	metrics *observability.Metrics
	lockTTL time.Duration
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(locker Locker, metrics *observability.Metrics, lockTTL, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{})),
		),
		locker:  locker,
		metrics: metrics,
		lockTTL: lockTTL,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register agenda o job na expressao cron informada.
func (s *Scheduler) Register(job Job) error {
	if job.Spec == "" {
		return fmt.Errorf("scheduler: job %s sem agenda", job.Name)
	}
	_, err := s.cron.AddFunc(job.Spec, func() {
		err := s.WithLock(s.ctx, job.Name, job.Run)
		if err != nil && !errors.Is(err, appErrors.ErrJobLocked) {
			logger.Error().Err(err).Str("job", job.Name).Msg("Job agendado falhou")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: agenda invalida para %s: %w", job.Name, err)
	}

	logger.Info().Str("job", job.Name).Str("spec", job.Spec).Msg("Job agendado")
	return nil
}

// WithLock executa fn com o lock do job. Retorna ErrJobLocked quando outra
// execucao ja esta em andamento.
func (s *Scheduler) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	release, ok, err := s.locker.Acquire(ctx, name, s.lockTTL)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info().Str("job", name).Msg("Job ja em execucao em outra instancia")
		return appErrors.ErrJobLocked.WithDetail("job", name)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			logger.Warn().Err(err).Str("job", name).Msg("Erro ao liberar lock do job")
		}
	}()

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	logger.Info().Str("job", name).Msg("Job iniciado")

	err = fn(runCtx)
	elapsed := time.Since(started)
	s.metrics.JobFinished(ctx, name, elapsed, err)

	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.Str("job", name).Dur("elapsed", elapsed).Msg("Job finalizado")

	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop para de agendar e espera os jobs em andamento ate o fim do ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
