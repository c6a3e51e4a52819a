package main

import (
	"context"
	"time"

	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/ledger"
	"Kindfund/internal/domain/milestone"
	appfx "Kindfund/internal/fx"
	"Kindfund/internal/scheduler"

	"go.uber.org/fx"
)

// services e o que os comandos precisam do container.
type services struct {
	Ledger     *ledger.Service
	Campaigns  *campaign.Service
	Donations  *donation.Service
	Milestones *milestone.Service
	Scheduler  *scheduler.Scheduler
}

// withServices monta o container sem servidor nem jobs agendados, executa fn
// e encerra as conexoes.
func withServices(ctx context.Context, fn func(ctx context.Context, s *services) error) error {
	var s services
	app := fx.New(
		appfx.CoreModule,
		fx.NopLogger,
		fx.Populate(&s.Ledger, &s.Campaigns, &s.Donations, &s.Milestones, &s.Scheduler),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, &s)
}
