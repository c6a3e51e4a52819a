package fx

import (
	"context"

	"Kindfund/config"
	"Kindfund/internal/logger"
	"Kindfund/internal/observability"

	"go.uber.org/fx"
)

var ObservabilityModule = fx.Module("observability",
	fx.Provide(
		newMetrics,
	),
)

func newMetrics(lc fx.Lifecycle, cfg *config.Config) (*observability.Metrics, error) {
	provider, err := observability.NewMeterProvider(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := provider.Shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("Falha ao encerrar provider de métricas")
			}
			return nil
		},
	})

	return observability.NewMetrics(provider)
}
