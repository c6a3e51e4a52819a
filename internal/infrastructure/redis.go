package infrastructure

import (
	"context"
	"time"

	"Kindfund/config"
	"Kindfund/internal/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient conecta ao redis usado pelo lock dos jobs. Devolve nil
// quando o redis esta desabilitado.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Falha ao conectar ao redis")
		_ = client.Close()
		return nil, err
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Conexão com redis estabelecida")
	return client, nil
}
