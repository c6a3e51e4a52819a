package fx

import (
	"context"

	"Kindfund/config"
	"Kindfund/internal/domain/shared"
	"Kindfund/internal/infrastructure"
	"Kindfund/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newRedisClient,
		newTxManager,
		newDonorRepository,
		newCharityRepository,
		newCampaignRepository,
		newDonationRepository,
		newLedgerRepository,
		newMilestoneRepository,
		newDashboardRepository,
	),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infrastructure.NewDb(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newRedisClient(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	client, err := infrastructure.NewRedisClient(cfg)
	if err != nil || client == nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Fechando conexão com redis")
			return client.Close()
		},
	})
	return client, nil
}

func newTxManager(db *gorm.DB) shared.TxManager {
	return infrastructure.NewTxManager(db)
}

func newDonorRepository(db *gorm.DB) *infrastructure.DonorRepository {
	return &infrastructure.DonorRepository{DB: db}
}

func newCharityRepository(db *gorm.DB) *infrastructure.CharityRepository {
	return &infrastructure.CharityRepository{DB: db}
}

func newCampaignRepository(db *gorm.DB) *infrastructure.CampaignRepository {
	return &infrastructure.CampaignRepository{DB: db}
}

func newDonationRepository(db *gorm.DB) *infrastructure.DonationRepository {
	return &infrastructure.DonationRepository{DB: db}
}

func newLedgerRepository(db *gorm.DB) *infrastructure.LedgerRepository {
	return &infrastructure.LedgerRepository{DB: db}
}

func newMilestoneRepository(db *gorm.DB) *infrastructure.MilestoneRepository {
	return &infrastructure.MilestoneRepository{DB: db}
}

func newDashboardRepository(db *gorm.DB) *infrastructure.DashboardRepository {
	return &infrastructure.DashboardRepository{DB: db}
}
