package infrastructure

import (
	"Kindfund/config"
	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/donor"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDb(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.App.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	if err != nil {
		logger.Error().
			Err(err).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.DBName).
			Msg("Falha ao conectar ao banco de dados")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error().Err(err).Msg("Falha ao obter instância do banco de dados")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("Conexão com banco de dados estabelecida com sucesso")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

type migration struct {
	name   string
	entity interface{}
}

var migrations = []migration{
	{name: "Donor", entity: &donor.Donor{}},
	{name: "Charity", entity: &charity.Charity{}},
	{name: "Campaign", entity: &campaign.Campaign{}},
	{name: "Donation", entity: &donation.Donation{}},
	{name: "DonorMilestone", entity: &milestone.DonorMilestone{}},
}

func Migrate(db *gorm.DB) error {
	logger.Info().Msg("Executando migrations...")

	for _, m := range migrations {
		if err := db.AutoMigrate(m.entity); err != nil {
			logger.Error().
				Err(err).
				Str("entity", m.name).
				Msg("Erro ao migrar entidade")
			return err
		}
	}

	logger.Info().Msg("Migrations executadas com sucesso!")
	return nil
}
