package cli

import (
	"context"
	"fmt"

	"quiz-event/internal/config"
	"quiz-event/internal/repository"
	"quiz-event/internal/repository/memory"
	"quiz-event/internal/repository/postgres"
	"quiz-event/pkg/database"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func databaseConfig(cfg config.Config) database.Config {
	return database.Config{
		URL:      cfg.Postgres.URL,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.Name,
	}
}

func openPostgres(ctx context.Context, cfg config.Config, migrate bool) (*gorm.DB, error) {
	dbConfig := databaseConfig(cfg)
	if !dbConfig.Configured() {
		return nil, fmt.Errorf("postgres not configured")
	}
	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing database")
	}
}

// openStore returns the Postgres store when a database is configured and the
// in-memory store otherwise. The returned func releases resources.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	if !databaseConfig(cfg).Configured() {
		log.Warn().Msg("no database configured, using in-memory store")
		return memory.NewStore(), func() {}, nil
	}
	return openDatabaseStore(ctx, cfg)
}

// openDatabaseStore requires a configured database.
func openDatabaseStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	db, err := openPostgres(ctx, cfg, true)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(db), func() { closeDB(db) }, nil
}
