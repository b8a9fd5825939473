package gormrepo

import (
	"context"
	"fmt"
	"time"

	"nearbyradar/internal/adapter/repo/gorm/migrations"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// OpenAndMigrate opens dsn and brings the schema up to date.
func OpenAndMigrate(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := ApplyMigrations(ctx, db, migrations.FS); err != nil {
		return nil, err
	}
	return db, nil
}
