package infra

import (
	"fmt"

	"github.com/AssembleOrg/mistica-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	// gen_random_uuid() needs pgcrypto on Postgres < 13.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return nil, fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Product{},
		&model.Client{},
		&model.Prepaid{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Egress{},
		&model.Employee{},
		&model.User{},
		&model.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}
