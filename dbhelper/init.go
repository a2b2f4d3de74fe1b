package dbhelper

import (
	"errors"
	"fmt"
	"os"
	"time"

	"myootd/config"
	"myootd/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, errors.New("database is not configured: DB_NAME is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)

	if err := Migrate(db, &models.ClothingItem{}); err != nil {
		return nil, err
	}
	return db, nil
}

// SetupTestDB connects to the local test database. Tests skip when it is
// not reachable.
func SetupTestDB() (*gorm.DB, error) {
	return SetupDB(config.DBConfig{
		Username: getEnv("TEST_DB_USERNAME", "myootd"),
		Password: getEnv("TEST_DB_PASSWORD", "myootd"),
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnv("TEST_DB_PORT", "5432"),
		Name:     getEnv("TEST_DB_NAME", "myootd_test"),
	})
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
