package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
)

// For Cloud Run with Cloud SQL
const socketDir = "/cloudsql"

// PostgresDSN builds the connection string, preferring the Cloud SQL
// socket when an instance connection name is set
func PostgresDSN(cfg config.DatabaseConfig) string {
	if cfg.InstanceConnectionName != "" {
		return fmt.Sprintf("host=%s/%s user=%s password=%s dbname=%s sslmode=disable",
			socketDir, cfg.InstanceConnectionName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
}

// Connect opens the SQL database for the configured store: PostgreSQL in
// production, a SQLite file for local runs
func Connect(driver string, cfg config.DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var dialector gorm.Dialector
	switch driver {
	case config.StorePostgres:
		if cfg.InstanceConnectionName != "" {
			log.Info("📦 Connecting to Cloud SQL via socket", "instance", cfg.InstanceConnectionName)
		} else {
			log.Info("📦 Connecting to PostgreSQL", "host", cfg.Host, "port", cfg.Port)
		}
		dialector = postgres.Open(PostgresDSN(cfg))
	case config.StoreSQLite:
		log.Info("📦 Opening SQLite database", "path", cfg.SQLitePath)
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("no SQL database for store %q", driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == config.StoreSQLite {
		// one writer at a time avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	log.Info("✅ Database connected successfully!", "driver", driver)
	return db, nil
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
