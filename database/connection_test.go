package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
)

func TestPostgresDSN(t *testing.T) {
	cfg := config.DatabaseConfig{User: "bot", Password: "pw", Name: "shopbot", Host: "db", Port: 5433}
	assert.Equal(t, "host=db user=bot password=pw dbname=shopbot port=5433 sslmode=disable", PostgresDSN(cfg))

	cfg.InstanceConnectionName = "proj:region:inst"
	assert.Equal(t, "host=/cloudsql/proj:region:inst user=bot password=pw dbname=shopbot sslmode=disable", PostgresDSN(cfg))
}

func TestConnectSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "bot.db")}
	db, err := Connect(config.StoreSQLite, cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
	require.NoError(t, Close(db))

	_, err = Connect(config.StoreRedis, cfg, logger.Nop())
	assert.Error(t, err)
}
