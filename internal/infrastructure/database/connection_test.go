package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/ticketdesk/internal/shared/config"
)

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "desk.db")
	cfg := &config.DatabaseConfig{Driver: config.DriverSQLite, Path: path, Migration: config.MigrationAuto}

	gdb, err := Open(cfg)
	require.NoError(t, err)

	var one int
	require.NoError(t, gdb.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.FileExists(t, path)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestInitGetClose(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:", Migration: config.MigrationAuto}

	require.NoError(t, Init(cfg))
	assert.NotNil(t, Get())

	require.NoError(t, Close())
	assert.Nil(t, Get())
	assert.NoError(t, Close())
}
