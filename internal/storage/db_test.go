package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	db, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	var mode string
	require.NoError(t, db.Conn().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var foreignKeys int
	require.NoError(t, db.Conn().QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)

	var tables int
	require.NoError(t, db.Conn().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('players', 'decks', 'matches', 'match_turns', 'turn_actions', 'meta_shares')`,
	).Scan(&tables))
	assert.Equal(t, 6, tables)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)

	_, err = Open(DefaultConfig(""))
	assert.Error(t, err)
}

func TestOpen_WithoutAutoMigrate(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "bare.db"))
	cfg.AutoMigrate = false

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'matches'`).Scan(&tables))
	assert.Zero(t, tables)
}

func TestMigrationManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	mgr, err := NewMigrationManager(path)
	require.NoError(t, err)

	version, dirty, err := mgr.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, mgr.Up())
	require.NoError(t, mgr.Up(), "second Up is a no-op")

	version, dirty, err = mgr.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, mgr.Down())
	version, _, err = mgr.Version()
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, mgr.Close())
}
