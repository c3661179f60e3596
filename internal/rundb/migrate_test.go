package rundb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUpAndVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := db.MigrateVersion(migrationsDir)
	require.NoError(t, err)
	assert.Zero(t, version, "fresh database has no migrations")
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp(migrationsDir))

	version, dirty, err = db.MigrateVersion(migrationsDir)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, db.MigrateUp(migrationsDir))
}

func TestMigrateDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.MigrateUp(migrationsDir))
	require.NoError(t, db.MigrateDown(migrationsDir))

	var count int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='eval_runs'
	`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count, "down migration drops eval_runs")
}

func TestMigrationStatus(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.MigrateUp(migrationsDir))

	status, err := db.MigrationStatus(migrationsDir)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status["current_version"])
	assert.Equal(t, false, status["dirty"])
	assert.Equal(t, true, status["schema_migrations_exists"])
}
