package rundb

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// migrationsDir points at the repo's migration files relative to this package.
const migrationsDir = "../../db/migrations"

// setupTestDB opens a migrated database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.MigrateUp(migrationsDir), "apply migrations")
	return db
}

func sampleRun(sequence string) *Run {
	return &Run{
		Sequence:       sequence,
		GTPath:         "data/" + sequence + "/traj.txt",
		EstPath:        "out/" + sequence + "/CameraTrajectory.txt",
		GTAlignedPath:  "work/" + sequence + "/gt_aligned.txt",
		EstAlignedPath: "work/" + sequence + "/est_aligned.txt",
		AlignedPairs:   501,
		OptionsJSON:    json.RawMessage(`{"keyframe_stride":10}`),
		ComparedPairs:  501,
		RMSE:           0.015321,
		Mean:           0.013977,
		Median:         0.013456,
		Std:            0.006263,
		Min:            0.001234,
		Max:            0.041234,
		EvaluatorOutput: "compared_pose_pairs 501 pairs\n" +
			"absolute_translational_error.rmse 0.015321 m\n",
		DurationMs: 842,
	}
}

func TestRunStore_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	run := sampleRun("office-0")
	require.NoError(t, store.Insert(run))

	assert.NotEmpty(t, run.RunID, "Insert should assign a run ID")
	assert.NotZero(t, run.CreatedAt, "Insert should assign a creation time")

	got, err := store.Get(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestRunStore_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	_, err := store.Get("no-such-run")
	assert.ErrorContains(t, err, "not found")
}

func TestRunStore_PreservesExplicitID(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	run := sampleRun("office-0")
	run.RunID = "fixed-id"
	run.CreatedAt = 1700000000000000000
	require.NoError(t, store.Insert(run))

	got, err := store.Get("fixed-id")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000000000), got.CreatedAt)
}

func TestRunStore_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	for i, seq := range []string{"office-0", "office-1", "room-0"} {
		run := sampleRun(seq)
		run.CreatedAt = int64(1000 + i)
		require.NoError(t, store.Insert(run))
	}

	runs, err := store.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "room-0", runs[0].Sequence, "newest first")
	assert.Equal(t, "office-0", runs[2].Sequence)

	limited, err := store.ListRecent(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRunStore_ListBySequence(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	for i := 0; i < 3; i++ {
		run := sampleRun("office-0")
		run.RMSE = float64(i) * 0.01
		run.CreatedAt = int64(1000 + i)
		require.NoError(t, store.Insert(run))
	}
	require.NoError(t, store.Insert(sampleRun("room-0")))

	runs, err := store.ListBySequence("office-0")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.InDelta(t, 0.02, runs[0].RMSE, 1e-12, "newest run first")

	empty, err := store.ListBySequence("missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRunStore_Delete(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	run := sampleRun("office-0")
	require.NoError(t, store.Insert(run))
	require.NoError(t, store.Delete(run.RunID))

	_, err := store.Get(run.RunID)
	assert.Error(t, err)

	assert.ErrorContains(t, store.Delete(run.RunID), "not found")
}

func TestRunStore_NullableColumns(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	run := &Run{
		Sequence:     "bare",
		GTPath:       "gt.txt",
		EstPath:      "est.txt",
		AlignedPairs: 1,
	}
	require.NoError(t, store.Insert(run))

	got, err := store.Get(run.RunID)
	require.NoError(t, err)
	assert.Empty(t, got.GTAlignedPath)
	assert.Empty(t, got.EvaluatorOutput)
	assert.Nil(t, got.OptionsJSON)
}
