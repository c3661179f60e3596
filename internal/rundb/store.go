package rundb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run is one persisted evaluation: the sequence that was evaluated, the raw
// input paths, the aligned artifacts, the options in effect and the ATE
// metrics parsed from the evaluator output.
type Run struct {
	RunID          string          `json:"run_id"`
	Sequence       string          `json:"sequence"`
	GTPath         string          `json:"gt_path"`
	EstPath        string          `json:"est_path"`
	GTAlignedPath  string          `json:"gt_aligned_path,omitempty"`
	EstAlignedPath string          `json:"est_aligned_path,omitempty"`
	AlignedPairs   int             `json:"aligned_pairs"`
	OptionsJSON    json.RawMessage `json:"options_json,omitempty"`

	ComparedPairs int     `json:"compared_pairs"`
	RMSE          float64 `json:"ate_rmse"`
	Mean          float64 `json:"ate_mean"`
	Median        float64 `json:"ate_median"`
	Std           float64 `json:"ate_std"`
	Min           float64 `json:"ate_min"`
	Max           float64 `json:"ate_max"`

	EvaluatorOutput string `json:"evaluator_output,omitempty"`
	DurationMs      int64  `json:"duration_ms"`
	CreatedAt       int64  `json:"created_at"` // unix nanoseconds
}

// RunStore provides persistence for evaluation runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a store over an open run database.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.DB}
}

const runColumns = `run_id, sequence, gt_path, est_path, gt_aligned_path, est_aligned_path,
	       aligned_pairs, options_json, compared_pairs, ate_rmse, ate_mean, ate_median,
	       ate_std, ate_min, ate_max, evaluator_output, duration_ms, created_at`

// Insert persists a new run. If RunID is empty, a UUID is generated.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var optionsStr interface{}
	if len(run.OptionsJSON) > 0 {
		optionsStr = string(run.OptionsJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO eval_runs (`+runColumns+`
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Sequence, run.GTPath, run.EstPath,
			nullStr(run.GTAlignedPath), nullStr(run.EstAlignedPath),
			run.AlignedPairs, optionsStr,
			run.ComparedPairs, run.RMSE, run.Mean, run.Median,
			run.Std, run.Min, run.Max,
			nullStr(run.EvaluatorOutput), run.DurationMs, run.CreatedAt,
		)
		return err
	})
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT `+runColumns+`
		FROM eval_runs
		WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// ListRecent returns the most recent runs across all sequences, newest first.
func (s *RunStore) ListRecent(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM eval_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ListBySequence returns all runs for a given sequence, newest first.
func (s *RunStore) ListBySequence(sequence string) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM eval_runs
		WHERE sequence = ?
		ORDER BY created_at DESC`, sequence)
	if err != nil {
		return nil, fmt.Errorf("query runs for sequence %s: %w", sequence, err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// Delete removes a run by ID.
func (s *RunStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM eval_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var gtAligned, estAligned, optionsStr, output sql.NullString
	err := row.Scan(
		&r.RunID, &r.Sequence, &r.GTPath, &r.EstPath, &gtAligned, &estAligned,
		&r.AlignedPairs, &optionsStr, &r.ComparedPairs, &r.RMSE, &r.Mean, &r.Median,
		&r.Std, &r.Min, &r.Max, &output, &r.DurationMs, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.GTAlignedPath = gtAligned.String
	r.EstAlignedPath = estAligned.String
	r.EvaluatorOutput = output.String
	if optionsStr.Valid {
		r.OptionsJSON = json.RawMessage(optionsStr.String)
	}
	return &r, nil
}

func collectRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// retryOnBusy retries a write that failed with a busy/locked error. The
// busy_timeout pragma handles most contention; this covers the residual
// SQLITE_BUSY returns under WAL checkpointing.
func retryOnBusy(fn func() error) error {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		msg := err.Error()
		if !strings.Contains(msg, "database is locked") && !strings.Contains(msg, "SQLITE_BUSY") {
			return err
		}
		time.Sleep(time.Duration(i+1) * 10 * time.Millisecond)
	}
	return err
}
