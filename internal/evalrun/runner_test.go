package evalrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/logutil"
)

func strPtr(v string) *string { return &v }

// muteLogs silences the package logger for one test.
func muteLogs(t *testing.T) {
	t.Helper()
	original := logutil.Logf
	logutil.SetLogger(nil)
	t.Cleanup(func() { logutil.Logf = original })
}

// writeSequenceInputs creates a matrix-format ground truth and a
// concatenated-timestamp estimate with the given number of frames.
func writeSequenceInputs(t *testing.T, dir string, frames int) (string, string) {
	t.Helper()

	var gt, est strings.Builder
	for i := 0; i < frames; i++ {
		fmt.Fprintf(&gt, "1 0 0 %d.5 0 1 0 0.2 0 0 1 0.3 0 0 0 1\n", i)
		fmt.Fprintf(&est, "%06d%.6f 0.200000 0.300000 0.000000 0.000000 0.000000 1.000000\n", i, float64(i)+0.4)
	}

	gtPath := filepath.Join(dir, "gt_matrices.txt")
	estPath := filepath.Join(dir, "est_raw.txt")
	if err := os.WriteFile(gtPath, []byte(gt.String()), 0644); err != nil {
		t.Fatalf("Failed to write ground truth: %v", err)
	}
	if err := os.WriteFile(estPath, []byte(est.String()), 0644); err != nil {
		t.Fatalf("Failed to write estimate: %v", err)
	}
	return gtPath, estPath
}

func TestRunner_Run(t *testing.T) {
	muteLogs(t)

	tmpDir := t.TempDir()
	gtPath, estPath := writeSequenceInputs(t, tmpDir, 3)
	script := writeScript(t, metricsScript)

	opts := &config.Options{
		PythonBin:       strPtr("/bin/sh"),
		EvaluatorScript: strPtr(script),
	}
	runner := NewRunner(fsutil.OSFileSystem{}, opts, filepath.Join(tmpDir, "work"))

	res, err := runner.Run(context.Background(), config.Sequence{
		Name:        "office-0",
		GroundTruth: gtPath,
		Estimate:    estPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Sequence != "office-0" {
		t.Errorf("Sequence = %q, want 'office-0'", res.Sequence)
	}
	if res.AlignedPairs != 3 {
		t.Errorf("AlignedPairs = %d, want 3", res.AlignedPairs)
	}
	if res.Metrics == nil {
		t.Fatal("Expected parsed metrics")
	}
	if res.Metrics.RMSE != 0.015321 {
		t.Errorf("RMSE = %f, want 0.015321", res.Metrics.RMSE)
	}
	if res.Metrics.ComparedPairs != 3 {
		t.Errorf("ComparedPairs = %d, want 3", res.Metrics.ComparedPairs)
	}
	if res.Duration <= 0 {
		t.Errorf("Duration = %v, want positive run timing", res.Duration)
	}

	// Aligned artifacts must survive the run.
	for _, path := range []string{res.GTAlignedPath, res.EstAlignedPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read aligned artifact %s: %v", path, err)
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 3 {
			t.Errorf("%s has %d lines, want 3", path, len(lines))
		}
	}
}

func TestRunner_Run_SequenceOverrides(t *testing.T) {
	muteLogs(t)

	tmpDir := t.TempDir()
	gtPath, estPath := writeSequenceInputs(t, tmpDir, 10)
	script := writeScript(t, metricsScript)

	opts := &config.Options{
		PythonBin:       strPtr("/bin/sh"),
		EvaluatorScript: strPtr(script),
	}
	runner := NewRunner(fsutil.OSFileSystem{}, opts, filepath.Join(tmpDir, "work"))

	limit := 4
	res, err := runner.Run(context.Background(), config.Sequence{
		Name:        "office-1",
		GroundTruth: gtPath,
		Estimate:    estPath,
		FrameLimit:  &limit,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Ground truth capped to 4 poses; the 10-line estimate aligns down to it.
	if res.AlignedPairs != 4 {
		t.Errorf("AlignedPairs = %d, want 4", res.AlignedPairs)
	}
}

func TestRunner_Run_DryRun(t *testing.T) {
	muteLogs(t)

	tmpDir := t.TempDir()
	gtPath, estPath := writeSequenceInputs(t, tmpDir, 2)

	opts := &config.Options{
		PythonBin:       strPtr("/bin/sh"),
		EvaluatorScript: strPtr("unused.sh"),
	}
	runner := NewRunner(fsutil.OSFileSystem{}, opts, filepath.Join(tmpDir, "work"))
	runner.Evaluator.DryRun = true

	res, err := runner.Run(context.Background(), config.Sequence{
		Name:        "office-2",
		GroundTruth: gtPath,
		Estimate:    estPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Metrics != nil {
		t.Error("Dry run should not parse metrics")
	}
	if !strings.Contains(res.EvaluatorOutput, "[DRY-RUN]") {
		t.Errorf("Expected dry-run output, got: %s", res.EvaluatorOutput)
	}
}

func TestNewRunner_EvaluatorDebugLogging(t *testing.T) {
	var buf strings.Builder
	original := logutil.Logf
	logutil.SetLogger(func(format string, v ...interface{}) {
		fmt.Fprintf(&buf, format, v...)
	})
	t.Cleanup(func() { logutil.Logf = original })

	runner := NewRunner(fsutil.OSFileSystem{}, nil, t.TempDir())
	runner.Evaluator.Logger.Debugf("starting %s", "office-0")

	got := buf.String()
	if !strings.HasPrefix(got, "[evalrun] ") {
		t.Errorf("Debug log = %q, want the [evalrun] prefix", got)
	}
	if !strings.Contains(got, "starting office-0") {
		t.Errorf("Debug log = %q, want the formatted message", got)
	}
}

func TestRunner_Run_SanitizesSequenceName(t *testing.T) {
	muteLogs(t)

	tmpDir := t.TempDir()
	gtPath, estPath := writeSequenceInputs(t, tmpDir, 2)
	script := writeScript(t, metricsScript)

	opts := &config.Options{
		PythonBin:       strPtr("/bin/sh"),
		EvaluatorScript: strPtr(script),
	}
	workDir := filepath.Join(tmpDir, "work")
	runner := NewRunner(fsutil.OSFileSystem{}, opts, workDir)

	res, err := runner.Run(context.Background(), config.Sequence{
		Name:        "../evil name",
		GroundTruth: gtPath,
		Estimate:    estPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	rel, err := filepath.Rel(workDir, res.GTAlignedPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Errorf("Artifacts escaped the work dir: %s", res.GTAlignedPath)
	}
}

func TestRunner_RunManifest(t *testing.T) {
	muteLogs(t)

	tmpDir := t.TempDir()
	gtPath, estPath := writeSequenceInputs(t, tmpDir, 3)
	script := writeScript(t, metricsScript)

	opts := &config.Options{
		PythonBin:       strPtr("/bin/sh"),
		EvaluatorScript: strPtr(script),
	}
	runner := NewRunner(fsutil.OSFileSystem{}, opts, filepath.Join(tmpDir, "work"))

	m := &config.Manifest{
		Sequences: []config.Sequence{
			{Name: "good", GroundTruth: gtPath, Estimate: estPath},
			{Name: "broken", GroundTruth: filepath.Join(tmpDir, "missing.txt"), Estimate: estPath},
		},
	}

	var handled []string
	results, err := runner.RunManifest(context.Background(), m,
		func(seq config.Sequence, res *Result) error {
			handled = append(handled, seq.Name)
			return nil
		})
	if err == nil {
		t.Error("Expected joined error for the broken sequence")
	} else if !strings.Contains(err.Error(), "broken") {
		t.Errorf("Error should name the failed sequence, got: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 successful result, got %d", len(results))
	}
	if results[0].Sequence != "good" {
		t.Errorf("Result sequence = %q, want 'good'", results[0].Sequence)
	}
	if len(handled) != 1 || handled[0] != "good" {
		t.Errorf("Handler saw %v, want only the good sequence", handled)
	}
}

func TestRunner_RunManifest_HandlerErrorAborts(t *testing.T) {
	muteLogs(t)

	tmpDir := t.TempDir()
	gtPath, estPath := writeSequenceInputs(t, tmpDir, 2)
	script := writeScript(t, metricsScript)

	opts := &config.Options{
		PythonBin:       strPtr("/bin/sh"),
		EvaluatorScript: strPtr(script),
	}
	runner := NewRunner(fsutil.OSFileSystem{}, opts, filepath.Join(tmpDir, "work"))

	m := &config.Manifest{
		Sequences: []config.Sequence{
			{Name: "first", GroundTruth: gtPath, Estimate: estPath},
			{Name: "second", GroundTruth: gtPath, Estimate: estPath},
		},
	}

	calls := 0
	wantErr := errors.New("store unavailable")
	_, err := runner.RunManifest(context.Background(), m,
		func(seq config.Sequence, res *Result) error {
			calls++
			return wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunManifest() error = %v, want the handler error", err)
	}
	if calls != 1 {
		t.Errorf("Handler called %d times, want 1 (batch should abort)", calls)
	}
}
