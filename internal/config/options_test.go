package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmptyOptions(t *testing.T) {
	opts := EmptyOptions()

	if opts.FrameLimit != nil {
		t.Errorf("Expected nil FrameLimit, got %v", opts.FrameLimit)
	}
	if opts.KeyframeStride != nil {
		t.Errorf("Expected nil KeyframeStride, got %v", opts.KeyframeStride)
	}
	if opts.Precision != nil {
		t.Errorf("Expected nil Precision, got %v", opts.Precision)
	}
}

func TestLoadOptions(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_options.json")

	testJSON := `{
  "frame_limit": 500,
  "keyframe_stride": 10,
  "precision": 4,
  "python_bin": "python3",
  "evaluator_script": "tools/evaluate_ate.py",
  "evaluator_timeout": "60s",
  "database_path": "runs/eval.db",
  "plot_dir": "runs/plots"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	opts, err := LoadOptions(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if opts.FrameLimit == nil || *opts.FrameLimit != 500 {
		t.Errorf("Expected FrameLimit 500, got %v", opts.FrameLimit)
	}
	if opts.KeyframeStride == nil || *opts.KeyframeStride != 10 {
		t.Errorf("Expected KeyframeStride 10, got %v", opts.KeyframeStride)
	}
	if opts.Precision == nil || *opts.Precision != 4 {
		t.Errorf("Expected Precision 4, got %v", opts.Precision)
	}
	if opts.PythonBin == nil || *opts.PythonBin != "python3" {
		t.Errorf("Expected PythonBin 'python3', got %v", opts.PythonBin)
	}
	if opts.EvaluatorScript == nil || *opts.EvaluatorScript != "tools/evaluate_ate.py" {
		t.Errorf("Expected EvaluatorScript 'tools/evaluate_ate.py', got %v", opts.EvaluatorScript)
	}
	if opts.EvaluatorTimeout == nil || *opts.EvaluatorTimeout != "60s" {
		t.Errorf("Expected EvaluatorTimeout '60s', got %v", opts.EvaluatorTimeout)
	}
	if opts.DatabasePath == nil || *opts.DatabasePath != "runs/eval.db" {
		t.Errorf("Expected DatabasePath 'runs/eval.db', got %v", opts.DatabasePath)
	}
	if opts.PlotDir == nil || *opts.PlotDir != "runs/plots" {
		t.Errorf("Expected PlotDir 'runs/plots', got %v", opts.PlotDir)
	}
}

func TestLoadOptionsMissing(t *testing.T) {
	_, err := LoadOptions("/nonexistent/path/to/options.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadOptionsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_options.json")

	invalidJSON := `{
  "frame_limit": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadOptions(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadOptionsRejectsNonJSON(t *testing.T) {
	_, err := LoadOptions("/some/path/options.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadOptionsRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	// Create a file larger than 1MB
	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadOptions(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Options
		wantErr bool
	}{
		{
			name:    "empty options are valid",
			opts:    &Options{},
			wantErr: false,
		},
		{
			name: "valid full options",
			opts: &Options{
				FrameLimit:       ptrInt(100),
				KeyframeStride:   ptrInt(5),
				Precision:        ptrInt(9),
				EvaluatorTimeout: ptrString("45s"),
			},
			wantErr: false,
		},
		{
			name: "negative frame limit",
			opts: &Options{
				FrameLimit: ptrInt(-1),
			},
			wantErr: true,
		},
		{
			name: "zero keyframe stride",
			opts: &Options{
				KeyframeStride: ptrInt(0),
			},
			wantErr: true,
		},
		{
			name: "negative precision",
			opts: &Options{
				Precision: ptrInt(-1),
			},
			wantErr: true,
		},
		{
			name: "precision too large",
			opts: &Options{
				Precision: ptrInt(18),
			},
			wantErr: true,
		},
		{
			name: "invalid evaluator timeout",
			opts: &Options{
				EvaluatorTimeout: ptrString("invalid"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEvaluatorTimeout(t *testing.T) {
	tests := []struct {
		name string
		opts *Options
		want time.Duration
	}{
		{
			name: "60 seconds",
			opts: &Options{
				EvaluatorTimeout: ptrString("60s"),
			},
			want: 60 * time.Second,
		},
		{
			name: "5 minutes",
			opts: &Options{
				EvaluatorTimeout: ptrString("5m"),
			},
			want: 5 * time.Minute,
		},
		{
			name: "nil pointer returns default",
			opts: &Options{},
			want: 120 * time.Second,
		},
		{
			name: "empty string returns default",
			opts: &Options{
				EvaluatorTimeout: ptrString(""),
			},
			want: 120 * time.Second,
		},
		{
			name: "invalid duration returns default",
			opts: &Options{
				EvaluatorTimeout: ptrString("invalid"),
			},
			want: 120 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.GetEvaluatorTimeout()
			if got != tt.want {
				t.Errorf("GetEvaluatorTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetterDefaults(t *testing.T) {
	opts := &Options{} // empty options

	if opts.GetFrameLimit() != 0 {
		t.Errorf("GetFrameLimit() = %d, want 0", opts.GetFrameLimit())
	}
	if opts.GetKeyframeStride() != 1 {
		t.Errorf("GetKeyframeStride() = %d, want 1", opts.GetKeyframeStride())
	}
	if opts.GetPrecision() != 6 {
		t.Errorf("GetPrecision() = %d, want 6", opts.GetPrecision())
	}
	if opts.GetPythonBin() != "python" {
		t.Errorf("GetPythonBin() = %q, want 'python'", opts.GetPythonBin())
	}
	if opts.GetEvaluatorScript() != "scripts/evaluate_ate.py" {
		t.Errorf("GetEvaluatorScript() = %q, want 'scripts/evaluate_ate.py'", opts.GetEvaluatorScript())
	}
	if opts.GetBuiltinEvaluator() {
		t.Error("GetBuiltinEvaluator() = true, want false")
	}
	if opts.GetDatabasePath() != "trajectory.db" {
		t.Errorf("GetDatabasePath() = %q, want 'trajectory.db'", opts.GetDatabasePath())
	}
	if opts.GetPlotDir() != "plots" {
		t.Errorf("GetPlotDir() = %q, want 'plots'", opts.GetPlotDir())
	}
}

func TestLoadOptionsPartial(t *testing.T) {
	// Partial config: only override precision; everything else should keep defaults.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	partialJSON := `{
  "precision": 9
}`
	if err := os.WriteFile(configPath, []byte(partialJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	opts, err := LoadOptions(configPath)
	if err != nil {
		t.Fatalf("Failed to load partial config: %v", err)
	}

	// Overridden value
	if opts.GetPrecision() != 9 {
		t.Errorf("Expected overridden Precision 9, got %d", opts.GetPrecision())
	}
	// Default values should be preserved
	if opts.GetFrameLimit() != 0 {
		t.Errorf("Expected default FrameLimit 0, got %d", opts.GetFrameLimit())
	}
	if opts.GetKeyframeStride() != 1 {
		t.Errorf("Expected default KeyframeStride 1, got %d", opts.GetKeyframeStride())
	}
	if opts.GetEvaluatorTimeout() != 120*time.Second {
		t.Errorf("Expected default EvaluatorTimeout 120s, got %v", opts.GetEvaluatorTimeout())
	}
}

func TestLoadExampleConfigFile(t *testing.T) {
	opts, err := LoadOptions("../../config/options.example.json")
	if err != nil {
		t.Fatalf("Failed to load example: %v", err)
	}
	if opts.GetKeyframeStride() != 10 {
		t.Errorf("Expected 10, got %d", opts.GetKeyframeStride())
	}
	if opts.GetFrameLimit() != 2000 {
		t.Errorf("Expected 2000, got %d", opts.GetFrameLimit())
	}
}
