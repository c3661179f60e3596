// Package config holds the explicit runtime options for the trajectory
// tools. Options are passed as a struct rather than read from ambient
// globals so each invocation is self-contained and testable.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Options is the root configuration shared by the converters and the
// evaluation pipeline. Fields are pointers so a partial JSON file only
// overrides what it names; the Get* methods supply defaults for the rest.
type Options struct {
	// Conversion params
	FrameLimit     *int `json:"frame_limit,omitempty"`
	KeyframeStride *int `json:"keyframe_stride,omitempty"`
	Precision      *int `json:"precision,omitempty"`

	// Evaluator params
	PythonBin        *string  `json:"python_bin,omitempty"`
	EvaluatorScript  *string  `json:"evaluator_script,omitempty"`
	EvaluatorTimeout *string  `json:"evaluator_timeout,omitempty"` // duration string like "120s"
	EvaluatorArgs    []string `json:"evaluator_args,omitempty"`
	BuiltinEvaluator *bool    `json:"builtin_evaluator,omitempty"`

	// Artifact params
	DatabasePath *string `json:"database_path,omitempty"`
	PlotDir      *string `json:"plot_dir,omitempty"`
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrString(v string) *string { return &v }

// EmptyOptions returns an Options with all fields unset so every Get* method
// falls back to its default.
func EmptyOptions() *Options {
	return &Options{}
}

// LoadOptions loads Options from a JSON file. The file must have a .json
// extension and stay under the max file size. Fields omitted from the JSON
// retain their defaults, so partial configs are safe.
func LoadOptions(path string) (*Options, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := EmptyOptions()
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return opts, nil
}

// Validate checks that the configured values are usable.
func (o *Options) Validate() error {
	if o.FrameLimit != nil && *o.FrameLimit < 0 {
		return fmt.Errorf("frame_limit must be non-negative, got %d", *o.FrameLimit)
	}

	if o.KeyframeStride != nil && *o.KeyframeStride < 1 {
		return fmt.Errorf("keyframe_stride must be at least 1, got %d", *o.KeyframeStride)
	}

	if o.Precision != nil {
		if *o.Precision < 0 || *o.Precision > 17 {
			return fmt.Errorf("precision must be between 0 and 17, got %d", *o.Precision)
		}
	}

	if o.EvaluatorTimeout != nil && *o.EvaluatorTimeout != "" {
		if _, err := time.ParseDuration(*o.EvaluatorTimeout); err != nil {
			return fmt.Errorf("invalid evaluator_timeout '%s': %w", *o.EvaluatorTimeout, err)
		}
	}

	return nil
}

// GetFrameLimit returns the frame_limit value or the default. Zero means no
// limit.
func (o *Options) GetFrameLimit() int {
	if o.FrameLimit == nil {
		return 0
	}
	return *o.FrameLimit
}

// GetKeyframeStride returns the keyframe_stride value or the default.
func (o *Options) GetKeyframeStride() int {
	if o.KeyframeStride == nil {
		return 1
	}
	return *o.KeyframeStride
}

// GetPrecision returns the precision value or the default.
func (o *Options) GetPrecision() int {
	if o.Precision == nil {
		return 6
	}
	return *o.Precision
}

// GetPythonBin returns the python_bin value or the default.
func (o *Options) GetPythonBin() string {
	if o.PythonBin == nil || *o.PythonBin == "" {
		return "python"
	}
	return *o.PythonBin
}

// GetEvaluatorScript returns the evaluator_script value or the default.
func (o *Options) GetEvaluatorScript() string {
	if o.EvaluatorScript == nil || *o.EvaluatorScript == "" {
		return "scripts/evaluate_ate.py"
	}
	return *o.EvaluatorScript
}

// GetBuiltinEvaluator reports whether the error metrics should be computed
// in-process instead of by the external evaluator script.
func (o *Options) GetBuiltinEvaluator() bool {
	return o.BuiltinEvaluator != nil && *o.BuiltinEvaluator
}

// GetEvaluatorTimeout parses and returns the evaluator_timeout as a
// time.Duration.
func (o *Options) GetEvaluatorTimeout() time.Duration {
	if o.EvaluatorTimeout == nil || *o.EvaluatorTimeout == "" {
		return 120 * time.Second
	}
	d, err := time.ParseDuration(*o.EvaluatorTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetDatabasePath returns the database_path value or the default.
func (o *Options) GetDatabasePath() string {
	if o.DatabasePath == nil || *o.DatabasePath == "" {
		return "trajectory.db"
	}
	return *o.DatabasePath
}

// GetPlotDir returns the plot_dir value or the default.
func (o *Options) GetPlotDir() string {
	if o.PlotDir == nil || *o.PlotDir == "" {
		return "plots"
	}
	return *o.PlotDir
}
