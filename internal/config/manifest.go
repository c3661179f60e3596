package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Sequence names one ground-truth/estimate pair in a manifest. Per-sequence
// overrides take precedence over the manifest defaults and the global
// Options for that sequence only.
type Sequence struct {
	Name        string `yaml:"name"`
	GroundTruth string `yaml:"ground_truth"`
	Estimate    string `yaml:"estimate"`

	FrameLimit     *int `yaml:"frame_limit,omitempty"`
	KeyframeStride *int `yaml:"keyframe_stride,omitempty"`
	Precision      *int `yaml:"precision,omitempty"`
}

// Manifest is the top-level structure for a batch evaluation file. It lists
// the sequences to evaluate in order.
type Manifest struct {
	Sequences []Sequence `yaml:"sequences"`
}

// LoadManifest reads and parses a YAML manifest of evaluation sequences.
func LoadManifest(path string) (*Manifest, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("manifest file must have .yaml or .yml extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return &m, nil
}

// Validate checks that every sequence is complete and the names are unique.
func (m *Manifest) Validate() error {
	if len(m.Sequences) == 0 {
		return fmt.Errorf("manifest has no sequences")
	}

	seen := make(map[string]bool, len(m.Sequences))
	for i, seq := range m.Sequences {
		if seq.Name == "" {
			return fmt.Errorf("sequence %d: name is required", i)
		}
		if seq.GroundTruth == "" {
			return fmt.Errorf("sequence %q: ground_truth is required", seq.Name)
		}
		if seq.Estimate == "" {
			return fmt.Errorf("sequence %q: estimate is required", seq.Name)
		}
		if seen[seq.Name] {
			return fmt.Errorf("duplicate sequence name %q", seq.Name)
		}
		seen[seq.Name] = true

		if seq.FrameLimit != nil && *seq.FrameLimit < 0 {
			return fmt.Errorf("sequence %q: frame_limit must be non-negative, got %d", seq.Name, *seq.FrameLimit)
		}
		if seq.KeyframeStride != nil && *seq.KeyframeStride < 1 {
			return fmt.Errorf("sequence %q: keyframe_stride must be at least 1, got %d", seq.Name, *seq.KeyframeStride)
		}
		if seq.Precision != nil && (*seq.Precision < 0 || *seq.Precision > 17) {
			return fmt.Errorf("sequence %q: precision must be between 0 and 17, got %d", seq.Name, *seq.Precision)
		}
	}

	return nil
}

// Apply returns a copy of opts with the sequence's overrides merged in.
// The caller's Options value is not modified.
func (s *Sequence) Apply(opts *Options) *Options {
	merged := *opts
	if s.FrameLimit != nil {
		merged.FrameLimit = s.FrameLimit
	}
	if s.KeyframeStride != nil {
		merged.KeyframeStride = s.KeyframeStride
	}
	if s.Precision != nil {
		merged.Precision = s.Precision
	}
	return &merged
}
