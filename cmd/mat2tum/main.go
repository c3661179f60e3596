// Command mat2tum converts a file of row-major 4x4 rigid transform matrices,
// one matrix of 16 floats per line, into TUM trajectory format with
// sequential zero-padded frame timestamps.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/transform"
	"github.com/banshee-data/trajectory.report/internal/version"
)

// Config holds the command-line configuration.
type Config struct {
	InPath      string
	OutPath     string
	ConfigPath  string
	Limit       int
	Stride      int
	Precision   int
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("mat2tum %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if cfg.InPath == "" || cfg.OutPath == "" {
		log.Fatal("both -in and -out are required")
	}

	opts, err := loadOptions(cfg)
	if err != nil {
		log.Fatalf("Failed to load options: %v", err)
	}

	written, err := transform.MatrixToTUM(fsutil.OSFileSystem{}, cfg.InPath, cfg.OutPath, opts)
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
	log.Printf("Wrote %d poses to %s", written, cfg.OutPath)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.InPath, "in", "", "Input file of 4x4 matrices (16 floats per line)")
	flag.StringVar(&cfg.OutPath, "out", "", "Output TUM trajectory file")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Optional JSON config file")
	flag.IntVar(&cfg.Limit, "limit", -1, "Max poses to process (0 means all; overrides config)")
	flag.IntVar(&cfg.Stride, "stride", -1, "Keep every k-th input frame (overrides config)")
	flag.IntVar(&cfg.Precision, "precision", -1, "Decimal places for output floats (overrides config)")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}

// loadOptions merges flag overrides over the optional config file.
func loadOptions(cfg Config) (*config.Options, error) {
	opts := config.EmptyOptions()
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadOptions(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}

	if cfg.Limit >= 0 {
		opts.FrameLimit = &cfg.Limit
	}
	if cfg.Stride >= 0 {
		opts.KeyframeStride = &cfg.Stride
	}
	if cfg.Precision >= 0 {
		opts.Precision = &cfg.Precision
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
