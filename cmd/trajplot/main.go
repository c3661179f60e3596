// Command trajplot renders a static XY overlay of a ground-truth and an
// estimated TUM trajectory. The output format follows the -out extension
// (.png, .svg, .pdf).
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/trajplot"
	"github.com/banshee-data/trajectory.report/internal/version"
)

// Config holds the command-line configuration.
type Config struct {
	GTPath      string
	EstPath     string
	OutPath     string
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("trajplot %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if cfg.GTPath == "" || cfg.EstPath == "" || cfg.OutPath == "" {
		log.Fatal("-gt, -est and -out are all required")
	}

	if err := trajplot.RenderPaths(fsutil.OSFileSystem{}, cfg.GTPath, cfg.EstPath, cfg.OutPath); err != nil {
		log.Fatalf("Plot failed: %v", err)
	}
	log.Printf("Plot saved to %s", cfg.OutPath)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.GTPath, "gt", "", "Ground-truth TUM trajectory file")
	flag.StringVar(&cfg.EstPath, "est", "", "Estimated TUM trajectory file")
	flag.StringVar(&cfg.OutPath, "out", "trajectory.png", "Output image path")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}
