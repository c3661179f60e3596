// Command tumalign truncates a ground-truth/estimate TUM file pair to their
// common prefix length and writes the paired outputs for the external
// trajectory evaluator. It prints the aligned pose count on success.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/transform"
	"github.com/banshee-data/trajectory.report/internal/version"
)

// Config holds the command-line configuration.
type Config struct {
	GTPath           string
	EstPath          string
	GTOutPath        string
	EstOutPath       string
	VerifyTimestamps bool
	Limit            int
	ShowVersion      bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("tumalign %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if cfg.GTPath == "" || cfg.EstPath == "" || cfg.GTOutPath == "" || cfg.EstOutPath == "" {
		log.Fatal("-gt, -est, -gt-out and -est-out are all required")
	}

	alignCfg := transform.AlignConfig{
		VerifyTimestamps: cfg.VerifyTimestamps,
		FrameLimit:       cfg.Limit,
	}
	n, err := transform.AlignTrajectories(fsutil.OSFileSystem{},
		cfg.GTPath, cfg.EstPath, cfg.GTOutPath, cfg.EstOutPath, alignCfg)
	if err != nil {
		log.Fatalf("Alignment failed: %v", err)
	}

	fmt.Println(n)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.GTPath, "gt", "", "Ground-truth TUM trajectory file")
	flag.StringVar(&cfg.EstPath, "est", "", "Estimated TUM trajectory file")
	flag.StringVar(&cfg.GTOutPath, "gt-out", "", "Aligned ground-truth output file")
	flag.StringVar(&cfg.EstOutPath, "est-out", "", "Aligned estimate output file")
	flag.BoolVar(&cfg.VerifyTimestamps, "verify-timestamps", true,
		"Require pairwise-identical timestamps before truncation")
	flag.IntVar(&cfg.Limit, "limit", 0, "Additional cap on aligned length (0 means none)")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}
