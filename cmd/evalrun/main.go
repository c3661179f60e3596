// Command evalrun executes the full evaluation pipeline for one sequence or
// a YAML manifest of sequences: convert the ground-truth matrices to TUM,
// repair the estimate spacing, align the pair, invoke the external ATE
// evaluator, and record the parsed metrics in the run database. With -plot,
// each run also gets a static path-overlay image.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/evalrun"
	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/rundb"
	"github.com/banshee-data/trajectory.report/internal/security"
	"github.com/banshee-data/trajectory.report/internal/trajplot"
	"github.com/banshee-data/trajectory.report/internal/version"
)

// Config holds the command-line configuration.
type Config struct {
	GTPath        string
	EstPath       string
	Name          string
	WorkDir       string
	ConfigPath    string
	ManifestPath  string
	DBPath        string
	MigrationsDir string
	Plot          bool
	DryRun        bool
	Builtin       bool
	NoVerify      bool
	ShowVersion   bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("evalrun %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	opts := config.EmptyOptions()
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadOptions(cfg.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		opts = loaded
	}

	if cfg.Builtin {
		builtin := true
		opts.BuiltinEvaluator = &builtin
	}

	sequences, err := resolveSequences(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = opts.GetDatabasePath()
	}
	db, err := rundb.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer db.Close()
	if err := db.MigrateUp(cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to migrate run database: %v", err)
	}
	store := rundb.NewRunStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := fsutil.OSFileSystem{}
	runner := evalrun.NewRunner(fs, opts, cfg.WorkDir)
	runner.VerifyTimestamps = !cfg.NoVerify
	runner.Evaluator.DryRun = cfg.DryRun

	optionsJSON, err := json.Marshal(opts)
	if err != nil {
		log.Fatalf("Failed to encode options: %v", err)
	}

	handle := func(seq config.Sequence, res *evalrun.Result) error {
		if cfg.DryRun {
			fmt.Println(res.EvaluatorOutput)
			return nil
		}

		run := recordFor(seq, res, optionsJSON)
		if err := store.Insert(run); err != nil {
			return fmt.Errorf("record run for %s: %w", seq.Name, err)
		}
		log.Printf("Recorded run %s: sequence=%s pairs=%d rmse=%.6f m",
			run.RunID, run.Sequence, run.AlignedPairs, run.RMSE)

		if cfg.Plot {
			if err := plotRun(fs, opts, res); err != nil {
				log.Printf("Warning: failed to plot %s: %v", seq.Name, err)
			}
		}
		return nil
	}

	manifest := &config.Manifest{Sequences: sequences}
	results, err := runner.RunManifest(ctx, manifest, handle)
	if err != nil {
		log.Fatalf("Evaluation finished with %d of %d sequences recorded: %v",
			len(results), len(sequences), err)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.GTPath, "gt", "", "Ground-truth matrix file (16 floats per line)")
	flag.StringVar(&cfg.EstPath, "est", "", "Raw estimated trajectory file")
	flag.StringVar(&cfg.Name, "name", "", "Sequence name for the run record")
	flag.StringVar(&cfg.WorkDir, "workdir", "eval-work", "Directory for per-sequence artifacts")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Optional JSON config file")
	flag.StringVar(&cfg.ManifestPath, "manifest", "", "YAML manifest for batch evaluation")
	flag.StringVar(&cfg.DBPath, "db", "", "Run database path (default from config)")
	flag.StringVar(&cfg.MigrationsDir, "migrations", "db/migrations", "Migrations directory")
	flag.BoolVar(&cfg.Plot, "plot", false, "Also render a path-overlay plot per run")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Prepare files but only print the evaluator command")
	flag.BoolVar(&cfg.Builtin, "builtin", false, "Compute error metrics in-process instead of running the evaluator script")
	flag.BoolVar(&cfg.NoVerify, "no-verify-timestamps", false,
		"Skip the pairwise timestamp check before truncation")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}

// resolveSequences builds the evaluation list from either the manifest or
// the single-sequence flags.
func resolveSequences(cfg Config) ([]config.Sequence, error) {
	if cfg.ManifestPath != "" {
		if cfg.GTPath != "" || cfg.EstPath != "" {
			return nil, fmt.Errorf("-manifest and -gt/-est are mutually exclusive")
		}
		m, err := config.LoadManifest(cfg.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest: %w", err)
		}
		return m.Sequences, nil
	}

	if cfg.GTPath == "" || cfg.EstPath == "" {
		return nil, fmt.Errorf("either -manifest or both -gt and -est are required")
	}
	name := cfg.Name
	if name == "" {
		name = "default"
	}
	return []config.Sequence{{Name: name, GroundTruth: cfg.GTPath, Estimate: cfg.EstPath}}, nil
}

// recordFor converts a pipeline result into a run row.
func recordFor(seq config.Sequence, res *evalrun.Result, optionsJSON []byte) *rundb.Run {
	run := &rundb.Run{
		Sequence:        res.Sequence,
		GTPath:          seq.GroundTruth,
		EstPath:         seq.Estimate,
		GTAlignedPath:   res.GTAlignedPath,
		EstAlignedPath:  res.EstAlignedPath,
		AlignedPairs:    res.AlignedPairs,
		OptionsJSON:     optionsJSON,
		EvaluatorOutput: res.EvaluatorOutput,
		DurationMs:      res.Duration.Milliseconds(),
	}
	if m := res.Metrics; m != nil {
		run.ComparedPairs = m.ComparedPairs
		run.RMSE = m.RMSE
		run.Mean = m.Mean
		run.Median = m.Median
		run.Std = m.Std
		run.Min = m.Min
		run.Max = m.Max
	}
	return run
}

// plotRun renders the aligned pair into the configured plot directory.
func plotRun(fs fsutil.FileSystem, opts *config.Options, res *evalrun.Result) error {
	plotDir := opts.GetPlotDir()
	if err := fs.MkdirAll(plotDir, 0755); err != nil {
		return fmt.Errorf("create plot dir %s: %w", plotDir, err)
	}
	outPath := filepath.Join(plotDir, security.SanitizeFilename(res.Sequence)+".png")
	if err := trajplot.RenderPaths(fs, res.GTAlignedPath, res.EstAlignedPath, outPath); err != nil {
		return err
	}
	log.Printf("Plot saved to %s", outPath)
	return nil
}
