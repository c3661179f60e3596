package evalrun

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/logutil"
	"github.com/banshee-data/trajectory.report/internal/security"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
	"github.com/banshee-data/trajectory.report/internal/transform"
)

// Result is the outcome of one evaluated sequence. The aligned artifact
// paths stay valid after the run so they can be persisted and plotted.
type Result struct {
	Sequence        string
	AlignedPairs    int
	Metrics         *Metrics
	EvaluatorOutput string
	GTAlignedPath   string
	EstAlignedPath  string
	Duration        time.Duration
}

// Runner executes the full pipeline for one or more sequences. Intermediate
// and aligned files are written under WorkDir/<sequence name>.
type Runner struct {
	FS               fsutil.FileSystem
	Options          *config.Options
	Evaluator        *Evaluator
	Clock            timeutil.Clock
	WorkDir          string
	VerifyTimestamps bool
}

// NewRunner creates a runner with timestamp verification enabled.
func NewRunner(fs fsutil.FileSystem, opts *config.Options, workDir string) *Runner {
	if opts == nil {
		opts = config.EmptyOptions()
	}
	evaluator := NewEvaluator(opts)
	evaluator.SetLogger(logutil.DebugLogger{Prefix: "[evalrun] "})
	return &Runner{
		FS:               fs,
		Options:          opts,
		Evaluator:        evaluator,
		Clock:            timeutil.RealClock{},
		WorkDir:          workDir,
		VerifyTimestamps: true,
	}
}

// Run evaluates a single sequence: convert the ground-truth matrices,
// repair the estimate spacing, align the pair, and invoke the evaluator.
func (r *Runner) Run(ctx context.Context, seq config.Sequence) (*Result, error) {
	started := r.Clock.Now()
	opts := seq.Apply(r.Options)

	seqDir := filepath.Join(r.WorkDir, security.SanitizeFilename(seq.Name))
	if err := r.FS.MkdirAll(seqDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir %s: %w", seqDir, err)
	}

	gtTUM := filepath.Join(seqDir, "gt_tum.txt")
	converted, err := transform.MatrixToTUM(r.FS, seq.GroundTruth, gtTUM, opts)
	if err != nil {
		return nil, fmt.Errorf("convert ground truth: %w", err)
	}
	logutil.Logf("sequence %s: converted %d ground-truth poses", seq.Name, converted)

	estFixed := filepath.Join(seqDir, "est_fixed.txt")
	fixed, err := transform.FixSpacing(r.FS, seq.Estimate, estFixed)
	if err != nil {
		return nil, fmt.Errorf("fix estimate spacing: %w", err)
	}
	logutil.Logf("sequence %s: repaired %d estimate lines", seq.Name, fixed)

	gtAligned := filepath.Join(seqDir, "gt_aligned.txt")
	estAligned := filepath.Join(seqDir, "est_aligned.txt")
	alignCfg := transform.AlignConfig{VerifyTimestamps: r.VerifyTimestamps}
	pairs, err := transform.AlignTrajectories(r.FS, gtTUM, estFixed, gtAligned, estAligned, alignCfg)
	if err != nil {
		return nil, fmt.Errorf("align trajectories: %w", err)
	}
	logutil.Logf("sequence %s: aligned %d pose pairs", seq.Name, pairs)

	result := &Result{
		Sequence:       seq.Name,
		AlignedPairs:   pairs,
		GTAlignedPath:  gtAligned,
		EstAlignedPath: estAligned,
	}

	var metrics *Metrics
	if opts.GetBuiltinEvaluator() {
		metrics, err = ComputeMetrics(r.FS, gtAligned, estAligned)
		if err != nil {
			return nil, fmt.Errorf("compute metrics for %s: %w", seq.Name, err)
		}
		result.EvaluatorOutput = metrics.VerboseReport()
	} else {
		output, err := r.Evaluator.Evaluate(ctx, gtAligned, estAligned)
		if err != nil {
			return nil, fmt.Errorf("evaluate sequence %s: %w", seq.Name, err)
		}
		result.EvaluatorOutput = output
		if r.Evaluator.DryRun {
			result.Duration = r.Clock.Since(started)
			return result, nil
		}
		metrics, err = ParseMetrics(output)
		if err != nil {
			return nil, fmt.Errorf("parse evaluator output for %s: %w", seq.Name, err)
		}
	}
	result.Metrics = metrics
	result.Duration = r.Clock.Since(started)
	logutil.Logf("sequence %s: ATE rmse %.6f m over %d pairs in %s",
		seq.Name, metrics.RMSE, metrics.ComparedPairs, result.Duration.Round(time.Millisecond))

	return result, nil
}

// ResultHandler receives each successful sequence result along with the
// sequence that produced it, before the batch moves on.
type ResultHandler func(seq config.Sequence, res *Result) error

// RunManifest evaluates every sequence in the manifest. A failing sequence
// does not stop the batch; the errors are joined and returned alongside the
// results that succeeded. A non-nil handle is called after each successful
// sequence; a handle error aborts the batch immediately.
func (r *Runner) RunManifest(ctx context.Context, m *config.Manifest, handle ResultHandler) ([]*Result, error) {
	var results []*Result
	var errs []error
	for _, seq := range m.Sequences {
		res, err := r.Run(ctx, seq)
		if err != nil {
			logutil.Logf("sequence %s failed: %v", seq.Name, err)
			errs = append(errs, fmt.Errorf("sequence %s: %w", seq.Name, err))
			continue
		}
		if handle != nil {
			if err := handle(seq, res); err != nil {
				return results, err
			}
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
