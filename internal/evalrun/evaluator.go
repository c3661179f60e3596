// Package evalrun drives the trajectory evaluation pipeline: convert the
// ground truth, repair the estimate, align the pair, then hand both files
// to the external ATE evaluator and parse its report.
package evalrun

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/banshee-data/trajectory.report/internal/config"
)

// Logger defines the interface for debug logging.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// nopLogger is a no-op logger implementation.
type nopLogger struct{}

func (n nopLogger) Debugf(format string, args ...interface{}) {}

// Evaluator invokes the external trajectory-error tool on an aligned file
// pair. The tool is opaque: it is run as a subprocess and only its text
// output is interpreted.
type Evaluator struct {
	PythonBin string
	Script    string
	ExtraArgs []string
	Timeout   time.Duration
	DryRun    bool
	Logger    Logger
}

// NewEvaluator creates an evaluator from the configured options. When no
// evaluator_args are configured the tool is asked for its verbose report,
// which is the form the metrics parser understands.
func NewEvaluator(opts *config.Options) *Evaluator {
	if opts == nil {
		opts = config.EmptyOptions()
	}
	extraArgs := opts.EvaluatorArgs
	if len(extraArgs) == 0 {
		extraArgs = []string{"--verbose"}
	}
	return &Evaluator{
		PythonBin: opts.GetPythonBin(),
		Script:    opts.GetEvaluatorScript(),
		ExtraArgs: extraArgs,
		Timeout:   opts.GetEvaluatorTimeout(),
		Logger:    nopLogger{},
	}
}

// SetLogger sets the debug logger for the evaluator.
func (e *Evaluator) SetLogger(logger Logger) {
	if logger != nil {
		e.Logger = logger
	}
}

// Evaluate runs the evaluator on a ground-truth/estimate file pair and
// returns its combined output.
func (e *Evaluator) Evaluate(ctx context.Context, gtPath, estPath string) (string, error) {
	args := append([]string{e.Script}, e.ExtraArgs...)
	args = append(args, gtPath, estPath)
	display := e.PythonBin + " " + strings.Join(args, " ")

	if e.DryRun {
		return fmt.Sprintf("[DRY-RUN] Would execute: %s", display), nil
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	e.Logger.Debugf("Executing: %s", display)

	cmd := exec.CommandContext(ctx, e.PythonBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		e.Logger.Debugf("Evaluator failed: %v, output: %s", err, output)
		if ctx.Err() == context.DeadlineExceeded {
			return string(output), fmt.Errorf("evaluator timed out after %s", e.Timeout)
		}
		return string(output), fmt.Errorf("evaluator failed: %w", err)
	}
	return string(output), nil
}
