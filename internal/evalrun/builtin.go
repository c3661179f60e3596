package evalrun

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/traj"
)

// ComputeMetrics computes the absolute translational error statistics for an
// aligned ground-truth/estimate pair in-process, without invoking the
// external evaluator. Correspondence is positional, so both files must have
// the same number of poses. The standard deviation is the population form,
// matching the external tool's report.
func ComputeMetrics(fs fsutil.FileSystem, gtPath, estPath string) (*Metrics, error) {
	gt, err := readRecords(fs, gtPath)
	if err != nil {
		return nil, err
	}
	est, err := readRecords(fs, estPath)
	if err != nil {
		return nil, err
	}
	if len(gt) == 0 {
		return nil, &traj.EmptyInputError{Path: gtPath}
	}
	if len(est) == 0 {
		return nil, &traj.EmptyInputError{Path: estPath}
	}
	if len(gt) != len(est) {
		return nil, fmt.Errorf("pose count mismatch: %s has %d, %s has %d",
			gtPath, len(gt), estPath, len(est))
	}

	errs := make([]float64, len(gt))
	var sumSq float64
	for i := range gt {
		dx := gt[i].TX - est[i].TX
		dy := gt[i].TY - est[i].TY
		dz := gt[i].TZ - est[i].TZ
		errs[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)
		sumSq += errs[i] * errs[i]
	}

	sorted := make([]float64, len(errs))
	copy(sorted, errs)
	sort.Float64s(sorted)

	return &Metrics{
		ComparedPairs: len(errs),
		RMSE:          math.Sqrt(sumSq / float64(len(errs))),
		Mean:          stat.Mean(errs, nil),
		Median:        stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Std:           math.Sqrt(stat.PopVariance(errs, nil)),
		Min:           floats.Min(errs),
		Max:           floats.Max(errs),
	}, nil
}

// VerboseReport renders the metrics in the external evaluator's verbose
// output format, so stored run output stays uniform across both paths.
func (m *Metrics) VerboseReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compared_pose_pairs %d pairs\n", m.ComparedPairs)
	fmt.Fprintf(&b, "absolute_translational_error.rmse %.6f m\n", m.RMSE)
	fmt.Fprintf(&b, "absolute_translational_error.mean %.6f m\n", m.Mean)
	fmt.Fprintf(&b, "absolute_translational_error.median %.6f m\n", m.Median)
	fmt.Fprintf(&b, "absolute_translational_error.std %.6f m\n", m.Std)
	fmt.Fprintf(&b, "absolute_translational_error.min %.6f m\n", m.Min)
	fmt.Fprintf(&b, "absolute_translational_error.max %.6f m\n", m.Max)
	return b.String()
}

func readRecords(fs fsutil.FileSystem, path string) ([]traj.Record, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return traj.ReadTUM(f, path)
}
