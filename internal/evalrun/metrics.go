package evalrun

import (
	"fmt"
	"strconv"
	"strings"
)

// Metrics holds the absolute translational error statistics reported by the
// evaluator's verbose output.
type Metrics struct {
	ComparedPairs int     `json:"compared_pairs"`
	RMSE          float64 `json:"rmse"`
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	Std           float64 `json:"std"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
}

// ParseMetrics extracts metrics from evaluator output of the form
//
//	compared_pose_pairs 501 pairs
//	absolute_translational_error.rmse 0.012345 m
//	absolute_translational_error.mean 0.010101 m
//	...
//
// Lines that do not match a known metric are ignored. The pair count and
// RMSE are mandatory; the remaining statistics default to zero if absent.
func ParseMetrics(output string) (*Metrics, error) {
	m := &Metrics{}
	var sawPairs, sawRMSE bool

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "compared_pose_pairs":
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("bad compared_pose_pairs value %q: %w", fields[1], err)
			}
			m.ComparedPairs = v
			sawPairs = true
		case "absolute_translational_error.rmse":
			v, err := parseMetricValue(fields[0], fields[1])
			if err != nil {
				return nil, err
			}
			m.RMSE = v
			sawRMSE = true
		case "absolute_translational_error.mean":
			v, err := parseMetricValue(fields[0], fields[1])
			if err != nil {
				return nil, err
			}
			m.Mean = v
		case "absolute_translational_error.median":
			v, err := parseMetricValue(fields[0], fields[1])
			if err != nil {
				return nil, err
			}
			m.Median = v
		case "absolute_translational_error.std":
			v, err := parseMetricValue(fields[0], fields[1])
			if err != nil {
				return nil, err
			}
			m.Std = v
		case "absolute_translational_error.min":
			v, err := parseMetricValue(fields[0], fields[1])
			if err != nil {
				return nil, err
			}
			m.Min = v
		case "absolute_translational_error.max":
			v, err := parseMetricValue(fields[0], fields[1])
			if err != nil {
				return nil, err
			}
			m.Max = v
		}
	}

	if !sawPairs {
		return nil, fmt.Errorf("evaluator output missing compared_pose_pairs")
	}
	if !sawRMSE {
		return nil, fmt.Errorf("evaluator output missing absolute_translational_error.rmse")
	}
	return m, nil
}

func parseMetricValue(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q: %w", name, raw, err)
	}
	return v, nil
}
