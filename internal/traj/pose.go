// Package traj defines camera trajectory poses and the numeric conversions
// between rigid transform matrices and TUM-format pose lines.
//
// A TUM line is eight space-separated tokens:
//
//	timestamp tx ty tz qx qy qz qw
//
// where the timestamp here is a zero-padded frame counter rather than a wall
// clock, the translation is in meters and the rotation is a unit quaternion
// with the scalar part last on the wire.
package traj

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/num/quat"
)

// TimestampWidth is the fixed width of the zero-padded frame counter used as
// the TUM timestamp token.
const TimestampWidth = 6

// DefaultPrecision is the number of decimal places emitted for each float
// token when no override is configured.
const DefaultPrecision = 6

// Pose is one camera pose: a frame counter, a translation and a rotation.
// The quaternion carries the scalar part in Real, so the TUM wire order
// qx qy qz qw maps to Imag, Jmag, Kmag, Real.
type Pose struct {
	Frame   int
	X, Y, Z float64
	Rot     quat.Number
}

// Trajectory is an ordered pose sequence. Correspondence between two
// trajectories is positional: index i of one pairs with index i of the other.
type Trajectory []Pose

// FormatTimestamp renders a frame counter as the fixed-width timestamp token.
func FormatTimestamp(frame int) string {
	return fmt.Sprintf("%0*d", TimestampWidth, frame)
}

// TUMLine renders the pose as a single TUM line with the given number of
// decimal places. No trailing whitespace is emitted.
func (p Pose) TUMLine(precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return fmt.Sprintf("%s %.*f %.*f %.*f %.*f %.*f %.*f %.*f",
		FormatTimestamp(p.Frame),
		precision, p.X, precision, p.Y, precision, p.Z,
		precision, p.Rot.Imag, precision, p.Rot.Jmag, precision, p.Rot.Kmag,
		precision, p.Rot.Real)
}

// Record is one parsed TUM line. The timestamp token is kept verbatim so that
// rewrites and comparisons preserve the original text.
type Record struct {
	Stamp          string
	TX, TY, TZ     float64
	QX, QY, QZ, QW float64
}

// Quat returns the record's rotation as a quaternion.
func (r Record) Quat() quat.Number {
	return quat.Number{Real: r.QW, Imag: r.QX, Jmag: r.QY, Kmag: r.QZ}
}

// ParseTUMLine parses a single TUM line. The path and 1-based line number are
// carried into any returned FormatError.
func ParseTUMLine(path string, lineNo int, line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 8 {
		return Record{}, &FormatError{
			Path:   path,
			Line:   lineNo,
			Reason: fmt.Sprintf("expected 8 fields, got %d", len(fields)),
			Text:   strings.TrimSpace(line),
		}
	}

	vals := make([]float64, 7)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, &FormatError{
				Path:   path,
				Line:   lineNo,
				Reason: fmt.Sprintf("field %d is not a number", i+2),
				Text:   strings.TrimSpace(line),
			}
		}
		vals[i] = v
	}

	return Record{
		Stamp: fields[0],
		TX:    vals[0], TY: vals[1], TZ: vals[2],
		QX: vals[3], QY: vals[4], QZ: vals[5], QW: vals[6],
	}, nil
}

// ReadTUM parses all pose lines from r. Blank lines are skipped. The path is
// used only for error context.
func ReadTUM(r io.Reader, path string) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseTUMLine(path, lineNo, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
