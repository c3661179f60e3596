package traj

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationTol bounds the allowed deviation of a rotation block from a proper
// rotation: |det(R)-1| and every entry of |R^T R - I| must stay under it.
// Dataset poses printed with six decimal places land well inside this bound.
const RotationTol = 1e-3

// UnitTol bounds the deviation of an emitted quaternion from unit norm.
const UnitTol = 1e-6

// ParseMatrixLine parses a row-major 4x4 rigid transform from a line of 16
// whitespace-separated floats. The path and 1-based line number are carried
// into any returned FormatError.
func ParseMatrixLine(path string, lineNo int, line string) (*mat.Dense, error) {
	fields := strings.Fields(line)
	if len(fields) != 16 {
		return nil, &FormatError{
			Path:   path,
			Line:   lineNo,
			Reason: fmt.Sprintf("expected 16 fields, got %d", len(fields)),
			Text:   strings.TrimSpace(line),
		}
	}

	vals := make([]float64, 16)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &FormatError{
				Path:   path,
				Line:   lineNo,
				Reason: fmt.Sprintf("field %d is not a number", i+1),
				Text:   strings.TrimSpace(line),
			}
		}
		vals[i] = v
	}
	return mat.NewDense(4, 4, vals), nil
}

// PoseFromMatrix extracts the translation and rotation from a 4x4 rigid
// transform and assigns the given frame counter. The rotation block is
// validated before conversion; a block that is not a proper rotation within
// RotationTol yields a NumericError.
func PoseFromMatrix(path string, lineNo, frame int, m *mat.Dense) (Pose, error) {
	if err := validateTransform(path, lineNo, m); err != nil {
		return Pose{}, err
	}
	return Pose{
		Frame: frame,
		X:     m.At(0, 3),
		Y:     m.At(1, 3),
		Z:     m.At(2, 3),
		Rot:   quatFromRotation(m),
	}, nil
}

// validateTransform checks the homogeneous row and the rotation block of a
// 4x4 transform.
func validateTransform(path string, lineNo int, m *mat.Dense) error {
	for j, want := range [4]float64{0, 0, 0, 1} {
		if math.Abs(m.At(3, j)-want) > RotationTol {
			return &NumericError{
				Path:   path,
				Line:   lineNo,
				Detail: fmt.Sprintf("homogeneous row is not [0 0 0 1]: entry %d is %g", j, m.At(3, j)),
			}
		}
	}

	r := m.Slice(0, 3, 0, 3)
	det := mat.Det(r)
	if math.Abs(det-1) > RotationTol {
		return &NumericError{
			Path:   path,
			Line:   lineNo,
			Detail: fmt.Sprintf("rotation determinant is %.6f, want 1", det),
		}
	}

	var rtr mat.Dense
	rtr.Mul(r.T(), r)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(rtr.At(i, j)-want) > RotationTol {
				return &NumericError{
					Path:   path,
					Line:   lineNo,
					Detail: fmt.Sprintf("rotation is not orthonormal: (R^T R)[%d,%d] is %.6f", i, j, rtr.At(i, j)),
				}
			}
		}
	}
	return nil
}

// quatFromRotation converts the rotation block of a validated transform into
// a unit quaternion. Branch selection follows the larger of the trace and the
// diagonal entries so the divisor stays away from zero for every rotation.
func quatFromRotation(m *mat.Dense) quat.Number {
	m00, m01, m02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m10, m11, m12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	m20, m21, m22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	var q quat.Number
	tr := m00 + m11 + m22
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Number{
			Real: 0.25 * s,
			Imag: (m21 - m12) / s,
			Jmag: (m02 - m20) / s,
			Kmag: (m10 - m01) / s,
		}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Number{
			Real: (m21 - m12) / s,
			Imag: 0.25 * s,
			Jmag: (m01 + m10) / s,
			Kmag: (m02 + m20) / s,
		}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Number{
			Real: (m02 - m20) / s,
			Imag: (m01 + m10) / s,
			Jmag: 0.25 * s,
			Kmag: (m12 + m21) / s,
		}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Number{
			Real: (m10 - m01) / s,
			Imag: (m02 + m20) / s,
			Jmag: (m12 + m21) / s,
			Kmag: 0.25 * s,
		}
	}
	return quat.Scale(1/quat.Abs(q), q)
}

// RotationFromQuat expands a unit quaternion into its 3x3 rotation matrix.
func RotationFromQuat(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}
