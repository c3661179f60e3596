package traj

import "fmt"

// FormatError reports an input line that does not match the expected numeric
// layout. Line numbers are 1-based.
type FormatError struct {
	Path   string
	Line   int
	Reason string
	Text   string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s:%d: %s: %q", e.Path, e.Line, e.Reason, e.Text)
}

// NumericError reports a transform whose rotation block is not a proper
// rotation within tolerance.
type NumericError struct {
	Path   string
	Line   int
	Detail string
}

func (e *NumericError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Detail)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Detail)
}

// EmptyInputError reports a trajectory file with no pose lines.
type EmptyInputError struct {
	Path string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: trajectory has no pose lines", e.Path)
}
