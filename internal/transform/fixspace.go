package transform

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/traj"
)

// FixSpacing repairs TUM lines where the producer concatenated the
// fixed-width timestamp directly onto the first coordinate. The first
// TimestampWidth characters of each line are taken as the timestamp and the
// remainder must split into exactly 7 coordinate tokens; the line is
// re-emitted with single spaces. Lines that are already well formed pass
// through unchanged. Returns the number of lines written.
func FixSpacing(fs fsutil.FileSystem, inPath, outPath string) (int, error) {
	in, err := fs.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", inPath, err)
	}
	defer in.Close()

	out, err := fs.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}

	written, err := fixLines(in, out, inPath)
	closeErr := out.Close()
	if err != nil {
		fs.Remove(outPath)
		return 0, err
	}
	if closeErr != nil {
		fs.Remove(outPath)
		return 0, fmt.Errorf("close %s: %w", outPath, closeErr)
	}
	return written, nil
}

func fixLines(in io.Reader, out io.Writer, inPath string) (int, error) {
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)

	written := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fixed, err := FixLine(inPath, lineNo, line)
		if err != nil {
			return 0, err
		}
		if _, err := fmt.Fprintln(w, fixed); err != nil {
			return 0, fmt.Errorf("write line %d: %w", lineNo, err)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read %s: %w", inPath, err)
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("flush output: %w", err)
	}
	return written, nil
}

// FixLine repairs a single line. The timestamp is the first TimestampWidth
// characters verbatim; whatever follows must split into the 7 coordinate
// tokens of a TUM pose.
func FixLine(path string, lineNo int, line string) (string, error) {
	if len(line) < traj.TimestampWidth {
		return "", &traj.FormatError{
			Path:   path,
			Line:   lineNo,
			Reason: fmt.Sprintf("line shorter than %d-character timestamp", traj.TimestampWidth),
			Text:   line,
		}
	}
	stamp := line[:traj.TimestampWidth]
	fields := strings.Fields(line[traj.TimestampWidth:])
	if len(fields) != 7 {
		return "", &traj.FormatError{
			Path:   path,
			Line:   lineNo,
			Reason: fmt.Sprintf("expected 7 coordinate tokens after timestamp, got %d", len(fields)),
			Text:   line,
		}
	}
	return stamp + " " + strings.Join(fields, " "), nil
}
