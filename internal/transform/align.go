package transform

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/traj"
)

// AlignConfig controls trajectory alignment. VerifyTimestamps rejects pairs
// whose per-line timestamps disagree; turning it off restores purely
// positional pairing, which then silently assumes both producers emitted
// frame-for-frame matching sequences. FrameLimit, when positive, caps the
// aligned length below the natural minimum.
type AlignConfig struct {
	VerifyTimestamps bool
	FrameLimit       int
}

// DefaultAlignConfig enables timestamp verification.
func DefaultAlignConfig() AlignConfig {
	return AlignConfig{VerifyTimestamps: true}
}

// TimestampMismatchError reports a pair of lines whose timestamps disagree.
type TimestampMismatchError struct {
	Index    int // zero-based pair index
	GTStamp  string
	EstStamp string
}

func (e *TimestampMismatchError) Error() string {
	return fmt.Sprintf("pair %d: timestamp mismatch: ground truth %q vs estimate %q",
		e.Index, e.GTStamp, e.EstStamp)
}

// AlignTrajectories truncates two TUM files to their common prefix length
// n = min(len(gt), len(est)) and writes the paired outputs. Lines are
// copied verbatim. Returns n.
func AlignTrajectories(fs fsutil.FileSystem, gtIn, estIn, gtOut, estOut string, cfg AlignConfig) (int, error) {
	gtLines, err := readPoseLines(fs, gtIn)
	if err != nil {
		return 0, err
	}
	estLines, err := readPoseLines(fs, estIn)
	if err != nil {
		return 0, err
	}

	if len(gtLines) == 0 {
		return 0, &traj.EmptyInputError{Path: gtIn}
	}
	if len(estLines) == 0 {
		return 0, &traj.EmptyInputError{Path: estIn}
	}

	n := min(len(gtLines), len(estLines))
	if cfg.FrameLimit > 0 && cfg.FrameLimit < n {
		n = cfg.FrameLimit
	}

	if cfg.VerifyTimestamps {
		for i := 0; i < n; i++ {
			gtStamp := strings.Fields(gtLines[i])[0]
			estStamp := strings.Fields(estLines[i])[0]
			if gtStamp != estStamp {
				return 0, &TimestampMismatchError{Index: i, GTStamp: gtStamp, EstStamp: estStamp}
			}
		}
	}

	if err := writeLines(fs, gtOut, gtLines[:n]); err != nil {
		fs.Remove(gtOut)
		return 0, err
	}
	if err := writeLines(fs, estOut, estLines[:n]); err != nil {
		fs.Remove(gtOut)
		fs.Remove(estOut)
		return 0, err
	}
	return n, nil
}

// readPoseLines returns the non-blank lines of a file verbatim.
func readPoseLines(fs fsutil.FileSystem, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

func writeLines(fs fsutil.FileSystem, path string, lines []string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
