// Package transform implements the trajectory file transforms: matrix to
// TUM conversion, spacing repair, and pairwise alignment. Each transform
// reads one or two complete input files and writes complete output files;
// on failure the partial output is removed so a truncated file is never
// mistaken for a finished one.
package transform

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/traj"
)

// MatrixToTUM converts a file of row-major 4x4 rigid transforms, one matrix
// of 16 floats per line, into TUM trajectory lines. Emitted poses get
// sequential zero-padded timestamps starting at 0. The options control how
// many input frames are processed (frame_limit, 0 means all), which frames
// are kept (every keyframe_stride-th), and the output decimal precision.
// Returns the number of poses written.
func MatrixToTUM(fs fsutil.FileSystem, inPath, outPath string, opts *config.Options) (int, error) {
	if opts == nil {
		opts = config.EmptyOptions()
	}
	limit := opts.GetFrameLimit()
	stride := opts.GetKeyframeStride()
	precision := opts.GetPrecision()

	in, err := fs.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", inPath, err)
	}
	defer in.Close()

	out, err := fs.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}

	written, err := convertLines(in, out, inPath, limit, stride, precision)
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

func convertLines(in io.Reader, out io.Writer, inPath string, limit, stride, precision int) (int, error) {
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	processed := 0
	written := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if limit > 0 && processed >= limit {
			break
		}
		keep := processed%stride == 0
		processed++
		if !keep {
			continue
		}

		m, err := traj.ParseMatrixLine(inPath, lineNo, line)
		if err != nil {
			return 0, err
		}
		pose, err := traj.PoseFromMatrix(inPath, lineNo, written, m)
		if err != nil {
			return 0, err
		}
		if _, err := fmt.Fprintln(w, pose.TUMLine(precision)); err != nil {
			return 0, fmt.Errorf("write pose %d: %w", written, err)
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
