package trajplot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/traj"
)

func writeTUM(t *testing.T, path string, frames int) {
	t.Helper()
	var b strings.Builder
	for i := 0; i < frames; i++ {
		fmt.Fprintf(&b, "%06d %.6f %.6f 0.300000 0.000000 0.000000 0.000000 1.000000\n",
			i, float64(i)*0.1, float64(i)*0.05)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("Failed to write TUM fixture: %v", err)
	}
}

func TestRenderPaths(t *testing.T) {
	tmpDir := t.TempDir()
	gtPath := filepath.Join(tmpDir, "gt.txt")
	estPath := filepath.Join(tmpDir, "est.txt")
	writeTUM(t, gtPath, 50)
	writeTUM(t, estPath, 50)

	for _, ext := range []string{"png", "svg"} {
		outPath := filepath.Join(tmpDir, "paths."+ext)
		if err := RenderPaths(fsutil.OSFileSystem{}, gtPath, estPath, outPath); err != nil {
			t.Fatalf("RenderPaths(%s) error = %v", ext, err)
		}
		info, err := os.Stat(outPath)
		if err != nil {
			t.Fatalf("Expected output file %s: %v", outPath, err)
		}
		if info.Size() == 0 {
			t.Errorf("Output file %s is empty", outPath)
		}
	}
}

func TestRenderPathsEmptyInput(t *testing.T) {
	tmpDir := t.TempDir()
	gtPath := filepath.Join(tmpDir, "gt.txt")
	estPath := filepath.Join(tmpDir, "est.txt")
	if err := os.WriteFile(gtPath, nil, 0644); err != nil {
		t.Fatalf("Failed to write empty file: %v", err)
	}
	writeTUM(t, estPath, 5)

	err := RenderPaths(fsutil.OSFileSystem{}, gtPath, estPath, filepath.Join(tmpDir, "out.png"))
	var emptyErr *traj.EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("RenderPaths error = %v, want EmptyInputError", err)
	}
}

func TestRenderPathsBadLine(t *testing.T) {
	tmpDir := t.TempDir()
	gtPath := filepath.Join(tmpDir, "gt.txt")
	estPath := filepath.Join(tmpDir, "est.txt")
	if err := os.WriteFile(gtPath, []byte("000000 not a pose\n"), 0644); err != nil {
		t.Fatalf("Failed to write bad file: %v", err)
	}
	writeTUM(t, estPath, 5)

	err := RenderPaths(fsutil.OSFileSystem{}, gtPath, estPath, filepath.Join(tmpDir, "out.png"))
	var formatErr *traj.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("RenderPaths error = %v, want FormatError", err)
	}
}
