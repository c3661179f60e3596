// Package trajplot renders static comparison plots of trajectory pairs.
package trajplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/traj"
)

// RenderPaths draws the ground-truth and estimated XY paths on a single
// square plot and saves it to outPath. The output format follows the file
// extension (.png, .svg, .pdf). Inputs are TUM files; the translation X and Y
// components form the path.
func RenderPaths(fs fsutil.FileSystem, gtPath, estPath, outPath string) error {
	gtPts, err := readXY(fs, gtPath)
	if err != nil {
		return err
	}
	estPts, err := readXY(fs, estPath)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Trajectory comparison"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	gtLine, err := plotter.NewLine(gtPts)
	if err != nil {
		return fmt.Errorf("build ground-truth line: %w", err)
	}
	gtLine.Color = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	gtLine.Width = vg.Points(1)

	estLine, err := plotter.NewLine(estPts)
	if err != nil {
		return fmt.Errorf("build estimate line: %w", err)
	}
	estLine.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	estLine.Width = vg.Points(1)
	estLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(gtLine, estLine)
	p.Legend.Add("ground truth", gtLine)
	p.Legend.Add("estimate", estLine)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 8*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save plot %s: %w", outPath, err)
	}
	return nil
}

// readXY loads the XY translation components of a TUM file as plot points.
func readXY(fs fsutil.FileSystem, path string) (plotter.XYs, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := traj.ReadTUM(f, path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &traj.EmptyInputError{Path: path}
	}

	pts := make(plotter.XYs, len(records))
	for i, r := range records {
		pts[i] = plotter.XY{X: r.TX, Y: r.TY}
	}
	return pts, nil
}
