package report

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trajectory.report/internal/rundb"
	"github.com/banshee-data/trajectory.report/internal/traj"
)

// handleRunChart renders an XY overlay (HTML) of the aligned ground-truth and
// estimated paths recorded for one run. Query params:
//   - id (required): run ID
func (ws *WebServer) handleRunChart(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("id")
	if runID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "id query parameter required")
		return
	}

	run, err := ws.store.Get(runID)
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if run.GTAlignedPath == "" || run.EstAlignedPath == "" {
		ws.writeJSONError(w, http.StatusNotFound, "run has no aligned artifacts")
		return
	}

	gtData, err := ws.scatterXY(run.GTAlignedPath)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("load ground truth: %v", err))
		return
	}
	estData, err := ws.scatterXY(run.EstAlignedPath)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("load estimate: %v", err))
		return
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory overlay", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Sequence %s", run.Sequence),
			Subtitle: fmt.Sprintf("run=%s pairs=%d rmse=%.6f m", run.RunID, run.AlignedPairs, run.RMSE),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	scatter.AddSeries("ground truth", gtData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	scatter.AddSeries("estimate", estData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleRMSEChart renders a line chart (HTML) of ATE RMSE across recorded
// runs, oldest first. Query params:
//   - sequence (optional): restrict to one sequence
//   - limit (optional; default 100)
func (ws *WebServer) handleRMSEChart(w http.ResponseWriter, r *http.Request) {
	var runs []*rundb.Run
	var err error
	title := "ATE RMSE over runs"

	if sequence := r.URL.Query().Get("sequence"); sequence != "" {
		runs, err = ws.store.ListBySequence(sequence)
		title = fmt.Sprintf("ATE RMSE over runs: %s", sequence)
	} else {
		runs, err = ws.store.ListRecent(100)
	}
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(runs) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	// Store listings are newest first; plot oldest first.
	x := make([]string, 0, len(runs))
	y := make([]opts.LineData, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		x = append(x, time.Unix(0, run.CreatedAt).Format("01-02 15:04"))
		y = append(y, opts.LineData{Value: run.RMSE, Name: run.RunID})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "ATE RMSE", Width: "100%", Height: "720px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d runs", len(runs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "RMSE (m)"}),
	)
	line.SetXAxis(x).AddSeries("rmse", y)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// scatterXY loads the XY translation components of an aligned TUM file as
// scatter points.
func (ws *WebServer) scatterXY(path string) ([]opts.ScatterData, error) {
	f, err := ws.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := traj.ReadTUM(f, path)
	if err != nil {
		return nil, err
	}

	data := make([]opts.ScatterData, 0, len(records))
	for _, rec := range records {
		data = append(data, opts.ScatterData{Value: []interface{}{rec.TX, rec.TY}})
	}
	return data, nil
}
