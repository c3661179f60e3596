// Package report serves the evaluation run database over HTTP: JSON listings
// of recorded runs, rendered trajectory and error charts, and the admin debug
// surface for the underlying SQLite database.
package report

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/rundb"
)

// echartsAssetsPrefix is the assets host injected into rendered chart pages.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// WebServer handles the HTTP interface over the run database.
type WebServer struct {
	address string
	db      *rundb.DB
	store   *rundb.RunStore
	fs      fsutil.FileSystem
	server  *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	DB      *rundb.DB
	FS      fsutil.FileSystem
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	fs := config.FS
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	ws := &WebServer{
		address: config.Address,
		db:      config.DB,
		store:   rundb.NewRunStore(config.DB),
		fs:      fs,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown
// when the context is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/runs", ws.handleRuns)
	mux.HandleFunc("/api/runs/", ws.handleRun)
	mux.HandleFunc("/charts/run", ws.handleRunChart)
	mux.HandleFunc("/charts/rmse", ws.handleRMSEChart)

	ws.db.AttachAdminRoutes(mux)

	return mux
}

// Handler exposes the configured mux, primarily for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
