// Package server wires the HTTP surface: the Huma API, the Datastar
// dashboard, static assets, and the Prometheus endpoint.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog/log"

	"github.com/opencurb/curbmap/internal/api"
	"github.com/opencurb/curbmap/internal/api/dashboard"
	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/db"
	"github.com/opencurb/curbmap/internal/geo"
	"github.com/opencurb/curbmap/internal/humastar"
	"github.com/opencurb/curbmap/internal/logging"
	"github.com/opencurb/curbmap/internal/metrics"
	"github.com/opencurb/curbmap/internal/service"
	"github.com/opencurb/curbmap/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host        string
	Port        string
	DataDir     string
	WebDir      string // path to web/ for static files and templates
	CatalogPath string // dataset catalog YAML; empty uses the built-in DC catalog
	DBPath      string // DuckDB file; empty stores it under the data dir
	CacheSize   int    // dataset cache entries; 0 uses the loader default
}

// Server is the dashboard HTTP server.
type Server struct {
	config    Config
	mux       *http.ServeMux
	handler   http.Handler
	humaAPI   huma.API
	db        *sql.DB
	registry  *catalog.Registry
	loader    *geo.Loader
	services  *api.Services
	renderer  *templates.Renderer
	collector *metrics.Collector
}

// New creates a dashboard server. It fails only on a broken catalog
// file; a missing database or web directory degrades the matching
// endpoints instead.
func New(cfg Config) (*Server, error) {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("curbmap API", api.Version)
	humaConfig.Info.Description = "Map dashboard API serving styled GeoJSON layers, transit stops, and dataset attributes."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, humastar.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	registry := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		registry = loaded
	}

	collector := metrics.NewCollector()
	loader := geo.NewLoader(cfg.DataDir, cfg.CacheSize, collector)

	conn, err := db.Get(db.Config{DataDir: cfg.DataDir, Name: "curbmap", Path: cfg.DBPath})
	if err != nil {
		log.Warn().Err(err).Msg("attribute database unavailable")
		conn = nil
	}

	transit := service.NewTransitService(registry, loader)
	services := &api.Services{
		Dataset: service.NewDatasetService(registry, loader),
		Transit: transit,
		Map:     service.NewMapService(registry, loader, transit, collector),
		Stats:   service.NewStatsService(conn, registry, loader),
		Loader:  loader,
	}

	var renderer *templates.Renderer
	if cfg.WebDir != "" {
		r, err := templates.New(cfg.WebDir)
		if err != nil {
			log.Warn().Err(err).Str("web_dir", cfg.WebDir).Msg("dashboard templates unavailable")
		} else {
			renderer = r
		}
	}

	s := &Server{
		config:    cfg,
		mux:       mux,
		humaAPI:   humaAPI,
		db:        conn,
		registry:  registry,
		loader:    loader,
		services:  services,
		renderer:  renderer,
		collector: collector,
	}

	s.routes()
	humastar.AutoLinks(s.humaAPI)

	s.handler = logging.RequestLogger(collector.Instrument(mux))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated API description for export.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

func (s *Server) routes() {
	h := api.NewAPIHandler(s.services)
	h.RegisterHealth(s.humaAPI)
	h.RegisterDatasets(s.humaAPI)
	h.RegisterMap(s.humaAPI)
	h.RegisterTransit(s.humaAPI)

	api.NewInfoHandler(s.config.DataDir, s.registry, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Dashboard SSE routes need templates to render fragments.
	if s.renderer != nil {
		dash := dashboard.NewDashboardHandler(
			s.registry, s.services.Dataset, s.services.Transit, s.services.Map, s.renderer)
		dash.RegisterRoutes(s.humaAPI)
	}

	s.mux.Handle("/metrics", s.collector.Handler())

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	s.mux.HandleFunc("/", s.handleDashboard)
}

// handleDashboard serves the dashboard page with the entry-point Link
// headers attached. Without templates it answers with a status JSON so
// the API remains usable headless.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	for _, link := range humastar.RootLinks() {
		w.Header().Add("Link", link)
	}

	if s.renderer == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"service": "curbmap", "status": "running"})
		return
	}

	page, err := s.renderer.Render("dashboard.html", nil)
	if err != nil {
		log.Error().Err(err).Msg("dashboard render failed")
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
}
