package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thep200/git2neo/api"
	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/store"
	"github.com/thep200/git2neo/pkg/log"
)

// Handler manages HTTP requests for the UI
type Handler struct {
	Logger  log.Logger
	Config  *cfg.Config
	Store   store.Store
	Crawler *api.CrawlerAPI
}

// NewHandler creates a new UI handler
func NewHandler(logger log.Logger, config *cfg.Config, st store.Store, crawlerAPI *api.CrawlerAPI) (*Handler, error) {
	if st == nil {
		return nil, errors.New("ui handler needs a store")
	}
	return &Handler{
		Logger:  logger,
		Config:  config,
		Store:   st,
		Crawler: crawlerAPI,
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the UI
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Graph queries
	mux.HandleFunc("GET /api/people", h.getPeople)
	mux.HandleFunc("GET /api/repos", h.getRepos)
	mux.HandleFunc("GET /api/histogram", h.getHistogram)

	// Crawl control
	mux.HandleFunc("POST /api/crawl/start", h.startCrawl)
	mux.HandleFunc("POST /api/crawl/stop", h.stopCrawl)
	mux.HandleFunc("GET /api/crawl/stats", h.getCrawlStats)

	mux.Handle("GET /metrics", promhttp.Handler())
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, map[string]string{"error": msg})
}

// intParam reads a positive query parameter, falling back to def and capping
// at limit.
func intParam(r *http.Request, name string, def, limit int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return min(v, limit)
}
