package ui

import (
	"errors"
	"net/http"

	"github.com/thep200/git2neo/api"
)

func (h *Handler) crawlerAvailable(w http.ResponseWriter, r *http.Request) bool {
	if h.Crawler == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "Crawl control is disabled")
		return false
	}
	return true
}

// startCrawl starts a background crawl, ?mode=full|followers
func (h *Handler) startCrawl(w http.ResponseWriter, r *http.Request) {
	if !h.crawlerAvailable(w, r) {
		return
	}
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = api.ModeFull
	}

	msg, err := h.Crawler.StartCrawling(r.Context(), mode)
	if errors.Is(err, api.ErrUnknownMode) {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to start crawl: %v", err)
		h.writeError(w, r, http.StatusInternalServerError, "Failed to start crawl")
		return
	}
	h.writeJSON(w, r, http.StatusAccepted, map[string]string{"message": msg})
}

func (h *Handler) stopCrawl(w http.ResponseWriter, r *http.Request) {
	if !h.crawlerAvailable(w, r) {
		return
	}
	msg, _ := h.Crawler.StopCrawling()
	h.writeJSON(w, r, http.StatusOK, map[string]string{"message": msg})
}

func (h *Handler) getCrawlStats(w http.ResponseWriter, r *http.Request) {
	if !h.crawlerAvailable(w, r) {
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.Crawler.GetCrawlStats())
}
