package ui

import (
	"net/http"

	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/internal/stats"
	"github.com/thep200/git2neo/internal/store"
)

// RankedResponse lists nodes by STARRED edge count, most first.
type RankedResponse struct {
	Label string             `json:"label"`
	Items []store.RankedNode `json:"items"`
}

// getPeople returns the people who starred the most repositories
func (h *Handler) getPeople(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, model.LabelPerson)
}

// getRepos returns the repositories with the most stargazers
func (h *Handler) getRepos(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, model.LabelRepo)
}

func (h *Handler) ranked(w http.ResponseWriter, r *http.Request, label model.Label) {
	limit := intParam(r, "limit", 50, 1000)
	items, err := h.Store.TopKByEdgeCount(r.Context(), label, model.EdgeStarred, limit)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to rank %s nodes: %v", label, err)
		h.writeError(w, r, http.StatusInternalServerError, "Failed to query graph")
		return
	}
	if items == nil {
		items = []store.RankedNode{}
	}
	h.writeJSON(w, r, http.StatusOK, RankedResponse{Label: string(label), Items: items})
}

// getHistogram returns histogram data of STARRED connections, ?of=people|repos
func (h *Handler) getHistogram(w http.ResponseWriter, r *http.Request) {
	bins := intParam(r, "bins", stats.DefaultBins, 200)

	var (
		hist stats.Histogram
		err  error
	)
	switch r.URL.Query().Get("of") {
	case "", "people":
		hist, err = stats.PeopleByStars(r.Context(), h.Store, bins)
	case "repos":
		hist, err = stats.ReposByStargazers(r.Context(), h.Store, bins)
	default:
		h.writeError(w, r, http.StatusBadRequest, "of must be people or repos")
		return
	}
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to build histogram: %v", err)
		h.writeError(w, r, http.StatusInternalServerError, "Failed to query graph")
		return
	}
	h.writeJSON(w, r, http.StatusOK, hist)
}
