// Package stats turns the graph's connection counts into histogram data.
// Rendering is left to whoever consumes the JSON.
package stats

import (
	"context"
	"fmt"

	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/internal/store"
)

const DefaultBins = 20

type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Histogram struct {
	Title string  `json:"title"`
	Total int     `json:"total"`
	Mean  float64 `json:"mean"`
	Bins  []Bin   `json:"bins"`
}

// Build spreads values over n equal-width bins between their min and max.
// Every bin is half-open except the last, which also holds the max.
func Build(values []int, n int) Histogram {
	if n <= 0 {
		n = DefaultBins
	}
	h := Histogram{Total: len(values)}
	if len(values) == 0 {
		return h
	}

	lo, hi, sum := values[0], values[0], 0
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
	}
	h.Mean = float64(sum) / float64(len(values))

	lower, upper := float64(lo), float64(hi)
	if lo == hi {
		lower, upper = lower-0.5, upper+0.5
	}
	width := (upper - lower) / float64(n)

	h.Bins = make([]Bin, n)
	for i := range h.Bins {
		h.Bins[i].Lower = lower + float64(i)*width
		h.Bins[i].Upper = lower + float64(i+1)*width
	}
	h.Bins[n-1].Upper = upper

	for _, v := range values {
		i := int((float64(v) - lower) / width)
		if i >= n {
			i = n - 1
		}
		h.Bins[i].Count++
	}
	h.Title = fmt.Sprintf("Mean: %.2f", h.Mean)
	return h
}

// PeopleByStars is the distribution of STARRED edges given per person.
func PeopleByStars(ctx context.Context, st store.Store, bins int) (Histogram, error) {
	return fromRanking(ctx, st, model.LabelPerson, bins)
}

// ReposByStargazers is the distribution of STARRED edges received per repo.
func ReposByStargazers(ctx context.Context, st store.Store, bins int) (Histogram, error) {
	return fromRanking(ctx, st, model.LabelRepo, bins)
}

func fromRanking(ctx context.Context, st store.Store, label model.Label, bins int) (Histogram, error) {
	ranked, err := st.TopKByEdgeCount(ctx, label, model.EdgeStarred, 0)
	if err != nil {
		return Histogram{}, fmt.Errorf("failed to count %s connections: %w", label, err)
	}
	values := make([]int, len(ranked))
	for i, r := range ranked {
		values[i] = r.Count
	}
	return Build(values, bins), nil
}
