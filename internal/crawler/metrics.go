package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	unitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "git2neo",
		Name:      "units_total",
		Help:      "Expansion units finished, by kind and status.",
	}, []string{"kind", "status"})

	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "git2neo",
		Name:      "pages_total",
		Help:      "GraphQL pages committed, by unit kind.",
	}, []string{"kind"})

	itemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "git2neo",
		Name:      "items_total",
		Help:      "Connection items processed, by unit kind.",
	}, []string{"kind"})

	nodesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "git2neo",
		Name:      "nodes_created_total",
		Help:      "Nodes created by expansion units, by unit kind.",
	}, []string{"kind"})

	edgesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "git2neo",
		Name:      "edges_created_total",
		Help:      "Edges created by expansion units, by unit kind.",
	}, []string{"kind"})

	unitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "git2neo",
		Name:      "unit_duration_seconds",
		Help:      "Wall time of one expansion unit.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
	}, []string{"kind"})
)

func observeResult(res Result) {
	kind := string(res.Kind)
	unitsTotal.WithLabelValues(kind, res.Status()).Inc()
	pagesTotal.WithLabelValues(kind).Add(float64(res.Pages))
	itemsTotal.WithLabelValues(kind).Add(float64(res.Items))
	nodesCreatedTotal.WithLabelValues(kind).Add(float64(res.NodesCreated))
	edgesCreatedTotal.WithLabelValues(kind).Add(float64(res.EdgesCreated))
	unitDuration.WithLabelValues(kind).Observe(res.Duration.Seconds())
}
