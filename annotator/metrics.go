package annotator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	anchorResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paper_anchor_results_total",
		Help: "Highlight anchoring outcomes by resolution path (exact, fuzzy, none).",
	}, []string{"result"})

	indexRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paper_index_rebuilds_total",
		Help: "Text segment index rebuilds.",
	})

	searchQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paper_search_queries_total",
		Help: "Full-text search queries performed.",
	})

	degradedLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paper_degraded_loads_total",
		Help: "Document loads that proceeded without a complete text layer.",
	})
)
