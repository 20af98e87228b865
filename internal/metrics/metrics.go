// Package metrics exposes Prometheus instrumentation for the extraction
// pipeline and the event store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parentcal_extractions_total",
		Help: "Total number of extraction runs, labelled by detected event type.",
	}, []string{"event_type"})

	DefaultedTimes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parentcal_defaulted_times_total",
		Help: "Extractions where no time was found and a type default was substituted.",
	})

	LowConfidenceTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parentcal_low_confidence_total",
		Help: "Extractions routed to the manual review queue.",
	})

	DuplicatesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parentcal_duplicates_detected_total",
		Help: "Inserts short-circuited by the deduplication check.",
	})

	LatentDuplicatesResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parentcal_latent_duplicates_resolved_total",
		Help: "Duplicate pairs merged by the corrective sweep.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parentcal_cache_hits_total",
		Help: "Event reads served from the in-memory cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parentcal_cache_misses_total",
		Help: "Event reads that fell through to the store.",
	})

	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parentcal_extraction_duration_ms",
		Help:    "Extraction pipeline latency in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
	})
)
