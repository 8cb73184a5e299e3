// Package metrics exposes Prometheus collectors for the scoring pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline holds the collectors instrumented by the report service
type Pipeline struct {
	RowsIngested     prometheus.Counter
	RowsFiltered     prometheus.Counter
	DatasetsRejected prometheus.Counter
	ReportsGenerated prometheus.Counter
	CacheHits        prometheus.Counter
	Duration         prometheus.Histogram
}

// NewPipeline creates and registers the pipeline collectors
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldpulse",
			Name:      "rows_ingested_total",
			Help:      "Work-order rows read from input datasets.",
		}),
		RowsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldpulse",
			Name:      "rows_filtered_total",
			Help:      "Rows dropped by the row-level filter before aggregation.",
		}),
		DatasetsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldpulse",
			Name:      "datasets_rejected_total",
			Help:      "Datasets rejected for missing essential columns.",
		}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldpulse",
			Name:      "reports_generated_total",
			Help:      "Completed pipeline runs.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldpulse",
			Name:      "report_cache_hits_total",
			Help:      "Pipeline runs served from the memoized previous result.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fieldpulse",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of a full pipeline run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(p.RowsIngested, p.RowsFiltered, p.DatasetsRejected,
			p.ReportsGenerated, p.CacheHits, p.Duration)
	}
	return p
}

// ObserveRun records one completed pipeline run
func (p *Pipeline) ObserveRun(start time.Time, ingested, kept int) {
	p.RowsIngested.Add(float64(ingested))
	p.RowsFiltered.Add(float64(ingested - kept))
	p.ReportsGenerated.Inc()
	p.Duration.Observe(time.Since(start).Seconds())
}
