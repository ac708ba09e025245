package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	salesIngest = "sales_ingest"

	// Pipeline metrics
	pipelineRunsTotal    = "pipeline_runs_total"
	recordsTotal         = "records_total"
	retryAttemptsTotal   = "retry_attempts_total"
	eventsPublishedTotal = "events_published_total"

	// Labels
	runOutcomeLabel = "outcome"
	sinkLabel       = "sink"
	phaseLabel      = "phase"
	statusLabel     = "status"
)

// Run outcomes recorded on pipelineRunsTotal.
const (
	RunOutcomeCompleted = "completed"
	RunOutcomeDuplicate = "duplicate_skipped"
	RunOutcomeIgnored   = "ignored_location"
	RunOutcomeFailed    = "failed"
)

/**
* Metrics definition
**/
var pipelineRunsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: salesIngest,
		Name:      pipelineRunsTotal,
		Help:      "number of pipeline runs partitioned by outcome",
	},
	[]string{runOutcomeLabel},
)

var recordsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: salesIngest,
		Name:      recordsTotal,
		Help:      "number of records routed to each sink",
	},
	[]string{sinkLabel},
)

var retryAttemptsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: salesIngest,
		Name:      retryAttemptsTotal,
		Help:      "number of retry attempts per pipeline phase",
	},
	[]string{phaseLabel},
)

var eventsPublishedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: salesIngest,
		Name:      eventsPublishedTotal,
		Help:      "number of completion events partitioned by publish status",
	},
	[]string{statusLabel},
)

func IncreasePipelineRunsMetric(outcome string) {
	pipelineRunsTotalMetric.With(prometheus.Labels{runOutcomeLabel: outcome}).Inc()
}

func AddRecordsMetric(sink string, count int) {
	recordsTotalMetric.With(prometheus.Labels{sinkLabel: sink}).Add(float64(count))
}

func IncreaseRetryAttemptsMetric(phase string) {
	retryAttemptsTotalMetric.With(prometheus.Labels{phaseLabel: phase}).Inc()
}

func IncreaseEventsPublishedMetric(status string) {
	eventsPublishedTotalMetric.With(prometheus.Labels{statusLabel: status}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(pipelineRunsTotalMetric)
	prometheus.MustRegister(recordsTotalMetric)
	prometheus.MustRegister(retryAttemptsTotalMetric)
	prometheus.MustRegister(eventsPublishedTotalMetric)
}
