package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// TaggerRuns counts tagging engine invocations by language and outcome.
	TaggerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_tagger_runs_total",
		Help: "Total number of tagging engine invocations",
	}, []string{"language", "outcome"})

	// TaggerLatency records how long the tagging engine takes per call.
	TaggerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_tagger_latency_seconds",
		Help:    "Tagging engine latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	// TaggerRecordsDropped counts engine output lines that were not three tab-separated fields.
	TaggerRecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_tagger_records_dropped_total",
		Help: "Tagger output records discarded because they did not split into three fields",
	})

	// TagRowsStored counts tag rows written by the tag store.
	TagRowsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_tag_rows_stored_total",
		Help: "Total number of tag rows inserted",
	})

	// TagRowsSkipped counts tag rows whose insert failed and was skipped.
	TagRowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_tag_rows_skipped_total",
		Help: "Total number of tag rows skipped after an insert error",
	})

	// Searches counts tag searches by outcome (all, hit, miss, error).
	Searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_searches_total",
		Help: "Total number of post searches by outcome",
	}, []string{"outcome"})

	// IndexFailures counts posts whose tagging failed, by trigger (create, update, reindex).
	IndexFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_index_failures_total",
		Help: "Total number of posts that could not be tagged",
	}, []string{"trigger"})
)
