// Package metrics exports search telemetry to Prometheus.
package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdrpinto/vimgolf"
)

const namespace = "vimgolf"

var _ vimgolf.Recorder = (*Recorder)(nil)

// Recorder implements vimgolf.Recorder on top of Prometheus collectors.
type Recorder struct {
	// ExpandedTotal counts nodes handed to an expansion worker.
	ExpandedTotal prometheus.Counter

	// PrunedTotal counts discarded candidates.
	// Labels: reason (bound, domain, oracle_error, duplicate)
	PrunedTotal *prometheus.CounterVec

	// OracleCallsTotal counts oracle round trips.
	// Labels: result (ok, not_running, communication_failure, timeout,
	// invalid_response, error)
	OracleCallsTotal *prometheus.CounterVec

	OracleCallSeconds prometheus.Histogram

	// IncumbentLength is the length of the best path found by the most
	// recent search.
	IncumbentLength prometheus.Gauge

	// SearchesTotal counts finished searches.
	// Labels: outcome (optimal, no_path, timeout, cancelled, failed)
	SearchesTotal *prometheus.CounterVec

	SearchSeconds prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer to
// expose them on the global registry.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		ExpandedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expanded_nodes_total",
			Help:      "Total number of nodes dispatched for expansion",
		}),
		PrunedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_candidates_total",
			Help:      "Total number of candidate commands discarded, by reason",
		}, []string{"reason"}),
		OracleCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Total number of oracle calls, by result",
		}, []string{"result"}),
		OracleCallSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Latency of oracle calls",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		IncumbentLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "incumbent_length",
			Help:      "Length of the shortest complete path found so far",
		}),
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of finished searches, by outcome",
		}, []string{"outcome"}),
		SearchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall-clock duration of searches",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

func (r *Recorder) NodeExpanded() { r.ExpandedTotal.Inc() }

func (r *Recorder) CandidatePruned(reason vimgolf.PruneReason) {
	r.PrunedTotal.WithLabelValues(string(reason)).Inc()
}

func (r *Recorder) OracleCall(elapsed time.Duration, err error) {
	r.OracleCallsTotal.WithLabelValues(oracleResult(err)).Inc()
	r.OracleCallSeconds.Observe(elapsed.Seconds())
}

func (r *Recorder) IncumbentImproved(length int) {
	r.IncumbentLength.Set(float64(length))
}

func (r *Recorder) SearchFinished(outcome vimgolf.Outcome, elapsed time.Duration) {
	r.SearchesTotal.WithLabelValues(string(outcome)).Inc()
	r.SearchSeconds.Observe(elapsed.Seconds())
}

func oracleResult(err error) string {
	if err == nil {
		return "ok"
	}
	var oerr *vimgolf.OracleError
	if errors.As(err, &oerr) {
		return strings.ReplaceAll(oerr.Kind.String(), " ", "_")
	}
	return "error"
}
