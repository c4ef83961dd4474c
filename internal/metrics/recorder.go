// Package metrics records conversion outcomes as Prometheus metrics,
// exposed over HTTP in watch mode.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// ResultLabel classifies a per-file conversion outcome.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder registers and updates the converter's Prometheus metrics.
type Recorder struct {
	fileResults     *prom.CounterVec
	unitsTotal      prom.Counter
	failures        *prom.CounterVec
	convertDuration prom.Histogram
	runsTotal       prom.Counter
}

// NewRecorder constructs and registers Prometheus metrics. Register at
// most one Recorder per registry; a nil registry gets a private one.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		fileResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rst2bash",
			Name:      "file_results_total",
			Help:      "Per-file conversion results by outcome",
		}, []string{"result"}),
		unitsTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "rst2bash",
			Name:      "translation_units_total",
			Help:      "Total translated code regions across all runs",
		}),
		failures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rst2bash",
			Name:      "failures_total",
			Help:      "Conversion failures by error category",
		}, []string{"category"}),
		convertDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "rst2bash",
			Name:      "convert_duration_seconds",
			Help:      "Duration of full conversion runs",
			Buckets:   prom.DefBuckets,
		}),
		runsTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "rst2bash",
			Name:      "runs_total",
			Help:      "Total conversion runs",
		}),
	}
	reg.MustRegister(r.fileResults, r.unitsTotal, r.failures, r.convertDuration, r.runsTotal)
	return r
}

func (r *Recorder) IncFileResult(result ResultLabel) {
	if r == nil || r.fileResults == nil {
		return
	}
	r.fileResults.WithLabelValues(string(result)).Inc()
}

func (r *Recorder) AddUnits(n int) {
	if r == nil || r.unitsTotal == nil {
		return
	}
	r.unitsTotal.Add(float64(n))
}

func (r *Recorder) IncFailure(category string) {
	if r == nil || r.failures == nil {
		return
	}
	r.failures.WithLabelValues(category).Inc()
}

func (r *Recorder) ObserveConvertDuration(d time.Duration) {
	if r == nil || r.convertDuration == nil {
		return
	}
	r.convertDuration.Observe(d.Seconds())
}

func (r *Recorder) IncRun() {
	if r == nil || r.runsTotal == nil {
		return
	}
	r.runsTotal.Inc()
}
