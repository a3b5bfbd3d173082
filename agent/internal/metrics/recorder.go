package metrics

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/smokesignal/smokesignal/agent/internal/monitor"
	"github.com/smokesignal/smokesignal/pkg/types"
)

const namespace = "smokesignal"

var allStatuses = []types.Status{
	types.StatusNormal,
	types.StatusWarning,
	types.StatusCritical,
	types.StatusUnknown,
}

// Recorder holds the agent's metric collectors.
type Recorder struct {
	reg *prometheus.Registry

	targetStatus  *prometheus.GaugeVec
	targetSignals *prometheus.GaugeVec
	fetchTotal    *prometheus.CounterVec
	fetchDur      *prometheus.SummaryVec
	runDur        prometheus.Gauge
	lastRunTS     prometheus.Gauge
}

// NewRecorder builds and registers every collector on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{reg: prometheus.NewRegistry()}

	r.targetStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "target_status",
		Help:      "Current status of each target (1 for the active status, 0 otherwise).",
	}, []string{"target", "status"})
	r.targetSignals = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "target_signals",
		Help:      "Entry counts from the last cycle by category.",
	}, []string{"target", "category"})
	r.fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Feed fetches by outcome.",
	}, []string{"target", "result"})
	r.fetchDur = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  namespace,
		Name:       "fetch_duration_seconds",
		Help:       "Time spent fetching and evaluating one target.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"target"})
	r.runDur = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last monitoring cycle.",
	})
	r.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Reference time of the last monitoring cycle.",
	})

	r.reg.MustRegister(r.targetStatus, r.targetSignals, r.fetchTotal, r.fetchDur, r.runDur, r.lastRunTS)
	return r
}

// Observe records one report. Gauges reflect only this report; counters and
// summaries accumulate across cycles of a long-running agent.
func (r *Recorder) Observe(rep *monitor.Report) {
	r.targetStatus.Reset()
	r.targetSignals.Reset()

	for _, t := range rep.Targets {
		current := t.Evaluation.Result.Status
		for _, s := range allStatuses {
			v := 0.0
			if s == current {
				v = 1
			}
			r.targetStatus.WithLabelValues(t.Name, string(s)).Set(v)
		}

		result := "ok"
		if t.Err != nil {
			result = "error"
		} else {
			c := t.Evaluation.Counts
			r.targetSignals.WithLabelValues(t.Name, "outage").Set(float64(c.Outage))
			r.targetSignals.WithLabelValues(t.Name, "degradation").Set(float64(c.Degradation))
			r.targetSignals.WithLabelValues(t.Name, "in_window").Set(float64(c.InWindow))
		}
		r.fetchTotal.WithLabelValues(t.Name, result).Inc()
		r.fetchDur.WithLabelValues(t.Name).Observe(t.Duration.Seconds())
	}

	r.runDur.Set(rep.Duration.Seconds())
	r.lastRunTS.Set(float64(rep.GeneratedAt.Unix()))
}

// WriteText writes every gathered family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	mfs, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	return writeFamilies(w, mfs)
}

// WriteTextfile atomically replaces path with the current metrics.
func (r *Recorder) WriteTextfile(path string) error {
	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("metrics: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: close textfile: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("metrics: chmod textfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("metrics: rename textfile: %w", err)
	}
	return nil
}

func writeFamilies(w io.Writer, mfs []*dto.MetricFamily) error {
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
