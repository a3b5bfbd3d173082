package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smokesignal/smokesignal/pkg/types"
	"github.com/smokesignal/smokesignal/server/internal/store"
)

var (
	targetStatusDesc = prometheus.NewDesc(
		"smokesignal_server_target_status",
		"1 for the status each target reported in the latest snapshot.",
		[]string{"target", "status"}, nil,
	)
	targetSeverityDesc = prometheus.NewDesc(
		"smokesignal_server_target_severity",
		"Numeric status per target: 0 normal, 1 warning, 2 critical, -1 unknown.",
		[]string{"target"}, nil,
	)
	snapshotAgeDesc = prometheus.NewDesc(
		"smokesignal_server_snapshot_age_seconds",
		"Seconds since the latest snapshot was accepted.",
		nil, nil,
	)
	snapshotStaleDesc = prometheus.NewDesc(
		"smokesignal_server_snapshot_stale",
		"1 when the latest snapshot is older than stale_after.",
		nil, nil,
	)
	alertsFiringDesc = prometheus.NewDesc(
		"smokesignal_server_alerts_firing",
		"Number of currently firing alerts.",
		nil, nil,
	)
)

// Collector exposes the store's latest snapshot as Prometheus metrics,
// read fresh on every scrape.
type Collector struct {
	store  *store.Store
	alerts AlertSource
	now    func() time.Time
}

// NewCollector returns a Collector over st. al may be nil.
func NewCollector(st *store.Store, al AlertSource) *Collector {
	return &Collector{store: st, alerts: al, now: time.Now}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- targetStatusDesc
	ch <- targetSeverityDesc
	ch <- snapshotAgeDesc
	ch <- snapshotStaleDesc
	ch <- alertsFiringDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.alerts != nil {
		ch <- prometheus.MustNewConstMetric(alertsFiringDesc, prometheus.GaugeValue, float64(c.alerts.Firing()))
	}

	e, ok := c.store.Latest()
	if !ok {
		return
	}
	stale := 0.0
	if c.store.Stale() {
		stale = 1
	}
	ch <- prometheus.MustNewConstMetric(snapshotStaleDesc, prometheus.GaugeValue, stale)
	ch <- prometheus.MustNewConstMetric(snapshotAgeDesc, prometheus.GaugeValue, c.now().Sub(e.UpdatedAt).Seconds())

	for _, name := range e.Snapshot.Names() {
		r := e.Snapshot[name]
		ch <- prometheus.MustNewConstMetric(targetSeverityDesc, prometheus.GaugeValue, float64(r.Status.Severity()), name)
		for _, s := range []types.Status{types.StatusNormal, types.StatusWarning, types.StatusCritical, types.StatusUnknown} {
			v := 0.0
			if r.Status == s {
				v = 1
			}
			ch <- prometheus.MustNewConstMetric(targetStatusDesc, prometheus.GaugeValue, v, name, string(s))
		}
	}
}

// MetricsHandler serves /metrics from a dedicated registry holding the
// snapshot Collector plus Go runtime and process collectors.
func MetricsHandler(st *store.Store, al AlertSource) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCollector(st, al),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
