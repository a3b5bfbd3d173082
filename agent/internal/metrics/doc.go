// Package metrics exposes each cycle's outcome as Prometheus metrics.
//
// Recorder owns a private registry, so nothing leaks into the global default
// registry. After every cycle the agent calls Observe with the monitor report
// and, when configured, WriteTextfile to drop a .prom file for the
// node_exporter textfile collector.
//
//	smokesignal_target_status{target,status}           1 for the current status, 0 otherwise
//	smokesignal_target_signals{target,category}        outage | degradation | in_window counts
//	smokesignal_fetch_total{target,result}             ok | error
//	smokesignal_fetch_duration_seconds{target}         summary
//	smokesignal_run_duration_seconds                   last cycle wall time
//	smokesignal_last_run_timestamp_seconds             last cycle reference time
package metrics
