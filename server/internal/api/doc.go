// Package api implements the HTTP REST API for smokesignal-server.
//
// New(store, alerts) returns an http.Handler that serves:
//
//	GET /api/v1/health          : worst status, per-status counts, stale flag
//	GET /api/v1/targets         : every target in the latest snapshot
//	GET /api/v1/targets/{name}  : one target with diagnostic hints; 404 if absent
//	GET /api/v1/snapshot        : the latest snapshot in status.json layout
//	GET /api/v1/alerts          : firing alerts plus those resolved in the last hour
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//
// MetricsHandler exposes the same state to Prometheus through a Collector
// that reads the store at scrape time. JSON types are defined in types.go.
package api
