// Package config loads the server-side configuration from the `server:` section
// of config.yaml (the agent keys are ignored by the server binary).
//
// Config fields:
//   - GRPCPort              port for the gRPC receiver (default 50051)
//   - HTTPPort              port for the REST API and WebSocket hub (default 8080)
//   - Auth.Mode             "apikey" or "none"
//   - Auth.KeyEnv           environment variable holding the expected API key
//   - Auth.Header           gRPC metadata/HTTP header name (default "x-api-key")
//   - Snapshot.StaleAfter   age at which the latest snapshot is flagged stale (default 30m)
//   - Snapshot.WatchFile    status.json to follow with fsnotify (optional)
//   - Alerts                per-target rules and webhook targets
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
