// Package config loads the agent configuration file (config.yaml).
//
// Top-level types:
//   - Config{Monitor, Targets, Publish, Metrics}: full agent tree parsed from YAML
//   - MonitorConfig: concurrency, fetch_timeout, user_agent, max_body_bytes,
//     retries, retry_backoff, interval, tls
//   - Target: name, feed, outage_words, degradation_words
//   - PublishConfig: file, grpc (endpoint, auth), redis (url/url_env, key, ttl)
//   - AuthConfig: mode (apikey|none), header, key_env; Key() resolves from env
//
// Load(path) reads the YAML file over defaults() (concurrency 4, 15s fetch
// timeout, file publisher writing status.json, the four DefaultTargets), then
// validates names, feed URLs, keywords and publisher settings. A targets list
// in the file replaces the defaults entirely.
//
// The configuration is read once at start; there is no runtime reload.
package config
