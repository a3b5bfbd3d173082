// Package feed retrieves discussion feeds and reduces them to Entry values.
//
// Source is the narrow interface the monitor depends on. HTTPSource is the
// production implementation: one shared *http.Client (User-Agent injected by a
// RoundTripper), a size-capped body read, and parsing via mmcdole/gofeed so
// RSS 0.9x/1.0/2.0, Atom and JSON Feed documents are all accepted.
//
// Only titles and publish times leave this package. An item whose publish time
// is absent or unparseable yields an Entry with a zero Published value; the
// window filter discards those.
//
// Transient failures (network errors, HTTP 429, HTTP 5xx) are retried with
// exponential backoff when MonitorConfig.Retries > 0. Everything else fails on
// the first attempt.
package feed
