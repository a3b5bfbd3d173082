package feed

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"

	"github.com/smokesignal/smokesignal/agent/internal/config"
)

const acceptHeader = "application/atom+xml, application/rss+xml, application/xml;q=0.9, */*;q=0.8"

// maxRetryBackoff caps the doubling delay between fetch attempts.
const maxRetryBackoff = 30 * time.Second

// Entry is one feed item reduced to what classification needs.
type Entry struct {
	Title string

	// Published is the item's publish time in UTC. Zero means absent or unparseable.
	Published time.Time
}

// Source fetches the current entries of a feed, newest first as the feed
// orders them.
type Source interface {
	Fetch(ctx context.Context, locator string) ([]Entry, error)
}

// StatusError is returned when the feed server answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed: %s: unexpected status %d", e.URL, e.Code)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// HTTPSource fetches feeds over HTTP(S). Safe for concurrent use.
type HTTPSource struct {
	client  *http.Client
	maxBody int64
	retries int
	backoff time.Duration
}

// NewHTTPSource builds a source from the monitor settings. The per-target
// timeout is applied by the caller's context, not by the client.
func NewHTTPSource(cfg config.MonitorConfig) *HTTPSource {
	return &HTTPSource{
		client:  buildHTTPClient(cfg),
		maxBody: cfg.MaxBodyBytes,
		retries: cfg.Retries,
		backoff: cfg.RetryBackoff,
	}
}

// Fetch retrieves and parses the feed at locator.
func (s *HTTPSource) Fetch(ctx context.Context, locator string) ([]Entry, error) {
	delay := s.backoff
	for attempt := 0; ; attempt++ {
		entries, err := s.fetchOnce(ctx, locator)
		if err == nil {
			return entries, nil
		}
		if attempt >= s.retries || !retryable(ctx, err) {
			return nil, err
		}

		slog.Debug("feed: transient fetch failure, retrying",
			"url", locator, "attempt", attempt+1, "delay", delay, "err", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("feed: %s: %w", locator, ctx.Err())
		}
		delay *= 2
		if delay > maxRetryBackoff {
			delay = maxRetryBackoff
		}
	}
}

func (s *HTTPSource) fetchOnce(ctx context.Context, locator string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, &StatusError{URL: locator, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("feed: read body: %w", err)
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("feed: %s: body exceeds %d bytes", locator, s.maxBody)
	}
	return Parse(body)
}

// Parse decodes an RSS, Atom or JSON feed document into entries, preserving
// document order.
func Parse(body []byte) ([]Entry, error) {
	fp := gofeed.NewParser()
	fp.AtomTranslator = &atomTranslator{}
	parsed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("feed: parse: %w", err)
	}
	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		e := Entry{Title: strings.TrimSpace(item.Title)}
		if item.PublishedParsed != nil {
			e.Published = item.PublishedParsed.UTC()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// atomTranslator drops the <updated> fallback the default translator applies
// to item publish times. An entry without <published> has no publish time.
type atomTranslator struct {
	gofeed.DefaultAtomTranslator
}

func (t *atomTranslator) Translate(raw interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultAtomTranslator.Translate(raw)
	if err != nil {
		return nil, err
	}
	af, ok := raw.(*atom.Feed)
	if !ok || len(af.Entries) != len(out.Items) {
		return out, nil
	}
	for i, entry := range af.Entries {
		if entry == nil || entry.PublishedParsed == nil {
			out.Items[i].Published = ""
			out.Items[i].PublishedParsed = nil
		}
	}
	return out, nil
}

// retryable reports whether err is transient and ctx still has time left.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// userAgentRoundTripper sets the User-Agent on every outgoing request.
type userAgentRoundTripper struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs the shared client for all feed requests.
func buildHTTPClient(cfg config.MonitorConfig) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
		},
	}
	return &http.Client{
		Transport: &userAgentRoundTripper{base: tr, userAgent: cfg.UserAgent},
	}
}
