package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokesignal/smokesignal/agent/internal/config"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>r/ChatGPT</title>
    <link>https://www.reddit.com/r/ChatGPT/</link>
    <description>newest</description>
    <item>
      <title>  Is ChatGPT down for anyone?  </title>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>No date on this one</title>
    </item>
    <item>
      <title>Garbage date</title>
      <pubDate>sometime last week</pubDate>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>r/ClaudeAI</title>
  <entry>
    <title>Claude very slow today</title>
    <published>2024-05-01T10:00:00+02:00</published>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	entries, err := Parse([]byte(rssDoc))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Is ChatGPT down for anyone?", entries[0].Title)
	assert.True(t, entries[0].Published.Equal(time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)),
		"published: got %v", entries[0].Published)
	assert.Equal(t, time.UTC, entries[0].Published.Location())

	assert.Equal(t, "No date on this one", entries[1].Title)
	assert.True(t, entries[1].Published.IsZero(), "missing date should be zero")
	assert.True(t, entries[2].Published.IsZero(), "unparseable date should be zero")
}

func TestParse_Atom(t *testing.T) {
	entries, err := Parse([]byte(atomDoc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Claude very slow today", entries[0].Title)
	assert.True(t, entries[0].Published.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
}

func TestParse_AtomUpdatedIsNotPublished(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>r/ChatGPT</title>
  <entry>
    <title>api down</title>
    <updated>2025-03-01T11:50:00+00:00</updated>
  </entry>
  <entry>
    <title>api slow</title>
    <published>2025-03-01T11:40:00+00:00</published>
    <updated>2025-03-01T11:55:00+00:00</updated>
  </entry>
</feed>`

	entries, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "api down", entries[0].Title)
	assert.True(t, entries[0].Published.IsZero(), "updated-only entry got %v", entries[0].Published)
	assert.True(t, entries[1].Published.Equal(time.Date(2025, 3, 1, 11, 40, 0, 0, time.UTC)),
		"published: got %v", entries[1].Published)
}

func TestParse_NotAFeed(t *testing.T) {
	_, err := Parse([]byte("this is not xml or json"))
	require.Error(t, err)
}

func TestHTTPSource_Fetch(t *testing.T) {
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomDoc)) //nolint:errcheck
	}))
	defer srv.Close()

	src := NewHTTPSource(testMonitor(0))
	entries, err := src.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	h := <-headers
	assert.Equal(t, "smokesignal-test/1.0", h.Get("User-Agent"))
	assert.Contains(t, h.Get("Accept"), "application/atom+xml")
}

func TestHTTPSource_NotFound_NoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := NewHTTPSource(testMonitor(3))
	_, err := src.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se), "want *StatusError, got %T", err)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), hits.Load(), "404 must not be retried")
}

func TestHTTPSource_RetriesTransient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(rssDoc)) //nolint:errcheck
	}))
	defer srv.Close()

	src := NewHTTPSource(testMonitor(2))
	entries, err := src.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPSource_RetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewHTTPSource(testMonitor(2))
	_, err := src.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load(), "one attempt plus two retries")
}

func TestHTTPSource_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssDoc)) //nolint:errcheck
	}))
	defer srv.Close()

	cfg := testMonitor(0)
	cfg.MaxBodyBytes = 64
	_, err := NewHTTPSource(cfg).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestHTTPSource_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewHTTPSource(testMonitor(5)).Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// --- helpers ----------------------------------------------------------------

func testMonitor(retries int) config.MonitorConfig {
	return config.MonitorConfig{
		UserAgent:    "smokesignal-test/1.0",
		MaxBodyBytes: 1 << 20,
		Retries:      retries,
		RetryBackoff: time.Millisecond,
	}
}
