package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultConcurrency  = 4
	DefaultFetchTimeout = 15 * time.Second
	DefaultUserAgent    = "smokesignal/1.0 (+https://github.com/smokesignal/smokesignal)"
	DefaultMaxBodyBytes = 4 << 20
	DefaultRetryBackoff = time.Second
	DefaultStatusPath   = "status.json"
	DefaultGRPCTimeout  = 10 * time.Second
	DefaultGRPCAttempts = 3
	DefaultRedisKey     = "smokesignal:status"
)

// Config is the agent configuration. Fields map 1:1 to config.example.yaml.
// The `server:` section of a shared file is ignored here.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`

	// Targets is the list of services to evaluate each cycle.
	// Defaults to the four built-in targets when the key is absent.
	Targets []Target `yaml:"targets"`

	Publish PublishConfig `yaml:"publish"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// MonitorConfig controls how feeds are fetched and how often cycles run.
type MonitorConfig struct {
	// Concurrency is the maximum number of feeds fetched at once.
	Concurrency int `yaml:"concurrency"`

	// FetchTimeout bounds one target's fetch including retries.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// UserAgent is sent with every feed request. Reddit throttles generic agents.
	UserAgent string `yaml:"user_agent"`

	// MaxBodyBytes caps how much of a feed response is read.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// Retries is the number of extra attempts after a transient fetch failure.
	Retries int `yaml:"retries"`

	// RetryBackoff is the delay before the first retry; it doubles each time.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// Interval repeats the cycle on a timer. Zero runs a single cycle and exits.
	Interval time.Duration `yaml:"interval"`

	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig holds feed TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables certificate verification. Development only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Target is one monitored service and its complaint vocabulary.
type Target struct {
	// Name is the unique key under which the target appears in the snapshot.
	Name string `yaml:"name"`

	// Feed is the RSS or Atom URL of the discussion feed.
	Feed string `yaml:"feed"`

	// OutageWords mark an entry as an outage report. Checked first.
	OutageWords []string `yaml:"outage_words"`

	// DegradationWords mark an entry as a degradation report.
	DegradationWords []string `yaml:"degradation_words"`
}

// PublishConfig selects where snapshots are delivered. Every enabled
// publisher must succeed for a run to succeed.
type PublishConfig struct {
	File  FileConfig  `yaml:"file"`
	GRPC  GRPCConfig  `yaml:"grpc"`
	Redis RedisConfig `yaml:"redis"`
}

// FileConfig configures the status.json publisher.
type FileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// GRPCConfig configures delivery to smokesignal-server.
// The publisher is enabled when Endpoint is set.
type GRPCConfig struct {
	// Endpoint is the server's gRPC address (host:port).
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single Publish RPC.
	Timeout time.Duration `yaml:"timeout"`

	// MaxAttempts caps delivery attempts for transient failures.
	MaxAttempts int `yaml:"max_attempts"`

	// Agent is reported to the server; defaults to the hostname.
	Agent string `yaml:"agent"`

	Auth AuthConfig `yaml:"auth"`
}

// Enabled reports whether a server endpoint is configured.
func (g GRPCConfig) Enabled() bool { return g.Endpoint != "" }

// AuthConfig specifies how the agent authenticates to the server.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the gRPC metadata key carrying the API key.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// RedisConfig configures the Redis publisher, enabled when URL or URLEnv is set.
type RedisConfig struct {
	// URL is a redis:// connection string. Prefer URLEnv for credentials.
	URL string `yaml:"url"`

	// URLEnv names an environment variable holding the connection string.
	URLEnv string `yaml:"url_env"`

	// Key is the string key the snapshot JSON is stored under.
	Key string `yaml:"key"`

	// TTL expires the key when no new snapshot arrives. Zero keeps it forever.
	TTL time.Duration `yaml:"ttl"`
}

// Enabled reports whether a Redis connection is configured.
func (r RedisConfig) Enabled() bool { return r.URL != "" || r.URLEnv != "" }

// ResolvedURL returns the connection string, preferring URLEnv.
func (r RedisConfig) ResolvedURL() string {
	if r.URLEnv != "" {
		if v := os.Getenv(r.URLEnv); v != "" {
			return v
		}
	}
	return r.URL
}

// MetricsConfig configures Prometheus metric output.
type MetricsConfig struct {
	// Textfile is written after every cycle for the node_exporter textfile
	// collector. Empty disables it.
	Textfile string `yaml:"textfile"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Concurrency:  DefaultConcurrency,
			FetchTimeout: DefaultFetchTimeout,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: DefaultMaxBodyBytes,
			RetryBackoff: DefaultRetryBackoff,
		},
		Targets: DefaultTargets(),
		Publish: PublishConfig{
			File: FileConfig{Enabled: true, Path: DefaultStatusPath},
			GRPC: GRPCConfig{
				Timeout:     DefaultGRPCTimeout,
				MaxAttempts: DefaultGRPCAttempts,
			},
			Redis: RedisConfig{Key: DefaultRedisKey},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	m := cfg.Monitor
	if m.Concurrency <= 0 {
		return fmt.Errorf("monitor.concurrency must be positive")
	}
	if m.FetchTimeout <= 0 {
		return fmt.Errorf("monitor.fetch_timeout must be positive")
	}
	if m.MaxBodyBytes <= 0 {
		return fmt.Errorf("monitor.max_body_bytes must be positive")
	}
	if m.Retries < 0 {
		return fmt.Errorf("monitor.retries must not be negative")
	}
	if m.Retries > 0 && m.RetryBackoff <= 0 {
		return fmt.Errorf("monitor.retry_backoff must be positive when retries are enabled")
	}
	if m.Interval < 0 {
		return fmt.Errorf("monitor.interval must not be negative")
	}

	if len(cfg.Targets) == 0 {
		return fmt.Errorf("targets: at least one target is required")
	}
	seen := make(map[string]bool, len(cfg.Targets))
	for i, t := range cfg.Targets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("targets[%d]: name is required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("targets[%d]: duplicate name %q", i, t.Name)
		}
		seen[t.Name] = true
		if err := validateFeed(t.Feed); err != nil {
			return fmt.Errorf("targets[%d] %q: %w", i, t.Name, err)
		}
		if len(t.OutageWords)+len(t.DegradationWords) == 0 {
			return fmt.Errorf("targets[%d] %q: no keywords configured", i, t.Name)
		}
		for _, w := range append(append([]string(nil), t.OutageWords...), t.DegradationWords...) {
			if strings.TrimSpace(w) == "" {
				return fmt.Errorf("targets[%d] %q: empty keyword", i, t.Name)
			}
		}
	}

	p := cfg.Publish
	if !p.File.Enabled && !p.GRPC.Enabled() && !p.Redis.Enabled() {
		return fmt.Errorf("publish: at least one publisher must be enabled")
	}
	if p.File.Enabled && p.File.Path == "" {
		return fmt.Errorf("publish.file.path is required when the file publisher is enabled")
	}
	if p.GRPC.Enabled() {
		if p.GRPC.Timeout <= 0 {
			return fmt.Errorf("publish.grpc.timeout must be positive")
		}
		if p.GRPC.MaxAttempts <= 0 {
			return fmt.Errorf("publish.grpc.max_attempts must be positive")
		}
		switch p.GRPC.Auth.Mode {
		case "apikey", "none", "":
		default:
			return fmt.Errorf("publish.grpc.auth.mode %q unknown: want apikey|none", p.GRPC.Auth.Mode)
		}
	}
	if p.Redis.Enabled() {
		if p.Redis.Key == "" {
			return fmt.Errorf("publish.redis.key is required")
		}
		if p.Redis.TTL < 0 {
			return fmt.Errorf("publish.redis.ttl must not be negative")
		}
	}
	return nil
}

func validateFeed(raw string) error {
	if raw == "" {
		return fmt.Errorf("feed is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("feed %q must be an absolute http(s) URL", raw)
	}
	return nil
}
