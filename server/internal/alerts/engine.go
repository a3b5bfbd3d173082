package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/smokesignal/smokesignal/server/internal/config"
	"github.com/smokesignal/smokesignal/server/internal/store"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Target     string     `json:"target"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      string     `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"`
}

// Engine evaluates alert rules against stored snapshots and delivers webhook
// notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert    // key: "ruleName:target"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
	now      func() time.Time
	wg       sync.WaitGroup
}

// New creates an Engine from the server alert configuration.
// An Engine with no rules is valid; Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Evaluate tests every rule against every target in entry.Snapshot. It has the
// signature of a store.OnPut subscriber.
func (e *Engine) Evaluate(entry *store.Entry) {
	if len(e.rules) == 0 || entry == nil {
		return
	}

	now := e.now()
	var notify []Alert

	e.mu.Lock()
	for _, rule := range e.rules {
		for _, name := range entry.Snapshot.Names() {
			fires, value := evalCondition(rule.Condition, entry.Snapshot[name])
			key := rule.Name + ":" + name
			if fires {
				if a, ok := e.fire(rule, name, value, key, now); ok {
					notify = append(notify, a)
				}
			} else if a, ok := e.resolve(key, now); ok {
				notify = append(notify, a)
			}
		}
	}

	// Targets missing from the new snapshot can no longer satisfy a rule.
	for key, a := range e.active {
		if _, ok := entry.Snapshot[a.Target]; !ok {
			if a, ok := e.resolve(key, now); ok {
				notify = append(notify, a)
			}
		}
	}
	e.mu.Unlock()

	for i := range notify {
		a := notify[i]
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.deliver(&a)
		}()
	}
}

// fire records a firing alert unless one is active or the rule is cooling
// down. Caller holds e.mu.
func (e *Engine) fire(rule config.AlertRule, target, value, key string, now time.Time) (Alert, bool) {
	if _, ok := e.active[key]; ok {
		return Alert{}, false
	}
	cooldown := rule.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	if last, ok := e.lastFire[key]; ok && now.Sub(last) <= cooldown {
		return Alert{}, false
	}

	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}
	a := &Alert{
		ID:       fmt.Sprintf("%s:%s:%d", rule.Name, target, now.UnixNano()),
		RuleName: rule.Name,
		Target:   target,
		Severity: sev,
		Value:    value,
		Message:  fmt.Sprintf("[%s] %s fired on %s: %s (value %s)", sev, rule.Name, target, rule.Condition, value),
		FiredAt:  now,
		State:    StateFiring,
	}
	e.active[key] = a
	e.lastFire[key] = now

	slog.Warn("alerts: alert fired",
		"rule", rule.Name,
		"target", target,
		"value", value,
		"severity", sev,
	)
	return *a, true
}

// resolve moves an active alert to history. Caller holds e.mu.
func (e *Engine) resolve(key string, now time.Time) (Alert, bool) {
	a, ok := e.active[key]
	if !ok {
		return Alert{}, false
	}
	resolved := now
	a.State = StateResolved
	a.ResolvedAt = &resolved
	delete(e.active, key)

	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}

	slog.Info("alerts: alert resolved", "rule", a.RuleName, "target", a.Target)
	return *a, true
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour, sorted newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FiredAt.After(out[j].FiredAt)
	})
	return out
}

// Firing returns the number of currently firing alerts.
func (e *Engine) Firing() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Wait blocks until all in-flight webhook deliveries have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}
