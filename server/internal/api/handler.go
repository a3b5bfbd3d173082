package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/smokesignal/smokesignal/pkg/types"
	"github.com/smokesignal/smokesignal/pkg/wire"
	"github.com/smokesignal/smokesignal/server/internal/alerts"
	"github.com/smokesignal/smokesignal/server/internal/store"
)

// AlertSource is the read side of the alert engine.
type AlertSource interface {
	Active() []*alerts.Alert
	Firing() int
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads the latest snapshot from the store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts AlertSource
	mux    *http.ServeMux
	now    func() time.Time
}

// New creates a Handler wired to the given store and alert source and
// registers all routes. al may be nil when alerting is not configured.
func New(st *store.Store, al AlertSource) http.Handler {
	h := &Handler{store: st, alerts: al, mux: http.NewServeMux(), now: time.Now}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/targets", h.listTargets)
	h.mux.HandleFunc("/api/v1/targets/", h.getTarget) // subtree, extracts {name}
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{State: string(types.StatusUnknown)}
	if h.alerts != nil {
		resp.AlertCount = h.alerts.Firing()
	}

	e, ok := h.store.Latest()
	if !ok {
		jsonResp(w, http.StatusOK, resp)
		return
	}

	counts := e.Snapshot.Counts()
	resp.State = string(e.Snapshot.Worst())
	resp.TargetCount = len(e.Snapshot)
	resp.NormalCount = counts[types.StatusNormal]
	resp.WarningCount = counts[types.StatusWarning]
	resp.CriticalCount = counts[types.StatusCritical]
	resp.UnknownCount = counts[types.StatusUnknown]
	resp.Stale = h.store.Stale()
	resp.Origin = e.Origin
	resp.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
	jsonResp(w, http.StatusOK, resp)
}

// listTargets returns GET /api/v1/targets, sorted by name.
func (h *Handler) listTargets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, buildTargets(h.store, h.now()))
}

// getTarget returns GET /api/v1/targets/{name}.
func (h *Handler) getTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/targets/")
	if name == "" {
		h.listTargets(w, r)
		return
	}

	e, ok := h.store.Latest()
	if !ok {
		jsonErr(w, http.StatusNotFound, "target not found")
		return
	}
	res, ok := e.Snapshot[name]
	if !ok {
		jsonErr(w, http.StatusNotFound, "target not found")
		return
	}
	jsonResp(w, http.StatusOK, toTargetResponse(name, res, e, h.store.Stale(), h.now()))
}

// snapshot returns GET /api/v1/snapshot, byte-compatible with status.json.
// Before the first snapshot the body is an empty object.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var snap types.Snapshot
	if e, ok := h.store.Latest(); ok {
		snap = e.Snapshot
		w.Header().Set("Last-Modified", e.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	body, err := wire.EncodeSnapshot(snap)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}

// listAlerts returns GET /api/v1/alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	out := []*alerts.Alert{}
	if h.alerts != nil {
		out = append(out, h.alerts.Active()...)
	}
	jsonResp(w, http.StatusOK, out)
}

// --- helpers ----------------------------------------------------------------

// BuildStream returns the WebSocket payload for the current store state.
func BuildStream(st *store.Store) StreamResponse {
	now := time.Now()
	resp := StreamResponse{
		Targets:     buildTargets(st, now),
		State:       string(types.StatusUnknown),
		Stale:       st.Stale(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	if e, ok := st.Latest(); ok {
		resp.State = string(e.Snapshot.Worst())
	}
	return resp
}

func buildTargets(st *store.Store, now time.Time) []TargetResponse {
	e, ok := st.Latest()
	if !ok {
		return []TargetResponse{}
	}
	stale := st.Stale()
	out := make([]TargetResponse, 0, len(e.Snapshot))
	for _, name := range e.Snapshot.Names() {
		out = append(out, toTargetResponse(name, e.Snapshot[name], e, stale, now))
	}
	return out
}

func toTargetResponse(name string, r types.TargetResult, e *store.Entry, stale bool, now time.Time) TargetResponse {
	return TargetResponse{
		Name:        name,
		Status:      string(r.Status),
		Sentiment:   r.Sentiment,
		Latency:     r.Latency,
		Color:       r.Color,
		Severity:    r.Status.Severity(),
		Diagnostics: computeDiagnostics(name, r, stale, now.Sub(e.UpdatedAt)),
		LastSeen:    e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	body, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		body = []byte(`{"error":"encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(body, '\n')) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
