package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	// State is the worst target status, or UNKNOWN before the first snapshot.
	State         string `json:"state"`
	TargetCount   int    `json:"target_count"`
	NormalCount   int    `json:"normal_count"`
	WarningCount  int    `json:"warning_count"`
	CriticalCount int    `json:"critical_count"`
	UnknownCount  int    `json:"unknown_count"`
	AlertCount    int    `json:"alert_count"`
	Stale         bool   `json:"stale"`
	Origin        string `json:"origin,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"` // RFC3339
}

// TargetResponse is one target entry in GET /api/v1/targets or
// GET /api/v1/targets/{name}.
type TargetResponse struct {
	Name        string           `json:"name"`
	Status      string           `json:"status"`
	Sentiment   string           `json:"sentiment"`
	Latency     string           `json:"latency"`
	Color       string           `json:"color"`
	Severity    int              `json:"severity"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
	LastSeen    string           `json:"last_seen"` // RFC3339
}

// StreamResponse is the payload broadcast over the WebSocket stream.
type StreamResponse struct {
	Targets     []TargetResponse `json:"targets"`
	State       string           `json:"state"`
	Stale       bool             `json:"stale"`
	GeneratedAt string           `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
