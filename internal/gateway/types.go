package gateway

import "github.com/perfgate/perfgate/internal/perf"

// DailyResponse is the payload for GET /api/v1/metrics/daily.
type DailyResponse struct {
	OK   bool               `json:"ok"`
	Data []perf.SnapshotRow `json:"data"`
}

// AlertCheckResponse is the payload for GET /api/v1/alerts/check.
// Worst is null when the upstream returned no rows; Notified reports the
// webhook delivery outcome (sent | failed | skipped).
type AlertCheckResponse struct {
	OK          bool      `json:"ok"`
	CheckedRows int       `json:"checked_rows"`
	ThresholdMS float64   `json:"threshold_ms"`
	Breached    bool      `json:"breached"`
	Worst       *perf.Row `json:"worst"`
	Notified    string    `json:"notified"`
}

// SnapshotResponse is the payload for POST /api/v1/snapshots/daily.
type SnapshotResponse struct {
	OK       bool   `json:"ok"`
	Inserted int    `json:"inserted"`
	Note     string `json:"note,omitempty"`
}

// HealthResponse is the payload for GET /api/v1/health. It reports
// configuration readiness only — no upstream call is made, and secret
// values are never echoed, only their presence.
type HealthResponse struct {
	OK            bool     `json:"ok"`
	UpstreamReady bool     `json:"upstream_ready"`
	WebhookSet    bool     `json:"webhook_set"`
	ThresholdMS   float64  `json:"threshold_ms"`
	MissingConfig []string `json:"missing_config,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// missingConfigResponse reports which required values are absent without
// echoing the values themselves.
type missingConfigResponse struct {
	Error string            `json:"error"`
	Debug map[string]string `json:"debug"`
}

// transportErrorResponse is the body for an upstream transport failure.
type transportErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusErrorResponse is the body for a non-success upstream status.
type statusErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// contentTypeWarningResponse is the body for a nominally successful upstream
// response with a non-JSON content type.
type contentTypeWarningResponse struct {
	OK          bool   `json:"ok"`
	Warning     string `json:"warning"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Preview     string `json:"preview"`
}

// parseErrorResponse is the body for an upstream body that failed to decode.
type parseErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Preview string `json:"preview"`
}
