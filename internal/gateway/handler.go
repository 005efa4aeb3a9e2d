package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/perfgate/perfgate/internal/config"
	"github.com/perfgate/perfgate/internal/cors"
	"github.com/perfgate/perfgate/internal/notify"
	"github.com/perfgate/perfgate/internal/perf"
	"github.com/perfgate/perfgate/internal/upstream"
)

// Notifier dispatches breach alerts. Satisfied by *notify.Notifier.
type Notifier interface {
	Alert(ctx context.Context, webhookURL string, worst perf.Row, threshold float64) notify.Status
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	provider *config.Provider
	notifier Notifier
	mux      *http.ServeMux
}

// New creates a Handler wired to the given configuration provider and
// notifier and registers all routes.
func New(p *config.Provider, n Notifier) http.Handler {
	h := &Handler{provider: p, notifier: n, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.instrument("health", h.health))
	h.mux.HandleFunc("/api/v1/metrics/daily", h.instrument("metrics_daily", h.dailyMetrics))
	h.mux.HandleFunc("/api/v1/alerts/check", h.instrument("alerts_check", h.checkAlerts))
	h.mux.HandleFunc("/api/v1/snapshots/daily", h.instrument("snapshot_daily", h.snapshotDaily))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// dailyMetrics serves GET /api/v1/metrics/daily — the daily aggregation view,
// most recent day first.
func (h *Handler) dailyMetrics(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.begin(w, r, http.MethodGet)
	if !ok {
		return
	}
	if !h.requireConfig(w, inv) {
		return
	}

	up := inv.snap.Gateway.Upstream
	client := upstream.New(inv.snap.UpstreamURL, inv.snap.ServiceKey)

	rows := []perf.SnapshotRow{}
	err := client.Select(r.Context(), up.DailyView, upstream.Query{
		Select:    "day,event_name,total_requests,p95_response_time",
		OrderDesc: "day",
		Limit:     up.DailyLimit,
	}, &rows)
	if err != nil {
		h.upstreamErr(w, inv, err)
		return
	}

	h.jsonResp(w, inv, http.StatusOK, DailyResponse{OK: true, Data: rows})
}

// checkAlerts serves GET /api/v1/alerts/check — fetches the most recent
// 15-minute buckets, reduces them to the worst p95, evaluates the threshold,
// and dispatches at most one webhook alert on breach. Delivery never affects
// the primary response.
func (h *Handler) checkAlerts(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.begin(w, r, http.MethodGet)
	if !ok {
		return
	}
	if !h.requireConfig(w, inv) {
		return
	}

	up := inv.snap.Gateway.Upstream
	client := upstream.New(inv.snap.UpstreamURL, inv.snap.ServiceKey)

	rows := []perf.Row{}
	err := client.Select(r.Context(), up.AlertView, upstream.Query{
		Select:    "ts,flow,p95_ms",
		OrderDesc: "ts",
		Limit:     up.AlertLimit,
	}, &rows)
	if err != nil {
		h.upstreamErr(w, inv, err)
		return
	}

	worst := perf.Worst(rows)
	breached := perf.Breached(worst, inv.snap.ThresholdMS)

	notified := notify.StatusSkipped
	if breached && inv.snap.WebhookURL != "" {
		notified = h.notifier.Alert(r.Context(), inv.snap.WebhookURL, *worst, inv.snap.ThresholdMS)
	}

	h.jsonResp(w, inv, http.StatusOK, AlertCheckResponse{
		OK:          true,
		CheckedRows: len(rows),
		ThresholdMS: inv.snap.ThresholdMS,
		Breached:    breached,
		Worst:       worst,
		Notified:    string(notified),
	})
}

// snapshotDaily serves POST /api/v1/snapshots/daily — reads the daily view,
// drops rows below the minimum request volume, and upserts the rest into the
// snapshot table keyed on (day, event_name).
func (h *Handler) snapshotDaily(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.begin(w, r, http.MethodPost)
	if !ok {
		return
	}
	if !h.requireConfig(w, inv) {
		return
	}

	up := inv.snap.Gateway.Upstream
	client := upstream.New(inv.snap.UpstreamURL, inv.snap.ServiceKey)

	rows := []perf.SnapshotRow{}
	err := client.Select(r.Context(), up.DailyView, upstream.Query{
		Select: "day,event_name,total_requests,p95_response_time",
	}, &rows)
	if err != nil {
		h.upstreamErr(w, inv, err)
		return
	}

	kept := perf.AboveVolume(rows, inv.snap.MinRequests)
	if len(kept) == 0 {
		h.jsonResp(w, inv, http.StatusOK, SnapshotResponse{
			OK:       true,
			Inserted: 0,
			Note:     "no rows at or above the minimum request volume",
		})
		return
	}

	if err := client.Upsert(r.Context(), up.SnapshotTable, up.SnapshotConflict, kept); err != nil {
		h.upstreamErr(w, inv, err)
		return
	}

	slog.Info("snapshot upserted", "rows", len(kept), "table", up.SnapshotTable)
	h.jsonResp(w, inv, http.StatusOK, SnapshotResponse{OK: true, Inserted: len(kept)})
}

// health serves GET /api/v1/health — configuration readiness, no upstream
// call.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.begin(w, r, http.MethodGet)
	if !ok {
		return
	}

	missing := inv.snap.Missing()
	h.jsonResp(w, inv, http.StatusOK, HealthResponse{
		OK:            len(missing) == 0,
		UpstreamReady: len(missing) == 0,
		WebhookSet:    inv.snap.WebhookURL != "",
		ThresholdMS:   inv.snap.ThresholdMS,
		MissingConfig: missing,
	})
}

// --- per-invocation plumbing ------------------------------------------------

// invocation carries the request-scoped state every handler needs: the
// configuration snapshot and the origin policy derived from it.
type invocation struct {
	snap   config.Snapshot
	policy cors.Policy
	origin string
}

// begin runs the shared front half of every endpoint: it builds the
// invocation from a fresh configuration snapshot, answers preflight probes
// with an empty 204, and gates the HTTP method. The returned bool reports
// whether the handler should continue.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request, method string) (*invocation, bool) {
	snap := h.provider.Snapshot()
	inv := &invocation{
		snap:   snap,
		policy: cors.New(snap.AllowedOrigins),
		origin: r.Header.Get("Origin"),
	}

	if r.Method == http.MethodOptions {
		h.writeHeaders(w, inv)
		w.WriteHeader(http.StatusNoContent)
		return inv, false
	}
	if r.Method != method {
		h.jsonErr(w, inv, http.StatusMethodNotAllowed, "Method not allowed")
		return inv, false
	}
	return inv, true
}

// requireConfig fails closed before any network call when required store
// configuration is absent. The debug map names which values are missing
// without echoing them.
func (h *Handler) requireConfig(w http.ResponseWriter, inv *invocation) bool {
	missing := inv.snap.Missing()
	if len(missing) == 0 {
		return true
	}

	debug := map[string]string{
		config.EnvUpstreamURL: "set",
		config.EnvServiceKey:  "set",
	}
	for _, name := range missing {
		debug[name] = "missing"
	}

	slog.Error("missing store configuration", "missing", missing)
	h.jsonResp(w, inv, http.StatusInternalServerError, missingConfigResponse{
		Error: "missing store configuration",
		Debug: debug,
	})
	return false
}

// --- response builder -------------------------------------------------------

func (h *Handler) writeHeaders(w http.ResponseWriter, inv *invocation) {
	for k, v := range inv.policy.Headers(inv.origin) {
		w.Header().Set(k, v)
	}
}

// jsonResp writes v as JSON with the invocation's cross-origin headers
// merged in, success and error alike.
func (h *Handler) jsonResp(w http.ResponseWriter, inv *invocation, code int, v interface{}) {
	h.writeHeaders(w, inv)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func (h *Handler) jsonErr(w http.ResponseWriter, inv *invocation, code int, msg string) {
	h.jsonResp(w, inv, code, errorResponse{Error: msg})
}

// upstreamErr maps a classified upstream failure onto the response shape for
// its layer. Each client outcome stays distinguishable so an operator can
// tell which layer broke.
func (h *Handler) upstreamErr(w http.ResponseWriter, inv *invocation, err error) {
	var (
		statusErr      *upstream.StatusError
		contentTypeErr *upstream.ContentTypeError
		parseErr       *upstream.ParseError
	)

	switch {
	case errors.As(err, &statusErr):
		h.jsonResp(w, inv, http.StatusBadGateway, statusErrorResponse{
			Error:  "upstream error",
			Status: statusErr.Status,
			Detail: statusErr.Detail,
		})

	case errors.As(err, &contentTypeErr):
		h.jsonResp(w, inv, http.StatusBadGateway, contentTypeWarningResponse{
			OK:          false,
			Warning:     "non-JSON response from upstream",
			Status:      contentTypeErr.Status,
			ContentType: contentTypeErr.ContentType,
			Preview:     contentTypeErr.Preview,
		})

	case errors.As(err, &parseErr):
		h.jsonResp(w, inv, http.StatusBadGateway, parseErrorResponse{
			Error:   "upstream response parse failed",
			Status:  parseErr.Status,
			Message: parseErr.Message,
			Preview: parseErr.Preview,
		})

	default:
		// Transport-level failure — no response from the store at all.
		h.jsonResp(w, inv, http.StatusInternalServerError, transportErrorResponse{
			Error:   "unhandled upstream exception",
			Message: err.Error(),
		})
	}
}

// --- instrumentation --------------------------------------------------------

// instrument wraps a route with request-ID assignment, completion logging,
// and Prometheus request accounting.
func (h *Handler) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		recordRequest(route, sw.status, time.Since(start))
		slog.Info("request complete",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
