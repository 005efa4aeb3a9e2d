package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/perfgate/perfgate/internal/perf"
)

// Status is the delivery outcome of one alert dispatch. It is included in
// the gateway response so best-effort deliveries stay observable.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

const dispatchTimeout = 10 * time.Second

var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "perfgate",
	Subsystem: "notify",
	Name:      "deliveries_total",
	Help:      "Webhook alert dispatches by outcome",
}, []string{"status"})

// Notifier posts breach alerts to a webhook.
type Notifier struct {
	client *http.Client
}

// New creates a Notifier with its own dispatch timeout, independent of the
// upstream client's.
func New() *Notifier {
	return &Notifier{client: &http.Client{Timeout: dispatchTimeout}}
}

// Alert formats and POSTs a single breach message to webhookURL with a JSON
// body {"text": <message>}. An empty webhookURL skips dispatch. Failures are
// logged and counted, never returned as errors — the caller's primary
// response must not depend on delivery.
func (n *Notifier) Alert(ctx context.Context, webhookURL string, worst perf.Row, threshold float64) Status {
	if webhookURL == "" {
		return n.done(StatusSkipped)
	}

	body, _ := json.Marshal(map[string]string{"text": Message(worst, threshold)})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		slog.Error("notify: build webhook request failed", "err", err)
		return n.done(StatusFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Error("notify: webhook dispatch failed", "err", err)
		return n.done(StatusFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Error("notify: webhook returned error status", "status", resp.StatusCode)
		return n.done(StatusFailed)
	}

	slog.Info("notify: alert delivered",
		"flow", worst.Flow,
		"p95_ms", worst.P95MS,
		"threshold_ms", threshold,
	)
	return n.done(StatusSent)
}

func (n *Notifier) done(s Status) Status {
	deliveries.WithLabelValues(string(s)).Inc()
	return s
}

// Message renders the human-readable alert line for worst against threshold.
func Message(worst perf.Row, threshold float64) string {
	return fmt.Sprintf("⚠️ *Perf Alert* — p95=%sms (≥%sms) | flow=%s | ts=%s",
		formatMS(worst.P95MS), formatMS(threshold), worst.Flow, worst.TS)
}

// formatMS renders a millisecond value with no fixed precision, so whole
// numbers print without a decimal point.
func formatMS(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
