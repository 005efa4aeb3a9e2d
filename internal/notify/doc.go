// Package notify dispatches one-shot breach alerts to a Slack-compatible
// webhook. Delivery is best effort and never fails the caller's primary
// response, but the outcome is surfaced as a Status (and a Prometheus
// counter) instead of being silently discarded.
package notify
