package perf

// Row is one aggregated 15-minute measurement bucket from the upstream
// materialized view. Rows are immutable once fetched and are owned by a
// single request's pipeline — nothing is cached across invocations.
type Row struct {
	TS    string  `json:"ts"`
	Flow  string  `json:"flow"`
	P95MS float64 `json:"p95_ms"`
}

// SnapshotRow is one daily aggregation bucket. Rows that pass the
// minimum-volume filter are forwarded to the snapshot table, keyed on
// (day, event_name).
type SnapshotRow struct {
	Day             string  `json:"day"`
	EventName       string  `json:"event_name"`
	TotalRequests   float64 `json:"total_requests"`
	P95ResponseTime float64 `json:"p95_response_time"`
}

// Worst returns the row with the maximum p95_ms, or nil for an empty input.
// The fold is a stable left-to-right reduction: on ties the first-encountered
// row wins, and the input is never re-sorted. Callers pass rows
// most-recent-first and rely on that order only for tie-break stability.
func Worst(rows []Row) *Row {
	var worst *Row
	for i := range rows {
		if worst == nil || rows[i].P95MS > worst.P95MS {
			worst = &rows[i]
		}
	}
	return worst
}

// Breached reports whether worst meets or exceeds threshold. The boundary is
// inclusive — a worst observation exactly equal to the threshold breaches.
// A nil worst (no observations) is never a breach.
func Breached(worst *Row, threshold float64) bool {
	return worst != nil && worst.P95MS >= threshold
}

// AboveVolume returns the rows whose total_requests is at least min,
// preserving input order.
func AboveVolume(rows []SnapshotRow, min float64) []SnapshotRow {
	out := make([]SnapshotRow, 0, len(rows))
	for _, r := range rows {
		if r.TotalRequests >= min {
			out = append(out, r)
		}
	}
	return out
}
