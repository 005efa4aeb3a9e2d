// Package perf holds the gateway's pure decision logic: reducing a batch of
// metric rows to the single worst observation, evaluating it against the
// alert threshold, and filtering daily rows by request volume.
package perf
