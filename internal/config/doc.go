// Package config provides the gateway configuration in two layers: an
// optional yaml tuning file (ports, upstream resource names) that is
// hot-reloaded on change, and environment values (store credentials,
// allowlist, thresholds, webhook URL) that are read fresh for every
// invocation. Handlers consume both through a Provider that hands out
// immutable per-invocation snapshots, so the pipeline itself carries no
// hidden global state.
package config
