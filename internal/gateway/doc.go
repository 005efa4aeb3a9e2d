// Package gateway implements the HTTP surface of perfgate: the daily metrics
// read, the alert check, the snapshot job trigger, and a health probe. Each
// request builds its pipeline fresh from a configuration snapshot — origin
// policy, upstream client, reduction, threshold evaluation, and conditional
// notification run in strict sequence with no state shared between
// invocations. Cross-origin headers are merged into every response, errors
// included, so browser callers can read diagnostics.
package gateway
