// Package cors implements the gateway's origin policy: a case-insensitive
// allowlist of origins and the cross-origin response headers attached to
// every response. Enforcement is advisory at the header level — disallowed
// origins are not rejected, the allow-origin header is simply omitted and
// browsers block the read. Same-origin and non-browser callers are
// unaffected.
package cors
