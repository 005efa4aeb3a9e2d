package cors

import "strings"

// Header values attached to every gateway response.
const (
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "Authorization, Content-Type"
)

// Policy decides which cross-origin callers may read gateway responses.
// Matching is case-insensitive and exact — no wildcard or subdomain matching.
// An empty allowlist authorizes no origin.
type Policy struct {
	allowed []string // lowercased
}

// ParseAllowlist splits a comma-separated origin list, trimming whitespace,
// dropping empties, and lowercasing entries for matching.
func ParseAllowlist(csv string) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out
}

// New builds a Policy from a parsed allowlist. Entries are lowercased again
// so callers may pass origins in any case.
func New(origins []string) Policy {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		allowed = append(allowed, strings.ToLower(o))
	}
	return Policy{allowed: allowed}
}

// Allowed reports whether origin is on the allowlist.
func (p Policy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	origin = strings.ToLower(origin)
	for _, a := range p.allowed {
		if a == origin {
			return true
		}
	}
	return false
}

// Headers returns the cross-origin headers for a response to origin.
// Access-Control-Allow-Origin echoes the original-cased request origin and is
// present only when the origin is allowed.
func (p Policy) Headers(origin string) map[string]string {
	h := map[string]string{
		"Access-Control-Allow-Methods": AllowMethods,
		"Access-Control-Allow-Headers": AllowHeaders,
		"Vary":                         "Origin",
	}
	if p.Allowed(origin) {
		h["Access-Control-Allow-Origin"] = origin
	}
	return h
}
