package upstream

import (
	"fmt"
	"unicode/utf8"
)

// Truncation caps applied to diagnostic excerpts of upstream bodies. These
// bound the size of gateway error responses; the exact values are policy,
// not contract.
const (
	DetailLimit  = 1000
	PreviewLimit = 500
)

// TransportError wraps a failure to get any response from the store:
// dial errors, timeouts, or a body that could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-success HTTP status from the store. Detail holds at
// most DetailLimit characters of the upstream body.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// ContentTypeError is a nominally successful response whose body is not
// JSON. Kept distinct from ParseError so a misrouted response (HTML error
// page, proxy interstitial) can be told apart from malformed JSON.
type ContentTypeError struct {
	Status      int
	ContentType string
	Preview     string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("upstream returned content type %q, want JSON", e.ContentType)
}

// ParseError is a JSON body that failed to decode into the expected shape.
type ParseError struct {
	Status      int
	ContentType string
	Message     string
	Preview     string
}

func (e *ParseError) Error() string {
	return "upstream parse failed: " + e.Message
}

// truncate returns at most limit bytes of s, trimming back to a rune
// boundary so a multi-byte character is never cut in half.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
