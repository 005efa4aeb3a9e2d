// Package upstream implements the read and upsert client for the external
// metrics store's PostgREST interface. Every failure is classified into one
// of a small set of typed errors so the gateway can tell an operator which
// layer broke: transport, upstream HTTP status, response content type, or
// body shape. An empty body on a successful read is zero rows, not an error.
package upstream
