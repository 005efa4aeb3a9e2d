package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Client issues read and upsert calls against the store's REST interface.
// A Client is built per invocation from that invocation's configuration
// snapshot and holds no state beyond its HTTP client.
type Client struct {
	baseURL string
	client  *http.Client
}

// authRoundTripper injects the service credential into every outgoing
// request. PostgREST wants the raw key in the apikey header and the same
// value as a bearer token.
type authRoundTripper struct {
	base http.RoundTripper
	key  string
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("apikey", t.key)
	req.Header.Set("Authorization", "Bearer "+t.key)
	return t.base.RoundTrip(req)
}

// New creates a Client for the store at baseURL, authenticating every call
// with serviceKey.
func New(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &authRoundTripper{base: http.DefaultTransport, key: serviceKey},
			Timeout:   requestTimeout,
		},
	}
}

// Query shapes a read call: selected columns, descending order column, and
// row limit. Zero values omit the corresponding parameter.
type Query struct {
	Select    string
	OrderDesc string
	Limit     int
}

// Select fetches rows from resource into dst, which must be a pointer to a
// slice of the expected row type.
//
// Failures classify by layer: *TransportError (no response at all),
// *StatusError (non-2xx, detail capped at DetailLimit), *ContentTypeError
// (2xx but not JSON), *ParseError (JSON that does not decode into dst).
// An empty body on success leaves dst untouched and returns nil — zero rows
// is a valid result.
func (c *Client) Select(ctx context.Context, resource string, q Query, dst any) error {
	u := c.baseURL + "/rest/v1/" + resource
	params := url.Values{}
	if q.Select != "" {
		params.Set("select", q.Select)
	}
	if q.OrderDesc != "" {
		params.Set("order", q.OrderDesc+".desc")
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Status: resp.StatusCode,
			Detail: truncate(string(body), DetailLimit),
		}
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return &ContentTypeError{
			Status:      resp.StatusCode,
			ContentType: contentType,
			Preview:     truncate(raw, PreviewLimit),
		}
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return &ParseError{
			Status:      resp.StatusCode,
			ContentType: contentType,
			Message:     err.Error(),
			Preview:     truncate(raw, PreviewLimit),
		}
	}
	return nil
}

// Upsert writes rows (a slice) into table as a JSON array, resolving
// conflicts on the onConflict column list by merging duplicates. Failures
// classify as *TransportError or *StatusError; the gateway does not read
// upsert response bodies beyond the error detail.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, rows any) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("encode rows: %w", err)}
	}

	u := c.baseURL + "/rest/v1/" + table
	if onConflict != "" {
		u += "?on_conflict=" + url.QueryEscape(onConflict)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(resp.Body)
		return &StatusError{
			Status: resp.StatusCode,
			Detail: truncate(string(detail), DetailLimit),
		}
	}
	return nil
}
