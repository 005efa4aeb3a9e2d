package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/perfgate/perfgate/internal/cors"
)

// Environment variable names read on every snapshot. The store URL and
// service key are required; everything else has a default.
const (
	EnvUpstreamURL    = "SUPABASE_URL"
	EnvServiceKey     = "SUPABASE_SERVICE_ROLE_KEY"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
	EnvThresholdMS    = "P95_THRESHOLD_MS"
	EnvMinRequests    = "MIN_REQS_THRESHOLD"
	EnvWebhookURL     = "SLACK_WEBHOOK_URL"
)

// Default values applied when fields are absent from the file or environment.
const (
	DefaultHTTPPort    = 8080
	DefaultThresholdMS = 2000
	DefaultMinRequests = 0
	DefaultAlertLimit  = 4
	DefaultDailyLimit  = 60

	DefaultAlertView     = "mv_metrics_15m"
	DefaultDailyView     = "mv_metrics_daily"
	DefaultSnapshotTable = "metrics_snapshots"
)

// File is the optional yaml tuning file. Secrets never live here — they are
// resolved from the environment on every snapshot.
type File struct {
	Gateway GatewayConfig `yaml:"gateway"`
}

// GatewayConfig holds non-secret gateway settings.
type GatewayConfig struct {
	// HTTPPort is the port the gateway listens on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Upstream names the store resources the gateway reads and writes.
	Upstream UpstreamConfig `yaml:"upstream"`
}

// UpstreamConfig names the store resources the gateway touches.
type UpstreamConfig struct {
	// AlertView is the 15-minute materialized view behind the alert check.
	AlertView string `yaml:"alert_view"`

	// AlertLimit caps how many recent buckets the alert check examines.
	AlertLimit int `yaml:"alert_limit"`

	// DailyView is the daily materialized view behind the metrics endpoint
	// and the snapshot job.
	DailyView string `yaml:"daily_view"`

	// DailyLimit caps how many daily rows the metrics endpoint returns.
	DailyLimit int `yaml:"daily_limit"`

	// SnapshotTable is the upsert target of the snapshot job.
	SnapshotTable string `yaml:"snapshot_table"`

	// SnapshotConflict is the uniqueness key the upsert resolves on.
	SnapshotConflict string `yaml:"snapshot_conflict"`
}

// Load reads and parses the tuning file at path. Missing fields are filled
// with defaults before validation. An empty path returns pure defaults — the
// file is optional.
func Load(path string) (*File, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gateway config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("gateway config: parse yaml: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("gateway config: %w", err)
	}
	return cfg, nil
}

// defaults returns a File pre-populated with default values.
func defaults() *File {
	return &File{
		Gateway: GatewayConfig{
			HTTPPort: DefaultHTTPPort,
			Upstream: UpstreamConfig{
				AlertView:        DefaultAlertView,
				AlertLimit:       DefaultAlertLimit,
				DailyView:        DefaultDailyView,
				DailyLimit:       DefaultDailyLimit,
				SnapshotTable:    DefaultSnapshotTable,
				SnapshotConflict: "day,event_name",
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *File) error {
	gw := cfg.Gateway
	if gw.HTTPPort <= 0 || gw.HTTPPort > 65535 {
		return fmt.Errorf("gateway.http_port %d is out of range [1, 65535]", gw.HTTPPort)
	}
	if gw.Upstream.AlertLimit <= 0 {
		return fmt.Errorf("gateway.upstream.alert_limit must be positive")
	}
	if gw.Upstream.DailyLimit <= 0 {
		return fmt.Errorf("gateway.upstream.daily_limit must be positive")
	}
	for name, v := range map[string]string{
		"alert_view":     gw.Upstream.AlertView,
		"daily_view":     gw.Upstream.DailyView,
		"snapshot_table": gw.Upstream.SnapshotTable,
	} {
		if v == "" {
			return fmt.Errorf("gateway.upstream.%s must not be empty", name)
		}
	}
	return nil
}

// Snapshot is one invocation's complete, immutable view of the configuration.
// Environment values are read when the snapshot is built, never cached.
type Snapshot struct {
	Gateway GatewayConfig

	UpstreamURL    string
	ServiceKey     string
	AllowedOrigins []string
	ThresholdMS    float64
	MinRequests    float64
	WebhookURL     string
}

// Missing names the required values absent from this snapshot. A non-empty
// result means the gateway must fail closed before any upstream call.
func (s Snapshot) Missing() []string {
	var m []string
	if s.UpstreamURL == "" {
		m = append(m, EnvUpstreamURL)
	}
	if s.ServiceKey == "" {
		m = append(m, EnvServiceKey)
	}
	return m
}

// Provider hands out per-invocation snapshots. The file portion is swapped
// atomically on reload; the env portion is re-read on every call so handlers
// always see the current environment.
type Provider struct {
	mu   sync.RWMutex
	file *File
}

// NewProvider wraps an already-loaded tuning file.
func NewProvider(f *File) *Provider {
	if f == nil {
		f = defaults()
	}
	return &Provider{file: f}
}

// Reload replaces the file portion of future snapshots. Intended as the
// onChange callback of Watch.
func (p *Provider) Reload(f *File) {
	p.mu.Lock()
	p.file = f
	p.mu.Unlock()
}

// Snapshot builds a fresh configuration snapshot for one invocation.
func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	gw := p.file.Gateway
	p.mu.RUnlock()

	return Snapshot{
		Gateway:        gw,
		UpstreamURL:    strings.TrimSpace(os.Getenv(EnvUpstreamURL)),
		ServiceKey:     strings.TrimSpace(os.Getenv(EnvServiceKey)),
		AllowedOrigins: cors.ParseAllowlist(os.Getenv(EnvAllowedOrigins)),
		ThresholdMS:    floatEnv(EnvThresholdMS, DefaultThresholdMS),
		MinRequests:    floatEnv(EnvMinRequests, DefaultMinRequests),
		WebhookURL:     strings.TrimSpace(os.Getenv(EnvWebhookURL)),
	}
}

// floatEnv parses a non-negative float from the environment. Unset,
// unparsable, or negative values fall back to def.
func floatEnv(name string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
