package cors

import "testing"

func TestParseAllowlist(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{"empty string", "", nil},
		{"single origin", "https://app.example.com", []string{"https://app.example.com"}},
		{"trims and lowercases", " https://App.Example.com , https://b.example.com",
			[]string{"https://app.example.com", "https://b.example.com"}},
		{"drops empties", ",https://a.example.com,,", []string{"https://a.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAllowlist(tt.csv)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseAllowlist(%q): got %v, want %v", tt.csv, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAllowed_CaseInsensitive(t *testing.T) {
	p := New([]string{"https://app.example.com"})

	if !p.Allowed("https://APP.Example.COM") {
		t.Error("case-insensitive match failed")
	}
	if p.Allowed("https://other.example.com") {
		t.Error("unlisted origin allowed")
	}
	if p.Allowed("https://sub.app.example.com") {
		t.Error("subdomain matched — matching must be exact")
	}
	if p.Allowed("") {
		t.Error("empty origin allowed")
	}
}

func TestHeaders_AllowedOrigin(t *testing.T) {
	p := New([]string{"https://app.example.com"})
	h := p.Headers("https://App.Example.com")

	// The header echoes the original-cased request origin.
	if got := h["Access-Control-Allow-Origin"]; got != "https://App.Example.com" {
		t.Errorf("allow-origin: got %q, want original casing", got)
	}
	if h["Vary"] != "Origin" {
		t.Errorf("Vary: got %q, want Origin", h["Vary"])
	}
	if h["Access-Control-Allow-Methods"] != AllowMethods {
		t.Errorf("allow-methods: got %q", h["Access-Control-Allow-Methods"])
	}
	if h["Access-Control-Allow-Headers"] != AllowHeaders {
		t.Errorf("allow-headers: got %q", h["Access-Control-Allow-Headers"])
	}
}

func TestHeaders_DisallowedOriginOmitsAllowOrigin(t *testing.T) {
	p := New([]string{"https://app.example.com"})

	for _, origin := range []string{"https://evil.example.com", ""} {
		h := p.Headers(origin)
		if _, ok := h["Access-Control-Allow-Origin"]; ok {
			t.Errorf("origin %q: allow-origin present, want omitted", origin)
		}
		// The advisory headers are still attached.
		if h["Vary"] != "Origin" {
			t.Errorf("origin %q: Vary missing", origin)
		}
	}
}

func TestHeaders_EmptyAllowlist(t *testing.T) {
	p := New(nil)
	if _, ok := p.Headers("https://app.example.com")["Access-Control-Allow-Origin"]; ok {
		t.Error("empty allowlist authorized an origin")
	}
}
