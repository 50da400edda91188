package transport

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDescriptor_Host(t *testing.T) {
	testCases := map[string]struct {
		d   Descriptor
		exp string
	}{
		"httpDefaultPort":   {d: Descriptor{Scheme: "http:", Hostname: "example.com", Port: 80}, exp: "example.com"},
		"httpsDefaultPort":  {d: Descriptor{Scheme: "HTTPS:", Hostname: "example.com", Port: 443}, exp: "example.com"},
		"httpOn443":         {d: Descriptor{Scheme: "http:", Hostname: "example.com", Port: 443}, exp: "example.com:443"},
		"customPort":        {d: Descriptor{Scheme: "http:", Hostname: "example.com", Port: 8080}, exp: "example.com:8080"},
		"ipv6DefaultPort":   {d: Descriptor{Scheme: "http:", Hostname: "::1", Port: 80}, exp: "[::1]"},
		"ipv6CustomPort":    {d: Descriptor{Scheme: "http:", Hostname: "::1", Port: 8080}, exp: "[::1]:8080"},
		"socketWithoutHost": {d: Descriptor{Scheme: "http:", SocketPath: "/tmp/s.sock", Port: 80}, exp: "localhost"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if got := tc.d.Host(); got != tc.exp {
				t.Errorf("exp %q, got %q", tc.exp, got)
			}
		})
	}
}

func TestDescriptor_NormalizedScheme(t *testing.T) {
	for in, exp := range map[string]string{"HTTP:": "http:", "https": "https:", "Ftp:": "ftp:"} {
		d := Descriptor{Scheme: in}
		if got := d.NormalizedScheme(); got != exp {
			t.Errorf("NormalizedScheme(%q) = %q, want %q", in, got, exp)
		}
	}
}

func TestDescriptor_NewRequest(t *testing.T) {
	d := &Descriptor{
		Scheme:   "http:",
		Hostname: "example.com",
		Port:     8080,
		Path:     "/items?page=2",
		Method:   http.MethodPost,
		Headers: map[string]string{
			"x-lower":        "a",
			"X-UPPER":        "b",
			"host":           "virtual.test",
			"content-length": "5",
		},
		Auth: "user:p:ss",
	}

	req, err := d.newRequest(t.Context(), http.NoBody)
	if err != nil {
		t.Fatalf("newRequest: %v", err)
	}

	if req.URL.String() != "http://example.com:8080/items?page=2" {
		t.Errorf("unexpected url %s", req.URL)
	}
	if req.Method != http.MethodPost {
		t.Errorf("unexpected method %s", req.Method)
	}
	if req.Host != "virtual.test" {
		t.Errorf("unexpected host %s", req.Host)
	}
	if req.ContentLength != 5 {
		t.Errorf("unexpected content length %d", req.ContentLength)
	}

	exp := http.Header{
		"x-lower": {"a"},
		"X-UPPER": {"b"},
	}
	got := req.Header.Clone()
	got.Del("Authorization")
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	user, pass, ok := req.BasicAuth()
	if !ok || user != "user" || pass != "p:ss" {
		t.Errorf("unexpected basic auth %q %q %v", user, pass, ok)
	}
}

func TestDescriptor_NewRequestAuthorizationHeaderWins(t *testing.T) {
	d := &Descriptor{
		Scheme:   "http:",
		Hostname: "example.com",
		Port:     80,
		Path:     "/",
		Headers:  map[string]string{"authorization": "Bearer token"},
		Auth:     "user:pass",
	}

	req, err := d.newRequest(t.Context(), http.NoBody)
	if err != nil {
		t.Fatalf("newRequest: %v", err)
	}

	if req.Method != http.MethodGet {
		t.Errorf("exp default method GET, got %s", req.Method)
	}
	if diff := cmp.Diff([]string{"Bearer token"}, req.Header["authorization"]); diff != "" {
		t.Errorf("authorization mismatch (-want +got):\n%s", diff)
	}
	if _, ok := req.Header["Authorization"]; ok {
		t.Error("basic auth must not be added when an authorization header is set")
	}
}

func TestDescriptor_NewRequestBadContentLength(t *testing.T) {
	d := &Descriptor{Scheme: "http:", Hostname: "example.com", Port: 80, Headers: map[string]string{"Content-Length": "many"}}

	if _, err := d.newRequest(t.Context(), http.NoBody); err == nil {
		t.Fatal("exp error for non-numeric content length")
	}
}
