package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Descriptor is the resolved form of a single call. It is built once per
// call and must not be modified after it has been handed to a Transport.
type Descriptor struct {
	Scheme       string // "http:" or "https:", compared case-insensitively
	Hostname     string
	Port         int
	Path         string // path and query, always starting with "/"
	Method       string
	Headers      map[string]string
	Auth         string // "user:pass", empty when absent
	SocketPath   string
	LocalAddress string
	Timeout      time.Duration
}

// NormalizedScheme returns the lower-cased scheme with a trailing colon.
func (d *Descriptor) NormalizedScheme() string {
	s := strings.ToLower(d.Scheme)
	if !strings.HasSuffix(s, ":") {
		s += ":"
	}
	return s
}

// Host returns the authority used in the request line and Host header.
// The port is omitted when it is the default for the scheme.
func (d *Descriptor) Host() string {
	hostname := d.Hostname
	if hostname == "" && d.SocketPath != "" {
		hostname = "localhost"
	}

	if (d.NormalizedScheme() == "http:" && d.Port == 80) || (d.NormalizedScheme() == "https:" && d.Port == 443) {
		if strings.Contains(hostname, ":") {
			return "[" + hostname + "]"
		}
		return hostname
	}

	return net.JoinHostPort(hostname, strconv.Itoa(d.Port))
}

// newRequest builds the *http.Request for d, streaming body as the request body.
func (d *Descriptor) newRequest(ctx context.Context, body io.Reader) (*http.Request, error) {
	path := d.Path
	if path == "" {
		path = "/"
	}

	target := strings.TrimSuffix(d.NormalizedScheme(), ":") + "://" + d.Host() + path

	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	// Keys are sent exactly as supplied; Host and Content-Length are
	// carried on the request itself.
	for k, v := range d.Headers {
		switch {
		case strings.EqualFold(k, "Host"):
			req.Host = v
		case strings.EqualFold(k, "Content-Length"):
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, err
			}
			req.ContentLength = n
		default:
			req.Header[k] = []string{v}
		}
	}

	if d.Auth != "" && !hasHeader(d.Headers, "Authorization") {
		user, pass, _ := strings.Cut(d.Auth, ":")
		req.SetBasicAuth(user, pass)
	}

	return req, nil
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
