package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	dialTimeout         = 30 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// Net is the real Transport, backed by net/http. Each opened request gets
// its own connection which is closed once the response body is released.
type Net struct {
	scheme    string
	tlsConfig *tls.Config
}

// NewHTTP returns the plain-text transport for "http:" descriptors.
func NewHTTP() *Net {
	return &Net{scheme: "http:"}
}

// NewHTTPS returns the TLS transport for "https:" descriptors. A nil cfg
// uses the zero tls.Config, which verifies against the system roots.
func NewHTTPS(cfg *tls.Config) *Net {
	if cfg == nil {
		cfg = &tls.Config{}
	}
	return &Net{scheme: "https:", tlsConfig: cfg}
}

// Open implements Transport.
func (n *Net) Open(ctx context.Context, d *Descriptor, onResponse ResponseFunc) RequestHandle {
	if s := d.NormalizedScheme(); s != n.scheme {
		return Failed(fmt.Errorf("%s transport cannot serve %q", n.scheme, s))
	}

	pr, pw := io.Pipe()
	s := &stream{pw: pw}

	go n.roundTrip(ctx, d, pr, s, onResponse)

	return s
}

func (n *Net) roundTrip(ctx context.Context, d *Descriptor, body *io.PipeReader, s *stream, onResponse ResponseFunc) {
	var cancel context.CancelFunc
	if d.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	req, err := d.newRequest(ctx, body)
	if err != nil {
		cancel()
		_ = body.CloseWithError(err)
		s.fail(err)
		return
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	rec := &recorder{}
	rt := n.oneShot(d, rec)

	resp, err := rt.RoundTrip(req)
	if err != nil {
		cancel()
		rt.CloseIdleConnections()
		_ = body.CloseWithError(err)
		s.fail(err)
		return
	}

	resp.Body = &releaser{
		ReadCloser: resp.Body,
		release: func() {
			cancel()
			rt.CloseIdleConnections()
			_ = body.Close()
		},
	}

	onResponse(&Response{
		Response:   resp,
		RawHeaders: rec.rawHeaders(),
		Conn:       rec.info(),
		rec:        rec,
	})
}

// oneShot builds a transport that serves exactly one request over
// HTTP/1.1, without transparent decompression, and dials according to d.
func (n *Net) oneShot(d *Descriptor, rec *recorder) *http.Transport {
	dialer := &net.Dialer{Timeout: dialTimeout}
	if d.LocalAddress != "" {
		dialer.LocalAddr = &net.TCPAddr{IP: net.ParseIP(d.LocalAddress)}
	}

	// A local TCP address cannot be bound on a unix socket.
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		if d.SocketPath != "" {
			unixDialer := &net.Dialer{Timeout: dialTimeout}
			return unixDialer.DialContext(ctx, "unix", d.SocketPath)
		}
		return dialer.DialContext(ctx, network, addr)
	}

	t := &http.Transport{
		DisableKeepAlives:   true,
		DisableCompression:  true,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
		TLSNextProto:        map[string]func(string, *tls.Conn) http.RoundTripper{},
	}

	if n.tlsConfig == nil {
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dial(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return rec.wrap(conn, nil), nil
		}
		return t
	}

	t.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		cfg := n.tlsConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = d.Hostname
		}
		cfg.NextProtos = []string{"http/1.1"}

		hctx, cancel := context.WithTimeout(ctx, tlsHandshakeTimeout)
		defer cancel()

		tc := tls.Client(conn, cfg)
		if err := tc.HandshakeContext(hctx); err != nil {
			_ = conn.Close()
			return nil, err
		}

		state := tc.ConnectionState()
		return rec.wrap(tc, &state), nil
	}

	return t
}

// releaser runs release once the body has been closed.
type releaser struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (r *releaser) Close() error {
	err := r.ReadCloser.Close()
	r.once.Do(r.release)
	return err
}
