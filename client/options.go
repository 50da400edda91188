package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/ocarlott/phin/client/throttle"
	"github.com/ocarlott/phin/client/transport"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	http      transport.Transport
	tlsConfig *tls.Config
	userAgent string
	throttle  *throttle.Config
	logger    *slog.Logger
	tracer    trace.Tracer
}

// WithTransport replaces the transport used for "http:" calls. Calls over
// "https:" always use the real TLS transport.
func WithTransport(t transport.Transport) Option {
	return func(c *options) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		c.http = t
		return nil
	}
}

// WithTLSConfig sets the TLS configuration of the "https:" transport.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *options) error {
		if cfg == nil {
			return errors.New("tls config must not be nil")
		}
		c.tlsConfig = cfg
		return nil
	}
}

// WithUserAgent sets a User-Agent header on every call that does not
// already carry one.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithTracer sets the tracer each call starts its span from. The default
// tracer records nothing.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}
