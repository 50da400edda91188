package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/ocarlott/phin/client/transport"
)

// New returns a transport.Transport that delays opening requests on next
// until the token bucket allows it. logFn lazily resolves the logger at
// request time, making option ordering irrelevant; a nil logger disables
// the wait logs.
func New(cfg Config, logFn func() *slog.Logger, next transport.Transport) (transport.Transport, error) {
	if cfg.RPS <= 0 || cfg.Burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", cfg.RPS, cfg.Burst, ErrMustNotBeZero)
	}
	if next == nil {
		return nil, errors.New("next transport must not be nil")
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cfg:     cfg,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

// Open blocks until a token is available, then opens the request on the
// wrapped transport. Waiting failures are reported through the returned
// handle like any other transport error.
func (t *throttle) Open(ctx context.Context, d *transport.Descriptor, onResponse transport.ResponseFunc) transport.RequestHandle {
	if err := ctx.Err(); err != nil {
		return transport.Failed(fmt.Errorf("%w early: %w", ErrContextEnded, err))
	}

	res := t.limiter.Reserve()
	if !res.OK() {
		return transport.Failed(fmt.Errorf("%w: burst %d exceeded", ErrWaitingFailed, t.cfg.Burst))
	}

	if delay := res.Delay(); delay > 0 {
		logger := t.logFn()
		if logger != nil {
			logger.Info("throttle tokens exhausted", "rate", t.cfg.RPS, "burst", t.cfg.Burst, "host", d.Hostname, "delay", delay.String())
		}

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			res.Cancel()
			return transport.Failed(fmt.Errorf("%w: %w", ErrWaitingFailed, ctx.Err()))
		}

		if logger != nil {
			logger.Info("throttle wait complete", "waited", delay.String(), "rate", t.cfg.RPS, "burst", t.cfg.Burst)
		}
	}

	return t.next.Open(ctx, d, onResponse)
}
