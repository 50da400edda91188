package throttle

import (
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/ocarlott/phin/client/transport"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// throttle is a transport.Transport, using the time/rate token
// bucket limiter to restrict how fast requests are opened.
type throttle struct {
	limiter *rate.Limiter
	cfg     Config
	next    transport.Transport
	logFn   func() *slog.Logger
}
