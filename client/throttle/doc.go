// Package throttle provides a [transport.Transport] decorator that
// rate-limits how fast requests are opened, using a token-bucket
// algorithm from [golang.org/x/time/rate].
//
// # Usage
//
// Wrap an existing transport with [New]:
//
//	t, err := throttle.New(
//		throttle.Config{RPS: 10, Burst: 5},
//		func() *slog.Logger { return slog.Default() },
//		transport.NewHTTP(),
//	)
//
// When the bucket is empty, Open blocks until a token becomes available
// or the context is cancelled. Most callers enable it through
// client.WithThrottle instead.
package throttle
