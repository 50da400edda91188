// Package phin performs single HTTP and HTTPS calls and hands back the
// fully buffered response, through a callback or by waiting for it.
package phin

import (
	"context"
	"sync"

	"github.com/ocarlott/phin/client"
)

type (
	// Options describes a single call.
	Options = client.Options

	// Response is the fully buffered result of a call.
	Response = client.Response

	// Callback receives the outcome of a call exactly once.
	Callback = client.Callback
)

var defaultClient = sync.OnceValues(func() (*client.Client, error) {
	return client.Build()
})

// NewClient instantiates a new *Client with the provided options.
// If not specified, the real HTTP and HTTPS transports are used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// Request issues a call from a URL string or Options with the default
// client and delivers its outcome to cb.
func Request[T client.Input](ctx context.Context, in T, cb Callback) error {
	c, err := defaultClient()
	if err != nil {
		return err
	}
	return client.Request(ctx, c, in, cb)
}

// Do issues a call from a URL string or Options with the default client and
// waits for its outcome.
func Do[T client.Input](ctx context.Context, in T) (*Response, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return client.Do(ctx, c, in)
}
