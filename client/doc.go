// Package client performs single HTTP and HTTPS calls and hands back the
// fully buffered response.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithUserAgent("myapp/1.0"),
//		client.WithThrottle(10, 5),
//	)
//
// # Making Calls
//
// A call is described by a URL string or an [Options] value. The callback
// form returns at once and reports the outcome exactly once:
//
//	err := client.Request(ctx, c, "http://example.com/", func(err error, resp *client.Response) {
//		// exactly one of err and resp is set
//	})
//
// The awaitable form blocks until the outcome is known:
//
//	resp, err := client.Do(ctx, c, client.Options{
//		URL:        "https://api.example.com/v1/items",
//		Method:     http.MethodPost,
//		Headers:    map[string]string{"Content-Type": "application/json"},
//		Data:       map[string]any{"name": "widget"},
//		Compressed: true,
//	})
//
// [Go] starts a call and returns a [Result] to collect it from later.
//
// # Payloads
//
// []byte, string and [io.Reader] payloads are written as they are. Any other
// value is encoded by the request's Content-Type, which must be exactly
// "application/json" or "x/www-url-form-encoded".
//
// # Errors
//
// Malformed input is reported as a [*UsageError] and an unsupported scheme
// as a [*ProtocolError]. Connection, TLS and timeout failures are delivered
// as the transport reported them.
//
// For the transport capability and test doubles see the
// [github.com/ocarlott/phin/client/transport] package.
package client
