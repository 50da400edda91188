// Package transport defines the capability the client uses to put a single
// request on the wire, and provides the real HTTP and HTTPS implementations
// built on [net/http].
//
// # Opening a Request
//
// A [Transport] is handed a resolved [Descriptor] and a [ResponseFunc]. It
// returns a [RequestHandle] straight away; the body is written to the handle
// while the connection is being established:
//
//	h := transport.NewHTTP().Open(ctx, &transport.Descriptor{
//		Scheme:   "http:",
//		Hostname: "example.com",
//		Port:     80,
//		Path:     "/",
//		Method:   http.MethodPost,
//	}, func(resp *transport.Response) {
//		defer resp.Body.Close()
//		// ...
//	})
//	h.OnError(func(err error) { /* dial, TLS or timeout failure */ })
//	h.Write(payload)
//	h.End()
//
// The real transports speak HTTP/1.1 over one connection per request, keep
// the response body exactly as sent (no transparent gzip), and record the raw
// response header lines in [Response.RawHeaders].
//
// Tests substitute their own [Transport] to intercept the plain HTTP path.
package transport
