package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
)

// ErrAborted is reported when a request is aborted without a cause.
var ErrAborted = errors.New("request aborted")

// Transport opens a single request for a resolved Descriptor.
//
// Open must not block on network I/O: the returned RequestHandle accepts
// the request body while the exchange proceeds in the background.
// onResponse is invoked at most once, when the response headers have
// arrived. Failures before that point are reported to the handle's error
// listeners instead.
type Transport interface {
	Open(ctx context.Context, d *Descriptor, onResponse ResponseFunc) RequestHandle
}

// ResponseFunc receives the response of an opened request. The callee owns
// resp.Body and must close it.
type ResponseFunc func(resp *Response)

// RequestHandle is the writable side of an opened request.
type RequestHandle interface {
	io.Writer

	// End terminates the request body. No further writes are allowed.
	End() error

	// Abort tears the request down, reporting err to the transport.
	Abort(err error)

	// OnError registers fn to receive the transport error of this request.
	// A listener registered after the error occurred is invoked immediately.
	OnError(fn func(error))
}

// Response is the transport's native response plus what net/http does not
// retain on its own.
type Response struct {
	*http.Response

	// RawHeaders holds the response header lines as received, as
	// alternating name and value entries.
	RawHeaders []string

	Conn Conn

	rec *recorder
}

// RawTrailers returns the trailer lines of a chunked response as received,
// as alternating name and value entries. It is nil until the body has been
// read to the end, and for responses not received by a real transport.
func (r *Response) RawTrailers() []string {
	if r.rec == nil {
		return nil
	}
	return r.rec.rawTrailers()
}

// Conn describes the connection a response was received on.
type Conn struct {
	LocalAddr  net.Addr
	RemoteAddr net.Addr
	TLS        *tls.ConnectionState
}

// Failed returns a RequestHandle for a request that could not be opened.
// Writes are discarded and every error listener receives err.
func Failed(err error) RequestHandle {
	pr, pw := io.Pipe()
	_ = pr.CloseWithError(err)

	h := &stream{pw: pw}
	h.fail(err)

	return h
}

// stream is a RequestHandle backed by an io.Pipe whose read side is the
// body of an in-flight *http.Request.
type stream struct {
	pw *io.PipeWriter

	mu        sync.Mutex
	err       error
	listeners []func(error)
}

func (s *stream) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

func (s *stream) End() error {
	return s.pw.Close()
}

func (s *stream) Abort(err error) {
	if err == nil {
		err = ErrAborted
	}
	_ = s.pw.CloseWithError(err)
}

func (s *stream) OnError(fn func(error)) {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		fn(err)
		return
	}
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// fail records err and notifies the listeners. Only the first error counts.
func (s *stream) fail(err error) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return
	}
	s.err = err
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(err)
	}
}
