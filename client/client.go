package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ocarlott/phin/client/throttle"
	"github.com/ocarlott/phin/client/transport"
)

// Client issues single calls over the transport matching each call's
// scheme. A Client holds no per-call state and is safe for concurrent use.
type Client struct {
	http      transport.Transport
	https     transport.Transport
	logger    *slog.Logger
	tracer    trace.Tracer
	userAgent string
}

// Build creates a Client. Without options it uses the real HTTP and HTTPS
// transports, [slog.Default] and a tracer that records nothing.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		http:      transport.NewHTTP(),
		https:     transport.NewHTTPS(opts.tlsConfig),
		logger:    slog.Default(),
		tracer:    noop.NewTracerProvider().Tracer("no-op tracer"),
		userAgent: opts.userAgent,
	}

	if opts.http != nil {
		client.http = opts.http
	}
	if opts.logger != nil {
		client.logger = opts.logger
	}
	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.throttle != nil {
		logFn := func() *slog.Logger { return client.logger }

		// One bucket shared by both schemes.
		limiter, err := throttle.New(*opts.throttle, logFn, schemeRouter{http: client.http, https: client.https})
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		client.http, client.https = limiter, limiter
	}

	return client, nil
}

// Request issues the call described by opts and delivers its outcome to cb,
// exactly once, from another goroutine. The only errors returned directly
// are UsageErrors found before anything was sent. A scheme other than http
// or https is delivered to cb as a ProtocolError before Request returns.
//
// ctx carries values such as the active span; its cancellation does not
// affect the call. Use Options.Timeout to bound it.
func (c *Client) Request(ctx context.Context, opts Options, cb Callback) error {
	if cb == nil {
		return &UsageError{Field: "callback", Detail: "must not be nil"}
	}

	d, err := resolve(opts)
	if err != nil {
		return err
	}

	if c.userAgent != "" && !hasKey(d.Headers, "User-Agent") {
		d.Headers["User-Agent"] = c.userAgent
	}

	call := c.newCall(ctx, d, opts, cb)

	var t transport.Transport
	switch d.NormalizedScheme() {
	case "http:":
		t = c.http
	case "https:":
		t = c.https
	default:
		call.finish(&ProtocolError{Scheme: d.Scheme}, nil)
		return nil
	}

	go call.run(t)

	return nil
}

// Do issues the call described by opts and waits for its outcome.
func (c *Client) Do(ctx context.Context, opts Options) (*Response, error) {
	return Go(ctx, c, opts).Wait()
}

// Request issues a call from a URL string or Options using c.
// See [Client.Request].
func Request[T Input](ctx context.Context, c *Client, in T, cb Callback) error {
	opts, err := toOptions(in)
	if err != nil {
		return err
	}
	return c.Request(ctx, opts, cb)
}

// Do issues a call from a URL string or Options using c and waits for its
// outcome. See [Client.Do].
func Do[T Input](ctx context.Context, c *Client, in T) (*Response, error) {
	return Go(ctx, c, in).Wait()
}

// call is the state of one in-flight request.
type call struct {
	ctx        context.Context
	desc       *transport.Descriptor
	data       any
	compressed bool
	cb         Callback

	id      string
	span    trace.Span
	logger  *slog.Logger
	started time.Time
	once    sync.Once
}

func (c *Client) newCall(ctx context.Context, d *transport.Descriptor, opts Options, cb Callback) *call {
	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), "phin.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", d.Method),
			attribute.String("server.address", d.Hostname),
			attribute.Int("server.port", d.Port),
			attribute.String("url.scheme", strings.TrimSuffix(d.NormalizedScheme(), ":")),
		),
	)

	id := span.SpanContext().TraceID().String()
	if !span.SpanContext().TraceID().IsValid() {
		id = uuid.New().String()
	}

	cl := &call{
		ctx:        ctx,
		desc:       d,
		data:       opts.Data,
		compressed: opts.Compressed,
		cb:         cb,
		id:         id,
		span:       span,
		logger:     c.logger,
		started:    time.Now(),
	}

	cl.logger.Debug("request issued", "call_id", id, "method", d.Method, "host", d.Host(), "path", d.Path)

	return cl
}

// run opens the request on t, writes the payload and ends the request
// stream. The outcome arrives through the handle's listeners unless the
// payload cannot be produced, in which case that error is the outcome and
// the opened request is aborted.
func (cl *call) run(t transport.Transport) {
	body, encErr := cl.encode()
	if encErr != nil {
		cl.finish(encErr, nil)
	}

	h := t.Open(cl.ctx, cl.desc, func(resp *transport.Response) {
		if encErr != nil {
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
			return
		}
		r, err := aggregate(resp, cl.compressed)
		cl.finish(err, r)
	})
	h.OnError(func(err error) {
		cl.finish(err, nil)
	})

	if encErr != nil {
		h.Abort(encErr)
		return
	}

	if err := cl.write(h, body); err != nil {
		cl.finish(err, nil)
		h.Abort(err)
		return
	}

	if err := h.End(); err != nil {
		cl.finish(err, nil)
		h.Abort(err)
	}
}

// encode serializes a structured payload. Raw payloads and readers are
// returned untouched by write.
func (cl *call) encode() ([]byte, error) {
	switch cl.data.(type) {
	case nil, io.Reader:
		return nil, nil
	}
	return encodeBody(cl.data, cl.desc.Headers)
}

// write sends the payload to h. Readers are copied as they are.
func (cl *call) write(h transport.RequestHandle, body []byte) error {
	if r, ok := cl.data.(io.Reader); ok {
		_, err := io.Copy(h, r)
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := h.Write(body)
	return err
}

// finish delivers the outcome of the call. Only the first outcome counts.
func (cl *call) finish(err error, resp *Response) {
	cl.once.Do(func() {
		elapsed := time.Since(cl.started)

		if err != nil {
			cl.span.RecordError(err)
			cl.span.SetStatus(codes.Error, err.Error())
			cl.span.End()

			cl.logger.Warn("request failed", "call_id", cl.id, "method", cl.desc.Method, "host", cl.desc.Host(), "elapsed", elapsed.String(), "error", err)

			cl.cb(err, nil)
			return
		}

		cl.span.SetAttributes(
			attribute.Int("http.response.status_code", resp.StatusCode),
			attribute.Int("http.response.body.size", len(resp.Body)),
		)
		cl.span.End()

		cl.logger.Debug("request completed", "call_id", cl.id, "method", cl.desc.Method, "host", cl.desc.Host(), "status", strconv.Itoa(resp.StatusCode), "bytes", len(resp.Body), "elapsed", elapsed.String())

		cl.cb(nil, resp)
	})
}

func hasKey(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// schemeRouter forwards to the transport matching the descriptor's scheme.
type schemeRouter struct {
	http  transport.Transport
	https transport.Transport
}

func (r schemeRouter) Open(ctx context.Context, d *transport.Descriptor, onResponse transport.ResponseFunc) transport.RequestHandle {
	if d.NormalizedScheme() == "https:" {
		return r.https.Open(ctx, d, onResponse)
	}
	return r.http.Open(ctx, d, onResponse)
}
