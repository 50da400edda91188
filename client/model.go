package client

import (
	"net/http"
	"time"

	"github.com/ocarlott/phin/client/transport"
)

// Input is anything a call can be made with: a URL string or an Options
// value (or pointer).
type Input interface {
	~string | Options | *Options
}

// Options describes a single call. URL is required; every other non-zero
// field overrides the value derived from URL.
type Options struct {
	URL string `json:"url" validate:"required"`

	// Compressed asks the server for gzip or deflate and decodes the reply
	// accordingly. It replaces any caller-supplied accept-encoding header.
	Compressed bool `json:"compressed"`

	Protocol     string `json:"protocol"`
	Hostname     string `json:"hostname"`
	Port         any    `json:"port" validate:"-"` // int, string or any other numeric form
	LocalAddress string `json:"localAddress" validate:"omitempty,ip"`
	SocketPath   string `json:"socketPath"`
	Method       string `json:"method" validate:"omitempty,httptoken"`
	Path         string `json:"path"`

	// Headers are sent with the exact key case given here.
	Headers map[string]string `json:"headers" validate:"omitempty,dive,keys,httptoken,endkeys,httpvalue"`

	// Auth is "user:pass" and is sent as basic auth unless an
	// Authorization header is present.
	Auth string `json:"auth"`

	// Timeout bounds the whole exchange, from dial to the end of the body.
	Timeout time.Duration `json:"timeout" validate:"gte=0"`

	// Data is the request payload. []byte and string are written as is;
	// any other value is encoded according to the Content-Type header,
	// which must be "application/json" or "x/www-url-form-encoded".
	Data any `json:"data" validate:"-"`
}

// Callback receives the outcome of a call: exactly one of err and resp is
// non-nil, and it is invoked exactly once.
type Callback func(err error, resp *Response)

// Response is the fully buffered result of a call.
type Response struct {
	StatusCode    int
	StatusMessage string
	HTTPVersion   string
	Header        http.Header

	// RawHeaders are the header lines as received, as alternating name and
	// value entries.
	RawHeaders []string

	Trailer http.Header
	// RawTrailers are the trailer lines as received, in the same form as
	// RawHeaders.
	RawTrailers []string

	Conn transport.Conn

	// Body is never partial: a call either succeeds with the whole body or
	// fails.
	Body []byte
}
