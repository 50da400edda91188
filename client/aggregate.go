package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/ocarlott/phin/client/transport"
)

// aggregate reads the whole response body, decoding it first when the call
// asked for compression and the server honoured it. The returned Response
// is only built once the stream has ended.
func aggregate(resp *transport.Response, compressed bool) (*Response, error) {
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	defer func() { _ = resp.Body.Close() }()

	var r io.Reader = resp.Body
	if compressed {
		dec, err := decoder(resp.Header.Get("Content-Encoding"), resp.Body)
		if err != nil {
			return nil, err
		}
		if dec != nil {
			defer func() { _ = dec.Close() }()
			r = dec
		}
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(r); err != nil {
		return nil, err
	}

	return envelope(resp, body.Bytes()), nil
}

// decoder returns the reader that undoes encoding, or nil when the body is
// to be kept as sent. An empty encoded body decodes to an empty body.
func decoder(encoding string, body io.Reader) (io.ReadCloser, error) {
	switch encoding {
	case "gzip":
		zr, err := gzip.NewReader(body)
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return zr, nil
	case "deflate":
		zr, err := zlib.NewReader(body)
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("opening deflate stream: %w", err)
		}
		return zr, nil
	default:
		return nil, nil
	}
}

func envelope(resp *transport.Response, body []byte) *Response {
	header := resp.Header
	if header == nil {
		header = http.Header{}
	}

	rawHeaders := resp.RawHeaders
	if rawHeaders == nil {
		rawHeaders = flatten(header)
	}

	rawTrailers := resp.RawTrailers()
	if rawTrailers == nil {
		rawTrailers = flatten(resp.Trailer)
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		StatusMessage: statusMessage(resp.Status, resp.StatusCode),
		HTTPVersion:   fmt.Sprintf("%d.%d", resp.ProtoMajor, resp.ProtoMinor),
		Header:        header,
		RawHeaders:    rawHeaders,
		Trailer:       resp.Trailer,
		RawTrailers:   rawTrailers,
		Conn:          resp.Conn,
		Body:          body,
	}
}

// statusMessage extracts the reason phrase from a status line such as
// "200 OK", falling back to the standard text.
func statusMessage(status string, code int) string {
	if msg, ok := strings.CutPrefix(status, strconv.Itoa(code)+" "); ok {
		return msg
	}
	if status != "" && status != strconv.Itoa(code) {
		return status
	}
	return http.StatusText(code)
}

// flatten lists h as alternating name and value entries, sorted by name.
func flatten(h http.Header) []string {
	raw := make([]string, 0, len(h)*2)
	for _, k := range slices.Sorted(maps.Keys(h)) {
		for _, v := range h[k] {
			raw = append(raw, k, v)
		}
	}
	return raw
}
