package transport

import (
	"bytes"
	"crypto/tls"
	"net"
	"strconv"
	"strings"
	"sync"
)

// maxHeaderCapture bounds how much of the response head is retained while
// looking for the end of the header block.
const maxHeaderCapture = 1 << 20 // 1MB

var (
	headerEnd = []byte("\r\n\r\n")
	crlf      = []byte("\r\n")
)

type phase int

const (
	phaseHeader phase = iota
	phaseChunkSize
	phaseChunkData
	phaseTrailer
	phaseDone
)

// recorder captures the connection a request was served on and the raw
// response header block read from it. For chunked responses it follows the
// chunk framing to capture the trailer block as well.
type recorder struct {
	mu        sync.Mutex
	conn      Conn
	buf       []byte
	raw       []string
	trailers  []string
	phase     phase
	remaining int64
}

func (r *recorder) wrap(c net.Conn, state *tls.ConnectionState) net.Conn {
	r.mu.Lock()
	r.conn = Conn{
		LocalAddr:  c.LocalAddr(),
		RemoteAddr: c.RemoteAddr(),
		TLS:        state,
	}
	r.mu.Unlock()

	return &recordingConn{Conn: c, rec: r}
}

func (r *recorder) info() Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

func (r *recorder) rawHeaders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.raw
}

// rawTrailers returns the trailer lines of a chunked response once the
// terminating chunk has been read, or nil.
func (r *recorder) rawTrailers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trailers
}

// observe feeds bytes read from the connection through the response framing.
func (r *recorder) observe(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == phaseDone {
		return
	}

	r.buf = append(r.buf, p...)
	for r.step() {
	}

	if len(r.buf) > maxHeaderCapture {
		r.phase = phaseDone
		r.buf = nil
	}
}

// step advances by one framing element and reports whether it made progress.
func (r *recorder) step() bool {
	switch r.phase {
	case phaseHeader:
		i := bytes.Index(r.buf, headerEnd)
		if i < 0 {
			return false
		}

		block := string(r.buf[:i])
		r.buf = r.buf[i+len(headerEnd):]

		statusLine, lines, _ := strings.Cut(block, "\r\n")
		if isInterim(statusLine) {
			return true
		}

		r.raw = parseRawHeaders(lines)
		if isChunked(r.raw) {
			r.phase = phaseChunkSize
			return true
		}
		r.finish()
		return false

	case phaseChunkSize:
		i := bytes.Index(r.buf, crlf)
		if i < 0 {
			return false
		}

		sizeField, _, _ := strings.Cut(string(r.buf[:i]), ";")
		r.buf = r.buf[i+len(crlf):]

		size, err := strconv.ParseInt(strings.TrimSpace(sizeField), 16, 64)
		if err != nil || size < 0 {
			r.finish()
			return false
		}
		if size == 0 {
			r.phase = phaseTrailer
			return true
		}
		r.remaining = size + int64(len(crlf))
		r.phase = phaseChunkData
		return true

	case phaseChunkData:
		if len(r.buf) == 0 {
			return false
		}
		n := min(r.remaining, int64(len(r.buf)))
		r.buf = r.buf[n:]
		r.remaining -= n
		if r.remaining == 0 {
			r.phase = phaseChunkSize
		}
		return true

	case phaseTrailer:
		if bytes.HasPrefix(r.buf, crlf) {
			r.trailers = []string{}
			r.finish()
			return false
		}
		i := bytes.Index(r.buf, headerEnd)
		if i < 0 {
			return false
		}
		r.trailers = parseRawHeaders(string(r.buf[:i]))
		r.finish()
		return false
	}

	return false
}

func (r *recorder) finish() {
	r.phase = phaseDone
	r.buf = nil
}

// isChunked reports whether the raw headers declare chunked transfer coding.
func isChunked(raw []string) bool {
	for i := 0; i+1 < len(raw); i += 2 {
		if strings.EqualFold(raw[i], "Transfer-Encoding") && strings.Contains(strings.ToLower(raw[i+1]), "chunked") {
			return true
		}
	}
	return false
}

// isInterim reports whether statusLine belongs to a 1xx response that
// net/http skips, other than 101 Switching Protocols.
func isInterim(statusLine string) bool {
	_, rest, ok := strings.Cut(statusLine, " ")
	if !ok || len(rest) < 3 {
		return false
	}
	code := rest[:3]
	return code[0] == '1' && code != "101"
}

// parseRawHeaders splits header lines into alternating name and value
// entries, preserving order and case. Folded continuation lines are joined
// to the preceding value.
func parseRawHeaders(block string) []string {
	raw := make([]string, 0)
	if block == "" {
		return raw
	}

	for _, line := range strings.Split(block, "\r\n") {
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(raw) > 0 {
			raw[len(raw)-1] += " " + strings.TrimSpace(line)
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		raw = append(raw, name, strings.TrimSpace(value))
	}

	return raw
}

type recordingConn struct {
	net.Conn
	rec *recorder
}

func (c *recordingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.rec.observe(p[:n])
	}
	return n, err
}
