package transport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRawHeaders(t *testing.T) {
	testCases := map[string]struct {
		block string
		exp   []string
	}{
		"empty": {
			block: "",
			exp:   []string{},
		},
		"orderAndCase": {
			block: "content-type: text/plain\r\nX-Trace:  abc \r\nSet-Cookie: a=1\r\nSet-Cookie: b=2",
			exp:   []string{"content-type", "text/plain", "X-Trace", "abc", "Set-Cookie", "a=1", "Set-Cookie", "b=2"},
		},
		"foldedValue": {
			block: "X-Long: first\r\n\tsecond\r\n  third\r\nX-Next: n",
			exp:   []string{"X-Long", "first second third", "X-Next", "n"},
		},
		"malformedLineSkipped": {
			block: "X-A: 1\r\nnot a header\r\nX-B: 2",
			exp:   []string{"X-A", "1", "X-B", "2"},
		},
		"emptyValue": {
			block: "X-Empty:",
			exp:   []string{"X-Empty", ""},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.exp, parseRawHeaders(tc.block)); diff != "" {
				t.Errorf("raw headers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecorder_Observe(t *testing.T) {
	testCases := map[string]struct {
		reads       []string
		exp         []string
		expTrailers []string
	}{
		"singleRead": {
			reads: []string{"HTTP/1.1 200 OK\r\nA: 1\r\nb: 2\r\n\r\nbody"},
			exp:   []string{"A", "1", "b", "2"},
		},
		"splitAcrossReads": {
			reads: []string{"HTTP/1.1 200 OK\r\nA:", " 1\r\n", "\r", "\nbody", "\r\n\r\nmore"},
			exp:   []string{"A", "1"},
		},
		"interimSkipped": {
			reads: []string{"HTTP/1.1 100 Continue\r\nX-Interim: y\r\n\r\nHTTP/1.1 201 Created\r\nX-Final: z\r\n\r\n"},
			exp:   []string{"X-Final", "z"},
		},
		"switchingProtocolsKept": {
			reads: []string{"HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\n\r\n"},
			exp:   []string{"Upgrade", "websocket"},
		},
		"incomplete": {
			reads: []string{"HTTP/1.1 200 OK\r\nA: 1\r\n"},
		},
		"chunkedTrailers": {
			reads: []string{
				"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n",
				"5\r\nhel", "lo\r\n6;ext=1\r\n world\r\n",
				"0\r\nzeta-last: 1\r\n", "Alpha:  2 \r\n\r\n",
			},
			exp:         []string{"Transfer-Encoding", "chunked"},
			expTrailers: []string{"zeta-last", "1", "Alpha", "2"},
		},
		"chunkedTrailerBlockLooksLikeData": {
			reads: []string{
				"HTTP/1.1 200 OK\r\ntransfer-encoding: Chunked\r\n\r\n",
				"4\r\n\r\n\r\n\r\n0\r\nX-T: t\r\n\r\n",
			},
			exp:         []string{"transfer-encoding", "Chunked"},
			expTrailers: []string{"X-T", "t"},
		},
		"chunkedNoTrailers": {
			reads: []string{
				"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n",
				"3\r\nabc\r\n0\r\n\r", "\n",
			},
			exp:         []string{"Transfer-Encoding", "chunked"},
			expTrailers: []string{},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var rec recorder
			for _, p := range tc.reads {
				rec.observe([]byte(p))
			}

			if diff := cmp.Diff(tc.exp, rec.rawHeaders()); diff != "" {
				t.Errorf("raw headers mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.expTrailers, rec.rawTrailers()); diff != "" {
				t.Errorf("raw trailers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsInterim(t *testing.T) {
	testCases := map[string]bool{
		"HTTP/1.1 100 Continue":            true,
		"HTTP/1.1 103 Early Hints":         true,
		"HTTP/1.1 101 Switching Protocols": false,
		"HTTP/1.1 200 OK":                  false,
		"HTTP/1.1 404 Not Found":           false,
		"garbage":                          false,
	}

	for line, exp := range testCases {
		if got := isInterim(line); got != exp {
			t.Errorf("isInterim(%q) = %v, want %v", line, got, exp)
		}
	}
}
