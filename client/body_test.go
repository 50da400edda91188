package client

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeBody(t *testing.T) {
	jsonHeaders := map[string]string{"Content-Type": "application/json"}
	formHeaders := map[string]string{"content-type": "x/www-url-form-encoded"}

	type signup struct {
		Name  string `form:"name"`
		Email string `form:"email"`
	}

	testCases := map[string]struct {
		data    any
		headers map[string]string
		exp     string
	}{
		"rawBytesIgnoreContentType": {
			data:    []byte("raw"),
			headers: jsonHeaders,
			exp:     "raw",
		},
		"rawStringNoHeaders": {
			data: "as is",
			exp:  "as is",
		},
		"jsonMap": {
			data:    map[string]any{"b": 2, "a": "x"},
			headers: jsonHeaders,
			exp:     `{"a":"x","b":2}`,
		},
		"jsonSlice": {
			data:    []int{1, 2, 3},
			headers: map[string]string{"content-type": "application/json"},
			exp:     `[1,2,3]`,
		},
		"formStringMap": {
			data:    map[string]string{"q": "a b", "lang": "go"},
			headers: formHeaders,
			exp:     "lang=go&q=a+b",
		},
		"formValues": {
			data:    url.Values{"k": {"1", "2"}},
			headers: formHeaders,
			exp:     "k=1&k=2",
		},
		"formAnyMap": {
			data:    map[string]any{"n": 3, "list": []any{"x", 1}, "empty": nil},
			headers: formHeaders,
			exp:     "empty=&list=x&list=1&n=3",
		},
		"canonicalSpellingWins": {
			data:    map[string]int{"n": 1},
			headers: map[string]string{"Content-Type": "application/json", "content-type": "text/plain"},
			exp:     `{"n":1}`,
		},
		"formStruct": {
			data:    &signup{Name: "Ada", Email: "ada@example.com"},
			headers: formHeaders,
			exp:     "email=ada%40example.com&name=Ada",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := encodeBody(tc.data, tc.headers)
			if err != nil {
				t.Fatalf("encodeBody: %v", err)
			}

			if diff := cmp.Diff(tc.exp, string(got)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeBody_UsageErrors(t *testing.T) {
	testCases := map[string]struct {
		data    any
		headers map[string]string
	}{
		"noContentType": {
			data: map[string]string{"a": "b"},
		},
		"unknownContentType": {
			data:    map[string]string{"a": "b"},
			headers: map[string]string{"Content-Type": "text/plain"},
		},
		"contentTypeWithParams": {
			data:    map[string]string{"a": "b"},
			headers: map[string]string{"Content-Type": "application/json; charset=utf-8"},
		},
		"standardFormTypeNotAccepted": {
			data:    map[string]string{"a": "b"},
			headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		},
		"otherHeaderCasing": {
			data:    map[string]string{"a": "b"},
			headers: map[string]string{"CONTENT-TYPE": "application/json"},
		},
		"conflictingSpellings": {
			data:    map[string]string{"a": "b"},
			headers: map[string]string{"Content-Type": "text/plain", "content-type": "application/json"},
		},
		"formScalar": {
			data:    42,
			headers: map[string]string{"Content-Type": "x/www-url-form-encoded"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := encodeBody(tc.data, tc.headers)
			if !IsUsage(err) {
				t.Fatalf("exp UsageError, got %v", err)
			}
			if got != nil {
				t.Errorf("exp no body, got %q", got)
			}
		})
	}
}

func TestEncodeBody_JSONFailure(t *testing.T) {
	_, err := encodeBody(map[string]any{"ch": make(chan int)}, map[string]string{"Content-Type": "application/json"})
	if err == nil {
		t.Fatal("exp error for unsupported json value")
	}
	if IsUsage(err) {
		t.Errorf("marshal failure is not a usage error: %v", err)
	}
}
