package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"

	"github.com/go-playground/form/v4"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "x/www-url-form-encoded"
)

var formEncoder = form.NewEncoder()

// encodeBody converts a payload into the bytes written to the request.
// Raw payloads pass through; structured ones are serialized according to
// the declared content type.
func encodeBody(data any, headers map[string]string) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}

	switch contentType(headers) {
	case contentTypeJSON:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding json payload: %w", err)
		}
		return b, nil

	case contentTypeForm:
		values, err := formValues(data)
		if err != nil {
			return nil, fmt.Errorf("encoding form payload: %w", err)
		}
		return []byte(values.Encode()), nil

	default:
		return nil, &UsageError{
			Field:  "data",
			Detail: fmt.Sprintf("structured payload requires a Content-Type of %q or %q", contentTypeJSON, contentTypeForm),
		}
	}
}

// contentType returns the declared content type. "Content-Type" takes
// precedence over "content-type" when both are set.
func contentType(headers map[string]string) string {
	for _, key := range []string{"Content-Type", "content-type"} {
		if v, ok := headers[key]; ok {
			return v
		}
	}
	return ""
}

// formValues flattens data into query-string values. Maps are taken key by
// key; structs go through the form encoder.
func formValues(data any) (url.Values, error) {
	switch v := data.(type) {
	case url.Values:
		return v, nil
	case map[string][]string:
		return url.Values(v), nil
	case map[string]string:
		values := make(url.Values, len(v))
		for k, s := range v {
			values.Set(k, s)
		}
		return values, nil
	case map[string]any:
		values := make(url.Values, len(v))
		for k, item := range v {
			values[k] = formStrings(item)
		}
		return values, nil
	}

	rv := reflect.Indirect(reflect.ValueOf(data))
	if rv.Kind() != reflect.Struct {
		return nil, &UsageError{Field: "data", Detail: fmt.Sprintf("cannot form-encode %T", data)}
	}

	return formEncoder.Encode(data)
}

// formStrings renders one map value; slices become repeated keys.
func formStrings(v any) []string {
	switch s := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{s}
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(s)}
	}
}
