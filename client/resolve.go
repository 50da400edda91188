package client

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"github.com/ocarlott/phin/client/transport"
)

const acceptEncoding = "accept-encoding"

// toOptions turns any accepted call input into an Options value.
func toOptions[T Input](in T) (Options, error) {
	switch v := any(in).(type) {
	case Options:
		return v, nil
	case *Options:
		if v == nil {
			return Options{}, &UsageError{Field: "url", Detail: "options must not be nil"}
		}
		return *v, nil
	default:
		return Options{URL: fmt.Sprint(v)}, nil
	}
}

// resolve builds the Descriptor for a call: URL-derived defaults first,
// then every option that is set, replacing (not merging) the default.
func resolve(opts Options) (*transport.Descriptor, error) {
	if err := validateOptions(&opts); err != nil {
		var fields FieldErrors
		switch {
		case errors.As(err, &fields) && len(fields) == 1:
			return nil, &UsageError{Field: fields[0].Field, Detail: fields[0].Err, Err: fields}
		case len(fields) > 1:
			return nil, &UsageError{Detail: fields.Error(), Err: fields}
		default:
			return nil, &UsageError{Detail: err.Error(), Err: err}
		}
	}

	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, &UsageError{Field: "url", Detail: "malformed url", Err: err}
	}

	d := &transport.Descriptor{
		Scheme:   u.Scheme + ":",
		Hostname: u.Hostname(),
		Path:     requestPath(u),
		Method:   "GET",
		Headers:  map[string]string{},
	}

	if d.Scheme == "http:" {
		d.Port = 80
	} else {
		d.Port = 443
	}
	if p := u.Port(); p != "" {
		if d.Port, err = toPort(p); err != nil {
			return nil, err
		}
	}

	if u.User != nil {
		d.Auth = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			d.Auth += ":" + pass
		}
	}

	if opts.Protocol != "" {
		d.Scheme = opts.Protocol
		if !strings.HasSuffix(d.Scheme, ":") {
			d.Scheme += ":"
		}
	}
	if opts.Hostname != "" {
		d.Hostname = opts.Hostname
	}
	if opts.Port != nil && opts.Port != "" {
		if d.Port, err = toPort(opts.Port); err != nil {
			return nil, err
		}
	}
	if opts.LocalAddress != "" {
		d.LocalAddress = opts.LocalAddress
	}
	if opts.SocketPath != "" {
		d.SocketPath = opts.SocketPath
	}
	if opts.Method != "" {
		d.Method = opts.Method
	}
	if opts.Path != "" {
		d.Path = opts.Path
		if !strings.HasPrefix(d.Path, "/") {
			d.Path = "/" + d.Path
		}
	}
	if opts.Headers != nil {
		d.Headers = maps.Clone(opts.Headers)
	}
	if opts.Auth != "" {
		d.Auth = opts.Auth
	}
	if opts.Timeout > 0 {
		d.Timeout = opts.Timeout
	}

	if opts.Compressed {
		for k := range d.Headers {
			if strings.EqualFold(k, acceptEncoding) {
				delete(d.Headers, k)
			}
		}
		d.Headers[acceptEncoding] = "gzip, deflate"
	}

	return d, nil
}

// requestPath returns the path and query of u, "/" when empty.
func requestPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

func toPort(v any) (int, error) {
	port, err := cast.ToIntE(v)
	if err != nil {
		return 0, &UsageError{Field: "port", Detail: fmt.Sprintf("not a number: %v", v), Err: err}
	}
	if port <= 0 || port > 65535 {
		return 0, &UsageError{Field: "port", Detail: fmt.Sprintf("out of range: %d", port)}
	}
	return port, nil
}
