package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage is the sentinel error wrapped by [UsageError].
	ErrUsage = errors.New("usage error")
	// ErrProtocol is the sentinel error wrapped by [ProtocolError].
	ErrProtocol = errors.New("protocol not supported")
)

// UsageError is returned for malformed call input: a missing url, an
// invalid option value, or a structured payload without a content type the
// encoder understands.
type UsageError struct {
	Field  string
	Detail string
	Err    error
}

func (e *UsageError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrUsage, e.Detail)
	}
	return fmt.Sprintf("%v: %s: %s", ErrUsage, e.Field, e.Detail)
}

func (e *UsageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUsage}
	}
	return []error{ErrUsage, e.Err}
}

// ProtocolError is delivered when the resolved scheme is neither http nor
// https. No network I/O is attempted.
type ProtocolError struct {
	Scheme string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: %q", ErrProtocol, e.Scheme)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// IsUsage reports whether err is, or wraps, a [UsageError].
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage)
}

// IsProtocol reports whether err is, or wraps, a [ProtocolError].
func IsProtocol(err error) bool {
	return errors.Is(err, ErrProtocol)
}
