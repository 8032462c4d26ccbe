// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream matches every *UpstreamError via errors.Is
	ErrUpstream = errors.New("upstream authority error")
	// ErrMissingCredentials is returned by authority constructors when no credentials are given
	ErrMissingCredentials = errors.New("authority credentials are not configured")
)

// InputError reports coordinate input that is well-formed but not acceptable, like a value
// that is out of range or not precise enough.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// FormatError reports coordinate input that is not a pair of decimal numbers.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid latlng %q: %s", e.Input, e.Reason)
}

// Kind classifies an UpstreamError.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport covers connection errors and timeouts
	KindTransport
	// KindStatus covers non-200 HTTP responses and non-OK provider status fields
	KindStatus
	// KindBody covers responses that are not valid JSON
	KindBody
	// KindStructure covers JSON that does not have the expected shape
	KindStructure
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "unexpected status"
	case KindBody:
		return "invalid body"
	case KindStructure:
		return "unexpected structure"
	default:
		return "unknown"
	}
}

// UpstreamError is returned when an authority could not deliver a usable answer. It is
// always recovered by the Resolver and never shown to callers.
type UpstreamError struct {
	Authority string
	Kind      Kind
	Err       error
}

// NewUpstreamError returns an UpstreamError of the given kind. The authority name is
// filled in by the Locator.
func NewUpstreamError(kind Kind, format string, args ...any) *UpstreamError {
	return &UpstreamError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *UpstreamError) Error() string {
	msg := e.Kind.String()
	if e.Authority != "" {
		msg = e.Authority + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// IsKind reports whether err is an UpstreamError of the given kind.
func IsKind(err error, kind Kind) bool {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Kind == kind
	}
	return false
}
