package provider

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindStatus
	KindDecode
	KindNoSymbols
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindNoSymbols:
		return "no recognized symbols"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ErrNoRecognizedSymbols is returned when none of the requested tickers is known.
var ErrNoRecognizedSymbols = errors.New("no recognized symbols")

// Error is returned by providers for every failed fetch.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a provider Error of kind k.
func IsKind(err error, k Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == k
}
