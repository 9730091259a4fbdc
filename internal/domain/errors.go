package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparseable matches decode failures where the payload is not a JSON object.
	ErrUnparseable = errors.New("unparseable packet")
	// ErrMalformed matches decode failures where a known packet type has an
	// invalid field.
	ErrMalformed = errors.New("malformed packet")
)

// DecodeErrorKind classifies a DecodeError.
type DecodeErrorKind int

const (
	Unparseable DecodeErrorKind = iota + 1
	Malformed
)

func (k DecodeErrorKind) String() string {
	switch k {
	case Unparseable:
		return "unparseable"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// DecodeError describes why a payload could not be decoded.
// Variant, Field and Value are set for Malformed only.
type DecodeError struct {
	Kind    DecodeErrorKind
	Variant PacketType
	Field   string // JSON member name or index path, e.g. "obs[0][13]"
	Value   string // raw JSON text of the offending value, empty if missing
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Kind == Unparseable {
		return fmt.Sprintf("unparseable packet: %v", e.Err)
	}
	if e.Value == "" {
		return fmt.Sprintf("malformed %s packet: field %s: %v", e.Variant, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed %s packet: field %s = %s: %v", e.Variant, e.Field, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches ErrUnparseable and ErrMalformed by kind.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrUnparseable:
		return e.Kind == Unparseable
	case ErrMalformed:
		return e.Kind == Malformed
	}
	return false
}
