package core

import "errors"

// Rejection reasons. Each one terminates processing of a single intent and
// never affects book state.
var (
	ErrEmptyInstrument   = errors.New("empty instrument")
	ErrMalformedField    = errors.New("malformed field")
	ErrInvalidSide       = errors.New("invalid side")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// Errors
var (
	ErrUnknownBook      = errors.New("no order book for instrument")
	ErrNonexistentOrder = errors.New("nonexistent order")
)

// RejectionName returns the canonical reason name carried on Rejected events.
func RejectionName(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInstrument):
		return "EmptyInstrument"
	case errors.Is(err, ErrMalformedField):
		return "MalformedField"
	case errors.Is(err, ErrInvalidSide):
		return "InvalidSide"
	case errors.Is(err, ErrInvalidQuantity):
		return "InvalidQuantity"
	case errors.Is(err, ErrInvalidPrice):
		return "InvalidPrice"
	case errors.Is(err, ErrUnknownInstrument):
		return "UnknownInstrument"
	default:
		return "Unknown"
	}
}
