package validate

import (
	"errors"
	"fmt"
)

// Sentinel kinds for rejected records. A *Rejection unwraps to one of them.
var (
	ErrMissingField = errors.New("missing field")
	ErrWrongType    = errors.New("wrong type")
	ErrOutOfRange   = errors.New("out of range")
	ErrEmptyValue   = errors.New("empty value")
)

// Reason classifies why a record was rejected.
type Reason int

// Rejection reasons.
const (
	MissingField Reason = iota + 1
	WrongType
	OutOfRange
	EmptyValue
)

// String returns the snake_case label used in logs and metrics.
func (r Reason) String() string {
	switch r {
	case MissingField:
		return "missing_field"
	case WrongType:
		return "wrong_type"
	case OutOfRange:
		return "out_of_range"
	case EmptyValue:
		return "empty_value"
	default:
		return "unknown"
	}
}

func (r Reason) sentinel() error {
	switch r {
	case MissingField:
		return ErrMissingField
	case WrongType:
		return ErrWrongType
	case OutOfRange:
		return ErrOutOfRange
	case EmptyValue:
		return ErrEmptyValue
	default:
		return nil
	}
}

// Rejection explains why a record did not become an observation.
type Rejection struct {
	Reason Reason
	// Field is the dot path of the offending field.
	Field string
	// Value is what was found at Field; nil when missing.
	Value any
}

func (r *Rejection) Error() string {
	if r.Reason == MissingField {
		return fmt.Sprintf("%s: %s", r.Reason.sentinel(), r.Field)
	}
	return fmt.Sprintf("%s: %s=%v", r.Reason.sentinel(), r.Field, r.Value)
}

// Unwrap lets callers match with errors.Is(err, ErrWrongType) and friends.
func (r *Rejection) Unwrap() error {
	return r.Reason.sentinel()
}
