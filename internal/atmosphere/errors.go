package atmosphere

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned for inputs outside the model domain, such as
	// a negative altitude or a pressure above the sea-level reference.
	ErrOutOfRange = errors.New("atmosphere: input out of range")

	// ErrInvalidLayerTable indicates a layer table that is empty,
	// non-contiguous, non-monotonic or internally inconsistent.
	ErrInvalidLayerTable = errors.New("atmosphere: invalid layer table")

	// ErrInvalidReference indicates unusable sea-level reference constants.
	ErrInvalidReference = errors.New("atmosphere: invalid reference state")

	// ErrInvalidProfile is returned for malformed sampling requests.
	ErrInvalidProfile = errors.New("atmosphere: invalid profile request")
)

// OutOfRangeError reports which input was rejected. It matches
// ErrOutOfRange under errors.Is.
type OutOfRangeError struct {
	Input  string
	Value  float64
	Reason string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("atmosphere: %s %g out of range: %s", e.Input, e.Value, e.Reason)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

func altitudeOutOfRange(altitude float64) error {
	return &OutOfRangeError{Input: "altitude", Value: altitude, Reason: "must be a non-negative number of meters"}
}
