package calc

import (
	"errors"

	"github.com/angas/gridfees-go/tariff"
)

type Kind string

const (
	KindNoMatchingTariff Kind = "NoMatchingTariff"
	KindInvalidInput     Kind = "InvalidInput"
	KindMalformedDataset Kind = "MalformedDataset"
)

// Error is returned for every calculation failure. It is plain data so
// callers can always render it.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    Kind   `json:"kind"`
	Details string `json:"details,omitempty"`
}

// AsError classifies any error into a calculation error. Dataset load
// failures become MalformedDataset, other unknown errors InvalidInput.
func AsError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, tariff.ErrMalformed) {
		return &Error{Kind: KindMalformedDataset, Message: "Malformed tariff dataset", Details: err.Error(), Err: err}
	}
	return &Error{Kind: KindInvalidInput, Message: "Invalid input", Details: err.Error(), Err: err}
}

// ErrorBody renders err as the JSON error body.
func ErrorBody(err error) ErrorResponse {
	ce := AsError(err)
	return ErrorResponse{Error: ce.Message, Kind: ce.Kind, Details: ce.Details}
}

func invalidInput(details string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Message: "Invalid input", Details: details, Err: err}
}
