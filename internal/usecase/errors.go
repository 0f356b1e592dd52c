package usecase

import "fmt"

type ErrorCode string

const (
	// ErrorRequestFailed covers every collaborator failure: missing or bad
	// credential, network, upstream status and decoding.
	ErrorRequestFailed ErrorCode = "REQUEST_FAILED"
	// ErrorEmptyChoices is a well-formed response without any choice.
	ErrorEmptyChoices ErrorCode = "EMPTY_CHOICES"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Description is the user-facing text of the failure: the underlying
// error when there is one, otherwise the reason.
func (e *Error) Description() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
