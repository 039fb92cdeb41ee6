package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Warden error code.
type ErrorCode string

const (
	ErrInvalidRequest          ErrorCode = "INVALID_REQUEST"           // 400
	ErrSubmitterNotFound       ErrorCode = "SUBMITTER_NOT_FOUND"       // 404
	ErrRecordNotFound          ErrorCode = "RECORD_NOT_FOUND"          // 404
	ErrDuplicateKey            ErrorCode = "DUPLICATE_KEY"             // 409
	ErrAlreadyResolved         ErrorCode = "ALREADY_RESOLVED"          // 409
	ErrMalformedSubmission     ErrorCode = "MALFORMED_SUBMISSION"      // 422
	ErrInternal                ErrorCode = "INTERNAL"                  // 500
	ErrDirectoryMutationFailed ErrorCode = "DIRECTORY_MUTATION_FAILED" // 502
)

// WardenError represents a structured error with code, status, and details.
type WardenError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *WardenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *WardenError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *WardenError {
	return &WardenError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewMalformedSubmission creates a 422 error for an upstream payload that does not parse.
func NewMalformedSubmission(msg string) *WardenError {
	return &WardenError{
		Code:    ErrMalformedSubmission,
		Status:  422,
		Message: msg,
	}
}

// NewSubmitterNotFound creates a 404 error when the claimed identity has no unverified directory match.
func NewSubmitterNotFound(tag string) *WardenError {
	return &WardenError{
		Code:    ErrSubmitterNotFound,
		Status:  404,
		Message: fmt.Sprintf("no unverified member matches %q", tag),
		Details: map[string]any{"claimed_identity": tag},
	}
}

// NewRecordNotFound creates a 404 error for a missing decision record.
func NewRecordNotFound(key string, id int64) *WardenError {
	return &WardenError{
		Code:    ErrRecordNotFound,
		Status:  404,
		Message: fmt.Sprintf("decision record not found: %s=%d", key, id),
		Details: map[string]any{key: id},
	}
}

// NewDuplicateKey creates a 409 error when a review card already has a record.
func NewDuplicateKey(cardID int64) *WardenError {
	return &WardenError{
		Code:    ErrDuplicateKey,
		Status:  409,
		Message: fmt.Sprintf("decision record already exists for card %d", cardID),
		Details: map[string]any{"card_id": cardID},
	}
}

// NewAlreadyResolved creates a 409 error for a transition attempted on a closed card.
func NewAlreadyResolved(cardID int64, status string) *WardenError {
	return &WardenError{
		Code:    ErrAlreadyResolved,
		Status:  409,
		Message: fmt.Sprintf("card %d is already %s", cardID, status),
		Details: map[string]any{"card_id": cardID, "status": status},
	}
}

// NewDirectoryMutationFailed creates a 502 error when a grant, ban, or kick call fails.
func NewDirectoryMutationFailed(op string, userID int64, err error) *WardenError {
	msg := fmt.Sprintf("%s failed for user %d", op, userID)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &WardenError{
		Code:    ErrDirectoryMutationFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"op": op, "user_id": userID},
		Cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *WardenError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &WardenError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if an error is a WardenError with the given code.
// Wrapped errors are matched too.
func Is(err error, code ErrorCode) bool {
	var wErr *WardenError
	if stderrors.As(err, &wErr) {
		return wErr.Code == code
	}
	return false
}
