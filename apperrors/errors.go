// apperrors defines the error taxonomy shared by services and controllers.
// Controllers map these to HTTP status codes in utils.RespondWithAppError.
package apperrors

import "fmt"

// ValidationError reports malformed or out-of-range input. Field names the
// offending request field so the caller can correct it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a referenced entity that does not exist or is not
// visible to the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports an illegal lifecycle transition or a uniqueness
// violation that survived retries.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflict(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

// DataIntegrityError reports a corrupted stored invariant, e.g. a
// non-numeric invoice number. It signals an operational problem, not a
// user error.
type DataIntegrityError struct {
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return e.Reason
}

func NewDataIntegrity(reason string) *DataIntegrityError {
	return &DataIntegrityError{Reason: reason}
}
