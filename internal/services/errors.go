package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure. Handlers map kinds to HTTP statuses.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindDuplicate  ErrorKind = "DUPLICATE_SKU"
	KindNotFound   ErrorKind = "PRODUCT_NOT_FOUND"
	KindInternal   ErrorKind = "INTERNAL_ERROR"
)

// Error is returned by ProductService for every failure a caller can act on.
type Error struct {
	Kind    ErrorKind
	Message string
	// Details maps a request field to its problems. Never nil for validation errors.
	Details map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from err. Anything else is reported as internal.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError(err)
}

func validationError(message string, details map[string][]string) *Error {
	if details == nil {
		details = map[string][]string{}
	}
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func duplicateSKUError(sku string) *Error {
	return &Error{
		Kind:    KindDuplicate,
		Message: fmt.Sprintf("Product with SKU '%s' already exists", sku),
		Details: map[string][]string{"sku": {"The SKU must be unique."}},
	}
}

func notFoundError(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("Product with ID '%s' not found", id)}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "An unexpected error occurred", Err: err}
}
