package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into a machine-readable category
type Kind string

const (
	// KindNotFound means the referenced entity does not exist or is outside
	// the caller's company scope
	KindNotFound Kind = "not_found"
	// KindForbidden means the caller lacks ownership or role for the action
	KindForbidden Kind = "forbidden"
	// KindValidation means the input is malformed
	KindValidation Kind = "validation_error"
	// KindInsufficientStock means a sale line requested more than available
	KindInsufficientStock Kind = "insufficient_stock"
	// KindConflict means a concurrent update collided; callers may retry
	KindConflict Kind = "conflict"
)

// Error is a structured application error carrying a kind and a
// human-readable message
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`

	// ProductID and Available are set for insufficient stock errors
	ProductID uint  `json:"product_id,omitempty"`
	Available int64 `json:"available,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound builds a not-found error for a named entity
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Forbidden builds a forbidden error
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Validation builds a validation error
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStock builds an insufficient stock error naming the product
// and the quantity currently available
func InsufficientStock(productID uint, title string, available int64) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for product %q: available %d", title, available),
		ProductID: productID,
		Available: available,
	}
}

// Conflict builds a retryable concurrent update error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of err, or an empty kind for non-application errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether the error might succeed on retry
func IsRetryable(err error) bool {
	return KindOf(err) == KindConflict
}
