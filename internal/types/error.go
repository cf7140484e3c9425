package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types reported in the "type" field of error responses.
const (
	TypeUnauthenticated = "auth.unauthenticated"
	TypeForbidden       = "auth.forbidden"
	TypeNotFound        = "not_found"
	TypeValidation      = "validation"
	TypeConflict        = "conflict"
	TypeVersion         = "version"
)

// CustomError is a domain outcome carrying the HTTP status it maps to.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unauthorized reports a missing or unverifiable identity.
func Unauthorized(message string) *CustomError {
	return &CustomError{Code: http.StatusUnauthorized, Message: message, Type: TypeUnauthenticated}
}

// Forbidden reports a failed permission check.
func Forbidden(message string) *CustomError {
	return &CustomError{Code: http.StatusForbidden, Message: message, Type: TypeForbidden}
}

// NotFound reports an absent job, sheet, file or assignment.
func NotFound(message string) *CustomError {
	return &CustomError{Code: http.StatusNotFound, Message: message, Type: TypeNotFound}
}

// Validation reports malformed input rejected before storage is touched.
func Validation(message string) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: message, Type: TypeValidation}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *CustomError {
	return &CustomError{Code: http.StatusConflict, Message: message, Type: TypeConflict}
}

// VersionConflict reports a stale base version on an optimistic write.
func VersionConflict() *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Message: "E_VERSION - Refresh and reconcile with current version and retry.",
		Type:    TypeVersion,
	}
}

// IsKind reports whether err wraps a CustomError with the given status code.
func IsKind(err error, code int) bool {
	var ce *CustomError
	return errors.As(err, &ce) && ce.Code == code
}
