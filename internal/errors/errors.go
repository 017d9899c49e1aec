// Package errors provides standardized domain errors with codes for the PromptKeep API.
//
// Usage:
//
//	// In services - return typed errors
//	if existing != "" {
//	    return errors.DuplicateContentf("content already exists in version %s", existing)
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrPromptNotFound) {
//	    return nil, err // huma error hook maps the code to a status
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeDuplicateContent:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeMalformedDocument Code = "MALFORMED_DOCUMENT"
	CodePromptNotFound    Code = "PROMPT_NOT_FOUND"
	CodeVersionNotFound   Code = "VERSION_NOT_FOUND"
	CodeCategoryNotFound  Code = "CATEGORY_NOT_FOUND"
	CodeProviderNotFound  Code = "PROVIDER_NOT_FOUND"
	CodeDuplicateContent  Code = "DUPLICATE_CONTENT"
	CodeAllocationRace    Code = "ALLOCATION_RACE"
	CodeAlreadyExists     Code = "ALREADY_EXISTS"
	CodeStore             Code = "STORE"
	CodeInternal          Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodePromptNotFound, CodeVersionNotFound, CodeCategoryNotFound, CodeProviderNotFound:
		return http.StatusNotFound
	case CodeDuplicateContent, CodeAllocationRace, CodeAlreadyExists:
		return http.StatusConflict
	case CodeInvalidInput, CodeMalformedDocument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidInput      = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrMalformedDocument = &Error{Code: CodeMalformedDocument, Message: "malformed document"}
	ErrPromptNotFound    = &Error{Code: CodePromptNotFound, Message: "prompt not found"}
	ErrVersionNotFound   = &Error{Code: CodeVersionNotFound, Message: "version not found"}
	ErrCategoryNotFound  = &Error{Code: CodeCategoryNotFound, Message: "category not found"}
	ErrProviderNotFound  = &Error{Code: CodeProviderNotFound, Message: "provider not found"}
	ErrDuplicateContent  = &Error{Code: CodeDuplicateContent, Message: "duplicate content"}
	ErrAllocationRace    = &Error{Code: CodeAllocationRace, Message: "version allocation race"}
	ErrAlreadyExists     = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrStore             = &Error{Code: CodeStore, Message: "storage error"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// InvalidInput creates an invalid input error.
func InvalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg}
}

// InvalidInputf creates an invalid input error with formatted message.
func InvalidInputf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputWithDetails creates an invalid input error with details.
func InvalidInputWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Details: details}
}

// MalformedDocument creates a malformed document error.
func MalformedDocument(msg string) *Error {
	return &Error{Code: CodeMalformedDocument, Message: msg}
}

// MalformedDocumentf creates a malformed document error with formatted message.
func MalformedDocumentf(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedDocument, Message: fmt.Sprintf(format, args...)}
}

// PromptNotFound creates a prompt not found error.
func PromptNotFound(msg string) *Error {
	return &Error{Code: CodePromptNotFound, Message: msg}
}

// PromptNotFoundf creates a prompt not found error with formatted message.
func PromptNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodePromptNotFound, Message: fmt.Sprintf(format, args...)}
}

// VersionNotFound creates a version not found error.
func VersionNotFound(msg string) *Error {
	return &Error{Code: CodeVersionNotFound, Message: msg}
}

// VersionNotFoundf creates a version not found error with formatted message.
func VersionNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeVersionNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateContent creates a duplicate content error.
func DuplicateContent(msg string) *Error {
	return &Error{Code: CodeDuplicateContent, Message: msg}
}

// DuplicateContentf creates a duplicate content error with formatted message.
func DuplicateContentf(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateContent, Message: fmt.Sprintf(format, args...)}
}

// AllocationRace creates a version allocation race error.
func AllocationRace(msg string) *Error {
	return &Error{Code: CodeAllocationRace, Message: msg}
}

// CategoryNotFound creates a category not found error.
func CategoryNotFound(msg string) *Error {
	return &Error{Code: CodeCategoryNotFound, Message: msg}
}

// ProviderNotFound creates a provider not found error.
func ProviderNotFound(msg string) *Error {
	return &Error{Code: CodeProviderNotFound, Message: msg}
}

// ProviderNotFoundf creates a provider not found error with formatting.
func ProviderNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeProviderNotFound, Message: fmt.Sprintf(format, args...)}
}

// CategoryNotFoundf creates a category not found error with formatting.
func CategoryNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeCategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates a conflict error for duplicate identifiers.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// AlreadyExistsf creates a conflict error with formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Store creates a storage error wrapping the underlying cause.
func Store(err error) *Error {
	return &Error{Code: CodeStore, Message: "storage error", cause: err}
}

// Storef creates a storage error with formatted message and cause.
func Storef(err error, format string, args ...any) *Error {
	return &Error{Code: CodeStore, Message: fmt.Sprintf(format, args...), cause: err}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
