package errors

import (
	"errors"
	"fmt"
)

// Error is the base interface for all custom errors in the system.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// ValidationError represents an input validation error.
type ValidationError struct {
	*BaseError
	Field string
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{code: CodeValidation, message: message},
		Field:     field,
	}
}

// ErrNoFileProvided is returned when an upload request carries no file part.
var ErrNoFileProvided = NewValidationError("file", "No file uploaded")

// PayloadTooLargeError is returned when an upload exceeds the configured size cap.
type PayloadTooLargeError struct {
	*BaseError
	Limit int64
}

// NewPayloadTooLargeError creates an error describing the size cap that was exceeded.
func NewPayloadTooLargeError(limit int64) *PayloadTooLargeError {
	return &PayloadTooLargeError{
		BaseError: &BaseError{
			code:    CodePayloadTooLarge,
			message: fmt.Sprintf("File too large. Maximum size is %dMB.", limit/(1024*1024)),
		},
		Limit: limit,
	}
}

// StoreError is a failure reported by (or while reaching) a content store.
type StoreError struct {
	*BaseError
	Op  string
	CID string
}

// NewStoreUnavailableError reports that no connection could be made to the store.
func NewStoreUnavailableError(cause error) *StoreError {
	return &StoreError{
		BaseError: &BaseError{code: CodeServiceUnavailable, message: "IPFS node unreachable", cause: cause},
		Op:        "connect",
	}
}

// NewStoreWriteError reports a failure during a write after the store was reached.
func NewStoreWriteError(cause error) *StoreError {
	return &StoreError{
		BaseError: &BaseError{code: CodeStorageError, message: "Failed to upload to IPFS", cause: cause},
		Op:        "add",
	}
}

// NewStoreReadError reports that content could not be read back for a CID.
// notFound selects the NOT_FOUND code over STORAGE_ERROR.
func NewStoreReadError(cid string, notFound bool, cause error) *StoreError {
	code := CodeStorageError
	if notFound {
		code = CodeNotFound
	}
	return &StoreError{
		BaseError: &BaseError{code: code, message: "Failed to retrieve from IPFS", cause: cause},
		Op:        "cat",
		CID:       cid,
	}
}

// UploadFailedError wraps the primary store failure that aborted an upload.
type UploadFailedError struct {
	*BaseError
}

// NewUploadFailedError creates an upload failure wrapping cause.
func NewUploadFailedError(cause error) *UploadFailedError {
	return &UploadFailedError{
		BaseError: &BaseError{code: CodeUploadFailed, message: "Upload failed", cause: cause},
	}
}

// Details returns the message of the underlying cause, for the "details" field of error responses.
func (e *UploadFailedError) Details() string {
	if e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

// IsStoreUnavailable reports whether err (or anything it wraps) is a store connection failure.
func IsStoreUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.code == CodeServiceUnavailable
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}
	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}
	return CodeInternal
}

// Wrap wraps an error with additional context, preserving the code of typed errors.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &BaseError{code: GetErrorCode(err), message: message, cause: err}
}

// New creates a new internal error with a message.
func New(message string) error {
	return &BaseError{code: CodeInternal, message: message}
}
