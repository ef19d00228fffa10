package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes in http.go.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodePayloadTooLarge indicates the request body exceeded the upload limit.
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

	// CodeServiceUnavailable indicates a downstream service could not be reached.
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// CodeStorageError indicates a storage backend rejected or failed an operation.
	CodeStorageError = "STORAGE_ERROR"

	// CodeUploadFailed indicates the authoritative write of an upload failed.
	CodeUploadFailed = "UPLOAD_FAILED"

	// CodeConfigError indicates a configuration error.
	CodeConfigError = "CONFIG_ERROR"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates a client-side error (4xx).
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryServer indicates a server-side error (5xx).
	CategoryServer ErrorCategory = "SERVER_ERROR"

	// CategoryNetwork indicates a backend could not be reached.
	CategoryNetwork ErrorCategory = "NETWORK_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeValidation, CodeNotFound, CodePayloadTooLarge:
		return CategoryClient
	case CodeServiceUnavailable:
		return CategoryNetwork
	default:
		return CategoryServer
	}
}

// IsClientError returns true if the error code is a client error (4xx).
func IsClientError(code string) bool {
	return GetCategory(code) == CategoryClient
}
