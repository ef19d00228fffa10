package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError is the JSON body written for failed requests.
type HTTPError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for an error.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status != 0 {
		return httpErr.Status
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return codeToHTTPStatus(customErr.Code())
	}

	return http.StatusInternalServerError
}

// codeToHTTPStatus maps error codes to HTTP status codes.
func codeToHTTPStatus(code string) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeStorageError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTPError converts an error to an HTTPError.
func ToHTTPError(err error) *HTTPError {
	if err == nil {
		return &HTTPError{Status: http.StatusOK, Message: "success"}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	out := &HTTPError{Status: StatusCode(err)}

	var uploadErr *UploadFailedError
	var maxBytesErr *http.MaxBytesError
	var customErr Error
	switch {
	case errors.As(err, &uploadErr):
		out.Message = uploadErr.Message()
		out.Details = uploadErr.Details()
	case errors.As(err, &maxBytesErr):
		out.Message = NewPayloadTooLargeError(maxBytesErr.Limit).Message()
	case errors.As(err, &customErr):
		out.Message = customErr.Error()
	default:
		out.Message = err.Error()
	}
	if out.Message == "" {
		out.Message = "Internal server error"
	}

	return out
}

// WriteHTTPError writes an error response to an http.ResponseWriter.
func WriteHTTPError(w http.ResponseWriter, err error) {
	httpErr := ToHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Status)
	_ = json.NewEncoder(w).Encode(httpErr)
}
