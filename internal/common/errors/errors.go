// Package errors provides standardized error handling for the compliance pipeline,
// its HTTP surface and its job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Image input errors (caller-fixable)
	ErrCodeBase64Validation     ErrorCode = "BASE64_VALIDATION_ERROR"
	ErrCodeImageSizeExceeded    ErrorCode = "IMAGE_SIZE_EXCEEDED"
	ErrCodeUnsupportedImageType ErrorCode = "UNSUPPORTED_IMAGE_TYPE"
	ErrCodeInvalidRequest       ErrorCode = "INVALID_REQUEST"

	// External service errors
	ErrCodeServiceTimeout     ErrorCode = "SERVICE_TIMEOUT"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	ErrCodeTextExtractionFailed ErrorCode = "TEXT_EXTRACTION_FAILED"

	ErrCodeValidationQueryInvalid ErrorCode = "VALIDATION_QUERY_INVALID"
	ErrCodeReportGenerationFailed ErrorCode = "REPORT_GENERATION_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// AsStandardError unwraps err until a *StandardError is found.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err wraps a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewBase64ValidationError creates a non-retryable image payload error.
func NewBase64ValidationError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBase64Validation,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewImageSizeError carries the decoded size and the configured limit in bytes.
func NewImageSizeError(actualSize, maxSize int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeImageSizeExceeded,
		Message:   fmt.Sprintf("Image size %d bytes exceeds maximum allowed size %d bytes", actualSize, maxSize),
		Retryable: false,
		Metadata: map[string]interface{}{
			"actual_size": actualSize,
			"max_size":    maxSize,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsupportedImageTypeError carries the sniffed type and the allow-list.
func NewUnsupportedImageTypeError(detectedType string, allowedTypes []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedImageType,
		Message:   fmt.Sprintf("Unsupported image type '%s'. Allowed types: %s", detectedType, strings.Join(allowedTypes, ", ")),
		Retryable: false,
		Metadata: map[string]interface{}{
			"detected_type": detectedType,
			"allowed_types": allowedTypes,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request shape error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceTimeoutError creates a retryable timeout error for an external service.
func NewServiceTimeoutError(service string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceTimeout,
		Message:   fmt.Sprintf("Service '%s' request timed out after %s", service, timeout),
		Retryable: true,
		Metadata: map[string]interface{}{
			"service":         service,
			"timeout_seconds": timeout.Seconds(),
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceError creates a retryable error for a non-2xx response.
func NewServiceError(service string, statusCode int, message, body string) *StandardError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("Service '%s' error: %s", service, message),
		Retryable: true,
		Metadata: map[string]interface{}{
			"service":       service,
			"status_code":   statusCode,
			"response_body": body,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceConnectionError creates a retryable transport-level error.
func NewServiceConnectionError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("Service '%s' connection error", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata: map[string]interface{}{
			"service": service,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewTextExtractionError creates a non-retryable error for a 2xx response without usable text.
func NewTextExtractionError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTextExtractionFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationQueryInvalidError creates a non-retryable wire contract error.
func NewValidationQueryInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationQueryInvalid,
		Message:   "Validation query does not match the compliance wire contract",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportGenerationError wraps a renderer failure.
func NewReportGenerationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportGenerationFailed,
		Message:   "Compliance report generation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize returns err as a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeBase64Validation:       "INVALID_IMAGE",
	ErrCodeImageSizeExceeded:      "INVALID_IMAGE",
	ErrCodeUnsupportedImageType:   "INVALID_IMAGE",
	ErrCodeInvalidRequest:         "INVALID_REQUEST",
	ErrCodeServiceTimeout:         "SERVICE_TIMEOUT",
	ErrCodeServiceUnavailable:     "SERVICE_UNAVAILABLE",
	ErrCodeTextExtractionFailed:   "TEXT_EXTRACTION_FAILED",
	ErrCodeValidationQueryInvalid: "VALIDATION_QUERY_INVALID",
	ErrCodeReportGenerationFailed: "REPORT_GENERATION_FAILED",
	ErrCodeInternal:               "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeServiceUnavailable:
		return 3
	case ErrCodeServiceTimeout:
		return 2
	default:
		return 0 // input and parse errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeBase64Validation, ErrCodeImageSizeExceeded, ErrCodeUnsupportedImageType, ErrCodeInvalidRequest:
		return "VALIDATION_INPUT"
	case ErrCodeServiceTimeout:
		return "TIMEOUT"
	case ErrCodeServiceUnavailable:
		return "SERVICE"
	case ErrCodeTextExtractionFailed:
		return "EXTRACTION"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error to the status code the HTTP layer answers with.
func HTTPStatus(err error) int {
	stdErr, ok := AsStandardError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch GetErrorCategory(stdErr.Code) {
	case "VALIDATION_INPUT":
		return http.StatusBadRequest
	case "TIMEOUT":
		return http.StatusRequestTimeout
	case "SERVICE":
		return http.StatusServiceUnavailable
	case "EXTRACTION":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorType returns the short error type label used in HTTP error bodies.
func ErrorType(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "BadRequest"
	case http.StatusRequestTimeout:
		return "RequestTimeout"
	case http.StatusServiceUnavailable:
		return "ServiceUnavailable"
	case http.StatusUnprocessableEntity:
		return "UnprocessableEntity"
	default:
		return "InternalServerError"
	}
}
