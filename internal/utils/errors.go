package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeInvalidLinkFormat ErrorCode = "INVALID_LINK_FORMAT"
	ErrorCodeMediaUnavailable  ErrorCode = "MEDIA_UNAVAILABLE"
	ErrorCodeDownloadFailed    ErrorCode = "DOWNLOAD_FAILED"
	ErrorCodeUnknownQueryType  ErrorCode = "UNKNOWN_QUERY_TYPE"
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError   ErrorCode = "VALIDATION_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Common error constructors
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(ErrorCodeValidationError, message, http.StatusBadRequest, details)
}

func NewInvalidLinkError(link string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeInvalidLinkFormat,
		"The provided link is not a YouTube link",
		http.StatusBadRequest,
		map[string]interface{}{
			"expected_format": "https://www.youtube.com/watch?v=<id>",
			"provided":        link,
		},
	)
}

// NewUnavailableError reports a lookup that produced nothing. Callers treat
// it as "unavailable now", there is no distinction between transient and
// permanent failures.
func NewUnavailableError(link string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeMediaUnavailable,
		"Media is unavailable",
		http.StatusNotFound,
		map[string]interface{}{
			"link": link,
		},
	)
}

func NewDownloadError(link string, reason string) *AppError {
	details := map[string]interface{}{
		"link": link,
	}
	if reason != "" {
		details["reason"] = reason
	}
	return NewErrorWithDetails(
		ErrorCodeDownloadFailed,
		"Failed to fetch media from YouTube",
		http.StatusBadGateway,
		details,
	)
}

func NewUnknownQueryTypeError(queryType string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeUnknownQueryType,
		fmt.Sprintf("Unknown query type %q", queryType),
		http.StatusBadRequest,
		map[string]interface{}{
			"allowed": []string{"video", "playlist", "url"},
		},
	)
}

func NewUnauthorizedError() *AppError {
	return NewError(
		ErrorCodeUnauthorized,
		"Invalid or missing authentication",
		http.StatusUnauthorized,
	)
}

func NewRateLimitError() *AppError {
	return NewError(
		ErrorCodeRateLimitExceeded,
		"Too many requests",
		http.StatusTooManyRequests,
	)
}

func NewInternalError() *AppError {
	return NewError(
		ErrorCodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
}
