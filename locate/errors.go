// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Common errors reported by location services.
var (
	ErrAuthorizationDenied = errors.New("location access denied")
	ErrUnsupportedPlatform = errors.New("native location is not supported on this platform")
)

// ErrorType classifies service failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit too many requests.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the service didn't answer in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound the service has no location for us.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the service rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError the service is unreachable or unavailable.
	ErrorTypeNetworkError
)

// ServiceError is a failure reported by a location or geocoding service.
type ServiceError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsRateLimitError reports whether err comes from a rate limit.
func IsRateLimitError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError reports whether err comes from an exhausted quota.
func IsQuotaExceededError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Type == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "dailylimitexceeded")
}

// IsTimeoutError reports whether err is a timeout.
func IsTimeoutError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// NewRequestError wraps a failed HTTP exchange, telling timeouts apart from
// other transport errors.
func NewRequestError(message string, err error) *ServiceError {
	e := &ServiceError{Type: ErrorTypeNetworkError, Message: message, Err: err}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		e.Type = ErrorTypeTimeout
	}

	return e
}

// ClassifyHTTPError turns an unexpected HTTP status into a ServiceError. The
// detail, when present, is the service's own description.
func ClassifyHTTPError(statusCode int, detail string) *ServiceError {
	e := &ServiceError{}

	switch statusCode {
	case http.StatusTooManyRequests:
		e.Type, e.Message = ErrorTypeRateLimit, "rate limit reached"
	case http.StatusForbidden, http.StatusUnauthorized:
		e.Type, e.Message = ErrorTypeQuotaExceeded, "quota exceeded or access denied"
	case http.StatusBadRequest:
		e.Type, e.Message = ErrorTypeInvalidRequest, "invalid request"
	case http.StatusNotFound:
		e.Type, e.Message = ErrorTypeNotFound, "location not found"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		e.Type, e.Message = ErrorTypeNetworkError, fmt.Sprintf("service unavailable (status %d)", statusCode)
	default:
		e.Type, e.Message = ErrorTypeUnknown, fmt.Sprintf("HTTP error %d", statusCode)
	}

	if detail = strings.TrimSpace(detail); detail != "" {
		e.Message += ": " + detail
	}

	return e
}
