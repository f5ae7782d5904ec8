package errors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
)

// analyzes an error and returns its category
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var rollbackErr *RollbackError
	if errors.As(err, &rollbackErr) {
		return CategoryRollback
	}

	if providerErr, ok := AsProvider(err); ok {
		if providerErr.Code == CodeNetworkRequestFailed {
			return CategoryNetwork
		}
		return CategoryProvider
	}

	if _, ok := AsBackend(err); ok {
		return CategoryBackend
	}

	// context errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetwork
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return CategoryNetwork
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return CategoryTimeout
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return CategoryNetwork
	}

	return CategoryUnknown
}

// reports whether err is a transport-level failure
func IsNetwork(err error) bool {
	category := Classify(err)
	return category == CategoryNetwork || category == CategoryTimeout
}
