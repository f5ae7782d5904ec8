package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_Message(t *testing.T) {
	err := NewProviderError(CodeWrongPassword)
	assert.Equal(t, "Firebase: Error (auth/wrong-password).", err.Error())

	custom := &ProviderError{Code: CodeWeakPassword, Message: "Firebase: Password should be at least 6 characters (auth/weak-password)."}
	assert.Equal(t, "Firebase: Password should be at least 6 characters (auth/weak-password).", custom.Error())

	bare := &ProviderError{Code: CodeUserDisabled}
	assert.Equal(t, "Firebase: Error (auth/user-disabled).", bare.Error())
}

func TestBackendRejection_Message(t *testing.T) {
	assert.Equal(t, "email taken", (&BackendRejection{Status: 400, Message: "email taken"}).Error())
	assert.Equal(t, "backend responded with status 500", (&BackendRejection{Status: 500}).Error())
}

func TestProviderCode_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("sign in: %w", NewProviderError(CodeTooManyRequests))

	assert.Equal(t, CodeTooManyRequests, ProviderCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeTooManyRequests))
	assert.Equal(t, "", ProviderCode(errors.New("plain")))
}

func TestRollbackError_Unwrap(t *testing.T) {
	cause := NewProviderError(CodeNetworkRequestFailed)
	err := &RollbackError{UID: "uid-1", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "uid-1")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "nil", err: nil, want: CategoryUnknown},
		{name: "provider", err: NewProviderError(CodeInvalidEmail), want: CategoryProvider},
		{name: "provider network", err: NewProviderError(CodeNetworkRequestFailed), want: CategoryNetwork},
		{name: "backend", err: fmt.Errorf("register: %w", &BackendRejection{Status: 409}), want: CategoryBackend},
		{name: "rollback", err: &RollbackError{UID: "u", Err: errors.New("boom")}, want: CategoryRollback},
		{name: "deadline", err: context.DeadlineExceeded, want: CategoryTimeout},
		{name: "canceled", err: fmt.Errorf("wait: %w", context.Canceled), want: CategoryTimeout},
		{name: "url error", err: &url.Error{Op: "Post", URL: "http://x", Err: errors.New("refused")}, want: CategoryNetwork},
		{name: "op error", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, want: CategoryNetwork},
		{name: "string connection", err: errors.New("connection reset by peer"), want: CategoryNetwork},
		{name: "unknown", err: errors.New("something odd"), want: CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsNetwork(t *testing.T) {
	assert.True(t, IsNetwork(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("eof")}))
	assert.True(t, IsNetwork(context.DeadlineExceeded))
	assert.False(t, IsNetwork(NewProviderError(CodeWrongPassword)))
}
