package authclient

import (
	"encoding/json"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

// generic messages used when nothing more specific is available
const (
	msgRegistrationFailed = "Registration failed"
	msgLoginFailed        = "Login failed"
	msgLogoutFailed       = "Logout failed"
)

func succeeded(user *identity.User, data json.RawMessage) Outcome {
	return Outcome{
		Success: true,
		User:    user,
		Data:    data,
	}
}

func failed(kind Kind, message string) Outcome {
	return Outcome{
		Success: false,
		Error:   message,
		Kind:    kind,
	}
}

// failure outcome whose kind is derived from err
func failedWith(err error, message string) Outcome {
	return failed(kindOf(err), message)
}

func kindOf(err error) Kind {
	switch autherrors.Classify(err) {
	case autherrors.CategoryProvider:
		return KindProvider
	case autherrors.CategoryBackend:
		return KindBackend
	case autherrors.CategoryNetwork:
		return KindNetwork
	case autherrors.CategoryTimeout:
		return KindTimeout
	case autherrors.CategoryRollback:
		return KindInconsistentState
	default:
		return KindUnknown
	}
}

// text shown for a failure: a backend rejection's message, the raw error
// message for anything else, then fallback
func messageOr(err error, fallback string) string {
	if rejection, ok := autherrors.AsBackend(err); ok {
		if rejection.Message != "" {
			return rejection.Message
		}
		return fallback
	}

	if err != nil && err.Error() != "" {
		return err.Error()
	}

	return fallback
}

// user-facing text for known sign-in failures
var loginErrorMessages = map[string]string{
	autherrors.CodeUserNotFound:      "Email not found. Please register first.",
	autherrors.CodeWrongPassword:     "Incorrect password. Please try again.",
	autherrors.CodeInvalidEmail:      "Invalid email address.",
	autherrors.CodeUserDisabled:      "This account has been disabled.",
	autherrors.CodeInvalidCredential: "Invalid email or password. Please check your credentials or register if you haven't already.",
	autherrors.CodeTooManyRequests:   "Too many failed login attempts. Please try again later.",
}

// maps a provider error code to the message shown on a failed login.
// unknown codes fall back to rawMessage, then to "Login failed".
func LoginErrorMessage(code, rawMessage string) string {
	if message, ok := loginErrorMessages[code]; ok {
		return message
	}

	if rawMessage != "" {
		return rawMessage
	}

	return msgLoginFailed
}

// message for any failure inside the password login flow
func loginMessage(err error) string {
	if _, ok := autherrors.AsBackend(err); ok {
		return messageOr(err, msgLoginFailed)
	}

	raw := ""
	if err != nil {
		raw = err.Error()
	}

	return LoginErrorMessage(autherrors.ProviderCode(err), raw)
}
