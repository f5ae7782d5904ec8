package identity

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
)

// REST error messages mapped to client error codes
var serverErrorCodes = map[string]string{
	"EMAIL_EXISTS":                   autherrors.CodeEmailAlreadyInUse,
	"EMAIL_NOT_FOUND":                autherrors.CodeUserNotFound,
	"USER_NOT_FOUND":                 autherrors.CodeUserNotFound,
	"INVALID_PASSWORD":               autherrors.CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":      autherrors.CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":           autherrors.CodeInvalidCredential,
	"INVALID_PENDING_TOKEN":          autherrors.CodeInvalidCredential,
	"INVALID_EMAIL":                  autherrors.CodeInvalidEmail,
	"INVALID_IDENTIFIER":             autherrors.CodeInvalidEmail,
	"MISSING_EMAIL":                  autherrors.CodeMissingEmail,
	"MISSING_PASSWORD":               autherrors.CodeMissingPassword,
	"USER_DISABLED":                  autherrors.CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":    autherrors.CodeTooManyRequests,
	"RESET_PASSWORD_EXCEED_LIMIT":    autherrors.CodeTooManyRequests,
	"WEAK_PASSWORD":                  autherrors.CodeWeakPassword,
	"OPERATION_NOT_ALLOWED":          autherrors.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":        autherrors.CodeOperationNotAllowed,
	"TOKEN_EXPIRED":                  autherrors.CodeUserTokenExpired,
	"INVALID_ID_TOKEN":               autherrors.CodeInvalidUserToken,
	"INVALID_REFRESH_TOKEN":          autherrors.CodeInvalidRefreshToken,
	"MISSING_REFRESH_TOKEN":          autherrors.CodeInvalidRefreshToken,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": "auth/requires-recent-login",
}

var separatorRegex = regexp.MustCompile(`[_\s]+`)

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// converts a non-2xx provider response into a *ProviderError
func parseProviderError(status int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
		return &autherrors.ProviderError{
			Code:    autherrors.CodeInternalError,
			Message: fmt.Sprintf("Firebase: Error (%s).", autherrors.CodeInternalError),
			Status:  status,
		}
	}

	// messages look like "WEAK_PASSWORD : Password should be at least 6 characters"
	serverCode, detail, _ := strings.Cut(envelope.Error.Message, " : ")
	serverCode = strings.TrimSpace(serverCode)
	detail = strings.TrimSpace(detail)

	code := clientCode(serverCode)

	message := fmt.Sprintf("Firebase: Error (%s).", code)
	if detail != "" {
		message = fmt.Sprintf("Firebase: %s (%s).", detail, code)
	}

	return &autherrors.ProviderError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func clientCode(serverCode string) string {
	if code, ok := serverErrorCodes[serverCode]; ok {
		return code
	}

	if strings.HasPrefix(serverCode, "API key not valid") {
		return autherrors.CodeInvalidAPIKey
	}

	return "auth/" + separatorRegex.ReplaceAllString(strings.ToLower(serverCode), "-")
}
