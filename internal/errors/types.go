package errors

// represents the error body returned by the backend verification API
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`   // error code (e.g., "unauthorized")
	Message string `json:"message"`           // user-facing message surfaced by the auth client
	Details string `json:"details,omitempty"` // optional details
}

// broad failure class used for log fields and outcome kinds
type Category string

// error categories for classification
const (
	CategoryProvider Category = "provider"
	CategoryBackend  Category = "backend"
	CategoryNetwork  Category = "network"
	CategoryTimeout  Category = "timeout"
	CategoryRollback Category = "rollback"
	CategoryUnknown  Category = "unknown"
)

// identity provider error codes
const (
	CodeEmailAlreadyInUse    = "auth/email-already-in-use"
	CodeUserNotFound         = "auth/user-not-found"
	CodeWrongPassword        = "auth/wrong-password"
	CodeInvalidEmail         = "auth/invalid-email"
	CodeUserDisabled         = "auth/user-disabled"
	CodeInvalidCredential    = "auth/invalid-credential"
	CodeTooManyRequests      = "auth/too-many-requests"
	CodeWeakPassword         = "auth/weak-password"
	CodeOperationNotAllowed  = "auth/operation-not-allowed"
	CodeUserTokenExpired     = "auth/user-token-expired"
	CodeInvalidUserToken     = "auth/invalid-user-token"
	CodeInvalidRefreshToken  = "auth/invalid-refresh-token"
	CodeInvalidAPIKey        = "auth/invalid-api-key"
	CodeMissingPassword      = "auth/missing-password"
	CodeMissingEmail         = "auth/missing-email"
	CodePopupClosedByUser    = "auth/popup-closed-by-user"
	CodePopupBlocked         = "auth/popup-blocked"
	CodeNetworkRequestFailed = "auth/network-request-failed"
	CodeInternalError        = "auth/internal-error"
	CodeNoCurrentUser        = "auth/no-current-user"
)
