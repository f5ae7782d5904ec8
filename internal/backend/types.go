package backend

import "encoding/json"

// body of POST /api/firebase-register
type RegisterRequest struct {
	IDToken     string `json:"idToken"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	FirebaseUID string `json:"firebase_uid"`
}

// body of POST /api/firebase-login. the federated flow also sends the
// provider profile and sets IsGoogleAuth.
type LoginRequest struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	Username     string `json:"username,omitempty"`
	FirebaseUID  string `json:"firebase_uid,omitempty"`
	IsGoogleAuth bool   `json:"is_google_auth,omitempty"`
}

// Response is a backend answer. Payload is nil when the body was not JSON.
type Response struct {
	Status  int
	Payload json.RawMessage
}
