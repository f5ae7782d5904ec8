package config

import "time"

type Config struct {
	FirebaseAPIKey     string
	AuthEmulatorHost   string
	BackendURL         string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthCallbackPort  int
	RedisURL           string
	RequestTimeout     time.Duration
	BackendRateLimit   float64
	LogFile            string
	Environment        string
}

// reports whether Google sign-in can be offered
func (c *Config) FederatedEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

type RegisterFlags struct {
	Email    string
	Password string
	Username string
	Phone    string
	Role     string
}

type LoginFlags struct {
	Email    string
	Password string
}

// how long a browser sign-in may take unless told otherwise
const DefaultGoogleTimeout = 2 * time.Minute

type GoogleFlags struct {
	Timeout time.Duration
}

type TokenFlags struct {
	Force bool
}
