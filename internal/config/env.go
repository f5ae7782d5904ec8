package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBackendURL        = "http://localhost:5000"
	defaultOAuthCallbackPort = 8085
	defaultRequestTimeout    = 15 * time.Second
	defaultBackendRateLimit  = 5
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - a .env file is optional
	}

	apiKey := os.Getenv("FIREBASE_API_KEY")
	backendURL := os.Getenv("BACKEND_URL")
	environment := os.Getenv("ENVIRONMENT")

	if apiKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY environment variable is required")
	}

	if backendURL == "" {
		backendURL = defaultBackendURL
	}

	if environment == "" {
		environment = "development"
	}

	callbackPort := defaultOAuthCallbackPort
	if raw := os.Getenv("OAUTH_CALLBACK_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("OAUTH_CALLBACK_PORT must be a valid port, got %q", raw)
		}
		callbackPort = port
	}

	requestTimeout := defaultRequestTimeout
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("REQUEST_TIMEOUT must be a positive duration, got %q", raw)
		}
		requestTimeout = timeout
	}

	rateLimit := float64(defaultBackendRateLimit)
	if raw := os.Getenv("BACKEND_RATE_LIMIT"); raw != "" {
		limit, err := strconv.ParseFloat(raw, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("BACKEND_RATE_LIMIT must be a positive number, got %q", raw)
		}
		rateLimit = limit
	}

	return &Config{
		FirebaseAPIKey:     apiKey,
		AuthEmulatorHost:   os.Getenv("FIREBASE_AUTH_EMULATOR_HOST"),
		BackendURL:         backendURL,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthCallbackPort:  callbackPort,
		RedisURL:           os.Getenv("REDIS_URL"),
		RequestTimeout:     requestTimeout,
		BackendRateLimit:   rateLimit,
		LogFile:            os.Getenv("LOG_FILE"),
		Environment:        environment,
	}, nil
}
