package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
	"codeberg.org/wastewatch/authclient/internal/logger"
)

// backend endpoints
const (
	pathRegister = "/api/firebase-register"
	pathLogin    = "/api/firebase-login"
	pathLogout   = "/logout"
)

// largest response body read from the backend
const maxBodyBytes = 1 << 20

const (
	defaultTimeout   = 15 * time.Second
	defaultRateLimit = 5
)

// manages HTTP requests to the backend verification API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// limits outbound requests to perSecond, with a burst of one second's worth
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		burst := max(int(perSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// creates a new backend client rooted at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	// keeps the backend session cookie between login and logout
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
			// the backend answers some calls with redirects meant for browsers
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(defaultRateLimit, defaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// submits a registration for a freshly created provider account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Response, error) {
	return c.post(ctx, pathRegister, req)
}

// verifies a password or federated sign-in with the backend
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Response, error) {
	return c.post(ctx, pathLogin, req)
}

// clears the backend session. only transport failures are errors; the
// backend's answer is logged and otherwise ignored.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, pathLogout, nil)
	if err != nil {
		return err
	}

	if resp.Status >= http.StatusBadRequest {
		logger.Warn("backend logout answered with error status", "status", resp.Status)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	if resp.Status < 200 || resp.Status > 299 {
		return nil, &autherrors.BackendRejection{
			Status:  resp.Status,
			Message: rejectionMessage(resp.Payload),
		}
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug("backend call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	result := &Response{Status: resp.StatusCode}
	if json.Valid(data) {
		result.Payload = json.RawMessage(data)
	}

	return result, nil
}

// extracts the message field of an error body, or "" when there is none
func rejectionMessage(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}

	var errResp autherrors.ErrorResponse
	if err := json.Unmarshal(payload, &errResp); err != nil {
		return ""
	}

	return errResp.Message
}
