package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1/token"

	// timeout for provider requests
	defaultProviderTimeout = 15 * time.Second
)

// ToolkitClient talks to the Identity Toolkit and Secure Token REST APIs.
type ToolkitClient struct {
	apiKey      string
	identityURL string
	tokenURL    string
	httpClient  *http.Client
}

// ToolkitOption configures a ToolkitClient.
type ToolkitOption func(*ToolkitClient)

// routes all calls to a local auth emulator at host (e.g. "127.0.0.1:9099")
func WithEmulatorHost(host string) ToolkitOption {
	return func(c *ToolkitClient) {
		if host == "" {
			return
		}
		base := "http://" + strings.TrimSuffix(host, "/")
		c.identityURL = base + "/identitytoolkit.googleapis.com/v1"
		c.tokenURL = base + "/securetoken.googleapis.com/v1/token"
	}
}

// overrides both API base URLs
func WithEndpoints(identityURL, tokenURL string) ToolkitOption {
	return func(c *ToolkitClient) {
		c.identityURL = strings.TrimSuffix(identityURL, "/")
		c.tokenURL = tokenURL
	}
}

// uses httpClient for every request
func WithHTTPClient(httpClient *http.Client) ToolkitOption {
	return func(c *ToolkitClient) {
		c.httpClient = httpClient
	}
}

// creates a new Identity Toolkit client for the given web API key
func NewToolkitClient(apiKey string, opts ...ToolkitOption) *ToolkitClient {
	c := &ToolkitClient{
		apiKey:      apiKey,
		identityURL: identityToolkitURL,
		tokenURL:    secureTokenURL,
		httpClient: &http.Client{
			Timeout: defaultProviderTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// creates an email/password account
func (c *ToolkitClient) SignUp(ctx context.Context, email, password string) (*Credential, error) {
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}

	var resp signInResponse
	if err := c.call(ctx, "signUp", req, &resp); err != nil {
		return nil, err
	}

	cred := resp.credential(ProviderPassword)
	cred.IsNewUser = true

	return cred, nil
}

// signs in with email and password
func (c *ToolkitClient) SignInWithPassword(ctx context.Context, email, password string) (*Credential, error) {
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}

	var resp signInResponse
	if err := c.call(ctx, "signInWithPassword", req, &resp); err != nil {
		return nil, err
	}

	return resp.credential(ProviderPassword), nil
}

// exchanges an external IdP credential for a provider session
func (c *ToolkitClient) SignInWithIdP(ctx context.Context, credential IdPCredential) (*Credential, error) {
	postBody := url.Values{}
	postBody.Set("providerId", credential.ProviderID)

	if credential.IDToken != "" {
		postBody.Set("id_token", credential.IDToken)
	}

	if credential.AccessToken != "" {
		postBody.Set("access_token", credential.AccessToken)
	}

	req := idpRequest{
		PostBody:            postBody.Encode(),
		RequestURI:          "http://localhost",
		ReturnIdpCredential: true,
		ReturnSecureToken:   true,
	}

	var resp signInResponse
	if err := c.call(ctx, "signInWithIdp", req, &resp); err != nil {
		return nil, err
	}

	providerID := resp.ProviderID
	if providerID == "" {
		providerID = credential.ProviderID
	}

	return resp.credential(providerID), nil
}

// returns the account profile for an ID token
func (c *ToolkitClient) Lookup(ctx context.Context, idToken string) (*AccountInfo, error) {
	var resp lookupResponse
	if err := c.call(ctx, "lookup", idTokenRequest{IDToken: idToken}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Users) == 0 {
		return nil, autherrors.NewProviderError(autherrors.CodeUserNotFound)
	}

	u := resp.Users[0]
	return &AccountInfo{
		UID:           u.LocalID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
	}, nil
}

// deletes the account the ID token belongs to
func (c *ToolkitClient) Delete(ctx context.Context, idToken string) error {
	return c.call(ctx, "delete", idTokenRequest{IDToken: idToken}, nil)
}

// exchanges a refresh token for a fresh ID token
func (c *ToolkitClient) Refresh(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s?key=%s", c.tokenURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp refreshResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &RefreshedToken{
		UID:          resp.UserID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    parseExpiresIn(resp.ExpiresIn),
	}, nil
}

// posts a JSON body to accounts:<method>
func (c *ToolkitClient) call(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/accounts:%s?key=%s", c.identityURL, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *ToolkitClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the caller's own cancellation is not a network failure
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return autherrors.NewProviderError(autherrors.CodeNetworkRequestFailed)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return autherrors.NewProviderError(autherrors.CodeNetworkRequestFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseProviderError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &autherrors.ProviderError{
			Code:    autherrors.CodeInternalError,
			Message: fmt.Sprintf("Firebase: Error (%s).", autherrors.CodeInternalError),
			Status:  resp.StatusCode,
		}
	}

	return nil
}

func parseExpiresIn(raw string) time.Duration {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// REST API request/response types

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
}

type idTokenRequest struct {
	IDToken string `json:"idToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	FullName     string `json:"fullName"`
	ProviderID   string `json:"providerId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	IsNewUser    bool   `json:"isNewUser"`
}

func (r signInResponse) credential(providerID string) *Credential {
	displayName := r.DisplayName
	if displayName == "" {
		displayName = r.FullName
	}

	return &Credential{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  displayName,
		ProviderID:   providerID,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    parseExpiresIn(r.ExpiresIn),
		IsNewUser:    r.IsNewUser,
	}
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		DisplayName   string `json:"displayName"`
		EmailVerified bool   `json:"emailVerified"`
		Disabled      bool   `json:"disabled"`
	} `json:"users"`
}

type refreshResponse struct {
	ExpiresIn    string `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	UserID       string `json:"user_id"`
}
