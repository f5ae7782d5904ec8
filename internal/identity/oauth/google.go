package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/pkg/browser"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
	"codeberg.org/wastewatch/authclient/internal/identity"
	"codeberg.org/wastewatch/authclient/internal/logger"
)

// goth name of the Google provider
const providerName = "google"

// GooglePopup runs the Google consent flow in the user's browser and
// collects the result on a loopback callback server.
type GooglePopup struct {
	host        string
	port        int
	newProvider func(callbackURL string) goth.Provider
	openURL     func(url string) error
}

type Option func(*GooglePopup)

// binds the callback server to host instead of 127.0.0.1
func WithHost(host string) Option {
	return func(p *GooglePopup) {
		p.host = host
	}
}

// replaces the goth provider built for each flow
func WithProviderFactory(fn func(callbackURL string) goth.Provider) Option {
	return func(p *GooglePopup) {
		p.newProvider = fn
	}
}

// replaces the function that opens the consent page
func WithBrowser(open func(url string) error) Option {
	return func(p *GooglePopup) {
		p.openURL = open
	}
}

// creates a Google sign-in flow whose callback listens on port.
// port 0 picks a free port per flow.
func NewGooglePopup(clientID, clientSecret string, port int, opts ...Option) (*GooglePopup, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	if err := initSessionStore(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)

	p := &GooglePopup{
		host: "127.0.0.1",
		port: port,
		newProvider: func(callbackURL string) goth.Provider {
			return google.New(clientID, clientSecret, callbackURL, "openid", "email", "profile")
		},
		openURL: browser.OpenURL,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

var (
	storeOnce sync.Once
	errStore  error
)

// gothic keeps the OAuth state in a cookie session; the keys only need to
// live as long as the process
func initSessionStore() error {
	storeOnce.Do(func() {
		hashKey := securecookie.GenerateRandomKey(64)
		blockKey := securecookie.GenerateRandomKey(32)

		if hashKey == nil || blockKey == nil {
			errStore = fmt.Errorf("failed to generate oauth session keys")
			return
		}

		store := sessions.NewCookieStore(hashKey, blockKey)

		store.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   300, // 5 minutes, enough for OAuth flow
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}

		gothic.Store = store
	})

	return errStore
}

func (p *GooglePopup) ProviderID() string {
	return identity.ProviderGoogle
}

type callbackResult struct {
	user goth.User
	err  error
}

// opens the consent page and waits for the callback or ctx
func (p *GooglePopup) Credential(ctx context.Context) (*identity.IdPCredential, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(p.host, strconv.Itoa(p.port)))
	if err != nil {
		return nil, &autherrors.ProviderError{
			Code:    autherrors.CodePopupBlocked,
			Message: fmt.Sprintf("Firebase: %s (%s).", err, autherrors.CodePopupBlocked),
		}
	}

	baseURL := "http://" + ln.Addr().String()
	consentURL := baseURL + "/auth/" + providerName

	goth.UseProviders(p.newProvider(consentURL + "/callback"))

	results := make(chan callbackResult, 1)

	srv := &http.Server{
		Handler:           newRouter(results),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorErr(err, "oauth callback server failed")
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("oauth callback server shutdown failed", "error", err)
		}
	}()

	if err := p.openURL(consentURL); err != nil {
		logger.Warn("could not open browser, open this URL to continue", "url", consentURL, "error", err)
	} else {
		logger.Debug("opened consent page", "url", consentURL)
	}

	select {
	case <-ctx.Done():
		return nil, autherrors.NewProviderError(autherrors.CodePopupClosedByUser)

	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}

		if res.user.IDToken == "" && res.user.AccessToken == "" {
			return nil, internalError("google returned no token")
		}

		return &identity.IdPCredential{
			ProviderID:  identity.ProviderGoogle,
			IDToken:     res.user.IDToken,
			AccessToken: res.user.AccessToken,
		}, nil
	}
}

func internalError(message string) *autherrors.ProviderError {
	return &autherrors.ProviderError{
		Code:    autherrors.CodeInternalError,
		Message: fmt.Sprintf("Firebase: %s (%s).", message, autherrors.CodeInternalError),
	}
}
