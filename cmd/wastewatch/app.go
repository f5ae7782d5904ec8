package main

import (
	"context"
	"fmt"
	"net/http"

	"codeberg.org/wastewatch/authclient/internal/authclient"
	"codeberg.org/wastewatch/authclient/internal/backend"
	"codeberg.org/wastewatch/authclient/internal/config"
	"codeberg.org/wastewatch/authclient/internal/identity"
	"codeberg.org/wastewatch/authclient/internal/identity/oauth"
	"codeberg.org/wastewatch/authclient/internal/logger"
)

// holds the wired dependencies of one CLI run
type app struct {
	cfg     *config.Config
	session *identity.Auth
	client  *authclient.Client
	closers []func() error
}

// creates the identity session, backend client and auth client from cfg
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	toolkit := identity.NewToolkitClient(cfg.FirebaseAPIKey,
		identity.WithEmulatorHost(cfg.AuthEmulatorHost),
		identity.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)

	var opts []identity.Option

	if cfg.RedisURL != "" {
		persistence, err := identity.OpenRedisPersistence(ctx, cfg.RedisURL, cfg.FirebaseAPIKey)
		if err != nil {
			return nil, err
		}

		opts = append(opts, identity.WithPersistence(persistence))
		a.closers = append(a.closers, persistence.Close)
	}

	if cfg.FederatedEnabled() {
		popup, err := oauth.NewGooglePopup(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackPort)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to set up google sign-in: %w", err)
		}

		opts = append(opts, identity.WithFederated(popup))
	}

	a.session = identity.New(toolkit, opts...)

	if _, err := a.session.Restore(ctx); err != nil {
		logger.Warn("could not restore previous session", "error", err)
	}

	api, err := backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithRateLimit(cfg.BackendRateLimit),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	a.client = authclient.New(a.session, api, authclient.WithShutdown(ctx))

	logger.Debug("auth client ready",
		"backend", cfg.BackendURL,
		"emulator", cfg.AuthEmulatorHost != "",
		"federated", cfg.FederatedEnabled(),
		"persistent", cfg.RedisURL != "",
	)

	return a, nil
}

func (a *app) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Warn("failed to close resource", "error", err)
		}
	}
}
