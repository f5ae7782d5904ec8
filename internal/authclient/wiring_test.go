package authclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/wastewatch/authclient/internal/backend"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

// identity toolkit that accepts one sign-up and counts deletes of it
func newToolkitServer(t *testing.T, deletes *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/accounts:signUp":
			_, _ = io.WriteString(w, `{
				"localId": "uid-1",
				"email": "a@b.com",
				"idToken": "id-token",
				"refreshToken": "refresh-token",
				"expiresIn": "3600"
			}`)

		case "/v1/accounts:delete":
			var body struct {
				IDToken string `json:"idToken"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck // test server

			if body.IDToken == "id-token" {
				deletes.Add(1)
			}
			_, _ = io.WriteString(w, `{}`)

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestRegister_WiredStackRollsBackOnRejection(t *testing.T) {
	var deletes atomic.Int32
	toolkit := newToolkitServer(t, &deletes)

	var sent backend.RegisterRequest
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/firebase-register", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&sent) //nolint:errcheck // test server

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error": "conflict", "message": "email taken"}`)
	}))
	t.Cleanup(api.Close)

	session := identity.New(identity.NewToolkitClient("test-key",
		identity.WithEndpoints(toolkit.URL+"/v1", toolkit.URL+"/v1/token"),
	))

	verifier, err := backend.NewClient(api.URL)
	require.NoError(t, err)

	client := New(session, verifier, WithRollbackPolicy(1, 0))

	out := client.Register(context.Background(), Registration{
		Email:    "a@b.com",
		Password: "pw123",
		Username: "alice",
	})

	assert.False(t, out.Success)
	assert.Equal(t, "email taken", out.Error)
	assert.Equal(t, KindBackend, out.Kind)
	assert.Nil(t, out.User)

	assert.Equal(t, int32(1), deletes.Load())
	assert.Nil(t, session.CurrentUser())

	assert.Equal(t, "id-token", sent.IDToken)
	assert.Equal(t, "uid-1", sent.FirebaseUID)
	assert.Equal(t, RoleUser, sent.Role)
}
