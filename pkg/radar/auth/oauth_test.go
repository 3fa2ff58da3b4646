package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	return New(Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"scope-a"},
		TokenFile:    filepath.Join(t.TempDir(), "token.json"),
		CallbackAddr: "localhost:0",
	}, logging.NewNop())
}

func TestTokenPersistence(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	a := New(Options{TokenFile: tokenFile, CallbackAddr: "localhost:0"}, logging.NewNop())
	require.NoError(t, a.saveToken(), "saving with no token should be a no-op")

	a.cached = &cachedToken{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC(),
		Email:        "dev@example.com",
	}
	require.NoError(t, a.saveToken())

	// A fresh authenticator picks the token up from disk.
	b := New(Options{TokenFile: tokenFile, CallbackAddr: "localhost:0"}, logging.NewNop())
	require.NotNil(t, b.cached)
	assert.Equal(t, "access-123", b.cached.AccessToken)
	assert.Equal(t, "dev@example.com", b.CurrentIdentityLabel())
}

func TestIdentityFromCache(t *testing.T) {
	a := newTestAuthenticator(t)

	assert.Nil(t, a.identityFromCache(context.Background()), "empty cache yields no identity")

	a.cached = &cachedToken{AccessToken: "expired", Expiry: time.Now().Add(-time.Hour)}
	assert.Nil(t, a.identityFromCache(context.Background()),
		"expired token without refresh token is unusable")

	a.cached = &cachedToken{
		AccessToken: "valid",
		Expiry:      time.Now().Add(time.Hour),
		Email:       "dev@example.com",
	}
	id := a.identityFromCache(context.Background())
	require.NotNil(t, id)
	assert.Equal(t, "dev@example.com", id.Email)
}

func TestAuthCodeURL(t *testing.T) {
	a := newTestAuthenticator(t)

	plain, err := url.Parse(a.authCodeURL("state-1", "verifier-1", false))
	require.NoError(t, err)
	q := plain.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Empty(t, q.Get("prompt"))

	forced, err := url.Parse(a.authCodeURL("state-2", "verifier-2", true))
	require.NoError(t, err)
	assert.Equal(t, "select_account consent", forced.Query().Get("prompt"),
		"forced login must re-prompt for account and consent")
}

func TestWaitForCallback(t *testing.T) {
	a := newTestAuthenticator(t)
	a.callbackAddr = "localhost:7392"

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := a.waitForCallback(context.Background(), "expected-state")
		done <- result{code, err}
	}()

	// Give the callback server a moment to come up.
	var resp *http.Response
	var err error
	callback := fmt.Sprintf("http://%s/oauth/callback?state=expected-state&code=auth-code", a.callbackAddr)
	for i := 0; i < 50; i++ {
		resp, err = http.Get(callback)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	resp.Body.Close()

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "auth-code", r.code)
}

func TestWaitForCallbackRejectsBadState(t *testing.T) {
	a := newTestAuthenticator(t)
	a.callbackAddr = "localhost:7393"

	done := make(chan error, 1)
	go func() {
		_, err := a.waitForCallback(context.Background(), "expected-state")
		done <- err
	}()

	callback := fmt.Sprintf("http://%s/oauth/callback?state=wrong&code=auth-code", a.callbackAddr)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(callback)
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	assert.Error(t, <-done)
}

func TestWaitForCallbackContextCancel(t *testing.T) {
	a := newTestAuthenticator(t)
	a.callbackAddr = "localhost:7394"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := a.waitForCallback(ctx, "state")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("waitForCallback did not return after cancellation")
	}
}
