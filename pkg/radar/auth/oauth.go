// Package auth implements the identity-provider collaborator: an OAuth2 +
// PKCE login flow with a local callback server and an on-disk token cache.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo?alt=json"

// Options configures the authenticator.
type Options struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	// TokenFile is where the cached token lives. Created with 0600.
	TokenFile string
	// CallbackAddr is the listen address for the OAuth callback server,
	// e.g. "localhost:7391".
	CallbackAddr string
}

// Identity is a logged-in user: the label shown on unauthorized messages and
// the token source used for protected reads.
type Identity struct {
	Email       string
	TokenSource oauth2.TokenSource
}

// cachedToken is the on-disk token shape.
type cachedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	Email        string    `json:"email,omitempty"`
}

// Authenticator drives the login flow. At most one login prompt is active at
// a time.
type Authenticator struct {
	cfg          oauth2.Config
	tokenFile    string
	callbackAddr string
	log          *logging.Logger

	// OpenURL delivers the authorization URL to the user. The default
	// prints it to stderr; tests replace it.
	OpenURL func(url string)

	// userInfoURL is overridable in tests.
	userInfoURL string

	mu     sync.Mutex
	cached *cachedToken
}

// New creates an Authenticator and loads any cached token.
func New(opts Options, log *logging.Logger) *Authenticator {
	a := &Authenticator{
		cfg: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Scopes:       opts.Scopes,
			Endpoint:     google.Endpoint,
			RedirectURL:  "http://" + opts.CallbackAddr + "/oauth/callback",
		},
		tokenFile:    opts.TokenFile,
		callbackAddr: opts.CallbackAddr,
		log:          log,
		userInfoURL:  defaultUserInfoURL,
	}
	a.OpenURL = func(url string) {
		fmt.Fprintf(os.Stderr, "Visit this URL to authorize access:\n\n  %s\n\n", url)
	}
	_ = a.loadToken()
	return a
}

// Login produces an identity. Without forceAccountPicker a valid cached
// token is reused; with it the provider is asked to show the account chooser
// again, bypassing any cached session.
func (a *Authenticator) Login(ctx context.Context, forceAccountPicker bool) (*Identity, error) {
	if !forceAccountPicker {
		if id := a.identityFromCache(ctx); id != nil {
			return id, nil
		}
	}

	verifier := oauth2.GenerateVerifier()
	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", radar.ErrLoginFailed, err)
	}

	authURL := a.authCodeURL(state, verifier, forceAccountPicker)
	a.OpenURL(authURL)

	code, err := a.waitForCallback(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", radar.ErrLoginFailed, err)
	}

	tok, err := a.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", radar.ErrLoginFailed, err)
	}

	email, err := a.fetchUserEmail(ctx, tok.AccessToken)
	if err != nil {
		a.log.Warn("could not fetch user email", "err", err)
	}

	a.mu.Lock()
	a.cached = &cachedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Email:        email,
	}
	a.mu.Unlock()
	if err := a.saveToken(); err != nil {
		a.log.Warn("could not persist token", "err", err)
	}

	return &Identity{Email: email, TokenSource: a.cfg.TokenSource(ctx, tok)}, nil
}

// CurrentIdentityLabel returns the email of the cached identity, if any.
// Used only for the unauthorized-message display.
func (a *Authenticator) CurrentIdentityLabel() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached == nil {
		return ""
	}
	return a.cached.Email
}

// identityFromCache returns an identity backed by the cached token when it
// is still usable (valid, or refreshable through its refresh token).
func (a *Authenticator) identityFromCache(ctx context.Context) *Identity {
	a.mu.Lock()
	cached := a.cached
	a.mu.Unlock()
	if cached == nil {
		return nil
	}

	tok := &oauth2.Token{
		AccessToken:  cached.AccessToken,
		RefreshToken: cached.RefreshToken,
		TokenType:    cached.TokenType,
		Expiry:       cached.Expiry,
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil
	}
	return &Identity{Email: cached.Email, TokenSource: a.cfg.TokenSource(ctx, tok)}
}

// authCodeURL builds the authorization URL. A forced account picker asks the
// provider to re-prompt for both account and consent.
func (a *Authenticator) authCodeURL(state, verifier string, forceAccountPicker bool) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	}
	if forceAccountPicker {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", "select_account consent"))
	}
	return a.cfg.AuthCodeURL(state, opts...)
}

// waitForCallback runs a local HTTP server until the provider redirects back
// with a code, the state check fails, or the context is done.
func (a *Authenticator) waitForCallback(ctx context.Context, expectedState string) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != expectedState {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			errChan <- fmt.Errorf("invalid state received")
			return
		}
		if errStr := q.Get("error"); errStr != "" {
			http.Error(w, "Authorization failed: "+errStr, http.StatusBadRequest)
			errChan <- fmt.Errorf("authorization failed: %s", errStr)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code received", http.StatusBadRequest)
			errChan <- fmt.Errorf("no code received")
			return
		}
		w.Write([]byte("Login successful. You can close this window."))
		codeChan <- code
	})

	server := &http.Server{Addr: a.callbackAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer server.Close()

	select {
	case code := <-codeChan:
		return code, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *Authenticator) fetchUserEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var userInfo struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", err
	}
	return userInfo.Email, nil
}

func (a *Authenticator) loadToken() error {
	data, err := os.ReadFile(a.tokenFile)
	if err != nil {
		return err
	}
	var tok cachedToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return err
	}
	a.mu.Lock()
	a.cached = &tok
	a.mu.Unlock()
	return nil
}

func (a *Authenticator) saveToken() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached == nil {
		return nil
	}
	data, err := json.MarshalIndent(a.cached, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(a.tokenFile, data, 0600)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
