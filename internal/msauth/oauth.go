package msauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/teemow/teamsbrief/internal/logging"
)

// Scopes requested for the Graph token: sending mail as the signed-in user,
// reading the user profile and read-only access to online meetings.
// offline_access is required for Azure AD to issue a refresh token.
var Scopes = []string{
	"Mail.Send",
	"User.Read",
	"OnlineMeetings.Read",
	"offline_access",
}

// PromptFunc presents the device-code verification URL and code to the
// operator. The flow then blocks until sign-in completes out-of-band.
type PromptFunc func(verificationURI, userCode string)

// Authenticator acquires Microsoft Graph tokens via the OAuth2 device-code
// flow and caches them on disk for silent reuse.
type Authenticator struct {
	conf      *oauth2.Config
	tokenFile string
	prompt    PromptFunc
	logger    *slog.Logger
}

// New creates an Authenticator for the given Azure AD app registration.
func New(clientID, tenantID string) *Authenticator {
	cacheDir := filepath.Join(userCacheDir(), "teamsbrief")
	return &Authenticator{
		conf: &oauth2.Config{
			ClientID: clientID,
			Endpoint: microsoft.AzureADEndpoint(tenantID),
			Scopes:   Scopes,
		},
		tokenFile: filepath.Join(cacheDir, "graph.token"),
		prompt:    defaultPrompt,
		logger:    logging.WithService(slog.Default(), "msauth"),
	}
}

// WithPrompt overrides how the verification URL and user code are presented.
func (a *Authenticator) WithPrompt(prompt PromptFunc) *Authenticator {
	a.prompt = prompt
	return a
}

// WithTokenFile overrides the token cache location. Used by tests.
func (a *Authenticator) WithTokenFile(path string) *Authenticator {
	a.tokenFile = path
	return a
}

func defaultPrompt(verificationURI, userCode string) {
	fmt.Printf("\nTo sign in, go to %s and enter code: %s\n\n", verificationURI, userCode)
}

// HasToken checks if a cached token exists.
func (a *Authenticator) HasToken() bool {
	_, err := os.ReadFile(a.tokenFile)
	return err == nil
}

// cachedToken reads the token cache. Returns an error if the file is missing
// or not valid JSON.
func (a *Authenticator) cachedToken() (*oauth2.Token, error) {
	slurp, err := os.ReadFile(a.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no cached Graph token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(slurp, &tok); err != nil {
		return nil, fmt.Errorf("invalid token cache format: %w", err)
	}
	return &tok, nil
}

// saveToken writes the token cache with owner-only permissions.
func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(a.tokenFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// TokenSource returns a refreshing token source for Graph calls. A cached
// token is reused silently when still valid (or refreshable); otherwise the
// device-code flow runs, presenting a verification URL and short code and
// blocking until the operator completes sign-in.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if cached, err := a.cachedToken(); err == nil {
		ts := a.conf.TokenSource(ctx, cached)
		if tok, err := ts.Token(); err == nil {
			if tok.AccessToken != cached.AccessToken {
				if err := a.saveToken(tok); err != nil {
					a.logger.Warn("failed to persist refreshed token", logging.Err(err))
				}
			}
			a.logger.Debug("using cached Graph token",
				slog.String("token", logging.SanitizeToken(tok.AccessToken)))
			return oauth2.ReuseTokenSource(tok, ts), nil
		}
		a.logger.Debug("cached token invalid, starting device-code flow")
	}

	tok, err := a.deviceFlow(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.saveToken(tok); err != nil {
		a.logger.Warn("failed to persist token", logging.Err(err))
	}
	return oauth2.ReuseTokenSource(tok, a.conf.TokenSource(ctx, tok)), nil
}

// deviceFlow runs the interactive device-code negotiation.
func (a *Authenticator) deviceFlow(ctx context.Context) (*oauth2.Token, error) {
	da, err := a.conf.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate device code flow: %w", err)
	}
	if da.UserCode == "" {
		return nil, fmt.Errorf("device code flow returned no user code")
	}

	a.prompt(da.VerificationURI, da.UserCode)

	tok, err := a.conf.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("could not acquire token: %w", err)
	}
	return tok, nil
}

// Client returns an HTTP client that injects the bearer token into every
// request, refreshing it as needed.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
