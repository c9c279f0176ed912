package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/klg/internal/klogfile"
)

const loginBaseURL = "https://login.microsoftonline.com/"

var graphScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

// graphOAuthConfig builds the device-code configuration for a tenant.
func graphOAuthConfig(tenantID, clientID string) *oauth2.Config {
	base := loginBaseURL + tenantID + "/oauth2/v2.0/"
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   graphScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: base + "devicecode",
			TokenURL:      base + "token",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// tokenStore keeps the Graph token as JSON at path.
type tokenStore struct {
	path string
}

// defaultTokenStore stores the token in ~/.klog/auth/msgraph_tokens.json.
func defaultTokenStore() (*tokenStore, error) {
	base, err := klogfile.BaseDir()
	if err != nil {
		return nil, err
	}
	return &tokenStore{path: filepath.Join(base, "auth", "msgraph_tokens.json")}, nil
}

// load returns nil without error when no token has been saved yet.
func (s *tokenStore) load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to sign in again): %w", s.path, err)
	}
	return &tok, nil
}

func (s *tokenStore) save(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return klogfile.WriteAtomic(s.path, data)
}

// GetHTTPClient returns a token and config for Microsoft Graph. It loads the
// saved token, refreshes it if needed, or runs the device code flow when no
// valid token is available.
func GetHTTPClient(ctx context.Context, tenantID, clientID string) (*oauth2.Token, *oauth2.Config, error) {
	cfg := graphOAuthConfig(tenantID, clientID)
	store, err := defaultTokenStore()
	if err != nil {
		return nil, nil, err
	}

	tok, err := store.load()
	if err != nil {
		slog.Warn("ignoring stored token", "err", err)
		tok = nil
	}

	if tok != nil && tok.Valid() {
		slog.Debug("using stored graph token", "expiry", tok.Expiry)
		return tok, cfg, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := store.save(refreshed); err != nil {
				slog.Warn("could not save refreshed token", "err", err)
			}
			return refreshed, cfg, nil
		}
		slog.Info("token refresh failed, re-authenticating", "err", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Println()
	fmt.Println("To sign in, use a web browser to open the page:")
	fmt.Printf("  %s\n", resp.VerificationURI)
	fmt.Printf("Enter the code: %s\n", resp.UserCode)
	fmt.Println()

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, nil, fmt.Errorf("device authentication failed: %w", err)
	}

	if err := store.save(newTok); err != nil {
		slog.Warn("could not save token", "err", err)
	}
	return newTok, cfg, nil
}
