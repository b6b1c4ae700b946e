package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/teemow/avail/internal/config"
	"github.com/teemow/avail/internal/store"
)

const outOfBandRedirect = "urn:ietf:wg:oauth:2.0:oob"

// googleScopes grants read access to calendar contents and write access for
// hold events.
var googleScopes = []string{
	"https://www.googleapis.com/auth/calendar",
}

// microsoftScopes must include offline_access or Graph will not issue a
// refresh token.
var microsoftScopes = []string{
	"offline_access",
	"https://graph.microsoft.com/Calendars.ReadWrite",
}

// OAuthConfig builds the oauth2 configuration for a platform from the user's
// client credentials.
func OAuthConfig(platform store.Platform, cfg *config.Config) (*oauth2.Config, error) {
	switch platform {
	case store.PlatformGoogle:
		if cfg.Google.ClientID == "" {
			return nil, fmt.Errorf("no Google OAuth client configured (set google.client_id in config.yaml)")
		}
		return &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  outOfBandRedirect,
			Scopes:       googleScopes,
		}, nil
	case store.PlatformMicrosoft:
		if cfg.Microsoft.ClientID == "" {
			return nil, fmt.Errorf("no Microsoft OAuth client configured (set microsoft.client_id in config.yaml)")
		}
		return &oauth2.Config{
			ClientID:     cfg.Microsoft.ClientID,
			ClientSecret: cfg.Microsoft.ClientSecret,
			Endpoint:     microsoft.AzureADEndpoint("common"),
			RedirectURL:  "https://login.microsoftonline.com/common/oauth2/nativeclient",
			Scopes:       microsoftScopes,
		}, nil
	default:
		return nil, fmt.Errorf("platform %s does not use OAuth", platform)
	}
}

// Login runs the interactive authorization-code flow for an account and
// persists the resulting token. The authorization URL is written to out and
// the code is read from in.
func Login(ctx context.Context, platform store.Platform, account string, cfg *config.Config, in io.Reader, out io.Writer) error {
	conf, err := OAuthConfig(platform, cfg)
	if err != nil {
		return err
	}

	url := conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following URL in your browser and authorize access:\n\n%s\n\nEnter the authorization code: ", url)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("no authorization code provided")
	}
	code := scanner.Text()

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return saveToken(platform, account, token)
}

// TokenSource returns a refreshing token source for a previously linked
// account.
func TokenSource(ctx context.Context, platform store.Platform, account string, cfg *config.Config) (oauth2.TokenSource, error) {
	conf, err := OAuthConfig(platform, cfg)
	if err != nil {
		return nil, err
	}

	token, err := loadToken(platform, account)
	if err != nil {
		return nil, err
	}

	return oauth2.ReuseTokenSource(token, conf.TokenSource(ctx, token)), nil
}

// HasToken reports whether a cached token exists for the account.
func HasToken(platform store.Platform, account string) bool {
	path, err := tokenPath(platform, account)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// DeleteToken removes the cached token for an account. Missing tokens are
// not an error.
func DeleteToken(platform store.Platform, account string) error {
	path, err := tokenPath(platform, account)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func tokenPath(platform store.Platform, account string) (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	tokenDir := filepath.Join(dir, "tokens")
	if err := os.MkdirAll(tokenDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create token dir: %w", err)
	}
	return filepath.Join(tokenDir, fmt.Sprintf("%s-%s.json", platform, account)), nil
}

func saveToken(platform store.Platform, account string, token *oauth2.Token) error {
	path, err := tokenPath(platform, account)
	if err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func loadToken(platform store.Platform, account string) (*oauth2.Token, error) {
	path, err := tokenPath(platform, account)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no token for account %s on %s, run \"avail accounts add\" first: %w", account, platform, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", path, err)
	}
	return &token, nil
}
