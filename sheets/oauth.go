// ABOUTME: OAuth configuration and token management for the Sheets API
// ABOUTME: Handles OAuth flow, token storage at XDG paths, and auto-refresh
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// NewOAuthConfig creates the OAuth2 config for the Sheets API. Users create
// their own OAuth app in Google Cloud Console; credentials come from the
// environment.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  "http://localhost:8080/oauth/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/spreadsheets",
		},
		Endpoint: google.Endpoint,
	}
}

// TokenPath returns the XDG-compliant path for storing the OAuth token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "crmkit", "google-credentials.json")
}

// SaveToken saves the OAuth token to the XDG data directory.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// Token grants write access to the CRM sheet; keep it private
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// LoadToken loads the OAuth token from the XDG data directory.
func LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token (run 'crmkit auth' first): %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &token, nil
}

// RefreshingTokenSource wraps the stored token in a source that transparently
// refreshes expired access tokens using the saved refresh token.
func RefreshingTokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return NewOAuthConfig().TokenSource(ctx, token)
}
