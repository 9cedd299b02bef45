// ABOUTME: OAuth bootstrap command for the Sheets-backed legacy store
// ABOUTME: Walks the authorization-code flow and saves the token to disk
package cli

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/harperreed/crmkit/sheets"
)

// AuthCommand runs the one-time OAuth flow and saves the token.
func AuthCommand(ctx context.Context, args []string) error {
	config := sheets.NewOAuthConfig()
	if config.ClientID == "" || config.ClientSecret == "" {
		return fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables")
	}

	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL in your browser, authorize, and paste the code:\n\n%s\n\nCode: ", url)

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := sheets.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("✓ Credentials saved to %s\n", sheets.TokenPath())
	return nil
}
