// ABOUTME: Google OAuth CLI commands
// ABOUTME: Handles the browser-based OAuth setup flow and token storage
package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/harperreed/crmflow/ingest"
)

// AuthInitCommand runs the browser OAuth flow and stores the resulting
// refresh token for later ingestion runs.
func AuthInitCommand(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	_ = fs.Parse(args)

	config := ingest.NewOAuthConfig()
	if config.ClientID == "" || config.ClientSecret == "" {
		return fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables")
	}

	ctx := context.Background()
	state := uuid.NewString()

	tokens := make(chan *oauth2.Token, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			failures <- fmt.Errorf("oauth state mismatch")
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			failures <- fmt.Errorf("no authorization code received")
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			failures <- fmt.Errorf("failed to exchange code: %w", err)
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			return
		}

		_, _ = fmt.Fprintln(w, "Authorization successful! You can close this window.")
		tokens <- token
	})

	server := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			failures <- err
		}
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf the browser doesn't open, visit this URL:\n%s\n\n", authURL)
	_ = openBrowser(authURL)

	var token *oauth2.Token
	select {
	case token = <-tokens:
	case err := <-failures:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
	_ = server.Shutdown(ctx)

	if err := ingest.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("\n✓ Authenticated successfully\n")
	fmt.Printf("✓ Tokens saved to %s\n\n", ingest.TokenPath())
	fmt.Println("Ready to ingest! Run 'crmflow ingest mail' to import messages.")

	return nil
}

// openBrowser attempts to open url in the default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
