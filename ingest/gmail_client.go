// ABOUTME: Gmail API client construction for mail ingestion
// ABOUTME: Selects service-account or OAuth refresh-token credentials from the environment
package ingest

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// NewGmailService creates an authenticated Gmail API service. When
// GOOGLE_SERVICE_ACCOUNT_FILE is set a domain-wide-delegation service
// account is used (optionally impersonating GOOGLE_IMPERSONATE_SUBJECT);
// otherwise the stored OAuth refresh token from `crmflow auth init` is used.
func NewGmailService(ctx context.Context) (*gmail.Service, error) {
	if saFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"); saFile != "" {
		return newServiceAccountClient(ctx, saFile)
	}

	token, err := LoadToken()
	if err != nil {
		return nil, fmt.Errorf("no authentication token found, run 'crmflow auth init' first: %w", err)
	}

	config := NewOAuthConfig()
	client := config.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return service, nil
}

func newServiceAccountClient(ctx context.Context, credentialsFile string) (*gmail.Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	if subject := os.Getenv("GOOGLE_IMPERSONATE_SUBJECT"); subject != "" {
		config.Subject = subject
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return service, nil
}
