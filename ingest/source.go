// ABOUTME: Mail source abstraction over the Gmail API
// ABOUTME: Lets importers run against the real service or a test double
package ingest

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
)

// maxListPageSize bounds one list request to the provider.
const maxListPageSize = 50

// MailSource is the provider contract the mail importer depends on: list
// message ids matching a query, then fetch full messages by id.
type MailSource interface {
	ListMessages(ctx context.Context, query string, max int64) ([]string, error)
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
}

type gmailSource struct {
	svc *gmail.Service
}

// NewGmailSource wraps an authenticated Gmail service as a MailSource.
func NewGmailSource(svc *gmail.Service) MailSource {
	return &gmailSource{svc: svc}
}

func (g *gmailSource) ListMessages(ctx context.Context, query string, max int64) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		pageSize := int64(maxListPageSize)
		if remaining := max - int64(len(ids)); remaining < pageSize {
			pageSize = remaining
		}
		if pageSize <= 0 {
			break
		}

		call := g.svc.Users.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		if response == nil || response.Messages == nil {
			break
		}

		for _, ref := range response.Messages {
			ids = append(ids, ref.Id)
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return ids, nil
}

func (g *gmailSource) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	message, err := g.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}
	return message, nil
}

// Profile returns the ingesting mailbox address, used to pick the
// counterparty side of each message.
func Profile(ctx context.Context, svc *gmail.Service) (string, error) {
	profile, err := svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get user profile: %w", err)
	}
	return profile.EmailAddress, nil
}
