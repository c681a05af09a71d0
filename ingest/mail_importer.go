// ABOUTME: Mail ingestion orchestrator
// ABOUTME: Fetches, decodes, dedups, and persists inbound messages with contact capture
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"google.golang.org/api/gmail/v1"

	"github.com/harperreed/crmflow/db"
	"github.com/harperreed/crmflow/models"
)

// MailImporter drives one ingestion run over the mail source. Each message
// moves Fetched → Decoded → Deduplicated → Normalized → Resolved →
// Persisted, or ends Skipped (duplicate) / Failed (any stage error). A
// failed message never aborts the batch; only systemic failures do.
type MailImporter struct {
	db        *sql.DB
	source    MailSource
	dedup     *Deduplicator
	selfEmail string
	createdBy uuid.UUID
}

func NewMailImporter(database *sql.DB, source MailSource, selfEmail string, createdBy uuid.UUID) *MailImporter {
	return &MailImporter{
		db:        database,
		source:    source,
		dedup:     NewDeduplicator(database),
		selfEmail: strings.ToLower(strings.TrimSpace(selfEmail)),
		createdBy: createdBy,
	}
}

// Run lists messages matching the query and ingests each in source order.
func (m *MailImporter) Run(ctx context.Context, query string, max int64) (*RunSummary, error) {
	fmt.Println("Ingesting mail...")

	ids, err := m.source.ListMessages(ctx, query, max)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	summary := &RunSummary{}
	for _, id := range ids {
		switch outcome, err := m.processMessage(ctx, id); {
		case err != nil:
			fmt.Printf("  ✗ Failed to process message %s: %v\n", id, err)
			summary.addFailed()
		case outcome == outcomeSkipped:
			summary.addSkipped()
		default:
			summary.addCreated()
		}
	}

	summary.Print()
	return summary, nil
}

type messageOutcome int

const (
	outcomePersisted messageOutcome = iota
	outcomeSkipped
)

func (m *MailImporter) processMessage(ctx context.Context, id string) (messageOutcome, error) {
	message, err := m.source.GetMessage(ctx, id)
	if err != nil {
		return 0, err
	}

	email, err := buildInboundEmail(message)
	if err != nil {
		return 0, err
	}

	if m.dedup.Exists(email.MessageID) {
		return outcomeSkipped, nil
	}

	if err := db.CreateInboundEmail(m.db, email); err != nil {
		return 0, fmt.Errorf("failed to persist email: %w", err)
	}

	// Attach a pipeline note to the counterparty contact when one can be
	// resolved; a message with no usable counterparty is still persisted.
	if contactID, ok := m.resolveCounterparty(email); ok {
		note := &models.Note{
			Content:   noteContent(email),
			ContactID: &contactID,
			CreatedBy: &m.createdBy,
			Source:    models.NoteSourceEmail,
		}
		if err := db.CreateNote(m.db, note); err != nil {
			return 0, fmt.Errorf("failed to create note: %w", err)
		}
	}

	if err := db.MarkInboundEmailProcessed(m.db, email.MessageID); err != nil {
		return 0, fmt.Errorf("failed to mark email processed: %w", err)
	}

	return outcomePersisted, nil
}

// resolveCounterparty finds or creates the contact on the other side of the
// message: the sender for received mail, the first recipient for sent mail.
func (m *MailImporter) resolveCounterparty(email *models.InboundEmail) (uuid.UUID, bool) {
	counterparty := email.From
	if strings.ToLower(counterparty.Email) == m.selfEmail && len(email.To) > 0 {
		counterparty = email.To[0]
	}

	if counterparty.Email == "" || strings.ToLower(counterparty.Email) == m.selfEmail {
		return uuid.Nil, false
	}

	existing, err := db.FindContactByEmail(m.db, counterparty.Email)
	if err == nil && existing != nil {
		return existing.ID, true
	}

	first, last := splitName(counterparty.Name)
	if first == "" {
		first = strings.Split(counterparty.Email, "@")[0]
	}

	contact := &models.Contact{
		FirstName: first,
		LastName:  last,
		Email:     counterparty.Email,
		CreatedBy: &m.createdBy,
	}

	if err := db.CreateContact(m.db, contact); err != nil {
		fmt.Printf("  ✗ Failed to create contact for %s: %v\n", counterparty.Email, err)
		return uuid.Nil, false
	}

	return contact.ID, true
}

func buildInboundEmail(message *gmail.Message) (*models.InboundEmail, error) {
	if message.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", message.Id)
	}

	decoded, err := DecodeParts(message.Payload)
	if err != nil {
		return nil, err
	}

	headers := parseHeaders(message.Payload)

	email := &models.InboundEmail{
		MessageID:   message.Id,
		ThreadID:    message.ThreadId,
		From:        parseAddress(headers["From"]),
		To:          parseAddressList(headers["To"]),
		Cc:          parseAddressList(headers["Cc"]),
		Bcc:         parseAddressList(headers["Bcc"]),
		Subject:     headers["Subject"],
		Body:        decoded.Body,
		Attachments: decoded.Attachments,
		ReceivedAt:  receivedTime(message, headers["Date"]),
		Read:        !hasLabel(message.LabelIds, "UNREAD"),
		Labels:      message.LabelIds,
		Snippet:     message.Snippet,
	}

	return email, nil
}

func parseHeaders(payload *gmail.MessagePart) map[string]string {
	headers := make(map[string]string)
	for _, h := range payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}

func parseAddress(raw string) models.EmailAddress {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.EmailAddress{}
	}

	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return models.EmailAddress{Email: raw}
	}
	return models.EmailAddress{Email: addr.Address, Name: addr.Name}
}

func parseAddressList(raw string) []models.EmailAddress {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	addrs, err := mail.ParseAddressList(raw)
	if err != nil {
		return []models.EmailAddress{{Email: raw}}
	}

	var result []models.EmailAddress
	for _, addr := range addrs {
		result = append(result, models.EmailAddress{Email: addr.Address, Name: addr.Name})
	}
	return result
}

func receivedTime(message *gmail.Message, dateHeader string) time.Time {
	if message.InternalDate > 0 {
		return time.UnixMilli(message.InternalDate)
	}
	if dateHeader != "" {
		if t, err := dateparse.ParseAny(dateHeader); err == nil {
			return t
		}
	}
	return time.Now()
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

func noteContent(email *models.InboundEmail) string {
	var b strings.Builder
	b.WriteString("Email: ")
	if email.Subject != "" {
		b.WriteString(email.Subject)
	} else {
		b.WriteString("(no subject)")
	}
	if email.Snippet != "" {
		b.WriteString("\n\n")
		b.WriteString(email.Snippet)
	}
	return b.String()
}
