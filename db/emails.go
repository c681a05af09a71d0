// ABOUTME: Inbound email database operations
// ABOUTME: Handles message persistence, message-id dedup lookups, and processed flags
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmflow/models"
)

// CreateInboundEmail persists a fetched message. The message_id UNIQUE
// constraint backstops the dedup check: re-ingesting a seen message is a
// no-op (INSERT OR IGNORE), never a duplicate row.
func CreateInboundEmail(db *sql.DB, email *models.InboundEmail) error {
	email.ID = uuid.New()
	now := time.Now()
	email.CreatedAt = now
	email.UpdatedAt = now

	toJSON, err := json.Marshal(email.To)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}

	ccJSON := marshalOrNil(email.Cc)
	bccJSON := marshalOrNil(email.Bcc)
	attachmentsJSON := marshalOrNil(email.Attachments)
	labelsJSON := marshalOrNil(email.Labels)

	_, err = db.Exec(`
		INSERT OR IGNORE INTO inbound_emails (id, message_id, thread_id, from_email, from_name, to_json, cc_json, bcc_json, subject, body_text, body_html, attachments_json, received_at, read, processed, labels_json, snippet, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, email.ID.String(), email.MessageID, email.ThreadID, email.From.Email, email.From.Name, string(toJSON), ccJSON, bccJSON,
		email.Subject, email.Body.Text, email.Body.HTML, attachmentsJSON, email.ReceivedAt, email.Read, email.Processed,
		labelsJSON, email.Snippet, email.CreatedAt, email.UpdatedAt)

	return err
}

// InboundEmailExists is a point lookup by the external message identifier.
func InboundEmailExists(db *sql.DB, messageID string) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM inbound_emails WHERE message_id = ?
	`, messageID).Scan(&count)

	if err != nil {
		return false, fmt.Errorf("failed to check inbound email: %w", err)
	}

	return count > 0, nil
}

func GetInboundEmailByMessageID(db *sql.DB, messageID string) (*models.InboundEmail, error) {
	email := &models.InboundEmail{}
	var toJSON string
	var ccJSON, bccJSON, attachmentsJSON, labelsJSON sql.NullString

	err := db.QueryRow(`
		SELECT id, message_id, thread_id, from_email, from_name, to_json, cc_json, bcc_json, subject, body_text, body_html, attachments_json, received_at, read, processed, labels_json, snippet, created_at, updated_at
		FROM inbound_emails WHERE message_id = ?
	`, messageID).Scan(
		&email.ID,
		&email.MessageID,
		&email.ThreadID,
		&email.From.Email,
		&email.From.Name,
		&toJSON,
		&ccJSON,
		&bccJSON,
		&email.Subject,
		&email.Body.Text,
		&email.Body.HTML,
		&attachmentsJSON,
		&email.ReceivedAt,
		&email.Read,
		&email.Processed,
		&labelsJSON,
		&email.Snippet,
		&email.CreatedAt,
		&email.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(toJSON), &email.To); err != nil {
		return nil, fmt.Errorf("failed to decode recipients: %w", err)
	}
	unmarshalIfValid(ccJSON, &email.Cc)
	unmarshalIfValid(bccJSON, &email.Bcc)
	unmarshalIfValid(attachmentsJSON, &email.Attachments)
	unmarshalIfValid(labelsJSON, &email.Labels)

	return email, nil
}

func MarkInboundEmailProcessed(db *sql.DB, messageID string) error {
	_, err := db.Exec(`
		UPDATE inbound_emails SET processed = 1, updated_at = ? WHERE message_id = ?
	`, time.Now(), messageID)
	return err
}

func CountInboundEmails(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM inbound_emails`).Scan(&count)
	return count, err
}

func marshalOrNil(v any) *string {
	switch val := v.(type) {
	case []models.EmailAddress:
		if len(val) == 0 {
			return nil
		}
	case []models.EmailAttachment:
		if len(val) == 0 {
			return nil
		}
	case []string:
		if len(val) == 0 {
			return nil
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func unmarshalIfValid[T any](v sql.NullString, dest *T) {
	if v.Valid {
		_ = json.Unmarshal([]byte(v.String), dest)
	}
}
