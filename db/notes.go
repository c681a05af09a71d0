// ABOUTME: Note database operations
// ABOUTME: Handles note creation with single-parent link enforcement
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmflow/models"
)

func CreateNote(db *sql.DB, note *models.Note) error {
	links := 0
	for _, id := range []*uuid.UUID{note.AccountID, note.ContactID, note.OpportunityID} {
		if id != nil {
			links++
		}
	}
	if links > 1 {
		return fmt.Errorf("note may link to at most one parent record")
	}

	note.ID = uuid.New()
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	if note.Source == "" {
		note.Source = models.NoteSourceManual
	}

	_, err := db.Exec(`
		INSERT INTO notes (id, content, account_id, contact_id, opportunity_id, is_private, created_by, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID.String(), note.Content, uuidPtrString(note.AccountID), uuidPtrString(note.ContactID), uuidPtrString(note.OpportunityID),
		note.IsPrivate, uuidPtrString(note.CreatedBy), note.Source, note.CreatedAt, note.UpdatedAt)

	return err
}

func GetNotesForContact(db *sql.DB, contactID uuid.UUID) ([]models.Note, error) {
	return queryNotes(db, "contact_id", contactID)
}

func GetNotesForAccount(db *sql.DB, accountID uuid.UUID) ([]models.Note, error) {
	return queryNotes(db, "account_id", accountID)
}

func GetNotesForOpportunity(db *sql.DB, opportunityID uuid.UUID) ([]models.Note, error) {
	return queryNotes(db, "opportunity_id", opportunityID)
}

func queryNotes(db *sql.DB, column string, parentID uuid.UUID) ([]models.Note, error) {
	rows, err := db.Query(`
		SELECT id, content, account_id, contact_id, opportunity_id, is_private, created_by, source, created_at, updated_at
		FROM notes
		WHERE `+column+` = ?
		ORDER BY created_at DESC
	`, parentID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var accountID, contactID, opportunityID, createdBy sql.NullString

		if err := rows.Scan(&n.ID, &n.Content, &accountID, &contactID, &opportunityID, &n.IsPrivate, &createdBy, &n.Source, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}

		n.AccountID = parseUUIDPtr(accountID)
		n.ContactID = parseUUIDPtr(contactID)
		n.OpportunityID = parseUUIDPtr(opportunityID)
		n.CreatedBy = parseUUIDPtr(createdBy)
		notes = append(notes, n)
	}

	return notes, rows.Err()
}
