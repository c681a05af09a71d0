// ABOUTME: Contact database operations
// ABOUTME: Handles contact creation and email-based lookups for mail ingestion
package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmflow/models"
)

func CreateContact(db *sql.DB, contact *models.Contact) error {
	contact.ID = uuid.New()
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO contacts (id, first_name, last_name, email, phone, title, account_id, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID.String(), contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Title,
		uuidPtrString(contact.AccountID), uuidPtrString(contact.CreatedBy), contact.CreatedAt, contact.UpdatedAt)

	return err
}

func GetContact(db *sql.DB, id uuid.UUID) (*models.Contact, error) {
	return scanContact(db.QueryRow(`
		SELECT id, first_name, last_name, email, phone, title, account_id, created_by, created_at, updated_at
		FROM contacts WHERE id = ?
	`, id.String()))
}

// FindContactByEmail matches case-insensitively. Returns nil without error
// when no contact matches.
func FindContactByEmail(db *sql.DB, email string) (*models.Contact, error) {
	return scanContact(db.QueryRow(`
		SELECT id, first_name, last_name, email, phone, title, account_id, created_by, created_at, updated_at
		FROM contacts WHERE LOWER(email) = ?
	`, strings.ToLower(strings.TrimSpace(email))))
}

func UpdateContact(db *sql.DB, contact *models.Contact) error {
	contact.UpdatedAt = time.Now()

	_, err := db.Exec(`
		UPDATE contacts
		SET first_name = ?, last_name = ?, email = ?, phone = ?, title = ?, account_id = ?, updated_at = ?
		WHERE id = ?
	`, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Title,
		uuidPtrString(contact.AccountID), contact.UpdatedAt, contact.ID.String())

	return err
}

func scanContact(row *sql.Row) (*models.Contact, error) {
	contact := &models.Contact{}
	var accountID, createdBy sql.NullString

	err := row.Scan(
		&contact.ID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Phone,
		&contact.Title,
		&accountID,
		&createdBy,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	contact.AccountID = parseUUIDPtr(accountID)
	contact.CreatedBy = parseUUIDPtr(createdBy)

	return contact, nil
}
