// ABOUTME: Account database operations
// ABOUTME: Handles CRUD operations and normalized-name account lookups
package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmflow/models"
)

func CreateAccount(db *sql.DB, account *models.Account) error {
	account.ID = uuid.New()
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if account.Status == "" {
		account.Status = models.StatusActive
	}

	_, err := db.Exec(`
		INSERT INTO accounts (id, name, status, website, industry, phone, email, description, assigned_to, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, account.ID.String(), account.Name, account.Status, account.Website, account.Industry, account.Phone, account.Email, account.Description,
		uuidPtrString(account.AssignedTo), uuidPtrString(account.CreatedBy), account.CreatedAt, account.UpdatedAt)

	return err
}

func GetAccount(db *sql.DB, id uuid.UUID) (*models.Account, error) {
	return scanAccount(db.QueryRow(`
		SELECT id, name, status, website, industry, phone, email, description, assigned_to, created_by, created_at, updated_at
		FROM accounts WHERE id = ?
	`, id.String()))
}

// FindAccountByName matches the full name, case-insensitive and
// whitespace-trimmed. Returns nil without error when no account matches.
func FindAccountByName(db *sql.DB, name string) (*models.Account, error) {
	return scanAccount(db.QueryRow(`
		SELECT id, name, status, website, industry, phone, email, description, assigned_to, created_by, created_at, updated_at
		FROM accounts WHERE LOWER(TRIM(name)) = ?
	`, strings.ToLower(strings.TrimSpace(name))))
}

func UpdateAccount(db *sql.DB, account *models.Account) error {
	account.UpdatedAt = time.Now()

	_, err := db.Exec(`
		UPDATE accounts
		SET name = ?, status = ?, website = ?, industry = ?, phone = ?, email = ?, description = ?, assigned_to = ?, updated_at = ?
		WHERE id = ?
	`, account.Name, account.Status, account.Website, account.Industry, account.Phone, account.Email, account.Description,
		uuidPtrString(account.AssignedTo), account.UpdatedAt, account.ID.String())

	return err
}

func ListAccounts(db *sql.DB, limit int) ([]models.Account, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, name, status, website, industry, phone, email, description, assigned_to, created_by, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		var assignedTo, createdBy sql.NullString

		if err := rows.Scan(&a.ID, &a.Name, &a.Status, &a.Website, &a.Industry, &a.Phone, &a.Email, &a.Description, &assignedTo, &createdBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}

		a.AssignedTo = parseUUIDPtr(assignedTo)
		a.CreatedBy = parseUUIDPtr(createdBy)
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var assignedTo, createdBy sql.NullString

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Status,
		&account.Website,
		&account.Industry,
		&account.Phone,
		&account.Email,
		&account.Description,
		&assignedTo,
		&createdBy,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	account.AssignedTo = parseUUIDPtr(assignedTo)
	account.CreatedBy = parseUUIDPtr(createdBy)

	return account, nil
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseUUIDPtr(v sql.NullString) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id, err := uuid.Parse(v.String)
	if err != nil {
		return nil
	}
	return &id
}
