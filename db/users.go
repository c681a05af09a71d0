// ABOUTME: User database operations
// ABOUTME: Handles user creation and case-insensitive email and name lookups
package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmflow/models"
)

func CreateUser(db *sql.DB, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	_, err := db.Exec(`
		INSERT INTO users (id, email, display_name, first_name, last_name, role, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID.String(), user.Email, user.DisplayName, user.FirstName, user.LastName, user.Role, user.Password, user.CreatedAt, user.UpdatedAt)

	return err
}

func GetUser(db *sql.DB, id uuid.UUID) (*models.User, error) {
	return scanUser(db.QueryRow(`
		SELECT id, email, display_name, first_name, last_name, role, password, created_at, updated_at
		FROM users WHERE id = ?
	`, id.String()))
}

// FindUserByEmail matches case-insensitively. Returns nil without error when
// no user matches.
func FindUserByEmail(db *sql.DB, email string) (*models.User, error) {
	return scanUser(db.QueryRow(`
		SELECT id, email, display_name, first_name, last_name, role, password, created_at, updated_at
		FROM users WHERE LOWER(email) = ?
	`, strings.ToLower(strings.TrimSpace(email))))
}

// ListUsers returns all users ordered by creation time. The identity resolver
// scans this set for display-name matches, so it must observe writes made
// earlier in the same run.
func ListUsers(db *sql.DB) ([]models.User, error) {
	rows, err := db.Query(`
		SELECT id, email, display_name, first_name, last_name, role, password, created_at, updated_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.FirstName, &u.LastName, &u.Role, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
