// ABOUTME: Opportunity database operations
// ABOUTME: Handles opportunity lifecycle and normalized-name lookups
package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmflow/models"
)

func CreateOpportunity(db *sql.DB, opp *models.Opportunity) error {
	opp.ID = uuid.New()
	now := time.Now()
	opp.CreatedAt = now
	opp.UpdatedAt = now

	if opp.Stage == "" {
		opp.Stage = models.StageNew
	}

	_, err := db.Exec(`
		INSERT INTO opportunities (id, name, account_id, amount, stage, probability, expected_close_date, owner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, opp.ID.String(), opp.Name, uuidPtrString(opp.AccountID), opp.Amount, opp.Stage, opp.Probability, opp.ExpectedCloseDate,
		opp.Owner.String(), opp.CreatedAt, opp.UpdatedAt)

	return err
}

func GetOpportunity(db *sql.DB, id uuid.UUID) (*models.Opportunity, error) {
	return scanOpportunity(db.QueryRow(`
		SELECT id, name, account_id, amount, stage, probability, expected_close_date, owner, created_at, updated_at
		FROM opportunities WHERE id = ?
	`, id.String()))
}

// FindOpportunityByName matches the full name, case-insensitive and
// whitespace-trimmed. Returns nil without error when no opportunity matches.
func FindOpportunityByName(db *sql.DB, name string) (*models.Opportunity, error) {
	return scanOpportunity(db.QueryRow(`
		SELECT id, name, account_id, amount, stage, probability, expected_close_date, owner, created_at, updated_at
		FROM opportunities WHERE LOWER(TRIM(name)) = ?
	`, strings.ToLower(strings.TrimSpace(name))))
}

func UpdateOpportunity(db *sql.DB, opp *models.Opportunity) error {
	opp.UpdatedAt = time.Now()

	_, err := db.Exec(`
		UPDATE opportunities
		SET name = ?, account_id = ?, amount = ?, stage = ?, probability = ?, expected_close_date = ?, owner = ?, updated_at = ?
		WHERE id = ?
	`, opp.Name, uuidPtrString(opp.AccountID), opp.Amount, opp.Stage, opp.Probability, opp.ExpectedCloseDate,
		opp.Owner.String(), opp.UpdatedAt, opp.ID.String())

	return err
}

func ListOpportunities(db *sql.DB, stage string, accountID *uuid.UUID, limit int) ([]models.Opportunity, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, account_id, amount, stage, probability, expected_close_date, owner, created_at, updated_at
		FROM opportunities`
	var conditions []string
	var args []any

	if stage != "" {
		conditions = append(conditions, "stage = ?")
		args = append(args, stage)
	}
	if accountID != nil {
		conditions = append(conditions, "account_id = ?")
		args = append(args, accountID.String())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		var o models.Opportunity
		var accountID sql.NullString
		var amount, probability sql.NullFloat64
		var closeDate sql.NullTime
		var owner string

		if err := rows.Scan(&o.ID, &o.Name, &accountID, &amount, &o.Stage, &probability, &closeDate, &owner, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}

		o.AccountID = parseUUIDPtr(accountID)
		if amount.Valid {
			o.Amount = &amount.Float64
		}
		if probability.Valid {
			o.Probability = &probability.Float64
		}
		if closeDate.Valid {
			o.ExpectedCloseDate = &closeDate.Time
		}
		if id, err := uuid.Parse(owner); err == nil {
			o.Owner = id
		}

		opps = append(opps, o)
	}

	return opps, rows.Err()
}

func scanOpportunity(row *sql.Row) (*models.Opportunity, error) {
	opp := &models.Opportunity{}
	var accountID sql.NullString
	var amount, probability sql.NullFloat64
	var closeDate sql.NullTime
	var owner string

	err := row.Scan(
		&opp.ID,
		&opp.Name,
		&accountID,
		&amount,
		&opp.Stage,
		&probability,
		&closeDate,
		&owner,
		&opp.CreatedAt,
		&opp.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	opp.AccountID = parseUUIDPtr(accountID)
	if amount.Valid {
		opp.Amount = &amount.Float64
	}
	if probability.Valid {
		opp.Probability = &probability.Float64
	}
	if closeDate.Valid {
		opp.ExpectedCloseDate = &closeDate.Time
	}
	if id, err := uuid.Parse(owner); err == nil {
		opp.Owner = id
	}

	return opp, nil
}
