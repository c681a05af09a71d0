// ABOUTME: Account and opportunity find-or-create resolution
// ABOUTME: Exact normalized-name matching with overwrite-if-present merge on update
package ingest

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/crmflow/db"
	"github.com/harperreed/crmflow/models"
)

// descriptionLabel prefixes the first line of a rebuilt description.
const descriptionLabel = "Latest: "

// EntityResolver finds or creates accounts and opportunities by natural key.
// Matching is exact against the trimmed, case-folded full name; no
// edit-distance similarity is applied in the ingestion paths (a similarity
// threshold exists elsewhere in the product for smart routing, not here).
type EntityResolver struct {
	db        *sql.DB
	createdBy uuid.UUID
}

func NewEntityResolver(database *sql.DB, createdBy uuid.UUID) *EntityResolver {
	return &EntityResolver{db: database, createdBy: createdBy}
}

// ResolveAccount returns the id of the account matching the input's name,
// creating it when absent. On a match during sheet ingestion, optional
// fields present on the input overwrite the stored values; absent fields
// are left untouched. A rebuilt description replaces the prior one verbatim.
func (r *EntityResolver) ResolveAccount(in *AccountInput) (uuid.UUID, bool, error) {
	existing, err := db.FindAccountByName(r.db, in.Name)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up account: %w", err)
	}

	if existing != nil {
		if err := r.mergeAccount(existing, in); err != nil {
			return uuid.Nil, false, err
		}
		return existing.ID, false, nil
	}

	account := &models.Account{
		Name:        strings.TrimSpace(in.Name),
		Status:      models.StatusActive,
		Website:     in.Website,
		Industry:    in.Industry,
		Phone:       in.Phone,
		Email:       in.Email,
		Description: RebuildDescription(in),
		CreatedBy:   &r.createdBy,
	}

	if err := db.CreateAccount(r.db, account); err != nil {
		// Unique-name race with a concurrent run; adopt the winner's row.
		winner, findErr := db.FindAccountByName(r.db, in.Name)
		if findErr == nil && winner != nil {
			return winner.ID, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to create account: %w", err)
	}

	return account.ID, true, nil
}

func (r *EntityResolver) mergeAccount(existing *models.Account, in *AccountInput) error {
	updated := false

	if in.Website != "" && in.Website != existing.Website {
		existing.Website = in.Website
		updated = true
	}
	if in.Industry != "" && in.Industry != existing.Industry {
		existing.Industry = in.Industry
		updated = true
	}
	if in.Phone != "" && in.Phone != existing.Phone {
		existing.Phone = in.Phone
		updated = true
	}
	if in.Email != "" && in.Email != existing.Email {
		existing.Email = in.Email
		updated = true
	}

	if desc := RebuildDescription(in); desc != "" && desc != existing.Description {
		existing.Description = desc
		updated = true
	}

	if !updated {
		return nil
	}

	if err := db.UpdateAccount(r.db, existing); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// ResolveOpportunity returns the id of the opportunity matching the input's
// name, creating it when absent. On a match the input's present fields
// overwrite the stored values; a populated scalar is never reverted by a row
// lacking that value, and ownership is never reassigned by a merge.
func (r *EntityResolver) ResolveOpportunity(in *OpportunityInput, accountID *uuid.UUID, owner uuid.UUID) (uuid.UUID, bool, error) {
	existing, err := db.FindOpportunityByName(r.db, in.Name)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up opportunity: %w", err)
	}

	if existing != nil {
		if err := r.mergeOpportunity(existing, in, accountID); err != nil {
			return uuid.Nil, false, err
		}
		return existing.ID, false, nil
	}

	stage := in.Stage
	if stage == "" {
		stage = models.StageNew
	}

	opp := &models.Opportunity{
		Name:              strings.TrimSpace(in.Name),
		AccountID:         accountID,
		Amount:            in.Amount,
		Stage:             stage,
		Probability:       in.Probability,
		ExpectedCloseDate: in.ExpectedCloseDate,
		Owner:             owner,
	}

	if err := db.CreateOpportunity(r.db, opp); err != nil {
		winner, findErr := db.FindOpportunityByName(r.db, in.Name)
		if findErr == nil && winner != nil {
			return winner.ID, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to create opportunity: %w", err)
	}

	return opp.ID, true, nil
}

func (r *EntityResolver) mergeOpportunity(existing *models.Opportunity, in *OpportunityInput, accountID *uuid.UUID) error {
	updated := false

	if in.Amount != nil {
		existing.Amount = in.Amount
		updated = true
	}
	if in.Stage != "" && in.Stage != existing.Stage {
		existing.Stage = in.Stage
		updated = true
	}
	if in.Probability != nil {
		existing.Probability = in.Probability
		updated = true
	}
	if in.ExpectedCloseDate != nil {
		existing.ExpectedCloseDate = in.ExpectedCloseDate
		updated = true
	}
	if accountID != nil && existing.AccountID == nil {
		existing.AccountID = accountID
		updated = true
	}

	if !updated {
		return nil
	}

	if err := db.UpdateOpportunity(r.db, existing); err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}
	return nil
}

// RebuildDescription renders the fixed description template from structured
// fields: the last qualifying-question response with its label, a blank
// line, a "Company: " line joining present attributes, then one "CQn: " line
// per present response. The result replaces any prior description verbatim.
// Returns "" when no structured fields are present.
func RebuildDescription(in *AccountInput) string {
	lastResponse := ""
	for _, response := range in.Responses {
		if response != "" {
			lastResponse = response
		}
	}

	var companyAttrs []string
	for _, attr := range []string{in.Name, in.Size, in.Revenue, in.Industry} {
		if attr != "" {
			companyAttrs = append(companyAttrs, attr)
		}
	}

	hasResponses := lastResponse != ""
	if !hasResponses && len(companyAttrs) == 0 {
		return ""
	}

	var lines []string
	if hasResponses {
		lines = append(lines, descriptionLabel+lastResponse, "")
	}
	if len(companyAttrs) > 0 {
		lines = append(lines, "Company: "+strings.Join(companyAttrs, ", "))
	}
	for i, response := range in.Responses {
		if response != "" {
			lines = append(lines, fmt.Sprintf("CQ%d: %s", i+1, response))
		}
	}

	return strings.Join(lines, "\n")
}
