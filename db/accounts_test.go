// ABOUTME: Tests for account database operations
// ABOUTME: Covers normalized-name lookups and store-level name uniqueness
package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/crmflow/models"
)

func TestCreateAccount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{
		Name:     "Acme Corp",
		Industry: "Manufacturing",
	}

	if err := CreateAccount(db, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if account.ID == uuid.Nil {
		t.Error("Account ID was not set")
	}

	if account.Status != models.StatusActive {
		t.Errorf("Expected default status %q, got %q", models.StatusActive, account.Status)
	}
}

func TestFindAccountByNameNormalized(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{Name: "Acme Corp"}
	if err := CreateAccount(db, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// Case and whitespace variants must resolve to the same row
	for _, variant := range []string{"Acme Corp", "acme corp", "  ACME CORP  "} {
		found, err := FindAccountByName(db, variant)
		if err != nil {
			t.Fatalf("FindAccountByName(%q) failed: %v", variant, err)
		}
		if found == nil {
			t.Fatalf("FindAccountByName(%q) found nothing", variant)
		}
		if found.ID != account.ID {
			t.Errorf("FindAccountByName(%q) returned wrong account", variant)
		}
	}

	// An unknown name returns nil without error
	missing, err := FindAccountByName(db, "Globex")
	if err != nil {
		t.Fatalf("FindAccountByName failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown account name")
	}
}

func TestAccountNameUniqueness(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first := &models.Account{Name: "Acme Corp"}
	if err := CreateAccount(db, first); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// A case/whitespace variant of an existing name must be rejected by the store
	duplicate := &models.Account{Name: "  acme corp  "}
	if err := CreateAccount(db, duplicate); err == nil {
		t.Error("Expected unique constraint violation for duplicate normalized name")
	}
}

func TestUpdateAccount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{Name: "Acme Corp"}
	if err := CreateAccount(db, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	account.Website = "https://acme.example"
	account.Description = "Rebuilt description"

	if err := UpdateAccount(db, account); err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}

	found, err := GetAccount(db, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if found.Website != "https://acme.example" {
		t.Errorf("Expected updated website, got %q", found.Website)
	}
	if found.Description != "Rebuilt description" {
		t.Errorf("Expected updated description, got %q", found.Description)
	}
}
