// ABOUTME: Tests for contact database operations
// ABOUTME: Covers point lookups, case-insensitive email matching, and updates
package db

import (
	"testing"

	"github.com/harperreed/crmflow/models"
)

func TestGetContact(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{Name: "Acme Corp"}
	if err := CreateAccount(db, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	contact := &models.Contact{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@acme.example",
		Title:     "VP Sales",
		AccountID: &account.ID,
	}
	if err := CreateContact(db, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	found, err := GetContact(db, contact.ID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if found == nil {
		t.Fatal("Contact not found by id")
	}
	if found.Email != "jane@acme.example" || found.Title != "VP Sales" {
		t.Errorf("Contact fields wrong: %+v", found)
	}
	if found.AccountID == nil || *found.AccountID != account.ID {
		t.Error("Account link did not round-trip")
	}
}

func TestFindContactByEmailCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	contact := &models.Contact{FirstName: "Jane", Email: "Jane@Acme.example"}
	if err := CreateContact(db, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	found, err := FindContactByEmail(db, "JANE@ACME.EXAMPLE")
	if err != nil {
		t.Fatalf("FindContactByEmail failed: %v", err)
	}
	if found == nil || found.ID != contact.ID {
		t.Error("Case-variant email lookup did not find the contact")
	}

	missing, err := FindContactByEmail(db, "nobody@acme.example")
	if err != nil {
		t.Fatalf("FindContactByEmail failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown contact email")
	}
}

func TestUpdateContact(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	contact := &models.Contact{FirstName: "Jane", Email: "jane@acme.example"}
	if err := CreateContact(db, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	contact.Title = "CRO"
	contact.Phone = "555-0100"
	if err := UpdateContact(db, contact); err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}

	found, err := GetContact(db, contact.ID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if found.Title != "CRO" || found.Phone != "555-0100" {
		t.Errorf("Update did not persist: %+v", found)
	}
}
