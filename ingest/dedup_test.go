// ABOUTME: Tests for duplicate message suppression
// ABOUTME: Covers the unseen-to-seen transition after persistence
package ingest

import (
	"testing"
	"time"

	"github.com/harperreed/crmflow/db"
	"github.com/harperreed/crmflow/models"
)

func TestDeduplicatorExists(t *testing.T) {
	database := openTestDB(t)
	dedup := NewDeduplicator(database)

	if dedup.Exists("msg-1") {
		t.Error("Expected unseen message before ingestion")
	}

	email := &models.InboundEmail{
		MessageID:  "msg-1",
		From:       models.EmailAddress{Email: "jane@acme.example"},
		ReceivedAt: time.Now(),
	}
	if err := db.CreateInboundEmail(database, email); err != nil {
		t.Fatalf("CreateInboundEmail failed: %v", err)
	}

	if !dedup.Exists("msg-1") {
		t.Error("Expected seen message after ingestion")
	}
	if dedup.Exists("msg-2") {
		t.Error("Unrelated message id reported as seen")
	}
}
