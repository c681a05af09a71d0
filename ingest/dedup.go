// ABOUTME: Duplicate suppression for previously ingested messages
// ABOUTME: Point lookup by external message id, degrading to "not seen" on error
package ingest

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/crmflow/db"
)

type Deduplicator struct {
	db *sql.DB
}

func NewDeduplicator(database *sql.DB) *Deduplicator {
	return &Deduplicator{db: database}
}

// Exists reports whether a message with this external id was already
// ingested. A lookup failure reads as "not yet ingested": skipping on
// uncertainty could lose an unseen message, while re-ingesting a seen one is
// caught again by the unique message_id constraint on the write.
func (d *Deduplicator) Exists(messageID string) bool {
	exists, err := db.InboundEmailExists(d.db, messageID)
	if err != nil {
		fmt.Printf("  ✗ Dedup lookup failed for message %s, treating as new: %v\n", messageID, err)
		return false
	}
	return exists
}
