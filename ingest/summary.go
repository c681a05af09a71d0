// ABOUTME: Run summary counters shared by the ingestion orchestrators
// ABOUTME: Tracks created, updated, skipped, and failed units per batch
package ingest

import (
	"fmt"
	"sync"
)

// RunSummary accumulates per-unit outcomes for one batch. Individual
// failures are logged as they happen; the summary is the only interactive
// surface at run end.
type RunSummary struct {
	mu      sync.Mutex
	Created int
	Updated int
	Skipped int
	Failed  int
}

func (s *RunSummary) addCreated() { s.mu.Lock(); s.Created++; s.mu.Unlock() }
func (s *RunSummary) addUpdated() { s.mu.Lock(); s.Updated++; s.mu.Unlock() }
func (s *RunSummary) addSkipped() { s.mu.Lock(); s.Skipped++; s.mu.Unlock() }
func (s *RunSummary) addFailed()  { s.mu.Lock(); s.Failed++; s.mu.Unlock() }

// Print writes the run-end summary in the usual arrow/check style.
func (s *RunSummary) Print() {
	fmt.Printf("\n  ✓ Created %d, updated %d, skipped %d, failed %d\n", s.Created, s.Updated, s.Skipped, s.Failed)
}
