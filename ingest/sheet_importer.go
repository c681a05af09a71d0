// ABOUTME: Spreadsheet ingestion orchestrator
// ABOUTME: Reads lead rows, normalizes fields, and resolves entities through a bounded pool
package ingest

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultSheetWorkers bounds concurrent row processing.
const DefaultSheetWorkers = 4

// SheetImporter drives one ingestion run over a workbook. Rows run through a
// bounded worker pool; a unit failure is counted and logged, never returned,
// so one bad row cannot abort the batch. Only systemic failures (missing
// file, unreadable workbook) abort the run.
type SheetImporter struct {
	db           *sql.DB
	identity     *IdentityResolver
	entities     *EntityResolver
	defaultOwner string
	workers      int
}

func NewSheetImporter(database *sql.DB, identity *IdentityResolver, entities *EntityResolver, defaultOwner string, workers int) *SheetImporter {
	if workers <= 0 {
		workers = DefaultSheetWorkers
	}
	return &SheetImporter{
		db:           database,
		identity:     identity,
		entities:     entities,
		defaultOwner: defaultOwner,
		workers:      workers,
	}
}

// Run ingests the first sheet of the workbook at path. Row 1 is the header
// row; remaining rows are units of work.
func (s *SheetImporter) Run(path string) (*RunSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheets[0])
	}

	headers := rows[0]
	fmt.Printf("Ingesting %d rows from %s...\n", len(rows)-1, path)

	summary := &RunSummary{}
	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, cells := range rows[1:] {
		rowIndex := i + 2 // 1-based, after the header row
		row := rowRecord(headers, cells)

		g.Go(func() error {
			s.processRow(rowIndex, row, summary)
			return nil
		})
	}

	_ = g.Wait()

	summary.Print()
	return summary, nil
}

func (s *SheetImporter) processRow(rowIndex int, row Row, summary *RunSummary) {
	if len(row) == 0 {
		summary.addSkipped()
		return
	}

	lead, err := ParseLeadRow(row)
	if err != nil {
		fmt.Printf("  ✗ Row %d: %v\n", rowIndex, err)
		summary.addFailed()
		return
	}

	ownerName := lead.OwnerName
	if ownerName == "" && lead.OwnerEmail == "" {
		ownerName = s.defaultOwner
	}
	owner := s.identity.Resolve(ownerName, lead.OwnerEmail)

	createdAny := false

	var accountID *uuid.UUID
	if lead.Account != nil {
		id, created, err := s.entities.ResolveAccount(lead.Account)
		if err != nil {
			fmt.Printf("  ✗ Row %d: %v\n", rowIndex, err)
			summary.addFailed()
			return
		}
		accountID = &id
		createdAny = createdAny || created
	}

	if lead.Opportunity != nil {
		_, created, err := s.entities.ResolveOpportunity(lead.Opportunity, accountID, owner)
		if err != nil {
			fmt.Printf("  ✗ Row %d: %v\n", rowIndex, err)
			summary.addFailed()
			return
		}
		createdAny = createdAny || created
	}

	if createdAny {
		summary.addCreated()
	} else {
		summary.addUpdated()
	}
}

// rowRecord maps header text to typed cell values. Cells that parse cleanly
// as numbers become float64 so the normalizers can apply serial-date and
// verbatim-amount semantics; everything else stays a string.
func rowRecord(headers []string, cells []string) Row {
	row := make(Row)
	for i, header := range headers {
		if header == "" || i >= len(cells) {
			continue
		}
		value := strings.TrimSpace(cells[i])
		if value == "" {
			continue
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil && isFinite(f) {
			row[header] = f
		} else {
			row[header] = value
		}
	}
	return row
}
