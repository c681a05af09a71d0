// ABOUTME: Ingestion CLI commands
// ABOUTME: Drives spreadsheet and mail ingestion runs from the command line
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/crmflow/ingest"
)

// IngestSheetCommand ingests lead rows from a workbook. Usage:
// crmflow ingest sheet [-workers n] <file.xlsx> [default-owner]
func IngestSheetCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("sheet", flag.ExitOnError)
	workers := fs.Int("workers", ingest.DefaultSheetWorkers, "Concurrent row workers")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: crmflow ingest sheet [-workers n] <file.xlsx> [default-owner]")
	}

	path := fs.Arg(0)
	defaultOwner := fs.Arg(1)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	systemUser, err := ingest.EnsureSystemUser(database, os.Getenv("CRM_ORG_DOMAIN"))
	if err != nil {
		return fmt.Errorf("failed to ensure system user: %w", err)
	}

	identity := ingest.NewIdentityResolver(database, os.Getenv("CRM_ORG_DOMAIN"), systemUser)
	entities := ingest.NewEntityResolver(database, systemUser)
	importer := ingest.NewSheetImporter(database, identity, entities, defaultOwner, *workers)

	// Per-row failures are already counted in the summary; only systemic
	// failures propagate as an error and a nonzero exit.
	_, err = importer.Run(path)
	return err
}

// IngestMailCommand ingests inbound messages from the configured mailbox.
func IngestMailCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("mail", flag.ExitOnError)
	query := fs.String("query", "in:inbox", "Mail search query")
	max := fs.Int64("max", 50, "Maximum messages to ingest")
	_ = fs.Parse(args)

	ctx := context.Background()

	service, err := ingest.NewGmailService(ctx)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	selfEmail, err := ingest.Profile(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to get mailbox profile: %w", err)
	}

	systemUser, err := ingest.EnsureSystemUser(database, os.Getenv("CRM_ORG_DOMAIN"))
	if err != nil {
		return fmt.Errorf("failed to ensure system user: %w", err)
	}

	importer := ingest.NewMailImporter(database, ingest.NewGmailSource(service), selfEmail, systemUser)

	_, err = importer.Run(ctx, *query, *max)
	return err
}
