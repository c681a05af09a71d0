// ABOUTME: Entry point for the CRM ingestion CLI
// ABOUTME: Routes to ingestion and auth commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/harperreed/crmflow/cli"
	"github.com/harperreed/crmflow/db"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/crmflow/crm.db)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	// Handle version flag
	if *showVersion {
		fmt.Printf("crmflow version %s\n", version)
		os.Exit(0)
	}

	// Local overrides for credentials and target paths
	_ = godotenv.Load()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "auth":
		if len(commandArgs) == 0 || commandArgs[0] != "init" {
			fmt.Println("Error: auth requires the 'init' subcommand")
			printUsage()
			os.Exit(1)
		}
		if err := cli.AuthInitCommand(commandArgs[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "ingest":
		finalDBPath := getDatabasePath(*dbPath)
		database, err := db.OpenDatabase(finalDBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		log.Printf("CRM database: %s", finalDBPath)

		if len(commandArgs) == 0 {
			fmt.Println("Error: ingest requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		ingestCommand := commandArgs[0]
		ingestArgs := commandArgs[1:]

		switch ingestCommand {
		case "sheet":
			if err := cli.IngestSheetCommand(database, ingestArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "mail":
			if err := cli.IngestMailCommand(database, ingestArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown ingest command: %s\n\n", ingestCommand)
			printUsage()
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return db.DefaultPath()
}

func printUsage() {
	fmt.Printf(`crmflow v%s - CRM ingestion pipeline

USAGE:
  crmflow [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/crmflow/crm.db)

COMMANDS:
  auth init              Run the Google OAuth setup flow
  ingest sheet           Ingest lead rows from a workbook
  ingest mail            Ingest inbound messages from the configured mailbox

INGEST COMMANDS:
  crmflow ingest sheet [-workers n] <file.xlsx> [default-owner]
    -workers <n>            Concurrent row workers (default: 4)
    <file.xlsx>             Workbook path (required, first sheet is read)
    [default-owner]         Owner for rows without an Owner column

  crmflow ingest mail [flags]
    -query <q>              Mail search query (default: in:inbox)
    -max <n>                Maximum messages to ingest (default: 50)

ENVIRONMENT:
  CRM_DB_PATH                  Database path override
  CRM_ORG_DOMAIN               Domain for synthesized user addresses
  GOOGLE_CLIENT_ID             OAuth client id (with GOOGLE_CLIENT_SECRET)
  GOOGLE_CLIENT_SECRET         OAuth client secret
  GOOGLE_SERVICE_ACCOUNT_FILE  Service account JSON (instead of OAuth)
  GOOGLE_IMPERSONATE_SUBJECT   Mailbox to impersonate with a service account

EXAMPLES:
  # Authenticate against Google
  crmflow auth init

  # Import a lead sheet, assigning unowned rows to Jane Doe
  crmflow ingest sheet leads.xlsx "Jane Doe"

  # Ingest the 100 most recent inbox messages
  crmflow ingest mail -max 100

`, version)
}
