// ABOUTME: Tests for the spreadsheet ingestion orchestrator
// ABOUTME: Covers end-to-end row processing, merges across rows, and row-failure isolation
package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/harperreed/crmflow/db"
	"github.com/harperreed/crmflow/models"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSheetImporterRun(t *testing.T) {
	database := openTestDB(t)
	identity, systemID := newTestIdentityResolver(t, database)
	entities := NewEntityResolver(database, systemID)
	importer := NewSheetImporter(database, identity, entities, "", 1)

	path := writeWorkbook(t, [][]any{
		{"Company", "Opportunity", "Amount", "Stage", "Probability", "Owner", "Industry"},
		{"Acme", "Acme Renewal", "$5,000", "Proposal", "75%", "Jane Doe", "Manufacturing"},
	})

	summary, err := importer.Run(path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Failed)

	account, err := db.FindAccountByName(database, "Acme")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "Manufacturing", account.Industry)

	opp, err := db.FindOpportunityByName(database, "Acme Renewal")
	require.NoError(t, err)
	require.NotNil(t, opp)
	require.NotNil(t, opp.Amount)
	assert.Equal(t, 5000.0, *opp.Amount)
	assert.Equal(t, models.StageProposal, opp.Stage)
	require.NotNil(t, opp.Probability)
	assert.Equal(t, 75.0, *opp.Probability)
	require.NotNil(t, opp.AccountID)
	assert.Equal(t, account.ID, *opp.AccountID)

	owner, err := db.FindUserByEmail(database, "jane.doe@pipeline.local")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, owner.ID, opp.Owner)
}

func TestSheetImporterMergesRepeatedRows(t *testing.T) {
	database := openTestDB(t)
	identity, systemID := newTestIdentityResolver(t, database)
	entities := NewEntityResolver(database, systemID)
	importer := NewSheetImporter(database, identity, entities, "", 1)

	path := writeWorkbook(t, [][]any{
		{"Company", "Opportunity", "Amount", "Stage", "Owner"},
		{"Acme", "Acme Renewal", "$5,000", "Proposal", "Jane Doe"},
		{"acme", "ACME RENEWAL", "$7,500", "", "Jane Doe"},
	})

	summary, err := importer.Run(path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)

	accounts, err := db.ListAccounts(database, 0)
	require.NoError(t, err)
	assert.Len(t, accounts, 1, "case-variant company names must not fork accounts")

	opp, err := db.FindOpportunityByName(database, "Acme Renewal")
	require.NoError(t, err)
	require.NotNil(t, opp)
	require.NotNil(t, opp.Amount)
	assert.Equal(t, 7500.0, *opp.Amount)
	// The second row had no stage, so the first row's stage survives
	assert.Equal(t, models.StageProposal, opp.Stage)

	users, err := db.ListUsers(database)
	require.NoError(t, err)
	assert.Len(t, users, 2, "repeated owner must resolve to one user plus system")
}

func TestSheetImporterRowFailureIsolation(t *testing.T) {
	database := openTestDB(t)
	identity, systemID := newTestIdentityResolver(t, database)
	entities := NewEntityResolver(database, systemID)
	importer := NewSheetImporter(database, identity, entities, "", 1)

	path := writeWorkbook(t, [][]any{
		{"Company", "Opportunity", "Owner"},
		{"", "", "Orphan Owner"},
		{"Globex", "Globex Pilot", "John Smith"},
	})

	summary, err := importer.Run(path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed, "nameless row fails its unit")
	assert.Equal(t, 1, summary.Created, "later rows survive a bad neighbor")

	account, err := db.FindAccountByName(database, "Globex")
	require.NoError(t, err)
	assert.NotNil(t, account)
}

func TestSheetImporterDefaultOwner(t *testing.T) {
	database := openTestDB(t)
	identity, systemID := newTestIdentityResolver(t, database)
	entities := NewEntityResolver(database, systemID)
	importer := NewSheetImporter(database, identity, entities, "Fallback Rep", 1)

	path := writeWorkbook(t, [][]any{
		{"Company", "Opportunity"},
		{"Acme", "Acme Renewal"},
	})

	_, err := importer.Run(path)
	require.NoError(t, err)

	opp, err := db.FindOpportunityByName(database, "Acme Renewal")
	require.NoError(t, err)
	require.NotNil(t, opp)

	owner, err := db.FindUserByEmail(database, "fallback.rep@pipeline.local")
	require.NoError(t, err)
	require.NotNil(t, owner, "ownerless rows go to the configured default owner")
	assert.Equal(t, owner.ID, opp.Owner)
}

func TestRowRecordCellTyping(t *testing.T) {
	row := rowRecord(
		[]string{"Company", "Amount", "Probability", "Close Date"},
		[]string{"Acme", "5000", "NaN", "+Inf"},
	)

	assert.Equal(t, "Acme", row["Company"])
	assert.Equal(t, 5000.0, row["Amount"])
	// Non-finite cell text stays a string and reads as absent downstream
	assert.Equal(t, "NaN", row["Probability"])
	assert.Equal(t, "+Inf", row["Close Date"])
	assert.Nil(t, NormalizeProbability(row["Probability"]))
	assert.Nil(t, NormalizeDate(row["Close Date"]))
}

func TestSheetImporterSystemicFailures(t *testing.T) {
	database := openTestDB(t)
	identity, systemID := newTestIdentityResolver(t, database)
	entities := NewEntityResolver(database, systemID)
	importer := NewSheetImporter(database, identity, entities, "", 1)

	_, err := importer.Run(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err, "unreadable workbook aborts the run")

	headerOnly := writeWorkbook(t, [][]any{
		{"Company", "Opportunity"},
	})
	_, err = importer.Run(headerOnly)
	assert.Error(t, err, "workbook without data rows aborts the run")
}
