// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and natural-key uniqueness constraints
package db

import (
	"database/sql"
)

// Natural keys are enforced at the store: account and opportunity names are
// unique modulo case and surrounding whitespace, user emails modulo case, and
// inbound email message ids exactly. Find-or-create callers rely on these
// indexes to resolve concurrent create races (loser refinds the winner's row).
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'inactive', 'prospect')),
	website TEXT,
	industry TEXT,
	phone TEXT,
	email TEXT,
	description TEXT,
	assigned_to TEXT,
	created_by TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (assigned_to) REFERENCES users(id),
	FOREIGN KEY (created_by) REFERENCES users(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_name_key ON accounts(LOWER(TRIM(name)));

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT,
	email TEXT,
	phone TEXT,
	title TEXT,
	account_id TEXT,
	created_by TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (account_id) REFERENCES accounts(id)
);

CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
CREATE INDEX IF NOT EXISTS idx_contacts_account_id ON contacts(account_id);

CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	account_id TEXT,
	amount REAL CHECK(amount IS NULL OR amount >= 0),
	stage TEXT NOT NULL DEFAULT 'New' CHECK(stage IN ('New', 'Qualified', 'Proposal', 'Negotiation', 'Closed Won', 'Closed Lost')),
	probability REAL CHECK(probability IS NULL OR (probability >= 0 AND probability <= 100)),
	expected_close_date DATETIME,
	owner TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (owner) REFERENCES users(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_opportunities_name_key ON opportunities(LOWER(TRIM(name)));
CREATE INDEX IF NOT EXISTS idx_opportunities_stage ON opportunities(stage);
CREATE INDEX IF NOT EXISTS idx_opportunities_account_id ON opportunities(account_id);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	display_name TEXT NOT NULL,
	first_name TEXT,
	last_name TEXT,
	role TEXT NOT NULL DEFAULT 'user' CHECK(role IN ('admin', 'user')),
	password TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_key ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	account_id TEXT,
	contact_id TEXT,
	opportunity_id TEXT,
	is_private INTEGER NOT NULL DEFAULT 0,
	created_by TEXT,
	source TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('manual', 'email', 'import')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	CHECK((account_id IS NOT NULL) + (contact_id IS NOT NULL) + (opportunity_id IS NOT NULL) <= 1),
	FOREIGN KEY (account_id) REFERENCES accounts(id),
	FOREIGN KEY (contact_id) REFERENCES contacts(id),
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE INDEX IF NOT EXISTS idx_notes_account_id ON notes(account_id);
CREATE INDEX IF NOT EXISTS idx_notes_contact_id ON notes(contact_id);
CREATE INDEX IF NOT EXISTS idx_notes_opportunity_id ON notes(opportunity_id);

CREATE TABLE IF NOT EXISTS inbound_emails (
	id TEXT PRIMARY KEY,
	message_id TEXT NOT NULL UNIQUE,
	thread_id TEXT,
	from_email TEXT NOT NULL,
	from_name TEXT,
	to_json TEXT NOT NULL DEFAULT '[]',
	cc_json TEXT,
	bcc_json TEXT,
	subject TEXT,
	body_text TEXT,
	body_html TEXT,
	attachments_json TEXT,
	received_at DATETIME NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	processed INTEGER NOT NULL DEFAULT 0,
	labels_json TEXT,
	snippet TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_inbound_emails_thread ON inbound_emails(thread_id);
CREATE INDEX IF NOT EXISTS idx_inbound_emails_from ON inbound_emails(from_email);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
