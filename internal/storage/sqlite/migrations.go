package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist. Documents are stored in
// already-parsed form; the raw xplit source lives in documents.source.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    version TEXT NOT NULL,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    description TEXT NOT NULL,
    main_currency TEXT NOT NULL,
    source TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS people (
    document_id TEXT NOT NULL,
    abbr TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (document_id, abbr),
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS currencies (
    document_id TEXT NOT NULL,
    symbol TEXT NOT NULL,
    name TEXT NOT NULL,
    rate REAL NOT NULL,
    PRIMARY KEY (document_id, symbol),
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payment_methods (
    document_id TEXT NOT NULL,
    abbr TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (document_id, abbr),
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    section_title TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    occurred_at INTEGER,
    paid_by TEXT NOT NULL,
    payment_method TEXT NOT NULL,
    expense REAL NOT NULL,
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS splits (
    entry_id TEXT NOT NULL,
    person TEXT NOT NULL,
    amount REAL NOT NULL,
    PRIMARY KEY (entry_id, person),
    FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS extra_payments (
    document_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    payer TEXT NOT NULL,
    receiver TEXT NOT NULL,
    amount REAL NOT NULL,
    PRIMARY KEY (document_id, position),
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_owner_id ON documents(owner_id);
CREATE INDEX IF NOT EXISTS idx_entries_document_id ON entries(document_id);
CREATE INDEX IF NOT EXISTS idx_splits_entry_id ON splits(entry_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
