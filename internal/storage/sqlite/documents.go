package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

// CreateDocument persists a parsed document and everything hanging off it in
// one transaction.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt == 0 {
		doc.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, version, title, author, description, main_currency, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OwnerID, doc.Version, doc.Title, doc.Author,
		doc.Description, doc.MainCurrency, doc.OriginalContent, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for abbr, name := range doc.People {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO people (document_id, abbr, name) VALUES (?, ?, ?)",
			doc.ID, abbr, name,
		); err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}
	for _, currency := range doc.Currencies {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO currencies (document_id, symbol, name, rate) VALUES (?, ?, ?, ?)",
			doc.ID, currency.Symbol, currency.Name, currency.Rate,
		); err != nil {
			return fmt.Errorf("failed to insert currency: %w", err)
		}
	}
	for abbr, name := range doc.PaymentMethods {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO payment_methods (document_id, abbr, name) VALUES (?, ?, ?)",
			doc.ID, abbr, name,
		); err != nil {
			return fmt.Errorf("failed to insert payment method: %w", err)
		}
	}

	for i := range doc.Entries {
		entry := &doc.Entries[i]
		entryID := uuid.New().String()

		var occurredAt interface{}
		if entry.Time != nil {
			occurredAt = entry.Time.Unix()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries (id, document_id, position, section_title, title, description, occurred_at, paid_by, payment_method, expense)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entryID, doc.ID, i, entry.SectionTitle, entry.Title, entry.Description,
			occurredAt, entry.PaidBy, entry.PaymentMethod, entry.Expense,
		); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		for person, amount := range entry.Splits {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO splits (entry_id, person, amount) VALUES (?, ?, ?)",
				entryID, person, amount,
			); err != nil {
				return fmt.Errorf("failed to insert split: %w", err)
			}
		}
	}

	for i, payment := range doc.ExtraPayments {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO extra_payments (document_id, position, payer, receiver, amount) VALUES (?, ?, ?, ?, ?)",
			doc.ID, i, payment.Payer, payment.Receiver, payment.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert extra payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID with all of its maps, entries,
// splits and extra payments.
func (s *SQLiteStore) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	doc := &models.Document{
		People:         make(map[string]string),
		Currencies:     make(map[string]models.Currency),
		PaymentMethods: make(map[string]string),
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, version, title, author, description, main_currency, source, created_at
		 FROM documents WHERE id = ?`,
		documentID,
	).Scan(&doc.ID, &doc.OwnerID, &doc.Version, &doc.Title, &doc.Author,
		&doc.Description, &doc.MainCurrency, &doc.OriginalContent, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.loadAbbrMap(ctx, "people", documentID, doc.People); err != nil {
		return nil, err
	}
	if err := s.loadAbbrMap(ctx, "payment_methods", documentID, doc.PaymentMethods); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT symbol, name, rate FROM currencies WHERE document_id = ?",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get currencies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Currency
		if err := rows.Scan(&c.Symbol, &c.Name, &c.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		doc.Currencies[c.Symbol] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}

	if doc.Entries, err = s.loadEntries(ctx, documentID); err != nil {
		return nil, err
	}

	paymentRows, err := s.db.QueryContext(ctx,
		"SELECT payer, receiver, amount FROM extra_payments WHERE document_id = ? ORDER BY position",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get extra payments: %w", err)
	}
	defer paymentRows.Close()
	for paymentRows.Next() {
		var p models.ExtraPayment
		if err := paymentRows.Scan(&p.Payer, &p.Receiver, &p.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan extra payment: %w", err)
		}
		doc.ExtraPayments = append(doc.ExtraPayments, p)
	}
	if err := paymentRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extra payments: %w", err)
	}

	return doc, nil
}

// loadAbbrMap fills dst from one of the abbreviation tables. The table name
// is always a compile-time constant, never caller input.
func (s *SQLiteStore) loadAbbrMap(ctx context.Context, table, documentID string, dst map[string]string) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT abbr, name FROM "+table+" WHERE document_id = ?",
		documentID,
	)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var abbr, name string
		if err := rows.Scan(&abbr, &name); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		dst[abbr] = name
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return nil
}

// loadEntries returns the document's entries in their original source order,
// with splits attached.
func (s *SQLiteStore) loadEntries(ctx context.Context, documentID string) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, section_title, title, description, occurred_at, paid_by, payment_method, expense
		 FROM entries WHERE document_id = ? ORDER BY position`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	var entryIDs []string
	for rows.Next() {
		var entry models.Entry
		var entryID string
		var occurredAt sql.NullInt64
		if err := rows.Scan(&entryID, &entry.SectionTitle, &entry.Title, &entry.Description,
			&occurredAt, &entry.PaidBy, &entry.PaymentMethod, &entry.Expense); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if occurredAt.Valid {
			t := time.Unix(occurredAt.Int64, 0)
			entry.Time = &t
		}
		entry.Splits = make(map[string]float64)
		entries = append(entries, entry)
		entryIDs = append(entryIDs, entryID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	for i, entryID := range entryIDs {
		splitRows, err := s.db.QueryContext(ctx,
			"SELECT person, amount FROM splits WHERE entry_id = ?",
			entryID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get splits: %w", err)
		}
		for splitRows.Next() {
			var person string
			var amount float64
			if err := splitRows.Scan(&person, &amount); err != nil {
				splitRows.Close()
				return nil, fmt.Errorf("failed to scan split: %w", err)
			}
			entries[i].Splits[person] = amount
		}
		splitRows.Close()
		if err := splitRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate splits: %w", err)
		}
	}
	return entries, nil
}

// ListDocuments returns document metadata for one owner, newest first.
// Entries, maps and extra payments are not loaded.
func (s *SQLiteStore) ListDocuments(ctx context.Context, ownerID string) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, version, title, author, main_currency, created_at
		 FROM documents WHERE owner_id = ? ORDER BY created_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Version, &doc.Title,
			&doc.Author, &doc.MainCurrency, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}
