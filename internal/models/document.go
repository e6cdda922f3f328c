package models

import "time"

// Currency is one row of a document's currency table.
// The main (settlement) currency is the first one declared and always has Rate 1.
type Currency struct {
	// Symbol is the single-letter tag used to mark amounts (e.g. "R", "J").
	Symbol string

	// Name is the human-readable currency name (e.g. "RMB", "JPY").
	Name string

	// Rate is the fixed exchange rate to the main currency:
	// amount_in_main = amount * Rate.
	Rate float64
}

// Entry is one expense event parsed from the document body.
type Entry struct {
	// SectionTitle is the title of the nearest preceding section marker,
	// with date markers rendered as "YYYY/MM/DD" plus any trailing text.
	SectionTitle string

	// Title is the quoted entry title.
	Title string

	// Description is the quoted free-text description.
	Description string

	// Time is when the expense happened. It is nil when the source marks
	// the time as unspecified ("-") or the entry sits under a dateless section.
	Time *time.Time

	// PaidBy is the resolved display name of the person who paid.
	PaidBy string

	// PaymentMethod is the resolved display name of the payment method.
	PaymentMethod string

	// Expense is the total amount of the entry, in the main currency.
	Expense float64

	// Splits maps a person's display name to the share they owe, in the
	// main currency. After remainder distribution the values sum to Expense
	// whenever the entry had at least one unresolved split.
	Splits map[string]float64
}

// ExtraPayment is a direct settlement transfer between two people,
// independent of any entry.
type ExtraPayment struct {
	// Payer and Receiver are display names when the abbreviation resolves,
	// or the raw abbreviation for external references.
	Payer    string
	Receiver string

	// Amount is the transferred amount, in the main currency.
	Amount float64
}

// Document is the fully parsed form of one xplit file. It is built once by
// the parser and never mutated afterwards; the caller owns it exclusively.
type Document struct {
	// ID is the unique identifier assigned by storage (UUID format).
	// Empty on freshly parsed documents.
	ID string

	// OwnerID is the ID of the user the document is stored under.
	// Empty on freshly parsed documents.
	OwnerID string

	// Version is the format version declared in the header line.
	Version string

	// Title and Author come from the @title and @author directives.
	Title  string
	Author string

	// People maps abbreviation to display name.
	People map[string]string

	// Currencies maps symbol to currency definition, main currency included.
	Currencies map[string]Currency

	// MainCurrency is the symbol of the settlement currency.
	MainCurrency string

	// PaymentMethods maps abbreviation to display name.
	PaymentMethods map[string]string

	// Description is the @description block, verbatim.
	Description string

	// Entries are the expense entries in source order. Sorting by time is a
	// rendering concern, not a parsing one.
	Entries []Entry

	// ExtraPayments are the peer settlements from the @extra_payments block,
	// in source order.
	ExtraPayments []ExtraPayment

	// OriginalContent is the raw source text, retained so rendered reports
	// can embed it for traceability.
	OriginalContent string

	// CreatedAt is the Unix timestamp when the document was stored.
	// Zero on freshly parsed documents.
	CreatedAt int64
}
