// Package xplit parses the xplit shared-expense ledger format.
//
// An xplit document is plain text: a version header, a handful of @-prefixed
// directive sections (people, currencies, payment methods, description, extra
// payments), and a body of dated expense entries with per-person split
// specifications. Parse turns one document into a models.Document with every
// amount normalized to the document's main currency.
//
// Parsing is a pure, synchronous transformation with no shared state, so
// independent documents can be parsed concurrently without coordination.
package xplit

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

// Version is the format version this parser targets. Documents declaring a
// different version still parse; the mismatch is only logged.
const Version = "0.0.3"

// Options configures a parse call. The zero value is valid.
type Options struct {
	// Support48Hours allows entry hours 24-47, meaning "next calendar day,
	// hour minus 24". Without it any hour of 24 or above is a range error.
	Support48Hours bool

	// AlwaysInvolveEveryone adds every registered person to every entry's
	// split set, defaulting unmentioned people to an equal remainder share.
	AlwaysInvolveEveryone bool

	// Logger receives non-fatal diagnostics (version mismatch, skipped
	// lines). Nil discards them.
	Logger *slog.Logger

	// Now overrides the reference moment used to resolve the ambiguous year
	// of MMDD date markers. Nil means time.Now. Exposed for tests.
	Now func() time.Time
}

// parser carries the state of one Parse call.
type parser struct {
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
	version string

	people  map[string]string
	methods map[string]string
	table   *currencyTable

	// mainAmount matches a literal amount in the main currency, e.g. "R50".
	// Built once the currency table is known.
	mainAmount *regexp.Regexp
}

// Parse parses a complete xplit document from src.
//
// Any returned error wraps ErrFormat, ErrRange or ErrLookup and invalidates
// the whole document; there is no degraded-output mode.
func Parse(src string, opts Options) (*models.Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	p := &parser{opts: opts, logger: logger, now: now}

	lines, err := p.preprocess(src)
	if err != nil {
		return nil, err
	}
	content := strings.Join(lines, "\n")

	title, err := singleLine(content, "title")
	if err != nil {
		return nil, err
	}
	author, err := singleLine(content, "author")
	if err != nil {
		return nil, err
	}
	peopleBlock, err := block(content, "people")
	if err != nil {
		return nil, err
	}
	currenciesBlock, err := block(content, "currencies")
	if err != nil {
		return nil, err
	}
	methodsBlock, err := block(content, "payment_methods")
	if err != nil {
		return nil, err
	}
	description, err := block(content, "description")
	if err != nil {
		return nil, err
	}
	extraBlock, err := block(content, "extra_payments")
	if err != nil {
		return nil, err
	}

	p.people = parseAbbrMap(peopleBlock)
	p.methods = parseAbbrMap(methodsBlock)
	p.table, err = parseCurrencies(currenciesBlock)
	if err != nil {
		return nil, err
	}
	p.mainAmount = regexp.MustCompile(regexp.QuoteMeta(p.table.main) + `(\d+(?:\.\d+)?)`)

	extras, err := p.parseExtraPayments(extraBlock)
	if err != nil {
		return nil, err
	}
	entries, err := p.parseEntries(lines)
	if err != nil {
		return nil, err
	}

	return &models.Document{
		Version:         p.version,
		Title:           title,
		Author:          author,
		People:          p.people,
		Currencies:      p.table.currencies,
		MainCurrency:    p.table.main,
		PaymentMethods:  p.methods,
		Description:     description,
		Entries:         entries,
		ExtraPayments:   extras,
		OriginalContent: src,
	}, nil
}

// ParseFile reads path and parses it as an xplit document.
func ParseFile(path string, opts Options) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(data), opts)
}
