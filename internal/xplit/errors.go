package xplit

import "errors"

// Every parse failure wraps exactly one of these sentinel errors, so callers
// can classify failures with errors.Is without string matching. Any error is
// fatal to the parse call; there is no partial-document recovery.
var (
	// ErrFormat covers structural problems: missing or invalid header,
	// missing mandatory section, malformed block lines, entries without a
	// currency-tagged expense.
	ErrFormat = errors.New("xplit: format error")

	// ErrRange covers values outside their configured bounds, currently
	// only hour values in entry times.
	ErrRange = errors.New("xplit: value out of range")

	// ErrLookup covers unresolvable references: unknown currency symbols
	// and unknown person or payment-method abbreviations.
	ErrLookup = errors.New("xplit: unknown reference")
)

// Kind returns a short machine-readable class for a parse error:
// "format", "range" or "lookup". Errors from other sources return "".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrRange):
		return "range"
	case errors.Is(err, ErrLookup):
		return "lookup"
	default:
		return ""
	}
}
