package xplit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

// currencyTable resolves currency symbols and converts amounts into the main
// currency. The main currency is whichever is declared first in the block.
type currencyTable struct {
	main       string
	currencies map[string]models.Currency
}

// parseCurrencies parses the @currencies block. The first line is the main
// currency ("SYM : Name", rate implicitly 1); every further line carries an
// explicit rate, "SYM: Name (rate: <float>)".
func parseCurrencies(blockText string) (*currencyTable, error) {
	lines := strings.Split(blockText, "\n")

	sym, name, ok := strings.Cut(lines[0], ":")
	if !ok {
		return nil, fmt.Errorf("%w: malformed currency line: %q", ErrFormat, lines[0])
	}
	main := strings.TrimSpace(sym)
	t := &currencyTable{
		main: main,
		currencies: map[string]models.Currency{
			main: {Symbol: main, Name: strings.TrimSpace(name), Rate: 1},
		},
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sym, rest, ok := strings.Cut(line, ":")
		fields := strings.Fields(rest)
		if !ok || len(fields) < 3 {
			return nil, fmt.Errorf("%w: malformed currency line: %q", ErrFormat, line)
		}
		symbol := strings.TrimSpace(sym)
		// The last field is the rate, the one before it the "rate:" tag;
		// everything before that is the display name.
		rate, err := strconv.ParseFloat(strings.Trim(fields[len(fields)-1], "()"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad exchange rate in %q", ErrFormat, line)
		}
		t.currencies[symbol] = models.Currency{
			Symbol: symbol,
			Name:   strings.Join(fields[:len(fields)-2], " "),
			Rate:   rate,
		}
	}
	return t, nil
}

// convert converts amount from the given currency into the main currency.
func (t *currencyTable) convert(amount float64, symbol string) (float64, error) {
	if symbol == t.main {
		return amount, nil
	}
	c, ok := t.currencies[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: unknown currency symbol %q", ErrLookup, symbol)
	}
	return amount * c.Rate, nil
}
