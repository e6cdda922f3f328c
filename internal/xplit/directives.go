package xplit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

// parseAbbrMap parses "abbreviation : display-name" lines, as used by the
// @people and @payment_methods blocks. A duplicate abbreviation silently
// overwrites the earlier one (last wins); lines without a colon are skipped.
func parseAbbrMap(blockText string) map[string]string {
	m := make(map[string]string)
	for _, line := range strings.Split(blockText, "\n") {
		abbr, name, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		m[strings.TrimSpace(abbr)] = strings.TrimSpace(name)
	}
	return m
}

// parseExtraPayments parses the @extra_payments block. Each line reads
// "payerAbbr -> receiverAbbr: <SYM><amount>". Abbreviations that do not
// resolve against the people map are kept verbatim: transfers involving
// people outside the document are allowed.
func (p *parser) parseExtraPayments(blockText string) ([]models.ExtraPayment, error) {
	var payments []models.ExtraPayment
	for _, line := range strings.Split(blockText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || len(fields[3]) < 2 {
			return nil, fmt.Errorf("%w: malformed extra payment: %q", ErrFormat, line)
		}
		amount, err := strconv.ParseFloat(fields[3][1:], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount in extra payment %q", ErrFormat, line)
		}
		converted, err := p.table.convert(amount, fields[3][:1])
		if err != nil {
			return nil, err
		}
		payments = append(payments, models.ExtraPayment{
			Payer:    p.personName(fields[0]),
			Receiver: p.personName(strings.TrimSuffix(fields[2], ":")),
			Amount:   converted,
		})
	}
	return payments, nil
}

// personName resolves an abbreviation to a display name, falling back to the
// abbreviation itself when unregistered.
func (p *parser) personName(abbr string) string {
	if name, ok := p.people[abbr]; ok {
		return name
	}
	return abbr
}
