package xplit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

var (
	// entryPattern matches one expense entry:
	// "Title" "Description" HHMM-or-dash payerAbbr:methodAbbr details...
	entryPattern = regexp.MustCompile(`"(.+?)"\s+"(.+?)"\s+([\d:-]+)\s+(\w+):(\w+)\s+(.+)`)

	// amountPattern matches a currency-tagged amount like "J3000" or "U12.5".
	amountPattern = regexp.MustCompile(`([A-Z])(\d+(?:\.\d+)?)`)

	// splitPattern matches one split token, "s(abbr)<spec>". The spec runs
	// up to the next split token and may be empty.
	splitPattern = regexp.MustCompile(`s\((\w+)\)([^s]*)`)

	// datePattern recognizes a leading date token on a section marker line.
	datePattern = regexp.MustCompile(`^\d{4}`)
)

// parseEntries walks the preprocessed body. Section markers update the
// current section title and date; entry lines become models.Entry; anything
// else is skipped with a debug log.
func (p *parser) parseEntries(lines []string) ([]models.Entry, error) {
	var entries []models.Entry
	var sectionTitle string
	var date *time.Time

	for idx, line := range lines {
		if strings.HasPrefix(line, "@") {
			title := strings.TrimSpace(line[1:])
			first, rest, _ := strings.Cut(title, " ")
			if datePattern.MatchString(first) {
				d, err := p.parseDate(first)
				if err != nil {
					return nil, err
				}
				date = &d
				title = d.Format("2006/01/02")
				if rest = strings.TrimSpace(rest); rest != "" {
					title += " " + rest
				}
			}
			sectionTitle = title
			continue
		}

		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			p.logger.Debug("skipping line that is neither marker nor entry",
				"line_no", idx+1, "line", line)
			continue
		}
		entry, err := p.parseEntry(m, sectionTitle, date)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", idx+1, err)
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// parseEntry builds one Entry from an entryPattern match, resolving the
// payer, payment method, total expense and splits.
func (p *parser) parseEntry(m []string, sectionTitle string, date *time.Time) (*models.Entry, error) {
	title, description, timeTok, payerAbbr, methodAbbr, details := m[1], m[2], m[3], m[4], m[5], m[6]

	payer, ok := p.people[payerAbbr]
	if !ok {
		return nil, fmt.Errorf("%w: unknown payer abbreviation %q in entry %q", ErrLookup, payerAbbr, title)
	}
	method, ok := p.methods[methodAbbr]
	if !ok {
		return nil, fmt.Errorf("%w: unknown payment method %q in entry %q", ErrLookup, methodAbbr, title)
	}

	// The first currency-tagged token in the details is the total expense.
	am := amountPattern.FindStringSubmatch(details)
	if am == nil {
		return nil, fmt.Errorf("%w: entry %q has no currency-tagged expense", ErrFormat, title)
	}
	value, err := strconv.ParseFloat(am[2], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad expense amount in entry %q", ErrFormat, title)
	}
	total, err := p.table.convert(value, am[1])
	if err != nil {
		return nil, err
	}

	splits, err := p.resolveSplits(details, title, total)
	if err != nil {
		return nil, err
	}

	hour, minute, dayOffset, hasTime, err := p.parseTime(timeTok)
	if err != nil {
		return nil, err
	}
	var ts *time.Time
	if hasTime && date != nil {
		t := time.Date(date.Year(), date.Month(), date.Day()+dayOffset, hour, minute, 0, 0, date.Location())
		ts = &t
	}

	return &models.Entry{
		SectionTitle:  sectionTitle,
		Title:         title,
		Description:   description,
		Time:          ts,
		PaidBy:        payer,
		PaymentMethod: method,
		Expense:       total,
		Splits:        splits,
	}, nil
}

// resolveSplits scans the details for s(abbr)<spec> tokens and produces the
// final per-person amounts, distributing the unallocated remainder equally
// among unresolved splits so the amounts sum to the total expense.
func (p *parser) resolveSplits(details, title string, total float64) (map[string]float64, error) {
	amounts := make(map[string]float64)
	unresolved := make(map[string]bool)

	for _, sm := range splitPattern.FindAllStringSubmatch(details, -1) {
		abbr := sm[1]
		person, ok := p.people[abbr]
		if !ok {
			return nil, fmt.Errorf("%w: unknown person abbreviation %q in entry %q", ErrLookup, abbr, title)
		}
		amount, resolved, err := p.resolveSplitSpec(strings.TrimSpace(sm[2]), total)
		if err != nil {
			return nil, err
		}
		// A later token for the same person wins outright.
		if resolved {
			amounts[person] = amount
			delete(unresolved, person)
		} else {
			delete(amounts, person)
			unresolved[person] = true
		}
	}

	if p.opts.AlwaysInvolveEveryone {
		for _, person := range p.people {
			if _, ok := amounts[person]; !ok {
				unresolved[person] = true
			}
		}
	}

	// Remainder distribution. Without unresolved splits nothing is
	// redistributed, so explicit splits may over- or undershoot the total.
	if len(unresolved) > 0 {
		var allocated float64
		for _, v := range amounts {
			allocated += v
		}
		share := (total - allocated) / float64(len(unresolved))
		for person := range unresolved {
			amounts[person] = share
		}
	}
	return amounts, nil
}

// resolveSplitSpec interprets one split amount specification, in priority
// order: a literal main-currency amount, a foreign-currency amount converted
// to main, a bare number treated as a ratio of the total, or unresolved.
func (p *parser) resolveSplitSpec(spec string, total float64) (amount float64, resolved bool, err error) {
	if spec == "" {
		return 0, false, nil
	}
	if m := p.mainAmount.FindStringSubmatch(spec); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: bad split amount %q", ErrFormat, spec)
		}
		return v, true, nil
	}
	if m := amountPattern.FindStringSubmatch(spec); m != nil {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: bad split amount %q", ErrFormat, spec)
		}
		converted, err := p.table.convert(v, m[1])
		if err != nil {
			return 0, false, err
		}
		return converted, true, nil
	}
	if ratio, err := strconv.ParseFloat(spec, 64); err == nil {
		return ratio * total, true, nil
	}
	return 0, false, nil
}

// parseTime interprets an entry's HHMM token. "-" means unspecified. With
// the 48-hour extension, hours 24-47 roll over to the next day.
func (p *parser) parseTime(tok string) (hour, minute, dayOffset int, hasTime bool, err error) {
	if tok == "-" {
		return 0, 0, 0, false, nil
	}
	if len(tok) < 3 {
		return 0, 0, 0, false, fmt.Errorf("%w: invalid time %q", ErrFormat, tok)
	}
	hour, err1 := strconv.Atoi(tok[:2])
	minute, err2 := strconv.Atoi(tok[2:])
	if err1 != nil || err2 != nil {
		return 0, 0, 0, false, fmt.Errorf("%w: invalid time %q", ErrFormat, tok)
	}
	if p.opts.Support48Hours {
		switch {
		case hour >= 48:
			return 0, 0, 0, false, fmt.Errorf("%w: hour %d must be below 48 when the 48-hour extension is enabled", ErrRange, hour)
		case hour >= 24:
			hour -= 24
			dayOffset = 1
		}
	} else if hour >= 24 {
		return 0, 0, 0, false, fmt.Errorf("%w: hour %d must be below 24", ErrRange, hour)
	}
	return hour, minute, dayOffset, true, nil
}

// parseDate parses a section marker date token: MMDD with the year guessed,
// or YYYYMMDD taken literally.
func (p *parser) parseDate(tok string) (time.Time, error) {
	switch len(tok) {
	case 4:
		month, err1 := strconv.Atoi(tok[:2])
		day, err2 := strconv.Atoi(tok[2:])
		if err1 != nil || err2 != nil {
			return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrFormat, tok)
		}
		return p.guessYear(time.Month(month), day), nil
	case 8:
		t, err := time.ParseInLocation("20060102", tok, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrFormat, tok)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrFormat, tok)
	}
}

// guessYear resolves an MMDD date to whichever of this year or last year
// lies closer to the reference moment.
func (p *parser) guessYear(month time.Month, day int) time.Time {
	now := p.now()
	thisYear := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.Local)
	lastYear := time.Date(now.Year()-1, month, day, 0, 0, 0, 0, time.Local)
	if absDuration(now.Sub(thisYear)) < absDuration(now.Sub(lastYear)) {
		return thisYear
	}
	return lastYear
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
