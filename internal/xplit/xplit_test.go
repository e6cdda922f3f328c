package xplit

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// sampleDoc exercises most of the format: foreign currencies, dated and
// dateless sections, ratio splits, literal splits and remainder shares.
const sampleDoc = `@xplit 0.0.3
@title Hokkaido Trip
@author kb
@people
kb : Kunologist
yj : Yojee
mf : Mafu
@currencies
R : RMB
J : JPY rate: 0.05
U : USD rate: 7.2
@payment_methods
ac : Alipay
cc : Credit Card
csh : Cash
@description
Five-day trip to Hokkaido.
All amounts settle in RMB.
@extra_payments
yj -> kb: R200
mf -> kb: U30
@0214 Sapporo
"Ramen" "Dinner at the station" 1930 kb:cc J3000 s(kb) s(yj)
"Taxi" "Airport to hotel" 2530 yj:csh R150 s(kb)0.5 s(yj)0.5
@0215
"Hotel" "Two nights, one room" - kb:ac R1200 s(kb)R400 s(yj) s(mf)
@misc
"Snacks" "Konbini run" - mf:csh J500 s(mf)
`

// fixedNow pins the reference moment so MMDD year guessing is stable.
func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6
}

func TestParseDocument(t *testing.T) {
	doc, err := Parse(sampleDoc, Options{Support48Hours: true, Now: fixedNow})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Version != "0.0.3" {
		t.Errorf("Version = %q, want 0.0.3", doc.Version)
	}
	if doc.Title != "Hokkaido Trip" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Author != "kb" {
		t.Errorf("Author = %q", doc.Author)
	}
	if len(doc.People) != 3 {
		t.Errorf("len(People) = %d, want 3", len(doc.People))
	}
	if doc.MainCurrency != "R" {
		t.Errorf("MainCurrency = %q, want R", doc.MainCurrency)
	}
	if got := doc.Currencies["J"].Rate; got != 0.05 {
		t.Errorf("JPY rate = %v, want 0.05", got)
	}
	if got := doc.Currencies["R"].Rate; got != 1 {
		t.Errorf("main currency rate = %v, want 1", got)
	}
	if doc.Description != "Five-day trip to Hokkaido.\nAll amounts settle in RMB." {
		t.Errorf("Description = %q", doc.Description)
	}
	if doc.OriginalContent != sampleDoc {
		t.Error("OriginalContent not retained verbatim")
	}

	if len(doc.ExtraPayments) != 2 {
		t.Fatalf("len(ExtraPayments) = %d, want 2", len(doc.ExtraPayments))
	}
	if p := doc.ExtraPayments[0]; p.Payer != "Yojee" || p.Receiver != "Kunologist" || !approx(p.Amount, 200) {
		t.Errorf("ExtraPayments[0] = %+v", p)
	}
	if p := doc.ExtraPayments[1]; !approx(p.Amount, 216) { // 30 USD * 7.2
		t.Errorf("ExtraPayments[1].Amount = %v, want 216", p.Amount)
	}

	if len(doc.Entries) != 4 {
		t.Fatalf("len(Entries) = %d, want 4", len(doc.Entries))
	}

	ramen := doc.Entries[0]
	if ramen.SectionTitle != "2024/02/14 Sapporo" {
		t.Errorf("ramen section = %q", ramen.SectionTitle)
	}
	if ramen.PaidBy != "Kunologist" || ramen.PaymentMethod != "Credit Card" {
		t.Errorf("ramen payer/method = %q/%q", ramen.PaidBy, ramen.PaymentMethod)
	}
	if want := 3000 * 0.05; ramen.Expense != want {
		t.Errorf("ramen expense = %v, want %v", ramen.Expense, want)
	}
	if !approx(ramen.Splits["Kunologist"], 75) || !approx(ramen.Splits["Yojee"], 75) {
		t.Errorf("ramen splits = %v", ramen.Splits)
	}
	wantTime := time.Date(2024, 2, 14, 19, 30, 0, 0, time.Local)
	if ramen.Time == nil || !ramen.Time.Equal(wantTime) {
		t.Errorf("ramen time = %v, want %v", ramen.Time, wantTime)
	}

	taxi := doc.Entries[1]
	if !approx(taxi.Splits["Kunologist"], 75) || !approx(taxi.Splits["Yojee"], 75) {
		t.Errorf("taxi ratio splits = %v", taxi.Splits)
	}

	hotel := doc.Entries[2]
	if hotel.SectionTitle != "2024/02/15" {
		t.Errorf("hotel section = %q", hotel.SectionTitle)
	}
	if hotel.Time != nil {
		t.Errorf("hotel time = %v, want nil", hotel.Time)
	}
	for _, person := range []string{"Kunologist", "Yojee", "Mafu"} {
		if !approx(hotel.Splits[person], 400) {
			t.Errorf("hotel split for %s = %v, want 400", person, hotel.Splits[person])
		}
	}

	snacks := doc.Entries[3]
	if snacks.SectionTitle != "misc" {
		t.Errorf("snacks section = %q", snacks.SectionTitle)
	}
	if snacks.Time != nil {
		t.Errorf("snacks time = %v, want nil (dateless section)", snacks.Time)
	}
	if !approx(snacks.Splits["Mafu"], 25) {
		t.Errorf("snacks splits = %v", snacks.Splits)
	}
}

func TestSplitSumInvariant(t *testing.T) {
	doc, err := Parse(sampleDoc, Options{Support48Hours: true, Now: fixedNow})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, entry := range doc.Entries {
		var sum float64
		for _, amount := range entry.Splits {
			sum += amount
		}
		if !approx(sum, entry.Expense) {
			t.Errorf("entry %q: splits sum to %v, expense is %v", entry.Title, sum, entry.Expense)
		}
	}
}

func TestFortyEightHourRollover(t *testing.T) {
	doc, err := Parse(sampleDoc, Options{Support48Hours: true, Now: fixedNow})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// 2530 under a 02/14 section means 01:30 the next day.
	want := time.Date(2024, 2, 15, 1, 30, 0, 0, time.Local)
	if got := doc.Entries[1].Time; got == nil || !got.Equal(want) {
		t.Errorf("taxi time = %v, want %v", got, want)
	}

	if _, err := Parse(sampleDoc, Options{Now: fixedNow}); !errors.Is(err, ErrRange) {
		t.Errorf("hour 25 without the extension: err = %v, want ErrRange", err)
	}
}

// buildDoc wraps an entry body in a minimal valid document with people
// al/bob, main currency R, and a foreign currency U at rate 7.
func buildDoc(body string) string {
	return `@xplit 0.0.3
@title Test
@author t
@people
al : Alice
bob : Bob
@currencies
R : RMB
U : USD rate: 7.0
@payment_methods
c : Cash
@description
test
@extra_payments
al -> bob: R1
@rest
` + body + "\n"
}

func TestSplitResolution(t *testing.T) {
	tests := []struct {
		name       string
		entry      string
		opts       Options
		wantSplits map[string]float64
	}{
		{
			name:       "literal main-currency split plus remainder share",
			entry:      `"T" "d" - al:c R100 s(bob)R50 s(al)`,
			wantSplits: map[string]float64{"Bob": 50, "Alice": 50},
		},
		{
			name:       "only explicit split, no redistribution",
			entry:      `"T" "d" - al:c R100 s(bob)R50`,
			wantSplits: map[string]float64{"Bob": 50},
		},
		{
			name:       "only explicit split, everyone involved",
			entry:      `"T" "d" - al:c R100 s(bob)R50`,
			opts:       Options{AlwaysInvolveEveryone: true},
			wantSplits: map[string]float64{"Bob": 50, "Alice": 50},
		},
		{
			name:       "foreign-currency split converts before distribution",
			entry:      `"T" "d" - al:c R100 s(bob)U10 s(al)`,
			wantSplits: map[string]float64{"Bob": 70, "Alice": 30},
		},
		{
			name:       "ratios multiply the total",
			entry:      `"T" "d" - al:c R80 s(bob)0.25 s(al)0.75`,
			wantSplits: map[string]float64{"Bob": 20, "Alice": 60},
		},
		{
			name:       "explicit splits may overshoot the total",
			entry:      `"T" "d" - al:c R100 s(bob)R80 s(al)R80`,
			wantSplits: map[string]float64{"Bob": 80, "Alice": 80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(buildDoc(tt.entry), tt.opts)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(doc.Entries) != 1 {
				t.Fatalf("len(Entries) = %d, want 1", len(doc.Entries))
			}
			splits := doc.Entries[0].Splits
			if len(splits) != len(tt.wantSplits) {
				t.Fatalf("splits = %v, want %v", splits, tt.wantSplits)
			}
			for person, want := range tt.wantSplits {
				if !approx(splits[person], want) {
					t.Errorf("split for %s = %v, want %v", person, splits[person], want)
				}
			}
		})
	}
}

func TestAlwaysInvolveEveryoneRemainder(t *testing.T) {
	doc := `@xplit 0.0.3
@title Test
@author t
@people
a : Ann
b : Ben
c : Cleo
d : Dan
e : Eve
@currencies
R : RMB
@payment_methods
c : Cash
@description
test
@extra_payments
a -> b: R1
@day
"Dinner" "group dinner" - a:c R100 s(a)R20 s(b)R20
`
	parsed, err := Parse(doc, Options{AlwaysInvolveEveryone: true})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	splits := parsed.Entries[0].Splits
	if len(splits) != 5 {
		t.Fatalf("splits = %v, want 5-way", splits)
	}
	// 100 - 40 allocated, spread over the 3 unmentioned people.
	for _, person := range []string{"Cleo", "Dan", "Eve"} {
		if !approx(splits[person], 20) {
			t.Errorf("split for %s = %v, want 20", person, splits[person])
		}
	}
}

func TestDateYearGuess(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		marker   string
		wantDate time.Time
	}{
		{
			name:     "new year's day right after it happened",
			now:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local),
			marker:   "@0101",
			wantDate: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
		},
		{
			name:     "new year's eve resolves to last year",
			now:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local),
			marker:   "@1231",
			wantDate: time.Date(2023, 12, 31, 9, 0, 0, 0, time.Local),
		},
		{
			name:     "full date is taken literally",
			now:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local),
			marker:   "@20220305",
			wantDate: time.Date(2022, 3, 5, 9, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(buildDoc(tt.marker+"\n\"T\" \"d\" 0900 al:c R10 s(al)"),
				Options{Now: func() time.Time { return tt.now }})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			entry := doc.Entries[len(doc.Entries)-1]
			if entry.Time == nil || !entry.Time.Equal(tt.wantDate) {
				t.Errorf("entry time = %v, want %v", entry.Time, tt.wantDate)
			}
		})
	}
}

func TestVersionMismatchIsNonFatal(t *testing.T) {
	doc := "@xplit 9.9.9\n" + buildDoc(`"T" "d" - al:c R10 s(al)`)[len("@xplit 0.0.3\n"):]
	parsed, err := Parse(doc, Options{})
	if err != nil {
		t.Fatalf("Parse failed on version mismatch: %v", err)
	}
	if parsed.Version != "9.9.9" {
		t.Errorf("Version = %q, want declared 9.9.9", parsed.Version)
	}
	if len(parsed.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1", len(parsed.Entries))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		opts Options
		want error
	}{
		{
			name: "missing header",
			doc:  "hello\n@title x\n",
			want: ErrFormat,
		},
		{
			name: "missing section",
			doc:  "@xplit 0.0.3\n@title x\n@author y\n",
			want: ErrFormat,
		},
		{
			name: "unterminated block",
			doc: "@xplit 0.0.3\n@title x\n@author y\n@people\na : Ann\n@currencies\nR : RMB\n" +
				"@payment_methods\nc : Cash\n@description\nd\n@extra_payments\na -> a: R1",
			want: ErrFormat,
		},
		{
			name: "unknown person in split",
			doc:  buildDoc(`"T" "d" - al:c R10 s(zz)`),
			want: ErrLookup,
		},
		{
			name: "unknown payer abbreviation",
			doc:  buildDoc(`"T" "d" - zz:c R10 s(al)`),
			want: ErrLookup,
		},
		{
			name: "unknown payment method",
			doc:  buildDoc(`"T" "d" - al:zz R10 s(al)`),
			want: ErrLookup,
		},
		{
			name: "unknown currency symbol",
			doc:  buildDoc(`"T" "d" - al:c Q10 s(al)`),
			want: ErrLookup,
		},
		{
			name: "entry without currency-tagged expense",
			doc:  buildDoc(`"T" "d" - al:c s(al)`),
			want: ErrFormat,
		},
		{
			name: "hour out of range without extension",
			doc:  buildDoc(`"T" "d" 2400 al:c R10 s(al)`),
			want: ErrRange,
		},
		{
			name: "hour out of range with extension",
			doc:  buildDoc(`"T" "d" 4830 al:c R10 s(al)`),
			opts: Options{Support48Hours: true},
			want: ErrRange,
		},
		{
			name: "invalid date token",
			doc:  buildDoc("@123456\n\"T\" \"d\" - al:c R10 s(al)"),
			want: ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUncommentLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`R : RMB   # settlement currency`, "R : RMB #settlement currency"},
		{"code #", "code"},
		{"   plain   ", "plain"},
		{"a#b#c", "a #b#c"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := uncommentLine(tt.in); got != tt.want {
			t.Errorf("uncommentLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trip.xplit")
	if err := os.WriteFile(path, []byte(sampleDoc), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	doc, err := ParseFile(path, Options{Support48Hours: true, Now: fixedNow})
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if doc.Title != "Hokkaido Trip" {
		t.Errorf("Title = %q", doc.Title)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xplit"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}
