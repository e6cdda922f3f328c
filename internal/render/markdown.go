// Package render turns parsed documents into human-readable markdown
// reports. The report layout is fixed; only the label language varies with
// the selected locale.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Gennadiyev/xplit-pay/internal/calculator"
	"github.com/Gennadiyev/xplit-pay/internal/models"
	"github.com/Gennadiyev/xplit-pay/internal/xplit"
)

// labels is the locale-dependent text of a report.
type labels struct {
	stats         string
	usingCurrency string
	totalSpent    string
	person        string
	actualExpense string
	amountPaid    string
	balance       string
	extraPayments string
	payer         string
	receiver      string
	amount        string
	devInfo       string
	versionLine   string
	generatedLine string
	sourceLine    string
	expenseLine   func(entry *models.Entry) string
}

var locales = map[string]labels{
	"en": {
		stats:         "Stats",
		usingCurrency: "Using currency:",
		totalSpent:    "Total Expenditure:",
		person:        "Person",
		actualExpense: "Actual Expense",
		amountPaid:    "Amount Paid",
		balance:       "Should Receive...",
		extraPayments: "Extra Payments",
		payer:         "From",
		receiver:      "To",
		amount:        "Amount",
		devInfo:       "Developer Info",
		versionLine:   "XplitPay v`%s`",
		generatedLine: "Generated at `%s`",
		sourceLine:    "Source:",
		expenseLine: func(entry *models.Entry) string {
			line := fmt.Sprintf("**%.2f** spent | paid by %s", entry.Expense, entry.PaidBy)
			if entry.Time != nil {
				line += " at " + entry.Time.Format("01/02 15:04")
			}
			return line
		},
	},
	"zh_CN": {
		stats:         "统计与结算",
		usingCurrency: "结算货币：",
		totalSpent:    "总支出：",
		person:        "人员",
		actualExpense: "实际花费",
		amountPaid:    "实际支付",
		balance:       "额外盈亏补偿",
		extraPayments: "附加项",
		payer:         "付款人",
		receiver:      "收款人",
		amount:        "金额",
		devInfo:       "开发者相关",
		versionLine:   "XplitPay 版本：`%s`",
		generatedLine: "生成时间：`%s`",
		sourceLine:    "源数据：",
		expenseLine: func(entry *models.Entry) string {
			when := "-"
			if entry.Time != nil {
				when = entry.Time.Format("01/02 15:04")
			}
			return fmt.Sprintf("**支出**：%.2f (%s) | 🕒 %s", entry.Expense, entry.PaidBy, when)
		},
	},
}

// Markdown renders doc as a markdown report in the given locale
// ("en" or "zh_CN").
func Markdown(doc *models.Document, locale string) (string, error) {
	l, ok := locales[locale]
	if !ok {
		return "", fmt.Errorf("unsupported locale %q", locale)
	}
	stats := calculator.Compute(doc)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Title)
	for _, line := range strings.Split(doc.Description, "\n") {
		fmt.Fprintf(&b, "\n> %s\n", line)
	}

	// Stats block.
	fmt.Fprintf(&b, "\n## %s\n", l.stats)
	fmt.Fprintf(&b, "\n**%s** %s\n", l.usingCurrency, doc.Currencies[doc.MainCurrency].Name)
	fmt.Fprintf(&b, "\n**%s** %.2f\n", l.totalSpent, stats.Total)
	writeRow(&b, l.person, l.actualExpense, l.amountPaid, l.balance)
	writeSeparator(&b, 4)
	for _, person := range sortedKeys(stats.TotalExpenses) {
		writeRow(&b, person,
			fmt.Sprintf("%.2f", stats.TotalExpenses[person]),
			fmt.Sprintf("%.2f", stats.TotalPaid[person]),
			fmt.Sprintf("%.2f", stats.Balance[person]),
		)
	}

	// Entries, grouped by section, sorted by time within each section.
	currentSection := ""
	for i, entry := range sortEntries(doc.Entries) {
		if i == 0 || entry.SectionTitle != currentSection {
			currentSection = entry.SectionTitle
			fmt.Fprintf(&b, "\n## %s\n", currentSection)
		}
		fmt.Fprintf(&b, "\n### %s\n", entry.Title)
		fmt.Fprintf(&b, "\n> %s\n", entry.Description)
		fmt.Fprintf(&b, "\n%s\n", l.expenseLine(&entry))

		people := sortedKeys(entry.Splits)
		amounts := make([]string, len(people))
		for j, person := range people {
			amounts[j] = fmt.Sprintf("%.2f", entry.Splits[person])
		}
		writeRow(&b, people...)
		writeSeparator(&b, len(people))
		writeRow(&b, amounts...)
	}

	// Extra payments.
	fmt.Fprintf(&b, "\n## %s\n", l.extraPayments)
	if len(doc.ExtraPayments) > 0 {
		writeRow(&b, l.payer, l.receiver, l.amount)
		writeSeparator(&b, 3)
		for _, payment := range doc.ExtraPayments {
			writeRow(&b, payment.Payer, payment.Receiver, fmt.Sprintf("%.2f", payment.Amount))
		}
	}

	// Developer footer with the retained source for traceability.
	fmt.Fprintf(&b, "\n## %s\n", l.devInfo)
	fmt.Fprintf(&b, "\n"+l.versionLine+"\n", xplit.Version)
	fmt.Fprintf(&b, "\n"+l.generatedLine+"\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "\n%s\n\n```plaintext\n%s\n```\n", l.sourceLine, strings.TrimRight(doc.OriginalContent, "\n"))
	return b.String(), nil
}

// sortEntries keeps the document's section grouping (consecutive entries
// with the same section title stay a group, groups keep source order) and
// sorts each group by time, entries without a timestamp last.
func sortEntries(entries []models.Entry) []models.Entry {
	sorted := make([]models.Entry, 0, len(entries))
	var group []models.Entry
	flush := func() {
		sort.SliceStable(group, func(i, j int) bool {
			ti, tj := group[i].Time, group[j].Time
			if ti == nil || tj == nil {
				return tj == nil && ti != nil
			}
			return ti.Before(*tj)
		})
		sorted = append(sorted, group...)
		group = group[:0]
	}
	for i, entry := range entries {
		if i > 0 && entry.SectionTitle != entries[i-1].SectionTitle {
			flush()
		}
		group = append(group, entry)
	}
	flush()
	return sorted
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeRow(b *strings.Builder, cells ...string) {
	b.WriteString("\n| " + strings.Join(cells, " | ") + " |")
}

func writeSeparator(b *strings.Builder, columns int) {
	b.WriteString("\n|" + strings.Repeat(" --- |", columns))
}
