// Package calculator computes aggregate statistics and settlement
// suggestions over parsed documents.
package calculator

import "github.com/Gennadiyev/xplit-pay/internal/models"

// Stats holds the aggregate figures for one document. All amounts are in the
// document's main currency.
type Stats struct {
	// Total is the sum of every entry's expense.
	Total float64

	// TotalPaid maps a person to the sum of expenses over entries they paid.
	TotalPaid map[string]float64

	// TotalExpenses maps a person to the sum of their split amounts.
	TotalExpenses map[string]float64

	// Balance is TotalPaid minus TotalExpenses, adjusted by extra payments:
	// paying a settlement raises the payer's balance and lowers the
	// receiver's. Positive means the person should receive money.
	Balance map[string]float64
}

// Compute aggregates a completed document. It is a pure function; doc is not
// modified. People who appear only in extra payments get a balance entry
// seeded at zero before the adjustment.
func Compute(doc *models.Document) *Stats {
	s := &Stats{
		TotalPaid:     make(map[string]float64),
		TotalExpenses: make(map[string]float64),
		Balance:       make(map[string]float64),
	}
	for _, entry := range doc.Entries {
		s.Total += entry.Expense
		s.TotalPaid[entry.PaidBy] += entry.Expense
		for person, amount := range entry.Splits {
			s.TotalExpenses[person] += amount
		}
	}
	for person, owed := range s.TotalExpenses {
		s.Balance[person] = s.TotalPaid[person] - owed
	}
	for _, payment := range doc.ExtraPayments {
		if _, ok := s.Balance[payment.Payer]; !ok {
			s.Balance[payment.Payer] = 0
		}
		if _, ok := s.Balance[payment.Receiver]; !ok {
			s.Balance[payment.Receiver] = 0
		}
		s.Balance[payment.Payer] += payment.Amount
		s.Balance[payment.Receiver] -= payment.Amount
	}
	return s
}
