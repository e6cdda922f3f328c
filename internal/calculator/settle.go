package calculator

import "sort"

// Transfer is a suggested payment from one person to another.
type Transfer struct {
	From   string // person who owes
	To     string // person who is owed
	Amount float64
}

// party is one side of the settlement matching.
type party struct {
	name   string
	amount float64 // always positive
}

// SuggestSettlements turns the net balances of a document into a small set
// of transfers that would zero everyone out.
//
// Greedy matching: largest debts are paired with largest credits first, so
// the number of transfers never exceeds people-with-nonzero-balance minus
// one. Transfers below a cent are dropped as floating-point noise.
func SuggestSettlements(stats *Stats) []Transfer {
	var creditors, debtors []party
	for name, balance := range stats.Balance {
		switch {
		case balance > 0.01:
			creditors = append(creditors, party{name, balance})
		case balance < -0.01:
			debtors = append(debtors, party{name, -balance})
		}
	}
	sortParties(creditors)
	sortParties(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}
		if amount > 0.01 {
			transfers = append(transfers, Transfer{
				From:   debtors[i].name,
				To:     creditors[j].name,
				Amount: amount,
			})
		}
		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount < 0.01 {
			i++
		}
		if creditors[j].amount < 0.01 {
			j++
		}
	}
	return transfers
}

// sortParties orders by amount descending, name ascending on ties, so the
// suggestions are deterministic regardless of map iteration order.
func sortParties(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].amount != parties[j].amount {
			return parties[i].amount > parties[j].amount
		}
		return parties[i].name < parties[j].name
	})
}
