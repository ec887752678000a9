package ledger

import "github.com/shopspring/decimal"

// Balance is a user's outstanding position across every split visible to
// them. It reports outstanding amounts only, not lifetime volume: settled
// splits are excluded entirely.
type Balance struct {
	TotalOwed  decimal.Decimal `json:"total_owed"`
	TotalOwing decimal.Decimal `json:"total_owing"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

// ComputeBalance aggregates the user's unsettled splits into what they owe
// and what they are owed. It is a pure function of its inputs: no hidden
// state, no ordering dependency, identical inputs give identical output.
//
// Self-splits (debtor == creditor) contribute to neither bucket, and both
// buckets are clamped to be non-negative.
func ComputeBalance(userID int, splits []Split) Balance {
	owed := decimal.Zero
	owing := decimal.Zero

	for _, s := range splits {
		if s.Settled || s.DebtorID == s.CreditorID {
			continue
		}
		if s.DebtorID == userID {
			owing = owing.Add(s.Amount)
		} else if s.CreditorID == userID {
			owed = owed.Add(s.Amount)
		}
	}

	if owed.IsNegative() {
		owed = decimal.Zero
	}
	if owing.IsNegative() {
		owing = decimal.Zero
	}

	return Balance{
		TotalOwed:  owed,
		TotalOwing: owing,
		NetBalance: owed.Sub(owing),
	}
}
