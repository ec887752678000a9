package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Validation failures raised by the ledger core. Handlers translate these
// to client-error responses; anything else is an internal error.
var (
	ErrNonPositiveAmount    = errors.New("amount must be greater than 0")
	ErrSubCentAmount        = errors.New("amount must not have more than 2 decimal places")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participants must be unique")
)

// Split is a single debtor→creditor obligation produced from one expense.
type Split struct {
	DebtorID   int
	CreditorID int
	Amount     decimal.Decimal
	Settled    bool
}

var cent = decimal.New(1, -2)

// SplitEqually divides an expense of the given amount, paid by payerID,
// equally among the participants. Division happens in whole cents with
// largest-remainder redistribution: the first amount%n participants carry one
// extra cent, so the split amounts always sum to the amount exactly.
//
// The payer may appear among the participants; the resulting self-split
// (debtor == creditor) is valid and neutral in balance aggregation.
func SplitEqually(amount decimal.Decimal, payerID int, participantIDs []int) ([]Split, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNonPositiveAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, ErrSubCentAmount
	}
	if len(participantIDs) == 0 {
		return nil, ErrNoParticipants
	}

	seen := make(map[int]bool, len(participantIDs))
	for _, id := range participantIDs {
		if seen[id] {
			return nil, ErrDuplicateParticipant
		}
		seen[id] = true
	}

	n := int64(len(participantIDs))
	totalCents := amount.Div(cent).IntPart()
	baseCents := totalCents / n
	extraCents := totalCents % n

	splits := make([]Split, 0, len(participantIDs))
	for i, id := range participantIDs {
		cents := baseCents
		if int64(i) < extraCents {
			cents++
		}
		splits = append(splits, Split{
			DebtorID:   id,
			CreditorID: payerID,
			Amount:     decimal.New(cents, -2),
			Settled:    false,
		})
	}

	return splits, nil
}
