package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Split is one debtor→creditor obligation generated from an expense. It is
// created unsettled and flips to settled exactly once, when a settlement
// covers it.
type Split struct {
	ID         int             `json:"id,omitempty" db:"id,omitempty"`
	ExpenseID  int             `json:"expense_id,omitempty" db:"expense_id,omitempty"`
	DebtorID   int             `json:"debtor_id,omitempty" db:"debtor_id,omitempty"`
	CreditorID int             `json:"creditor_id,omitempty" db:"creditor_id,omitempty"`
	Amount     decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	Settled    bool            `json:"settled" db:"settled"`
	CreatedAt  sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}
