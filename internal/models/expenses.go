package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Expense categories accepted at the API boundary.
var ExpenseCategories = map[string]bool{
	"FOOD":          true,
	"TRANSPORT":     true,
	"SHOPPING":      true,
	"ENTERTAINMENT": true,
	"UTILITIES":     true,
	"RENT":          true,
	"OTHER":         true,
}

type Expense struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	GroupID     int             `json:"group_id,omitempty" db:"group_id,omitempty"`
	PaidBy      int             `json:"paid_by,omitempty" db:"paid_by,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	Description string          `json:"description,omitempty" db:"description,omitempty"`
	Category    string          `json:"category,omitempty" db:"category,omitempty"`
	Date        sql.NullString  `json:"date,omitempty" db:"date,omitempty"`
	CreatedAt   sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}
