package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Settlement is an append-only ledger entry: once recorded it is never
// updated or deleted, except as part of group teardown.
type Settlement struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	GroupID     int             `json:"group_id,omitempty" db:"group_id,omitempty"`
	FromUser    int             `json:"from_user,omitempty" db:"from_user,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	Description sql.NullString  `json:"description,omitempty" db:"description,omitempty"`
	Date        sql.NullString  `json:"date,omitempty" db:"date,omitempty"`
	CreatedAt   sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}
