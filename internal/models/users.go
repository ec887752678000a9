package models

import "database/sql"

type User struct {
	ID        int            `json:"id,omitempty" db:"id,omitempty"`
	Phone     string         `json:"phone,omitempty" db:"phone,omitempty"`
	Name      sql.NullString `json:"name,omitempty" db:"name,omitempty"`
	Email     sql.NullString `json:"email,omitempty" db:"email,omitempty"`
	Image     sql.NullString `json:"image,omitempty" db:"image,omitempty"`
	CreatedAt sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}
