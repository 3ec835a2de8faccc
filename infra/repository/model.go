// Package repository provides the gorm-backed implementations of the data
// access contracts in pkg/repository. Row exclusive locking maps to
// SELECT ... FOR UPDATE; the unit of work maps to a database transaction.
package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the database model for account owners.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Surname   string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Accounts  []Account `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string { return "users" }

// Account is the database model for bank accounts. Balance maps to a
// Postgres numeric column so the stored value keeps decimal precision.
type Account struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Status    string          `gorm:"type:varchar(7);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "bank_accounts" }
