// Package account holds the bank account entity and the error taxonomy of
// the ledger. Balances use exact decimal arithmetic; binary floating point
// would drift over repeated deposits and withdrawals.
package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a bank account.
type Status string

const (
	// StatusActive allows every balance-affecting operation.
	StatusActive Status = "ACTIVE"
	// StatusBlocked rejects deposits, withdrawals and transfers until the
	// account is activated again.
	StatusBlocked Status = "BLOCKED"
)

// Account is a bank account owned by a user. ID and OwnerID are fixed at
// creation; Balance and Status are mutated exclusively through the ledger
// service.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"ownerId"`
	Balance   decimal.Decimal `json:"balance"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// New creates an Active account with a zero balance for the given owner.
func New(ownerID uuid.UUID) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Balance:   decimal.Zero,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewFromData hydrates an Account from stored data. Intended for repository
// implementations and test fixtures only.
func NewFromData(
	id, ownerID uuid.UUID,
	balance decimal.Decimal,
	status Status,
	created, updated time.Time,
) *Account {
	return &Account{
		ID:        id,
		OwnerID:   ownerID,
		Balance:   balance,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// Blocked reports whether the account refuses balance-affecting operations.
func (a *Account) Blocked() bool {
	return a.Status == StatusBlocked
}
