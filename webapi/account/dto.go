package account

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CreateAccountRequest opens an account for an existing owner.
type CreateAccountRequest struct {
	OwnerID string `json:"ownerId" validate:"required,uuid"`
}

// DepositRequest carries the deposit amount as a string so no precision is
// lost in transit.
type DepositRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// WithdrawRequest carries the withdraw amount as a string.
type WithdrawRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// TransferRequest moves an amount between two accounts.
type TransferRequest struct {
	FromID string `json:"bankAccountIdFrom" validate:"required,uuid"`
	ToID   string `json:"bankAccountIdTo" validate:"required,uuid"`
	Amount string `json:"amount" validate:"required"`
}

var errNegativeAmount = errors.New("amount must not be negative")

// parseAmount parses a decimal amount and rejects negative values at the
// boundary; the ledger itself treats amounts as caller-validated.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, errNegativeAmount
	}
	return amount, nil
}
