package account

import "errors"

var (
	// ErrNotFound is returned when the referenced bank account does not exist.
	ErrNotFound = errors.New("could not find bank account")

	// ErrBlocked is returned when a balance-affecting operation targets a
	// blocked account.
	ErrBlocked = errors.New("bank account is blocked")

	// ErrInsufficientFunds is returned when a debit exceeds the available
	// balance of the debited account.
	ErrInsufficientFunds = errors.New("insufficient funds for withdraw operation")

	// ErrTransferTimeout is returned when a transfer could not acquire both
	// account locks and validate within its transaction window. No balance
	// change is visible in that case.
	ErrTransferTimeout = errors.New("transfer timed out")
)
