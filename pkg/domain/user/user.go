// Package user holds the account owner entity. Users are created outside
// the ledger core and must exist before an account can be opened for them.
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the referenced bank account owner does not
// exist.
var ErrNotFound = errors.New("could not find bank account owner")

// User owns zero or more bank accounts. Name and Surname are display
// attributes; the ledger never reads them.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates a user with a fresh identifier.
func New(name, surname string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Surname:   surname,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewFromData hydrates a User from stored data.
func NewFromData(id uuid.UUID, name, surname string, created, updated time.Time) *User {
	return &User{
		ID:        id,
		Name:      name,
		Surname:   surname,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}
