package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vdyakov/account-manager/pkg/domain/account"
	"github.com/vdyakov/account-manager/pkg/repository"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository bound to the given
// session. Inside a unit of work the session is the open transaction, so
// locks taken by LockForUpdate last until commit or rollback.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Get implements repository.AccountRepository.
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapAccountError(err)
	}
	return accountToDomain(&m), nil
}

// LockForUpdate implements repository.AccountRepository. The row stays
// exclusively locked until the enclosing transaction ends.
func (r *accountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapAccountError(err)
	}
	return accountToDomain(&m), nil
}

// Create implements repository.AccountRepository.
func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := accountToModel(a)
	return r.db.WithContext(ctx).Create(m).Error
}

// Update implements repository.AccountRepository.
func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	return r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"balance":    a.Balance,
			"status":     string(a.Status),
			"updated_at": a.UpdatedAt,
		}).Error
}

// Delete implements repository.AccountRepository.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Account{}, "id = ?", id).Error
}

// ListAll implements repository.AccountRepository.
func (r *accountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	var models []Account
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*account.Account, 0, len(models))
	for i := range models {
		result = append(result, accountToDomain(&models[i]))
	}
	return result, nil
}

// ListByOwner implements repository.AccountRepository.
func (r *accountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	var models []Account
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	result := make([]*account.Account, 0, len(models))
	for i := range models {
		result = append(result, accountToDomain(&models[i]))
	}
	return result, nil
}

func mapAccountError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.ErrNotFound
	}
	return err
}

func accountToDomain(m *Account) *account.Account {
	return account.NewFromData(
		m.ID, m.OwnerID, m.Balance, account.Status(m.Status), m.CreatedAt, m.UpdatedAt,
	)
}

func accountToModel(a *account.Account) *Account {
	return &Account{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Balance:   a.Balance,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
