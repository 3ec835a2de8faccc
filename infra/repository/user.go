package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vdyakov/account-manager/pkg/domain/user"
	"github.com/vdyakov/account-manager/pkg/repository"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository bound to the given session.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Get implements repository.UserRepository.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return userToDomain(&m), nil
}

// Create implements repository.UserRepository.
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	m := &User{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// ListAll implements repository.UserRepository.
func (r *userRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	var models []User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*user.User, 0, len(models))
	for i := range models {
		result = append(result, userToDomain(&models[i]))
	}
	return result, nil
}

func userToDomain(m *User) *user.User {
	return user.NewFromData(m.ID, m.Name, m.Surname, m.CreatedAt, m.UpdatedAt)
}
