package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vdyakov/account-manager/pkg/domain/user"
)

type userRepository struct {
	store *Store
}

// Get implements repository.UserRepository.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

// Create implements repository.UserRepository.
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[u.ID] = *u
	return nil
}

// ListAll implements repository.UserRepository.
func (r *userRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	r.store.mu.Lock()
	result := make([]*user.User, 0, len(r.store.users))
	for id := range r.store.users {
		u := r.store.users[id]
		result = append(result, &u)
	}
	r.store.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
