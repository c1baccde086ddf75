package memory

import (
	"context"
	"strings"
	"sync"

	"task-manager-be/internal/entity"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User // keyed by lowercased email
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func (r *UserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *user
	r.users[strings.ToLower(user.Email)] = &stored
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	out := *user
	return &out, nil
}
