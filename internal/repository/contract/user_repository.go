package contract

import (
	"context"

	"task-manager-be/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail returns (nil, nil) when no account matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
