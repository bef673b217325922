package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenhq/paysvc/internal/domain/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}
