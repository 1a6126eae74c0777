package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plateful/plateful/internal/models"
)

// UserStore defines the account operations handlers depend on. The
// interface enables in-memory implementations in tests.
type UserStore interface {
	Create(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
}

// FoodEntryStore defines the food entry operations handlers depend on.
type FoodEntryStore interface {
	Create(ctx context.Context, entry *models.FoodEntry) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.FoodEntry, error)
	GetByUserIDAndDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.FoodEntry, error)
}
