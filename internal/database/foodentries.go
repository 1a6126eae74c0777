package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plateful/plateful/internal/models"
)

// FoodEntryRepository handles food entry database operations. Ingredients
// are stored as a JSONB column since they are only ever read back whole.
type FoodEntryRepository struct {
	db *DB
}

// NewFoodEntryRepository creates a new food entry repository.
func NewFoodEntryRepository(db *DB) *FoodEntryRepository {
	return &FoodEntryRepository{db: db}
}

// Create saves a food entry, assigning its id and creation time.
func (r *FoodEntryRepository) Create(ctx context.Context, entry *models.FoodEntry) error {
	ingredients, err := json.Marshal(entry.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	entry.ID = uuid.New()

	query := `
		INSERT INTO food_entries (id, user_id, name, calories, ingredients, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Name,
		entry.Calories,
		ingredients,
		entry.ImageURL,
		time.Now(),
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create food entry: %w", err)
	}

	return nil
}

// GetByUserID lists a user's food entries, newest first.
func (r *FoodEntryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.FoodEntry, error) {
	query := `
		SELECT id, user_id, name, calories, ingredients, image_url, created_at
		FROM food_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.query(ctx, query, userID)
}

// GetByUserIDAndDay lists a user's food entries for the calendar day
// containing the given time, newest first.
func (r *FoodEntryRepository) GetByUserIDAndDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.FoodEntry, error) {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	query := `
		SELECT id, user_id, name, calories, ingredients, image_url, created_at
		FROM food_entries
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`

	return r.query(ctx, query, userID, startOfDay, endOfDay)
}

func (r *FoodEntryRepository) query(ctx context.Context, query string, args ...any) ([]*models.FoodEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query food entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.FoodEntry{}
	for rows.Next() {
		entry := &models.FoodEntry{}
		var ingredients []byte
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Name,
			&entry.Calories,
			&ingredients,
			&entry.ImageURL,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food entry: %w", err)
		}
		if err := json.Unmarshal(ingredients, &entry.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate food entries: %w", err)
	}

	return entries, nil
}
