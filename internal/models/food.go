package models

import (
	"time"

	"github.com/google/uuid"
)

// FoodIngredient is a single ingredient in a nutrition estimate.
type FoodIngredient struct {
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	Percentage float64 `json:"percentage"`
}

// FoodAnalysis is the nutrition estimate produced for a food photo.
type FoodAnalysis struct {
	Name        string           `json:"name"`
	Calories    float64          `json:"calories"`
	Ingredients []FoodIngredient `json:"ingredients"`
}

// FoodEntry is a saved meal record.
type FoodEntry struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"userId"`
	Name        string           `json:"name"`
	Calories    float64          `json:"calories"`
	Ingredients []FoodIngredient `json:"ingredients"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}
