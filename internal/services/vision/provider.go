package vision

import (
	"context"

	"github.com/plateful/plateful/internal/models"
)

// Provider analyzes food photos.
type Provider interface {
	// AnalyzeFood estimates the dish name, calories, and ingredient
	// breakdown for a base64-encoded photo.
	AnalyzeFood(ctx context.Context, imageBase64 string) (*models.FoodAnalysis, error)
}
