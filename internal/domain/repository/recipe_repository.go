package repository

import (
	"context"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	Create(ctx context.Context, r *entity.Recipe) error
	// ListByUser returns only recipes whose user_id equals userID.
	ListByUser(ctx context.Context, userID int64) ([]entity.Recipe, error)
	SearchByUser(ctx context.Context, userID int64, query string, limit int) ([]entity.Recipe, error)
	DeleteAll(ctx context.Context) (int64, error)
}
