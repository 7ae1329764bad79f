package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
)

type RecipeRepository struct {
	db DBTX
}

func NewRecipeRepository(db DBTX) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) Create(ctx context.Context, rec *entity.Recipe) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO recipes (title, instructions, minutes_to_complete, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, rec.Title, rec.Instructions, rec.MinutesToComplete, rec.UserID)

	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Recipe, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, instructions, minutes_to_complete, user_id
		FROM recipes
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return collectRecipes(rows)
}

// SearchByUser matches query against title and instructions, case-insensitive.
func (r *RecipeRepository) SearchByUser(ctx context.Context, userID int64, query string, limit int) ([]entity.Recipe, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.Query(ctx, `
		SELECT id, title, instructions, minutes_to_complete, user_id
		FROM recipes
		WHERE user_id = $1 AND (title ILIKE $2 OR instructions ILIKE $2)
		ORDER BY id
		LIMIT $3
	`, userID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return collectRecipes(rows)
}

func (r *RecipeRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM recipes`)
	if err != nil {
		return 0, fmt.Errorf("delete recipes: %w", err)
	}
	return res.RowsAffected(), nil
}

func collectRecipes(rows pgx.Rows) ([]entity.Recipe, error) {
	defer rows.Close()

	out := make([]entity.Recipe, 0)
	for rows.Next() {
		var (
			rec   entity.Recipe
			owner pgtype.Int8
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Instructions, &rec.MinutesToComplete, &owner); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		if owner.Valid {
			id := owner.Int64
			rec.UserID = &id
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
