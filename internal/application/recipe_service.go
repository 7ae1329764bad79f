package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
)

const defaultSearchLimit = 20

// RecipeEvents is told about recipes after they are committed.
type RecipeEvents interface {
	RecipeCreated(ctx context.Context, rec *entity.Recipe) error
}

// RecipeSearcher finds a user's recipes by free text.
type RecipeSearcher interface {
	Search(ctx context.Context, userID int64, query string, limit int) ([]entity.Recipe, error)
}

type RecipeService struct {
	Tx       repo.TxManager
	Users    repo.UserRepository
	Recipes  repo.RecipeRepository
	Events   RecipeEvents
	Searcher RecipeSearcher
	Logger   *logrus.Logger
}

// NewRecipeService wires the service. events and searcher may be nil; search
// then falls back to the database.
func NewRecipeService(tx repo.TxManager, repos repo.Repositories, events RecipeEvents, searcher RecipeSearcher, logger *logrus.Logger) *RecipeService {
	return &RecipeService{Tx: tx, Users: repos.Users, Recipes: repos.Recipes, Events: events, Searcher: searcher, Logger: logger}
}

type CreateRecipeInput struct {
	Title             string
	Instructions      string
	MinutesToComplete int
}

// ListForUser returns the recipes owned by userID with the owner attached.
func (s *RecipeService) ListForUser(ctx context.Context, userID int64) ([]entity.Recipe, error) {
	recipes, err := s.Recipes.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return s.attachOwner(ctx, userID, recipes)
}

func (s *RecipeService) attachOwner(ctx context.Context, userID int64, recipes []entity.Recipe) ([]entity.Recipe, error) {
	if len(recipes) == 0 {
		return recipes, nil
	}
	owner, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return recipes, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load recipe owner: %w", err)
	}
	for i := range recipes {
		if recipes[i].OwnedBy(userID) {
			recipes[i].User = owner
		}
	}
	return recipes, nil
}

// Create stores a recipe for the session's user. When that user no longer
// exists the recipe is stored without an owner.
func (s *RecipeService) Create(ctx context.Context, userID int64, in CreateRecipeInput) (*entity.Recipe, error) {
	var rec *entity.Recipe
	err := s.Tx.WithinTx(ctx, func(repos repo.Repositories) error {
		owner, err := repos.Users.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		rec, err = entity.NewRecipe(in.Title, in.Instructions, in.MinutesToComplete, owner)
		if err != nil {
			return err
		}
		return repos.Recipes.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	if s.Events != nil {
		if err := s.Events.RecipeCreated(ctx, rec); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("recipe_id", rec.ID).Warn("recipe created event failed")
		}
	}
	return rec, nil
}

// Search returns the user's recipes matching query. A blank query lists them all.
func (s *RecipeService) Search(ctx context.Context, userID int64, query string, limit int) ([]entity.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListForUser(ctx, userID)
	}
	if limit <= 0 || limit > 50 {
		limit = defaultSearchLimit
	}
	if s.Searcher != nil {
		found, err := s.Searcher.Search(ctx, userID, query, limit)
		if err == nil {
			return s.attachOwner(ctx, userID, found)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("search index failed, falling back to database")
		}
	}
	found, err := s.Recipes.SearchByUser(ctx, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return s.attachOwner(ctx, userID, found)
}
