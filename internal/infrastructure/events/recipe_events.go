package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

const RecipeCreatedType = "recipe.created"

// RecipeCreated is the queue message emitted after a recipe is committed.
type RecipeCreated struct {
	RecipeID          int64  `json:"recipe_id"`
	UserID            *int64 `json:"user_id"`
	Title             string `json:"title"`
	Instructions      string `json:"instructions"`
	MinutesToComplete int    `json:"minutes_to_complete"`
}

func NewRecipeCreated(rec *entity.Recipe) RecipeCreated {
	return RecipeCreated{
		RecipeID:          rec.ID,
		UserID:            rec.UserID,
		Title:             rec.Title,
		Instructions:      rec.Instructions,
		MinutesToComplete: rec.MinutesToComplete,
	}
}

// Recipe rebuilds the recipe carried by the event.
func (e RecipeCreated) Recipe() *entity.Recipe {
	return &entity.Recipe{
		ID:                e.RecipeID,
		Title:             e.Title,
		Instructions:      e.Instructions,
		MinutesToComplete: e.MinutesToComplete,
		UserID:            e.UserID,
	}
}

// DecodeRecipeCreated parses a message body. Bodies that can never be
// processed return an error wrapping ErrMalformed.
func DecodeRecipeCreated(body []byte) (RecipeCreated, error) {
	var ev RecipeCreated
	if err := json.Unmarshal(body, &ev); err != nil {
		return RecipeCreated{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.RecipeID <= 0 {
		return RecipeCreated{}, fmt.Errorf("%w: missing recipe_id", ErrMalformed)
	}
	return ev, nil
}

var ErrMalformed = errors.New("malformed event")

type jsonPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// QueuePublisher sends recipe events to RabbitMQ.
type QueuePublisher struct {
	pub jsonPublisher
}

func NewQueuePublisher(pub jsonPublisher) *QueuePublisher {
	return &QueuePublisher{pub: pub}
}

func (p *QueuePublisher) RecipeCreated(ctx context.Context, rec *entity.Recipe) error {
	return p.pub.PublishJSON(ctx, RecipeCreatedType, NewRecipeCreated(rec))
}
