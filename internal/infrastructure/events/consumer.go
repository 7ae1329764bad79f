package events

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

// RecipeIndexer stores a recipe in the search index.
type RecipeIndexer interface {
	Index(ctx context.Context, rec *entity.Recipe) error
}

// Consumer drains recipe.created deliveries into a RecipeIndexer.
type Consumer struct {
	Indexer RecipeIndexer
	Logger  *logrus.Logger
	Timeout time.Duration
}

func NewConsumer(indexer RecipeIndexer, logger *logrus.Logger) *Consumer {
	return &Consumer{Indexer: indexer, Logger: logger, Timeout: 15 * time.Second}
}

// Run handles deliveries until msgs is closed or ctx is done.
func (c *Consumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle acks indexed messages, drops malformed ones and requeues the rest.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	log := c.Logger.WithFields(logrus.Fields{"message_id": d.MessageId, "type": d.Type})

	if d.Type != "" && d.Type != RecipeCreatedType {
		log.Warn("unexpected message type, dropping")
		_ = d.Nack(false, false)
		return
	}

	ev, err := DecodeRecipeCreated(d.Body)
	if err != nil {
		log.WithError(err).Warn("bad message")
		_ = d.Nack(false, false)
		return
	}

	ictx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	if err := c.Indexer.Index(ictx, ev.Recipe()); err != nil {
		log.WithError(err).WithField("recipe_id", ev.RecipeID).Error("index recipe failed")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}
