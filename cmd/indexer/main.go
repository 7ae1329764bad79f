package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/internal/infrastructure/events"
	"github.com/oksasatya/recipe-api/internal/infrastructure/search"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

// indexer consumes recipe.created events and writes them to Elasticsearch.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQRecipeQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		log.Fatal("Elasticsearch not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	index := search.NewRecipeIndex(es, cfg.ESRecipesIndex, logger)
	if err := index.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index: %v", err)
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQRecipeQueue, 16)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Consume("")
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	logger.Infof("indexer listening on queue=%s", cfg.RabbitMQRecipeQueue)
	events.NewConsumer(index, logger).Run(ctx, msgs)
	logger.Info("indexer stopped")
}
