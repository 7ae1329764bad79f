package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
	pginfra "github.com/oksasatya/recipe-api/internal/infrastructure/postgres"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

const (
	userCount   = 20
	recipeCount = 100
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	faker := gofakeit.New(0)
	hasher := helpers.NewBcryptHasher(0)

	err = pginfra.NewTxManager(pool).WithinTx(ctx, func(repos repository.Repositories) error {
		return seed(ctx, repos, hasher, faker)
	})
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	logger.Info("seeding complete")
}

func seed(ctx context.Context, repos repository.Repositories, hasher entity.PasswordHasher, f *gofakeit.Faker) error {
	if _, err := repos.Recipes.DeleteAll(ctx); err != nil {
		return err
	}
	if _, err := repos.Users.DeleteAll(ctx); err != nil {
		return err
	}
	fmt.Println("cleared recipes and users")

	seen := make(map[string]struct{}, userCount)
	users := make([]*entity.User, 0, userCount)
	for len(users) < userCount {
		username := strings.ToLower(f.FirstName())
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}

		u, err := entity.NewUser(username, f.URL(), f.Paragraph(1, 3, 12, " "))
		if err != nil {
			return err
		}
		if err := u.SetPassword(hasher, username+"password"); err != nil {
			return err
		}
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}
		users = append(users, u)
	}
	fmt.Printf("created %d users\n", len(users))

	for i := 0; i < recipeCount; i++ {
		instructions := f.Paragraph(1, 8, 10, " ")
		for len([]rune(strings.TrimSpace(instructions))) < entity.MinInstructionsLength {
			instructions += " " + f.Sentence(10)
		}
		owner := users[f.IntRange(0, len(users)-1)]
		rec, err := entity.NewRecipe(strings.TrimSuffix(f.Sentence(4), "."), instructions, f.IntRange(15, 90), owner)
		if err != nil {
			return err
		}
		if err := repos.Recipes.Create(ctx, rec); err != nil {
			return err
		}
	}
	fmt.Printf("created %d recipes\n", recipeCount)
	return nil
}
