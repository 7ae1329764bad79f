package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
	pginfra "github.com/oksasatya/recipe-api/internal/infrastructure/postgres"
	"github.com/oksasatya/recipe-api/internal/infrastructure/session"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

// Container is the application context built once in main and handed to the
// router. Events and Searcher are nil when not configured.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Redis    *redis.Client
	Sessions *session.Manager

	Tx     repository.TxManager
	Repos  repository.Repositories
	Hasher entity.PasswordHasher

	Events   application.RecipeEvents
	Searcher application.RecipeSearcher
}

// New wires the Postgres repositories and the redis session manager.
func New(cfg *config.Config, logger *logrus.Logger, pool *pgxpool.Pool, rdb *redis.Client) *Container {
	return &Container{
		Config:   cfg,
		Logger:   logger,
		Redis:    rdb,
		Sessions: NewSessionManager(cfg, rdb, logger),
		Tx:       pginfra.NewTxManager(pool),
		Repos:    pginfra.NewRepositories(pool),
		Hasher:   helpers.NewBcryptHasher(0),
	}
}

// NewSessionManager builds the cookie-backed session manager from config.
func NewSessionManager(cfg *config.Config, rdb redis.Cmdable, logger *logrus.Logger) *session.Manager {
	return session.NewManager(
		session.NewStore(rdb, cfg.SessionTTL),
		helpers.NewSessionTokenManager(cfg.SessionSecret, cfg.SessionTTL),
		helpers.NewCookie(cfg.SessionCookieName, cfg.CookieDomain, cfg.CookieSecure),
		logger,
	)
}
