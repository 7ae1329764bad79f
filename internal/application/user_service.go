package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
)

// AfterInsert runs inside the signup transaction once the user has an id.
// Returning an error rolls the new user back.
type AfterInsert func(ctx context.Context, u *entity.User) error

type UserService struct {
	Tx      repo.TxManager
	Users   repo.UserRepository
	Recipes repo.RecipeRepository
	Hasher  entity.PasswordHasher
	Logger  *logrus.Logger

	dummyOnce sync.Once
	dummy     string
}

func NewUserService(tx repo.TxManager, repos repo.Repositories, hasher entity.PasswordHasher, logger *logrus.Logger) *UserService {
	return &UserService{Tx: tx, Users: repos.Users, Recipes: repos.Recipes, Hasher: hasher, Logger: logger}
}

type SignupInput struct {
	Username string
	Password string
	ImageURL string
	Bio      string
}

func (s *UserService) Signup(ctx context.Context, in SignupInput, afterInsert AfterInsert) (*entity.User, error) {
	u, err := entity.NewUser(in.Username, in.ImageURL, in.Bio)
	if err != nil {
		return nil, err
	}
	if err := u.SetPassword(s.Hasher, in.Password); err != nil {
		return nil, err
	}

	err = s.Tx.WithinTx(ctx, func(repos repo.Repositories) error {
		if err := repos.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrUsernameTaken
			}
			return err
		}
		if afterInsert != nil {
			return afterInsert(ctx, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.Recipes = []entity.Recipe{}
	return u, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown username and
// a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// keep timing close to the wrong-password path
			s.Hasher.Compare(s.dummyDigest(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !u.CheckPassword(s.Hasher, password) {
		return nil, ErrInvalidCredentials
	}
	return s.withRecipes(ctx, u)
}

// GetProfile loads a user together with the recipes they own.
func (s *UserService) GetProfile(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.withRecipes(ctx, u)
}

// Delete removes a user; their recipes go with them.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.Tx.WithinTx(ctx, func(repos repo.Repositories) error {
		return repos.Users.Delete(ctx, id)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) withRecipes(ctx context.Context, u *entity.User) (*entity.User, error) {
	recipes, err := s.Recipes.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list user recipes: %w", err)
	}
	u.Recipes = recipes
	return u, nil
}

func (s *UserService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		d, err := s.Hasher.Hash("not-a-real-password")
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("dummy hash failed")
		}
		s.dummy = d
	})
	return s.dummy
}
