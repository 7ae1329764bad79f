package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Repositories groups repositories bound to the same connection or transaction.
type Repositories struct {
	Users   UserRepository
	Recipes RecipeRepository
}

// TxManager runs fn as a single commit-or-rollback unit. Any error returned
// by fn, or a panic inside it, rolls the transaction back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
