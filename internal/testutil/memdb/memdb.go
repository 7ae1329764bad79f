// Package memdb is an in-memory repository set for tests.
package memdb

import (
	"context"
	"strings"
	"sync"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
)

// Store is an in-memory stand-in for the database. WithinTx rolls back on error.
type Store struct {
	mu         sync.Mutex
	users      map[int64]entity.User
	recipes    []entity.Recipe
	nextUser   int64
	nextRecipe int64
}

func New() *Store {
	return &Store{users: map[int64]entity.User{}}
}

type memSnapshot struct {
	users      map[int64]entity.User
	recipes    []entity.Recipe
	nextUser   int64
	nextRecipe int64
}

func (s *Store) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make(map[int64]entity.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	return memSnapshot{users: users, recipes: append([]entity.Recipe(nil), s.recipes...), nextUser: s.nextUser, nextRecipe: s.nextRecipe}
}

func (s *Store) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.recipes, s.nextUser, s.nextRecipe = snap.users, snap.recipes, snap.nextUser, snap.nextRecipe
}

// Repositories returns repositories backed by s.
func (s *Store) Repositories() repo.Repositories {
	return repo.Repositories{Users: memUsers{s}, Recipes: memRecipes{s}}
}

// Tx returns a TxManager over s.
func (s *Store) Tx() repo.TxManager { return memTx{s} }

type memTx struct{ s *Store }

func (t memTx) WithinTx(_ context.Context, fn func(repos repo.Repositories) error) error {
	snap := t.s.snapshot()
	if err := fn(t.s.Repositories()); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// UserCount is used by tests to assert nothing was persisted.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) RecipeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recipes)
}

type memUsers struct{ s *Store }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return repo.ErrDuplicate
		}
	}
	r.s.nextUser++
	u.ID = r.s.nextUser
	stored := *u
	stored.Recipes = nil
	r.s.users[u.ID] = stored
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.users, id)
	kept := r.s.recipes[:0]
	for _, rec := range r.s.recipes {
		if !rec.OwnedBy(id) {
			kept = append(kept, rec)
		}
	}
	r.s.recipes = kept
	return nil
}

func (r memUsers) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.users))
	r.s.users = map[int64]entity.User{}
	r.s.recipes = nil
	return n, nil
}

type memRecipes struct{ s *Store }

func (r memRecipes) Create(_ context.Context, rec *entity.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRecipe++
	rec.ID = r.s.nextRecipe
	stored := *rec
	stored.User = nil
	r.s.recipes = append(r.s.recipes, stored)
	return nil
}

func (r memRecipes) ListByUser(_ context.Context, userID int64) ([]entity.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Recipe, 0)
	for _, rec := range r.s.recipes {
		if rec.OwnedBy(userID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r memRecipes) SearchByUser(ctx context.Context, userID int64, query string, limit int) ([]entity.Recipe, error) {
	all, _ := r.ListByUser(ctx, userID)
	q := strings.ToLower(query)
	out := make([]entity.Recipe, 0)
	for _, rec := range all {
		if strings.Contains(strings.ToLower(rec.Title), q) || strings.Contains(strings.ToLower(rec.Instructions), q) {
			out = append(out, rec)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memRecipes) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.recipes))
	r.s.recipes = nil
	return n, nil
}
