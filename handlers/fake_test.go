package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/padraicbc/recipeapi/models"
	"github.com/padraicbc/recipeapi/store"
)

// fakeRepo is an in-memory store.Repository with the same uniqueness and
// ownership rules as the SQL schema.
type fakeRepo struct {
	mu      sync.Mutex
	users   []models.User
	recipes []models.Recipe

	listErr       error
	createUserErr error
}

var _ store.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createUserErr != nil {
		return f.createUserErr
	}

	for _, existing := range f.users {
		if existing.Username == u.Username {
			return fmt.Errorf("create user: %w: duplicate username", store.ErrIntegrity)
		}
	}
	u.ID = int64(len(f.users) + 1)
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeRepo) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user: %w", store.ErrNotFound)
}

func (f *fakeRepo) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userByID(id)
}

func (f *fakeRepo) userByID(id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user: %w", store.ErrNotFound)
}

func (f *fakeRepo) CreateRecipe(_ context.Context, r *models.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	owner, err := f.userByID(r.UserID)
	if err != nil {
		return fmt.Errorf("create recipe: %w: unknown owner", store.ErrIntegrity)
	}
	r.ID = int64(len(f.recipes) + 1)
	r.User = owner
	f.recipes = append(f.recipes, *r)
	return nil
}

func (f *fakeRepo) ListRecipesByOwner(_ context.Context, userID int64) ([]*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []*models.Recipe
	for _, r := range f.recipes {
		if r.UserID == userID {
			r := r
			out = append(out, &r)
		}
	}
	return out, nil
}

func (f *fakeRepo) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *fakeRepo) recipeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recipes)
}

func (f *fakeRepo) failList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeRepo) failCreateUser(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createUserErr = err
}

// dropUsers forgets every user while leaving sessions intact, so later
// writes reference an owner that no longer exists.
func (f *fakeRepo) dropUsers() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = nil
}
