// Package store isolates user and recipe persistence behind Repository.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/padraicbc/recipeapi/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrIntegrity = errors.New("integrity violation")

	// ErrInvalidData is returned when the database rejects a value as too
	// long, out of range or otherwise not storable in its column.
	ErrInvalidData = errors.New("invalid data")
)

// Repository is the persistence contract used by the handlers.
type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateRecipe(ctx context.Context, r *models.Recipe) error
	ListRecipesByOwner(ctx context.Context, userID int64) ([]*models.Recipe, error)
}

// Bun implements Repository on a bun database handle.
type Bun struct {
	db *bun.DB
}

// NewBun returns a Repository backed by db.
func NewBun(db *bun.DB) *Bun {
	return &Bun{db: db}
}

// CreateUser inserts u in its own transaction and sets u.ID.
func (s *Bun) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(u).Exec(ctx)
		return err
	})
	if err != nil {
		return classify("create user", err)
	}
	return nil
}

// FindUserByUsername returns the user with exactly this username.
func (s *Bun) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := s.db.NewSelect().Model(u).
		Where("u.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, classify("find user", err)
	}
	return u, nil
}

// FindUserByID returns the user with the given id.
func (s *Bun) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	err := s.db.NewSelect().Model(u).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, classify("find user", err)
	}
	return u, nil
}

// CreateRecipe validates and inserts r in its own transaction, then loads its owner.
func (s *Bun) CreateRecipe(ctx context.Context, r *models.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(r).Exec(ctx); err != nil {
			return err
		}
		owner := &models.User{}
		if err := tx.NewSelect().Model(owner).Where("u.id = ?", r.UserID).Scan(ctx); err != nil {
			return err
		}
		r.User = owner
		return nil
	})
	if err != nil {
		return classify("create recipe", err)
	}
	return nil
}

// ListRecipesByOwner returns the user's recipes in creation order.
func (s *Bun) ListRecipesByOwner(ctx context.Context, userID int64) ([]*models.Recipe, error) {
	recipes := make([]*models.Recipe, 0)
	err := s.db.NewSelect().Model(&recipes).
		Relation("User").
		Where("r.user_id = ?", userID).
		OrderExpr("r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, classify("list recipes", err)
	}
	return recipes, nil
}

// IsIntegrityViolation reports whether err is a uniqueness, not-null,
// foreign-key or check constraint rejection from PostgreSQL or MySQL.
func IsIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1048, // column cannot be null
			1062, // duplicate entry
			1216, 1217, 1451, 1452, // foreign key
			3819: // check constraint
			return true
		}
	}
	return false
}

// IsDataException reports whether err is a PostgreSQL data exception
// (SQLSTATE class 22) or a MySQL value-too-long / out-of-range error.
func IsDataException(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Field('C'), "22")
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1264, // out of range
			1366, // incorrect value
			1406: // data too long
			return true
		}
	}
	return false
}

// IsRejected reports whether err means the write itself was unacceptable,
// as opposed to the database being unavailable.
func IsRejected(err error) bool {
	return errors.Is(err, ErrIntegrity) || errors.Is(err, ErrInvalidData)
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case IsIntegrityViolation(err):
		return fmt.Errorf("%s: %w: %v", op, ErrIntegrity, err)
	case IsDataException(err):
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidData, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
