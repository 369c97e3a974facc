package models

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/uptrace/bun"
)

// Field limits, matching the recipes table.
const (
	MinInstructionsLength = 50
	MaxTitleLength        = 255
	MaxMinutesToComplete  = math.MaxInt32
)

// Recipe belongs to exactly one user.
type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:r"`

	ID                int64  `bun:"id,pk,autoincrement" json:"id"`
	Title             string `bun:"title,notnull" json:"title"`
	Instructions      string `bun:"instructions,notnull" json:"instructions"`
	MinutesToComplete *int   `bun:"minutes_to_complete" json:"minutes_to_complete"`
	UserID            int64  `bun:"user_id,notnull" json:"-"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user"`
}

// Validate checks the fields enforced before a recipe is written.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(r.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, MaxTitleLength)
	}
	if n := utf8.RuneCountInString(r.Instructions); n < MinInstructionsLength {
		return fmt.Errorf("%w: instructions must be at least %d characters, got %d",
			ErrValidation, MinInstructionsLength, n)
	}
	if r.MinutesToComplete != nil && *r.MinutesToComplete < 0 {
		return fmt.Errorf("%w: minutes_to_complete must not be negative", ErrValidation)
	}
	if r.MinutesToComplete != nil && int64(*r.MinutesToComplete) > MaxMinutesToComplete {
		return fmt.Errorf("%w: minutes_to_complete must be at most %d", ErrValidation, MaxMinutesToComplete)
	}
	if r.UserID == 0 {
		return fmt.Errorf("%w: recipe must have an owner", ErrValidation)
	}
	return nil
}
