package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// ErrValidation marks a model that failed field validation.
var ErrValidation = errors.New("validation failed")

// MaxUsernameLength matches the users.username column width.
const MaxUsernameLength = 255

// User owns recipes and signs in with a bcrypt-hashed password.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64   `bun:"id,pk,autoincrement" json:"id"`
	Username     string  `bun:"username,notnull,unique" json:"username"`
	PasswordHash string  `bun:"password_hash,notnull" json:"-"`
	ImageURL     *string `bun:"image_url" json:"image_url"`
	Bio          *string `bun:"bio" json:"bio"`
}

// NewUser validates the signup fields and returns a user with the password hashed.
func NewUser(username, password string, imageURL, bio *string) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, fmt.Errorf("%w: username must be at most %d characters", ErrValidation, MaxUsernameLength)
	}
	u := &User{Username: username, ImageURL: imageURL, Bio: bio}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash. The plain text is not kept.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return err
	}

	u.PasswordHash = string(hash)
	return nil
}

// Authenticate reports whether password matches the stored hash.
func (u *User) Authenticate(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
