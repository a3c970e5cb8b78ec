// Package store holds user records keyed by email
package store

import (
	"context"
	"errors"
	"strings"

	"bitwise74/demo-app/internal/model"
)

var (
	ErrUserExists   = errors.New("user with this email already exists")
	ErrUserNotFound = errors.New("user not found")
)

const idLength = 16

// NewUser is the data needed to register an account. The password must
// already be hashed.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserStore is implemented by every user storage backend. Emails are
// compared after NormaliseEmail.
type UserStore interface {
	// CreateUser inserts an unverified user. It returns ErrUserExists
	// if the email is taken and never overwrites the existing record.
	CreateUser(ctx context.Context, u NewUser) (*model.User, error)

	// FindUser returns ErrUserNotFound if there's no user with the email.
	FindUser(ctx context.Context, email string) (*model.User, error)

	// VerifyUser marks the user as verified. Verifying twice is a no-op.
	// Unknown emails return ErrUserNotFound and nothing is created.
	VerifyUser(ctx context.Context, email string) error
}

func NormaliseEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
