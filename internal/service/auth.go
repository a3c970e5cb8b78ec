package service

import (
	"context"
	"errors"
	"fmt"

	"bitwise74/demo-app/internal/model"
	"bitwise74/demo-app/internal/store"
	"bitwise74/demo-app/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrEmailNotVerified   = errors.New("email is not verified")
)

// Authenticate checks a login attempt. Unknown emails and wrong passwords
// both return ErrInvalidCredentials. The verified flag is only checked once
// the password matched.
func Authenticate(ctx context.Context, users store.UserStore, h *security.Hasher, email, password string) (*model.User, error) {
	user, err := users.FindUser(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	ok, err := h.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}
