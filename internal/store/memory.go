package store

import (
	"context"
	"sync"
	"time"

	"bitwise74/demo-app/internal/model"
	"bitwise74/demo-app/pkg/util"
)

// MemoryStore keeps users in process memory. Everything is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]model.User),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, u NewUser) (*model.User, error) {
	id, err := util.NewID(idLength)
	if err != nil {
		return nil, err
	}

	email := NormaliseEmail(u.Email)
	user := model.User{
		ID:           id,
		Username:     u.Username,
		Email:        email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; ok {
		return nil, ErrUserExists
	}
	s.users[email] = user

	return &user, nil
}

func (s *MemoryStore) FindUser(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[NormaliseEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}

	// Callers get a copy so they can't mutate the stored record
	return &user, nil
}

func (s *MemoryStore) VerifyUser(ctx context.Context, email string) error {
	email = NormaliseEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok {
		return ErrUserNotFound
	}

	if user.Verified {
		return nil
	}

	now := time.Now()
	user.Verified = true
	user.VerifiedAt = &now
	s.users[email] = user

	return nil
}
