package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/demo-app/internal/model"
	"bitwise74/demo-app/pkg/util"

	"gorm.io/gorm"
)

// GormStore keeps users in a SQL database. The DB must be opened with
// TranslateError enabled so unique violations come back as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, u NewUser) (*model.User, error) {
	id, err := util.NewID(idLength)
	if err != nil {
		return nil, err
	}

	user := model.User{
		ID:           id,
		Username:     u.Username,
		Email:        NormaliseEmail(u.Email),
		PasswordHash: u.PasswordHash,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return &user, nil
}

func (s *GormStore) FindUser(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := s.db.
		WithContext(ctx).
		Where("email = ?", NormaliseEmail(email)).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to find user, %w", err)
	}

	return &user, nil
}

func (s *GormStore) VerifyUser(ctx context.Context, email string) error {
	email = NormaliseEmail(email)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User

		err := tx.
			Select("id", "verified").
			Where("email = ?", email).
			First(&user).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}

			return fmt.Errorf("failed to find user, %w", err)
		}

		if user.Verified {
			return nil
		}

		err = tx.
			Model(&model.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"verified":    true,
				"verified_at": time.Now(),
			}).
			Error
		if err != nil {
			return fmt.Errorf("failed to verify user, %w", err)
		}

		return nil
	})
}
