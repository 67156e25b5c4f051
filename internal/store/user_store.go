package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lis-backend/internal/auth"
	"lis-backend/internal/model"
)

// UserStore is the gorm-backed implementation of auth.UserStore.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store on top of the given database.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindUserByID looks up a user by primary key with the tenant
// preloaded. A miss maps to auth.ErrUserNotFound so a token for a
// deleted user surfaces as an authentication failure, never a fault.
func (s *UserStore) FindUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Preload("Tenant").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail looks up a user by email with the tenant preloaded.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Preload("Tenant").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
