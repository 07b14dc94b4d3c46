package repository

import (
	"context"
	"ctlab_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.updateColumn(ctx, userID, "last_login", at)
}

func (r *UserRepository) UpdateTheme(ctx context.Context, userID uint, theme string) error {
	return r.updateColumn(ctx, userID, "theme", theme)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint, hashed string) error {
	return r.updateColumn(ctx, userID, "password", hashed)
}

func (r *UserRepository) updateColumn(ctx context.Context, userID uint, column string, value interface{}) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
