package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/infrastructure/persistence/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	m := model.ToUserModel(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("save user: %w: %v", domain.ErrStoreUnavailable, err)
	}
	u.CreatedAt = m.CreatedAt
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", normalizeEmail(email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "user_id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m model.UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return m.ToDomain(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
