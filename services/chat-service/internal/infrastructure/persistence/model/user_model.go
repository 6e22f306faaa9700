package model

import (
	"time"

	"local-chat/services/chat-service/internal/domain"
)

type UserModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement;column:id"`
	UserID       string    `gorm:"uniqueIndex:idx_users_user_id;size:36;not null;column:user_id"`
	Email        string    `gorm:"uniqueIndex:idx_users_email;size:255;not null;column:email"`
	Name         string    `gorm:"size:100;column:name"`
	PasswordHash string    `gorm:"size:255;not null;column:password_hash"`
	CreatedAt    time.Time `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;column:updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:           m.UserID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func ToUserModel(d *domain.User) *UserModel {
	return &UserModel{
		UserID:       d.ID,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
	}
}

// All lists every table for migration.
func All() []any {
	return []any{&UserModel{}, &ChatModel{}, &MessageModel{}}
}
