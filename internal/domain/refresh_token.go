package domain

import (
	"context"
	"time"
)

// RefreshToken is the persisted half of an issued refresh token; its ID travels as the jti claim.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *RefreshToken) error
	FindByID(ctx context.Context, id uint) (*RefreshToken, error)
	// DeleteByID is a no-op for ids that do not exist.
	DeleteByID(ctx context.Context, id uint) error
}
