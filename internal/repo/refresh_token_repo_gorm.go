package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"auth-service/internal/domain"
)

type RefreshTokenRepo struct{ db *gorm.DB }

func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepo { return &RefreshTokenRepo{db: db} }

func (r *RefreshTokenRepo) Create(ctx context.Context, t *domain.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return storageErr(err)
	}
	return nil
}

func (r *RefreshTokenRepo) FindByID(ctx context.Context, id uint) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &t, nil
}

func (r *RefreshTokenRepo) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.RefreshToken{}).Error; err != nil {
		return storageErr(err)
	}
	return nil
}
