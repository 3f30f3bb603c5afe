package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Omit("User").Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// markAsUsed revokes a live token. It is a compare-and-set: only one caller
// can win for a given jti.
func markAsUsed(tx *gorm.DB, jti string, now time.Time) error {
	res := tx.Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ? AND expires_at > ?", jti, false, now).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTokenRevoked
	}
	return nil
}

// RotateRefreshToken revokes oldJTI and stores next atomically.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := markAsUsed(tx, oldJTI, time.Now().UTC()); err != nil {
			return err
		}
		return tx.Omit("User").Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ?", tokenHash).
		Update("revoked", true).Error
}
