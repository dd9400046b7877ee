package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/models"
)

func (r *GormRepo) ClaimExists(ctx context.Context, userID, voucherID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.UserVoucherClaim{}).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateClaim(ctx context.Context, c *models.UserVoucherClaim) error {
	err := r.DB.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyClaimed, c.Terms.Code)
	}
	return err
}

func (r *GormRepo) GetClaim(ctx context.Context, id uint, lock bool) (*models.UserVoucherClaim, error) {
	var c models.UserVoucherClaim
	err := r.query(ctx, lock).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrClaimNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClaims returns the user's claims in claim order.
func (r *GormRepo) ListClaims(ctx context.Context, userID uint, unusedOnly bool) ([]models.UserVoucherClaim, error) {
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if unusedOnly {
		q = q.Where("is_used = ?", false)
	}
	var claims []models.UserVoucherClaim
	if err := q.Order("id ASC").Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// ConsumeClaim flips is_used once; a second call reports ErrAlreadyUsed.
func (r *GormRepo) ConsumeClaim(ctx context.Context, id uint, usedAt time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.UserVoucherClaim{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{"is_used": true, "used_at": usedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetClaim(ctx, id, false); err != nil {
			return err
		}
		return fmt.Errorf("%w: claim %d", domain.ErrAlreadyUsed, id)
	}
	return nil
}
