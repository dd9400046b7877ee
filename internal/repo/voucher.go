package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/models"
)

func (r *GormRepo) ListVouchers(ctx context.Context, activeOnly bool) ([]models.Voucher, error) {
	q := r.DB.WithContext(ctx).Model(&models.Voucher{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var vouchers []models.Voucher
	if err := q.Order("id ASC").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *GormRepo) GetVoucher(ctx context.Context, id uint, lock bool) (*models.Voucher, error) {
	var v models.Voucher
	err := r.query(ctx, lock).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrVoucherNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVoucherByCode matches code exactly; callers normalize it first.
func (r *GormRepo) GetVoucherByCode(ctx context.Context, code string, lock bool) (*models.Voucher, error) {
	var v models.Voucher
	err := r.query(ctx, lock).Where("code = ?", code).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrVoucherNotFound, code)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) CreateVoucher(ctx context.Context, v *models.Voucher) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Voucher{}).Where("code = ?", v.Code).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: code %s already exists", domain.ErrInvalidVoucher, v.Code)
	}
	err := r.DB.WithContext(ctx).Create(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: code %s already exists", domain.ErrInvalidVoucher, v.Code)
	}
	return err
}

func (r *GormRepo) SaveVoucher(ctx context.Context, v *models.Voucher) error {
	return r.DB.WithContext(ctx).Save(v).Error
}

// IncrementVoucherUsage bumps used_count unless that would pass max_usage.
func (r *GormRepo) IncrementVoucherUsage(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Voucher{}).
		Where("id = ? AND (max_usage IS NULL OR used_count < max_usage)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetVoucher(ctx, id, false); err != nil {
			return err
		}
		return fmt.Errorf("%w: voucher %d", domain.ErrVoucherExhausted, id)
	}
	return nil
}
