package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/hash"
	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/repo"
)

type DemoUser struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
	Role     models.Role
}

var DemoUsers = []DemoUser{
	{
		Email:    "admin@laundry.com",
		Password: "admin123",
		Name:     "Admin Laundry",
		Role:     models.RoleAdmin,
	},
	{
		Email:    "client@laundry.com",
		Password: "client123",
		Name:     "Budi Santoso",
		Phone:    "08123456789",
		Address:  "Jl. Merdeka No. 123, Jakarta Pusat",
		Role:     models.RoleClient,
	},
}

func i64(v int64) *int64       { return &v }
func f64(v float64) *float64   { return &v }
func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// DemoVouchers is the launch catalog, with expiries relative to now.
func DemoVouchers(now time.Time) []models.Voucher {
	return []models.Voucher{
		{
			Code:          "LAUNDRY20",
			Kind:          models.VoucherPercentage,
			DiscountValue: i64(20),
			MinimumOrder:  50000,
			MaxUsage:      i64(100),
			UsedCount:     5,
			ExpiryDate:    now.Add(days(30)),
			IsActive:      true,
			Description:   "Diskon 20% untuk semua pesanan minimal Rp 50.000",
		},
		{
			Code:          "HEMAT5K",
			Kind:          models.VoucherFixed,
			DiscountValue: i64(5000),
			MinimumOrder:  30000,
			MaxUsage:      i64(50),
			UsedCount:     12,
			ExpiryDate:    now.Add(days(14)),
			IsActive:      true,
			Description:   "Hemat Rp 5.000 untuk pesanan minimal Rp 30.000",
		},
		{
			Code:         "GRATIS2KG",
			Kind:         models.VoucherFreeWeight,
			FreeWeightKg: f64(2),
			MinimumOrder: 100000,
			MaxUsage:     i64(20),
			UsedCount:    3,
			ExpiryDate:   now.Add(days(7)),
			IsActive:     true,
			Description:  "Gratis 2kg cuci untuk pembelian minimal Rp 100.000",
		},
		{
			Code:          "WELCOME30",
			Kind:          models.VoucherPercentage,
			DiscountValue: i64(30),
			MinimumOrder:  0,
			MaxUsage:      i64(200),
			UsedCount:     45,
			ExpiryDate:    now.Add(days(60)),
			IsActive:      true,
			Description:   "Diskon 30% untuk member baru (tanpa minimum pembelian)",
		},
	}
}

// Run inserts the demo users and vouchers that are missing. Running it
// again changes nothing.
func Run(ctx context.Context, r *repo.GormRepo, now time.Time) error {
	l := logging.FromContext(ctx).With("component", "seed")

	for _, du := range DemoUsers {
		pw, err := hash.HashPassword(du.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", du.Email, err)
		}
		u, err := r.EnsureUser(ctx, &models.User{
			Email:        du.Email,
			Name:         du.Name,
			Phone:        du.Phone,
			Address:      du.Address,
			PasswordHash: pw,
			Role:         du.Role,
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", du.Email, err)
		}
		l.Debug("seed_user", "email", u.Email, "id", u.ID)
	}

	for _, v := range DemoVouchers(now.UTC()) {
		_, err := r.GetVoucherByCode(ctx, v.Code, false)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrVoucherNotFound) {
			return err
		}
		if err := r.CreateVoucher(ctx, &v); err != nil {
			return fmt.Errorf("seed voucher %s: %w", v.Code, err)
		}
		l.Info("seed_voucher", "code", v.Code, "id", v.ID)
	}
	return nil
}
