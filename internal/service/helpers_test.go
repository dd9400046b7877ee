package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/laundry_service/internal/events"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/pricing"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/pkg/db"
)

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uint]models.Order
	deleted []uint
}

func (f *fakeIndex) IndexOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexed == nil {
		f.indexed = map[uint]models.Order{}
	}
	f.indexed[o.ID] = *o
	return nil
}

func (f *fakeIndex) DeleteOrder(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fixture struct {
	ctx    context.Context
	now    time.Time
	Repo   *repo.GormRepo
	Ledger *VoucherLedger
	Orders *OrderManager
	Events *events.Recorder
	Index  *fakeIndex
	Client *models.User
	Other  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		ctx:    ctx,
		now:    testNow,
		Repo:   repo.New(gdb),
		Events: &events.Recorder{},
		Index:  &fakeIndex{},
	}
	clock := func() time.Time { return f.now }

	f.Ledger = NewVoucherLedger(f.Repo, f.Events)
	f.Ledger.Now = clock
	f.Orders = NewOrderManager(f.Repo, pricing.NewCalculator(pricing.DefaultPriceList()), f.Events, f.Index)
	f.Orders.Now = clock

	f.Client = f.user(t, "client@laundry.com", "Budi Santoso", models.RoleClient)
	f.Other = f.user(t, "siti@example.com", "Siti Nurhayati", models.RoleClient)
	return f
}

func (f *fixture) user(t *testing.T, email, name string, role models.Role) *models.User {
	t.Helper()
	u, err := f.Repo.EnsureUser(f.ctx, &models.User{
		Email:        email,
		Name:         name,
		Phone:        "08123456789",
		Address:      "Jl. Merdeka No. 123, Jakarta Pusat",
		PasswordHash: "x",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) voucher(t *testing.T, v models.Voucher) *models.Voucher {
	t.Helper()
	if v.ExpiryDate.IsZero() {
		v.ExpiryDate = f.now.Add(30 * 24 * time.Hour)
	}
	require.NoError(t, f.Repo.CreateVoucher(f.ctx, &v))
	return &v
}

func (f *fixture) claim(t *testing.T, userID uint, ref string) *models.UserVoucherClaim {
	t.Helper()
	c, err := f.Ledger.Claim(f.ctx, userID, ref)
	require.NoError(t, err)
	return c
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func uintp(v uint) *uint     { return &v }

func percentage(code string, pct, minimum int64) models.Voucher {
	return models.Voucher{Code: code, Kind: models.VoucherPercentage, DiscountValue: i64(pct), MinimumOrder: minimum, IsActive: true}
}

func fixed(code string, amount, minimum int64) models.Voucher {
	return models.Voucher{Code: code, Kind: models.VoucherFixed, DiscountValue: i64(amount), MinimumOrder: minimum, IsActive: true}
}

func freeWeight(code string, kg float64, minimum int64) models.Voucher {
	return models.Voucher{Code: code, Kind: models.VoucherFreeWeight, FreeWeightKg: f64(kg), MinimumOrder: minimum, IsActive: true}
}
