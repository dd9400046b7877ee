package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/events"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/pricing"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/internal/transport"
)

func kiloan(kg float64) pricing.LineItems {
	return pricing.LineItems{Type: models.PackageKiloan, WeightKg: kg}
}

func orderReq(items pricing.LineItems, claimID *uint) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		LineItems:      items,
		Address:        "Jl. Sudirman No. 456, Jakarta Selatan",
		VoucherClaimID: claimID,
		PaymentMethod:  models.PaymentManual,
		Notes:          "Hati-hati dengan warna",
	}
}

func TestCreateOrderWithoutVoucher(t *testing.T) {
	f := newFixture(t)

	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(5), nil))
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.EqualValues(t, 50000, o.OriginalPrice)
	assert.EqualValues(t, 0, o.DiscountAmount)
	assert.EqualValues(t, 50000, o.TotalPrice)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, models.PaymentUnpaid, o.PaymentStatus)
	assert.Equal(t, "Budi Santoso", o.ClientName)
	assert.Equal(t, "client@laundry.com", o.ClientEmail)
	assert.True(t, o.CreatedAt.Equal(f.now))
	assert.True(t, o.UpdatedAt.Equal(f.now))
	assert.True(t, o.PickupDate.Equal(f.now))
	require.NotNil(t, o.WeightKg)
	assert.EqualValues(t, 5, *o.WeightKg)
	assert.Nil(t, o.VoucherClaimID)

	stored, err := f.Orders.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 50000, stored.TotalPrice)
	assert.Equal(t, "Jl. Sudirman No. 456, Jakarta Selatan", stored.Address)

	assert.Equal(t, []string{events.OrderCreated}, f.Events.Types())
	assert.Contains(t, f.Index.indexed, o.ID)
}

func TestCreateOrderAppliesVoucher(t *testing.T) {
	tests := []struct {
		name         string
		voucher      models.Voucher
		items        pricing.LineItems
		wantOriginal int64
		wantDiscount int64
		wantTotal    int64
	}{
		{"percentage", percentage("LAUNDRY20", 20, 50000), kiloan(5), 50000, 10000, 40000},
		{"fixed", fixed("HEMAT5K", 5000, 30000), kiloan(3), 30000, 5000, 25000},
		{"free weight", freeWeight("GRATIS2KG", 2, 0), kiloan(3), 30000, 20000, 10000},
		{"free weight above total", freeWeight("GRATIS2KG", 2, 0), kiloan(1), 10000, 20000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			v := f.voucher(t, tt.voucher)
			c := f.claim(t, f.Client.ID, v.Code)

			o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(tt.items, &c.ID))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOriginal, o.OriginalPrice)
			assert.Equal(t, tt.wantDiscount, o.DiscountAmount)
			assert.Equal(t, tt.wantTotal, o.TotalPrice)
			require.NotNil(t, o.VoucherClaimID)
			assert.Equal(t, c.ID, *o.VoucherClaimID)
			require.NotNil(t, o.VoucherID)
			assert.Equal(t, v.ID, *o.VoucherID)
			assert.Equal(t, v.Code, o.VoucherCode)

			claim, err := f.Ledger.GetClaim(f.ctx, c.ID)
			require.NoError(t, err)
			assert.True(t, claim.IsUsed)
			require.NotNil(t, claim.UsedAt)

			stored, err := f.Repo.GetVoucher(f.ctx, v.ID, false)
			require.NoError(t, err)
			assert.EqualValues(t, 1, stored.UsedCount)

			assert.Equal(t, []string{events.VoucherClaimed, events.OrderCreated, events.VoucherUsed}, f.Events.Types())
		})
	}
}

func TestCreateOrderPieces(t *testing.T) {
	f := newFixture(t)

	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(pricing.LineItems{
		Type: models.PackageSatuan,
		Pieces: []pricing.PieceItem{
			{Name: "Kemeja Putih", Category: models.CategoryShirt, Quantity: 2},
			{Name: "Celana Panjang", Category: models.CategoryPants, Quantity: 1},
		},
	}, nil))
	require.NoError(t, err)
	assert.EqualValues(t, 50000, o.TotalPrice)
	assert.Nil(t, o.WeightKg)

	stored, err := f.Orders.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Kemeja Putih", stored.Items[0].Name)
	assert.EqualValues(t, 30000, stored.Items[0].LineTotal)
	assert.EqualValues(t, 20000, stored.Items[1].UnitPrice)
}

func TestCreateOrderRejectsUnusableVoucher(t *testing.T) {
	f := newFixture(t)
	f.voucher(t, percentage("LAUNDRY20", 20, 50000))
	old := fixed("OLD", 5000, 0)
	old.ExpiryDate = f.now.Add(-time.Minute)
	f.voucher(t, old)
	f.voucher(t, fixed("HEMAT5K", 5000, 0))

	below := f.claim(t, f.Client.ID, "LAUNDRY20")
	expired := f.claim(t, f.Client.ID, "OLD")
	foreign := f.claim(t, f.Other.ID, "HEMAT5K")

	_, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(3), &below.ID))
	require.ErrorIs(t, err, domain.ErrBelowMinimumOrder)
	assert.Contains(t, err.Error(), "Rp 50.000")

	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(3), &expired.ID))
	require.ErrorIs(t, err, domain.ErrVoucherExpired)

	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(3), &foreign.ID))
	require.ErrorIs(t, err, domain.ErrClaimNotFound)

	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(3), uintp(999)))
	require.ErrorIs(t, err, domain.ErrClaimNotFound)

	orders, err := f.Orders.GetClientOrders(f.ctx, f.Client.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	claim, err := f.Ledger.GetClaim(f.ctx, below.ID)
	require.NoError(t, err)
	assert.False(t, claim.IsUsed)
}

func TestCreateOrderRejectsReusedClaim(t *testing.T) {
	f := newFixture(t)
	f.voucher(t, fixed("HEMAT5K", 5000, 30000))
	c := f.claim(t, f.Client.ID, "HEMAT5K")

	_, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(3), &c.ID))
	require.NoError(t, err)

	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(3), &c.ID))
	require.ErrorIs(t, err, domain.ErrAlreadyUsed)
}

func TestCreateOrderRollsBackWhenVoucherExhausted(t *testing.T) {
	f := newFixture(t)
	lim := fixed("LIMITED", 5000, 0)
	lim.MaxUsage = i64(1)
	f.voucher(t, lim)

	a := f.claim(t, f.Client.ID, "LIMITED")
	b := f.claim(t, f.Other.ID, "LIMITED")

	_, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(2), &a.ID))
	require.NoError(t, err)

	_, err = f.Orders.CreateOrder(f.ctx, f.Other.ID, orderReq(kiloan(2), &b.ID))
	require.ErrorIs(t, err, domain.ErrVoucherExhausted)

	orders, total, err := f.Orders.ListOrders(f.ctx, repo.OrderFilter{}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, orders, 1)

	claim, err := f.Ledger.GetClaim(f.ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, claim.IsUsed)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	bare, err := f.Repo.EnsureUser(f.ctx, &models.User{Email: "nohome@example.com", Name: "Tanpa Alamat", PasswordHash: "x", Role: models.RoleClient})
	require.NoError(t, err)

	req := orderReq(kiloan(3), nil)
	req.PaymentMethod = models.PaymentQRIS
	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, req)
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	req.PaymentMethod = "cash"
	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, req)
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(0), nil))
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(pricing.LineItems{
		Type:   models.PackageSatuan,
		Pieces: []pricing.PieceItem{{Name: "Kaos Kaki", Category: "socks", Quantity: 1}},
	}, nil))
	require.ErrorIs(t, err, domain.ErrInvalidCategory)

	noAddr := orderReq(kiloan(3), nil)
	noAddr.Address = ""
	_, err = f.Orders.CreateOrder(f.ctx, bare.ID, noAddr)
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	// falls back to the address on the account
	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, noAddr)
	require.NoError(t, err)
	assert.Equal(t, "Jl. Merdeka No. 123, Jakarta Pusat", o.Address)

	late := orderReq(kiloan(3), nil)
	pickup := f.now.Add(24 * time.Hour)
	delivery := f.now
	late.PickupDate = &pickup
	late.DeliveryDate = &delivery
	_, err = f.Orders.CreateOrder(f.ctx, f.Client.ID, late)
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	_, err = f.Orders.CreateOrder(f.ctx, 9999, orderReq(kiloan(3), nil))
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	f := newFixture(t)
	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(5), nil))
	require.NoError(t, err)

	_, err = f.Orders.UpdateStatus(f.ctx, o.ID, "ready")
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "steps cannot be skipped")

	for i, st := range []string{"washing", "ironing", "ready", "done"} {
		f.now = f.now.Add(time.Hour)
		updated, err := f.Orders.UpdateStatus(f.ctx, o.ID, st)
		require.NoError(t, err, st)
		assert.EqualValues(t, st, updated.Status)
		assert.True(t, updated.UpdatedAt.Equal(testNow.Add(time.Duration(i+1)*time.Hour)))
		assert.True(t, updated.CreatedAt.Equal(testNow))
	}

	// The original app allowed any reassignment, including done -> pending.
	// Here done is terminal and the move is reported instead.
	_, err = f.Orders.UpdateStatus(f.ctx, o.ID, "pending")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.Orders.UpdateStatus(f.ctx, o.ID, "cancelled")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := f.Orders.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, stored.Status)
}

func TestUpdateStatusCancel(t *testing.T) {
	f := newFixture(t)
	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(5), nil))
	require.NoError(t, err)

	_, err = f.Orders.UpdateStatus(f.ctx, o.ID, "washing")
	require.NoError(t, err)
	_, err = f.Orders.UpdateStatus(f.ctx, o.ID, "washing")
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "same status is not a move")

	cancelled, err := f.Orders.UpdateStatus(f.ctx, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	_, err = f.Orders.UpdateStatus(f.ctx, o.ID, "washing")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.Orders.UpdateStatus(f.ctx, o.ID, "lost")
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	_, err = f.Orders.UpdateStatus(f.ctx, 999, "washing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusChanged, events.OrderStatusChanged}, f.Events.Types())
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(5), nil))
	require.NoError(t, err)

	for _, st := range []string{"washing", "ironing", "ready", "done"} {
		_, err := f.Orders.UpdateStatus(f.ctx, o.ID, st)
		require.NoError(t, err)
	}

	// payment is tracked independently: a done order may still be unpaid
	stored, err := f.Orders.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus)

	f.now = f.now.Add(time.Hour)
	paid, err := f.Orders.UpdatePaymentStatus(f.ctx, o.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.True(t, paid.UpdatedAt.Equal(f.now))

	_, err = f.Orders.UpdatePaymentStatus(f.ctx, o.ID, "refunded")
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	_, err = f.Orders.UpdatePaymentStatus(f.ctx, 999, "paid")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdatedAtNeverBeforeCreatedAt(t *testing.T) {
	f := newFixture(t)
	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(5), nil))
	require.NoError(t, err)

	f.now = f.now.Add(-time.Hour)
	updated, err := f.Orders.UpdateStatus(f.ctx, o.ID, "washing")
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestOrderFilters(t *testing.T) {
	f := newFixture(t)
	a, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(1), nil))
	require.NoError(t, err)
	b, err := f.Orders.CreateOrder(f.ctx, f.Other.ID, orderReq(kiloan(2), nil))
	require.NoError(t, err)
	c, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(kiloan(3), nil))
	require.NoError(t, err)

	_, err = f.Orders.UpdateStatus(f.ctx, b.ID, "washing")
	require.NoError(t, err)

	mine, err := f.Orders.GetClientOrders(f.ctx, f.Client.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, a.ID, mine[0].ID)
	assert.Equal(t, c.ID, mine[1].ID)

	pending, err := f.Orders.GetOrdersByStatus(f.ctx, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, a.ID, pending[0].ID)
	assert.Equal(t, c.ID, pending[1].ID)

	page, total, err := f.Orders.ListOrders(f.ctx, repo.OrderFilter{}, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, b.ID, page[0].ID)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	f.voucher(t, fixed("HEMAT5K", 5000, 0))
	cl := f.claim(t, f.Client.ID, "HEMAT5K")

	o, err := f.Orders.CreateOrder(f.ctx, f.Client.ID, orderReq(pricing.LineItems{
		Type:   models.PackageSatuan,
		Pieces: []pricing.PieceItem{{Name: "Jas", Category: models.CategoryJacket, Quantity: 1}},
	}, &cl.ID))
	require.NoError(t, err)

	require.NoError(t, f.Orders.DeleteOrder(f.ctx, o.ID))

	_, err = f.Orders.GetOrder(f.ctx, o.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	var items int64
	require.NoError(t, f.Repo.DB.Model(&models.OrderItem{}).Where("order_id = ?", o.ID).Count(&items).Error)
	assert.Zero(t, items)

	// deleting an order does not hand the voucher back
	claim, err := f.Ledger.GetClaim(f.ctx, cl.ID)
	require.NoError(t, err)
	assert.True(t, claim.IsUsed)

	require.ErrorIs(t, f.Orders.DeleteOrder(f.ctx, o.ID), domain.ErrOrderNotFound)
	assert.Equal(t, []uint{o.ID}, f.Index.deleted)
	assert.Contains(t, f.Events.Types(), events.OrderDeleted)
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	f.voucher(t, percentage("LAUNDRY20", 20, 50000))
	f.voucher(t, fixed("HEMAT5K", 5000, 0))
	mine := f.claim(t, f.Client.ID, "LAUNDRY20")
	theirs := f.claim(t, f.Other.ID, "HEMAT5K")

	q, err := f.Orders.Quote(f.ctx, f.Client.ID, transport.QuoteRequest{LineItems: kiloan(5)})
	require.NoError(t, err)
	assert.EqualValues(t, 50000, q.TotalPrice)
	assert.Nil(t, q.Voucher)

	q, err = f.Orders.Quote(f.ctx, f.Client.ID, transport.QuoteRequest{LineItems: kiloan(5), VoucherClaimID: &mine.ID})
	require.NoError(t, err)
	require.NotNil(t, q.Voucher)
	assert.True(t, q.Voucher.Valid)
	assert.EqualValues(t, 10000, q.DiscountAmount)
	assert.EqualValues(t, 40000, q.TotalPrice)

	q, err = f.Orders.Quote(f.ctx, f.Client.ID, transport.QuoteRequest{LineItems: kiloan(4), VoucherClaimID: &mine.ID})
	require.NoError(t, err)
	assert.False(t, q.Voucher.Valid)
	assert.Equal(t, "minimum order Rp 50.000 required", q.Voucher.Reason)
	assert.EqualValues(t, 0, q.DiscountAmount)
	assert.EqualValues(t, 40000, q.TotalPrice)

	q, err = f.Orders.Quote(f.ctx, f.Client.ID, transport.QuoteRequest{LineItems: kiloan(5), VoucherClaimID: &theirs.ID})
	require.NoError(t, err)
	assert.False(t, q.Voucher.Valid)
	assert.Equal(t, "voucher not found", q.Voucher.Reason)

	_, err = f.Orders.Quote(f.ctx, f.Client.ID, transport.QuoteRequest{LineItems: kiloan(-1)})
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	claim, err := f.Ledger.GetClaim(f.ctx, mine.ID)
	require.NoError(t, err)
	assert.False(t, claim.IsUsed, "quotes never consume claims")
}
