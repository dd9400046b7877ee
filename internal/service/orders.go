package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/laundry_service/internal/discount"
	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/events"
	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/pricing"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/internal/transport"
)

// OrderIndexer mirrors orders into a search backend.
type OrderIndexer interface {
	IndexOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id uint) error
}

type PaymentMethodInfo struct {
	Method      models.PaymentMethod `json:"method"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Available   bool                 `json:"available"`
}

var PaymentMethods = []PaymentMethodInfo{
	{Method: models.PaymentManual, Name: "Transfer Manual", Description: "Transfer ke rekening kami", Available: true},
	{Method: models.PaymentQRIS, Name: "QRIS", Description: "Scan code pembayaran", Available: false},
	{Method: models.PaymentVA, Name: "Virtual Account", Description: "Nomor rekening virtual unik", Available: false},
}

func checkPaymentMethod(m models.PaymentMethod) error {
	for _, pm := range PaymentMethods {
		if pm.Method != m {
			continue
		}
		if !pm.Available {
			return fmt.Errorf("%w: payment method %s is not available", domain.ErrInvalidOrderInput, m)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidOrderInput, m)
}

type OrderManager struct {
	Repo      *repo.GormRepo
	Pricing   *pricing.Calculator
	Discounts *discount.Calculator
	Events    events.Publisher
	Index     OrderIndexer
	Now       func() time.Time
	// Location decides where "today" starts for statistics.
	Location *time.Location
}

func NewOrderManager(r *repo.GormRepo, p *pricing.Calculator, pub events.Publisher, idx OrderIndexer) *OrderManager {
	return &OrderManager{
		Repo:      r,
		Pricing:   p,
		Discounts: discount.NewCalculator(p),
		Events:    pub,
		Index:     idx,
		Now:       time.Now,
		Location:  time.UTC,
	}
}

func (m *OrderManager) now() time.Time {
	return clock(m.Now)
}

type Quote struct {
	OriginalPrice  int64             `json:"original_price"`
	DiscountAmount int64             `json:"discount_amount"`
	TotalPrice     int64             `json:"total_price"`
	Voucher        *ValidationResult `json:"voucher,omitempty"`
}

// Quote previews the price of an order without writing anything. An
// unusable voucher degrades to no discount and is reported in Voucher.
func (m *OrderManager) Quote(ctx context.Context, clientID uint, req transport.QuoteRequest) (*Quote, error) {
	base, err := m.Pricing.ComputeBasePrice(req.LineItems)
	if err != nil {
		return nil, err
	}
	q := &Quote{OriginalPrice: base, TotalPrice: base}
	if req.VoucherClaimID == nil {
		return q, nil
	}

	var claim *models.UserVoucherClaim
	var res ValidationResult
	c, err := m.Repo.GetClaim(ctx, *req.VoucherClaimID, false)
	switch {
	case err != nil && !errors.Is(err, domain.ErrClaimNotFound):
		logging.FromContext(ctx).Error("quote_claim_error", "claim_id", *req.VoucherClaimID, "error", err)
		res = ValidationResult{Reason: "voucher cannot be checked right now", err: err}
	case err == nil && c.UserID == clientID:
		claim = c
		res = checkClaim(c, base, m.now())
	default:
		res = checkClaim(nil, base, m.now())
	}
	q.Voucher = &res
	if res.Valid {
		d := m.Discounts.ComputeDiscount(claim, base)
		q.DiscountAmount = d.DiscountAmount
		q.TotalPrice = d.FinalAmount
	}
	return q, nil
}

// CreateOrder prices the order, applies the voucher claim if one is given,
// and stores the order together with the claim consumption in one
// transaction.
func (m *OrderManager) CreateOrder(ctx context.Context, clientID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	now := m.now()

	client, err := m.Repo.GetUser(ctx, clientID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: unknown client %d", domain.ErrInvalidOrderInput, clientID)
	}
	if err != nil {
		return nil, err
	}

	order, err := m.newOrder(client, req, now)
	if err != nil {
		return nil, err
	}

	var claim *models.UserVoucherClaim
	err = m.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		if req.VoucherClaimID != nil {
			c, err := tx.GetClaim(ctx, *req.VoucherClaimID, true)
			if err != nil {
				return err
			}
			if c.UserID != clientID {
				return fmt.Errorf("%w: id %d", domain.ErrClaimNotFound, c.ID)
			}
			if res := checkClaim(c, order.OriginalPrice, now); !res.Valid {
				return res.Err()
			}
			d := m.Discounts.ComputeDiscount(c, order.OriginalPrice)
			order.VoucherID = &c.VoucherID
			order.VoucherClaimID = &c.ID
			order.VoucherCode = c.Terms.Code
			order.DiscountAmount = d.DiscountAmount
			order.TotalPrice = d.FinalAmount
			claim = c
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if claim != nil {
			return consumeClaim(ctx, tx, claim, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("order_created", "order_id", order.ID, "client_id", clientID, "total_price", order.TotalPrice)
	events.Publish(ctx, m.Events, events.TopicOrders, orderKey(order.ID), events.New(events.OrderCreated, now, orderPayload(order)))
	if claim != nil {
		publishVoucherUsed(ctx, m.Events, claim, &order.ID, now)
	}
	m.index(ctx, order)
	return order, nil
}

func (m *OrderManager) newOrder(client *models.User, req transport.CreateOrderRequest, now time.Time) (*models.Order, error) {
	base, err := m.Pricing.ComputeBasePrice(req.LineItems)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		address = strings.TrimSpace(client.Address)
	}
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", domain.ErrInvalidOrderInput)
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = client.Phone
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentManual
	}
	if err := checkPaymentMethod(method); err != nil {
		return nil, err
	}

	pickup := now
	if req.PickupDate != nil {
		pickup = req.PickupDate.UTC()
	}
	var delivery *time.Time
	if req.DeliveryDate != nil {
		d := req.DeliveryDate.UTC()
		if d.Before(pickup) {
			return nil, fmt.Errorf("%w: delivery date is before pickup date", domain.ErrInvalidOrderInput)
		}
		delivery = &d
	}

	order := &models.Order{
		ClientID:      client.ID,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		ClientPhone:   phone,
		Address:       address,
		PackageType:   req.Type,
		OriginalPrice: base,
		TotalPrice:    base,
		Status:        models.StatusPending,
		PaymentMethod: method,
		PaymentStatus: models.PaymentUnpaid,
		PickupDate:    pickup,
		DeliveryDate:  delivery,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Type == models.PackageKiloan {
		w := req.WeightKg
		order.WeightKg = &w
	} else {
		order.Items, err = m.Pricing.PieceLines(req.Pieces)
		if err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (m *OrderManager) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return m.Repo.GetOrder(ctx, id, false)
}

func (m *OrderManager) ListOrders(ctx context.Context, f repo.OrderFilter, offset, limit int) ([]models.Order, int64, error) {
	return m.Repo.ListOrders(ctx, f, offset, limit)
}

func (m *OrderManager) GetClientOrders(ctx context.Context, clientID uint) ([]models.Order, error) {
	orders, _, err := m.Repo.ListOrders(ctx, repo.OrderFilter{ClientID: &clientID}, 0, 0)
	return orders, err
}

func (m *OrderManager) GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	orders, _, err := m.Repo.ListOrders(ctx, repo.OrderFilter{Status: &status}, 0, 0)
	return orders, err
}

// UpdateStatus moves an order along the status machine. Moves outside the
// transition table fail with ErrInvalidTransition.
func (m *OrderManager) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidOrderInput, status)
	}

	var order *models.Order
	var prev models.OrderStatus
	err := m.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, id, true)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, next)
		}
		ts := m.touch(o)
		if err := tx.UpdateOrderFields(ctx, id, map[string]any{"status": string(next), "updated_at": ts}); err != nil {
			return err
		}
		prev = o.Status
		o.Status = next
		o.UpdatedAt = ts
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, m.Events, events.TopicOrders, orderKey(id), events.New(events.OrderStatusChanged, order.UpdatedAt, map[string]any{
		"order_id":   id,
		"client_id":  order.ClientID,
		"old_status": prev,
		"new_status": next,
	}))
	m.index(ctx, order)
	return order, nil
}

// UpdatePaymentStatus sets the payment status. It is independent of the
// processing status.
func (m *OrderManager) UpdatePaymentStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	next := models.PaymentStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidOrderInput, status)
	}

	var order *models.Order
	err := m.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, id, true)
		if err != nil {
			return err
		}
		ts := m.touch(o)
		if err := tx.UpdateOrderFields(ctx, id, map[string]any{"payment_status": string(next), "updated_at": ts}); err != nil {
			return err
		}
		o.PaymentStatus = next
		o.UpdatedAt = ts
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, m.Events, events.TopicOrders, orderKey(id), events.New(events.OrderPaymentStatusChanged, order.UpdatedAt, map[string]any{
		"order_id":       id,
		"client_id":      order.ClientID,
		"payment_status": next,
	}))
	m.index(ctx, order)
	return order, nil
}

// touch returns the new updated_at for o, never earlier than its creation.
func (m *OrderManager) touch(o *models.Order) time.Time {
	ts := m.now()
	if ts.Before(o.CreatedAt) {
		return o.CreatedAt
	}
	return ts
}

// DeleteOrder removes the order and its items. A voucher consumed by the
// order stays consumed.
func (m *OrderManager) DeleteOrder(ctx context.Context, id uint) error {
	if err := m.Repo.DeleteOrder(ctx, id); err != nil {
		return err
	}

	events.Publish(ctx, m.Events, events.TopicOrders, orderKey(id), events.New(events.OrderDeleted, m.now(), map[string]any{"order_id": id}))
	if m.Index != nil {
		if err := m.Index.DeleteOrder(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_order_error", "order_id", id, "error", err)
		}
	}
	return nil
}

func (m *OrderManager) index(ctx context.Context, o *models.Order) {
	if m.Index == nil {
		return
	}
	if err := m.Index.IndexOrder(ctx, o); err != nil {
		logging.FromContext(ctx).Warn("index_order_error", "order_id", o.ID, "error", err)
	}
}

func orderKey(id uint) string {
	return fmt.Sprintf("order-%d", id)
}

func orderPayload(o *models.Order) map[string]any {
	return map[string]any{
		"order_id":        o.ID,
		"client_id":       o.ClientID,
		"package_type":    o.PackageType,
		"original_price":  o.OriginalPrice,
		"discount_amount": o.DiscountAmount,
		"total_price":     o.TotalPrice,
		"voucher_code":    o.VoucherCode,
		"status":          o.Status,
		"payment_status":  o.PaymentStatus,
	}
}
