package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/laundry_service/internal/models"
)

type AdminStats struct {
	TodayOrders     int   `json:"today_orders"`
	TodayRevenue    int64 `json:"today_revenue"`
	ActiveOrders    int   `json:"active_orders"`
	CompletedOrders int   `json:"completed_orders"`
}

type ClientStats struct {
	TotalOrders     int        `json:"total_orders"`
	ActiveOrders    int        `json:"active_orders"`
	CompletedOrders int        `json:"completed_orders"`
	LastOrderAt     *time.Time `json:"last_order_at,omitempty"`
}

// AdminStats summarizes the shop: orders placed today, paid revenue of
// today's orders, orders still in progress and finished orders.
func (m *OrderManager) AdminStats(ctx context.Context) (*AdminStats, error) {
	start, end := m.today()
	today, revenue, err := m.Repo.OrdersCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	byStatus, err := m.Repo.CountOrdersByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}

	s := AdminStats{TodayOrders: int(today), TodayRevenue: revenue}
	s.ActiveOrders, s.CompletedOrders, _ = tally(byStatus)
	return &s, nil
}

func (m *OrderManager) ClientStats(ctx context.Context, clientID uint) (*ClientStats, error) {
	byStatus, err := m.Repo.CountOrdersByStatus(ctx, &clientID)
	if err != nil {
		return nil, err
	}
	last, err := m.Repo.LastOrderAt(ctx, clientID)
	if err != nil {
		return nil, err
	}

	s := ClientStats{LastOrderAt: last}
	s.ActiveOrders, s.CompletedOrders, s.TotalOrders = tally(byStatus)
	return &s, nil
}

func tally(byStatus map[models.OrderStatus]int64) (active, done, total int) {
	for st, n := range byStatus {
		total += int(n)
		if st.IsActive() {
			active += int(n)
		}
		if st == models.StatusDone {
			done += int(n)
		}
	}
	return active, done, total
}

func (m *OrderManager) today() (time.Time, time.Time) {
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}
	now := m.now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}
