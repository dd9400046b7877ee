package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/laundry_service/internal/models"
)

// CountOrdersByStatus groups orders by status, optionally for one client.
func (r *GormRepo) CountOrdersByStatus(ctx context.Context, clientID *uint) (map[models.OrderStatus]int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}

	var rows []struct {
		Status string
		N      int64
	}
	if err := q.Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[models.OrderStatus(row.Status)] = row.N
	}
	return out, nil
}

// OrdersCreatedBetween counts orders created in [from, to) and sums the total
// of the paid ones.
func (r *GormRepo) OrdersCreatedBetween(ctx context.Context, from, to time.Time) (int64, int64, error) {
	var row struct {
		Orders  int64
		Revenue int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*) AS orders, CAST(COALESCE(SUM(CASE WHEN payment_status = ? THEN total_price ELSE 0 END), 0) AS BIGINT) AS revenue",
			string(models.PaymentPaid)).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Orders, row.Revenue, nil
}

// LastOrderAt returns when the client last ordered, or nil if never.
func (r *GormRepo) LastOrderAt(ctx context.Context, clientID uint) (*time.Time, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Select("id", "created_at").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Order("id DESC").
		Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o.CreatedAt, nil
}
