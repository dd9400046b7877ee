package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/laundry_service/internal/logging"
)

const (
	TopicOrders   = "order_events"
	TopicVouchers = "voucher_events"
)

const (
	VoucherClaimed            = "voucher_claimed"
	VoucherUsed               = "voucher_used"
	OrderCreated              = "order_created"
	OrderStatusChanged        = "order_status_changed"
	OrderPaymentStatusChanged = "order_payment_status_changed"
	OrderDeleted              = "order_deleted"
)

const publishTimeout = 5 * time.Second

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func New(typ string, at time.Time, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: at.UTC(),
		Data:       data,
	}
}

// Publish sends ev after the write it describes has committed. Failures are
// logged and swallowed; a nil publisher is a no-op.
func Publish(ctx context.Context, p Publisher, topic, key string, ev Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", ev.Type, "error", err)
	}
}
