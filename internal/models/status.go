package models

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusWashing   OrderStatus = "washing"
	StatusIroning   OrderStatus = "ironing"
	StatusReady     OrderStatus = "ready"
	StatusDone      OrderStatus = "done"
	StatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each non-terminal
// status. Processing only moves forward; cancellation is allowed until the
// order is done.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusWashing, StatusCancelled},
	StatusWashing: {StatusIroning, StatusCancelled},
	StatusIroning: {StatusReady, StatusCancelled},
	StatusReady:   {StatusDone, StatusCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusWashing, StatusIroning, StatusReady, StatusDone, StatusCancelled:
		return st, true
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// IsActive reports whether the order is still being processed.
func (s OrderStatus) IsActive() bool {
	return !s.IsTerminal()
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
