package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the allowedTransitions map
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// allowedTransitions is the full lifecycle graph. A status mapping to an
// empty set is terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:  {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := allowedTransitions[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(allowedTransitions))
	for status := range allowedTransitions {
		result = append(result, status)
	}
	return result
}

// CanTransitionTo reports whether the lifecycle graph allows moving
// from s to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}
