package domain

import "errors"

// PaymentStatus tracks payment independently of the order lifecycle,
// conventionally updated in lockstep by the same caller.
type PaymentStatus string

const (
	PaymentStatusPendingConfirmation PaymentStatus = "pending_confirmation"
	PaymentStatusCompleted           PaymentStatus = "completed"
	PaymentStatusCancelled           PaymentStatus = "cancelled"
)

var validPaymentStatuses = map[PaymentStatus]struct{}{
	PaymentStatusPendingConfirmation: {},
	PaymentStatusCompleted:           {},
	PaymentStatusCancelled:           {},
}

func ToPaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if _, ok := validPaymentStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid payment status")
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)
