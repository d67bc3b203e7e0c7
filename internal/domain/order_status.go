package domain

import (
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
)

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderProcessing, models.OrderCancelled},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:    {models.OrderDelivered},
}

func ParseOrderStatus(s string) (models.OrderStatus, error) {
	switch st := models.OrderStatus(s); st {
	case models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderDelivered, models.OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

// CheckTransition reports whether an order may move from one status to
// another. Staying in the same status is allowed so tracking numbers can
// be edited.
func CheckTransition(from, to models.OrderStatus) error {
	if from == to {
		return nil
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
