package service

import (
	"fmt"

	"order-amendment-service/internal/models"
)

// CheckEligibility decides whether an order may be amended at all.
// Completed and cancelled orders are final, and only cash-on-delivery
// orders can have their total changed after placement. Pure; callers
// re-evaluate it at session open and again at commit because the order
// can change in between.
func CheckEligibility(status, settlement string) error {
	if status == models.OrderStatusCompleted || status == models.OrderStatusCancelled {
		return fmt.Errorf("%w: status is %s", ErrIneligibleOrder, status)
	}
	if settlement != models.SettlementCashOnDelivery {
		return fmt.Errorf("%w: settlement is %s", ErrIneligibleOrder, settlement)
	}
	return nil
}
