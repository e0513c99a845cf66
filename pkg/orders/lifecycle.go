// Package orders holds the order lifecycle rules shared by both
// persistence backends: server-side total computation, lazy
// auto-confirmation of aged pending orders, and the deletion window.
package orders

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/example/feastly/pkg/models"
)

var (
	ErrDeleteWindowClosed = errors.New("order can no longer be deleted")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrNoItems            = errors.New("order must contain at least one item")
)

// ComputeTotal sums price x quantity over the submitted items. A missing
// quantity counts as 1; zero and negative quantities are summed as-is
// unless rejectNegative is set.
func ComputeTotal(items []models.OrderItem, rejectNegative bool) (float64, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}
	var total float64
	for i, item := range items {
		qty := item.Qty()
		if rejectNegative && qty <= 0 {
			return 0, fmt.Errorf("item %d: quantity must be positive", i)
		}
		total += float64(item.Price) * float64(qty)
	}
	return round2(total), nil
}

// AutoConfirm flips a pending order to confirmed once it is at least
// confirmAfter old. It reports whether the order was rewritten; callers
// on a read path must persist the change when true.
func AutoConfirm(o *models.Order, now time.Time, confirmAfter time.Duration) bool {
	if o.Status != models.StatusPending {
		return false
	}
	if o.Age(now) < confirmAfter {
		return false
	}
	o.Status = models.StatusConfirmed
	return true
}

// CanDelete enforces the deletion window: only pending orders younger
// than window may be removed. Both checks use the stored creation
// timestamp against the same now.
func CanDelete(o *models.Order, now time.Time, window time.Duration) error {
	if o.Status != models.StatusPending {
		return ErrDeleteWindowClosed
	}
	if o.Age(now) >= window {
		return ErrDeleteWindowClosed
	}
	return nil
}

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	for _, known := range models.OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
