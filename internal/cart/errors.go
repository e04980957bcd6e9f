package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LogickStudio/demaincloset/internal/domain"
)

var (
	// ErrUnauthenticated is returned by coupon operations when no user
	// owns the cart.
	ErrUnauthenticated = errors.New("you must be logged in to apply a coupon")

	// ErrCouponAlreadyApplied is the caller-facing guard against stacking
	// coupons; the engine itself only ever holds one.
	ErrCouponAlreadyApplied = errors.New("a coupon is already applied; remove it first")

	// ErrNotFound signals that the referenced product or variant could not
	// be resolved against the live catalog.
	ErrNotFound = errors.New("product variant not found")
)

// StockExceededError rejects an add that would push a line past live
// stock. CanAdd is the maximum quantity the caller may still add,
// floored at zero.
type StockExceededError struct {
	Available int
	CanAdd    int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("sorry, only %d items are available. You can add %d more to your cart", e.Available, e.CanAdd)
}

// MinPurchaseError carries the threshold so the message can state the
// shortfall.
type MinPurchaseError struct {
	Required decimal.Decimal
}

func (e *MinPurchaseError) Error() string {
	return fmt.Sprintf("a minimum purchase of %s is required to use this coupon", domain.Naira(e.Required))
}
