package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountFixed      = "fixed"
	DiscountPercentage = "percentage"
)

// Coupon validation failures, ordered the way Validate applies them.
var (
	ErrCouponInvalid     = errors.New("invalid coupon code")
	ErrCouponInactive    = errors.New("this coupon is currently not active")
	ErrCouponExpired     = errors.New("this coupon has expired")
	ErrCouponAlreadyUsed = errors.New("you have already used this coupon")
	ErrCouponNotAssigned = errors.New("this coupon is not assigned to you")
)

type Coupon struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"` // stored upper-cased
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	MinPurchase  decimal.Decimal `json:"min_purchase"` // zero means unset
	IsActive     bool            `json:"is_active"`
	UsedBy       []string        `json:"used_by"`
	OwnerID      string          `json:"owner_id,omitempty"` // restricts use to this user when set
	CreatedAt    string          `json:"created_at,omitempty"`
}

// Usable reports whether userID can redeem the coupon at time now.
// Checks are ordered so the first failure wins: active, unexpired,
// not yet redeemed by this user, ownership.
func (c *Coupon) Usable(userID string, now time.Time) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if !now.Before(c.ExpiryDate) {
		return ErrCouponExpired
	}
	for _, id := range c.UsedBy {
		if id == userID {
			return ErrCouponAlreadyUsed
		}
	}
	if c.OwnerID != "" && c.OwnerID != userID {
		return ErrCouponNotAssigned
	}
	return nil
}

// DiscountFor computes the discount the coupon grants on the given
// subtotal, capped at the subtotal so the total never goes negative.
// The min-purchase condition is the caller's concern.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountFixed:
		discount = c.Value
	case DiscountPercentage:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// HasMinPurchase reports whether the coupon carries a minimum-purchase
// condition.
func (c *Coupon) HasMinPurchase() bool {
	return c.MinPurchase.IsPositive()
}
