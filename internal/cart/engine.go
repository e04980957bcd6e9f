package cart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
)

// CatalogStore is the engine's pull-style view of the product catalog.
// GetProductByID returns (nil, nil) when the product no longer exists.
type CatalogStore interface {
	GetProductByID(id string) (*domain.Product, error)
}

// CouponStore resolves coupon codes and records redemptions.
type CouponStore interface {
	FindByCode(code string) (*domain.Coupon, error)
	MarkUsed(code, userID string) error
}

// Line is one product+variant+quantity entry in the cart. Price is a
// snapshot taken when the line was created; later catalog price changes
// do not re-price it.
type Line struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
}

// LineID derives the cart line key for a product+size pair.
func LineID(productID, size string) string { return productID + "_" + size }

// Engine owns one session's cart and applied-coupon state and computes
// subtotal, discount and total. It is not safe for concurrent use; each
// session owns its own instance.
type Engine struct {
	userID  string
	catalog CatalogStore
	coupons CouponStore

	lines    []Line
	applied  *domain.Coupon
	discount decimal.Decimal

	now func() time.Time
}

func New(userID string, catalog CatalogStore, coupons CouponStore) *Engine {
	return &Engine{
		userID:  userID,
		catalog: catalog,
		coupons: coupons,
		now:     time.Now,
	}
}

func (e *Engine) Lines() []Line {
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

func (e *Engine) AppliedCoupon() *domain.Coupon { return e.applied }

func (e *Engine) Discount() decimal.Decimal { return e.discount }

func (e *Engine) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range e.lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func (e *Engine) Total() decimal.Decimal {
	total := e.Subtotal().Sub(e.discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// ItemCount is the sum of all line quantities, not the line count.
func (e *Engine) ItemCount() int {
	n := 0
	for _, l := range e.lines {
		n += l.Quantity
	}
	return n
}

// AddToCart adds qty of the given product+size to the cart, checking the
// live catalog stock. A rejected add leaves the cart unchanged and the
// returned StockExceededError reports how many more can still be added.
func (e *Engine) AddToCart(productID, size string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	p, err := e.catalog.GetProductByID(productID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	v := p.VariantBySize(size)
	if v == nil {
		return ErrNotFound
	}

	id := LineID(p.ID, v.Size)
	inCart := 0
	idx := -1
	for i := range e.lines {
		if e.lines[i].ID == id {
			inCart = e.lines[i].Quantity
			idx = i
			break
		}
	}

	if inCart+qty > v.Stock {
		canAdd := v.Stock - inCart
		if canAdd < 0 {
			canAdd = 0
		}
		return &StockExceededError{Available: v.Stock, CanAdd: canAdd}
	}

	if idx >= 0 {
		e.lines[idx].Quantity += qty
	} else {
		e.lines = append(e.lines, Line{
			ID:          id,
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       v.Price,
			Category:    p.Category,
			Image:       p.FirstImage(),
			Size:        v.Size,
			Quantity:    qty,
			Description: p.Description,
		})
	}
	e.recompute()
	return nil
}

// UpdateQuantity sets a line's quantity, silently clamping to the live
// stock ceiling. Zero removes the line. A line whose product or variant
// can no longer be resolved is left untouched (logged, not fatal) —
// unlike AddToCart, over-limit requests here never error.
func (e *Engine) UpdateQuantity(lineID string, qty int) error {
	idx := -1
	for i := range e.lines {
		if e.lines[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	l := e.lines[idx]

	p, err := e.catalog.GetProductByID(l.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		applog.Warn(nil, "cart.update.product_missing", nil, map[string]any{"line": lineID})
		return nil
	}
	v := p.VariantBySize(l.Size)
	if v == nil {
		applog.Warn(nil, "cart.update.variant_missing", nil, map[string]any{"line": lineID})
		return nil
	}

	if qty > v.Stock {
		qty = v.Stock
	}
	if qty < 0 {
		qty = 0
	}
	if qty == 0 {
		e.lines = append(e.lines[:idx], e.lines[idx+1:]...)
	} else {
		e.lines[idx].Quantity = qty
	}
	e.recompute()
	return nil
}

// RemoveFromCart removes a line unconditionally; removing an unknown id
// is a no-op.
func (e *Engine) RemoveFromCart(lineID string) {
	for i := range e.lines {
		if e.lines[i].ID == lineID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			break
		}
	}
	e.recompute()
}

// ApplyCoupon validates the code for this cart's owner and, on success,
// makes it the single applied coupon. Validation fails fast in order:
// exists, active, unexpired, not already redeemed, ownership, minimum
// purchase (with the threshold in the message).
func (e *Engine) ApplyCoupon(code string) (string, error) {
	if e.userID == "" {
		return "", ErrUnauthenticated
	}
	c, err := e.coupons.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", domain.ErrCouponInvalid
	}
	if err := c.Usable(e.userID, e.now()); err != nil {
		return "", err
	}
	if c.HasMinPurchase() && e.Subtotal().LessThan(c.MinPurchase) {
		return "", &MinPurchaseError{Required: c.MinPurchase}
	}

	e.applied = c
	e.recompute()
	return "Coupon applied successfully!", nil
}

// RemoveCoupon clears the applied coupon and resets the discount.
func (e *Engine) RemoveCoupon() {
	e.applied = nil
	e.discount = decimal.Zero
}

// Clear empties the cart and drops any applied coupon.
func (e *Engine) Clear() {
	e.lines = nil
	e.RemoveCoupon()
}

// recompute re-derives the discount from (appliedCoupon, subtotal). It
// runs after every cart mutation so the invariant discount <= subtotal
// holds before the engine reports a new total. Dropping below an applied
// coupon's minimum purchase silently removes the coupon.
func (e *Engine) recompute() {
	if e.applied == nil {
		e.discount = decimal.Zero
		return
	}
	subtotal := e.Subtotal()
	if e.applied.HasMinPurchase() && subtotal.LessThan(e.applied.MinPurchase) {
		applog.Warn(nil, "cart.coupon.autoremove", nil, map[string]any{
			"code": e.applied.Code, "min_purchase": e.applied.MinPurchase.String(),
		})
		e.RemoveCoupon()
		return
	}
	e.discount = e.applied.DiscountFor(subtotal)
}

// StockIssue describes a line whose quantity exceeds the stock available
// at re-validation time.
type StockIssue struct {
	LineID    string `json:"line_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// ValidateStock re-checks every line against current catalog stock; it
// is the second validation pass required immediately before order
// submission, since add-time checks can be stale by then. A product or
// variant that vanished counts as zero stock.
func (e *Engine) ValidateStock() ([]StockIssue, error) {
	var issues []StockIssue
	for _, l := range e.lines {
		stock := 0
		p, err := e.catalog.GetProductByID(l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			if v := p.VariantBySize(l.Size); v != nil {
				stock = v.Stock
			}
		}
		if l.Quantity > stock {
			issues = append(issues, StockIssue{
				LineID: l.ID, Name: l.Name, Size: l.Size,
				Requested: l.Quantity, Available: stock,
			})
		}
	}
	return issues, nil
}

// MarkCouponUsed records the applied coupon as redeemed by the cart
// owner. Failure is logged and swallowed: order submission never rolls
// back on bookkeeping.
func (e *Engine) MarkCouponUsed() {
	if e.applied == nil || e.userID == "" {
		return
	}
	if err := e.coupons.MarkUsed(e.applied.Code, e.userID); err != nil {
		applog.Warn(nil, "cart.coupon.mark_used", err, map[string]any{"code": e.applied.Code})
	}
}
