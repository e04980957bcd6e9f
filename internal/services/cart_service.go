package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LogickStudio/demaincloset/internal/cart"
	"github.com/LogickStudio/demaincloset/internal/domain"
	"github.com/LogickStudio/demaincloset/internal/repos"
)

// catalogStore adapts ProductRepo to the engine's pull-style catalog
// view.
type catalogStore struct{ p *repos.ProductRepo }

func (c catalogStore) GetProductByID(id string) (*domain.Product, error) { return c.p.Get(id) }

// CartService hosts one pricing-engine instance per request: state is
// restored from the persisted blobs, mutated, and written back. The
// engine owns the semantics; this layer owns durability.
type CartService struct {
	States   *repos.CartStateRepo
	Products *repos.ProductRepo
	Coupons  *repos.CouponRepo
}

func NewCartService(states *repos.CartStateRepo, products *repos.ProductRepo, coupons *repos.CouponRepo) *CartService {
	return &CartService{States: states, Products: products, Coupons: coupons}
}

// Engine restores the user's cart into a fresh engine.
func (s *CartService) Engine(userID string) (*cart.Engine, error) {
	lines, err := s.States.Get(userID, repos.CartKeyLines)
	if err != nil {
		return nil, err
	}
	coupon, err := s.States.Get(userID, repos.CartKeyCoupon)
	if err != nil {
		return nil, err
	}
	e := cart.New(userID, catalogStore{s.Products}, s.Coupons)
	e.Restore(lines, coupon)
	return e, nil
}

func (s *CartService) save(userID string, e *cart.Engine) error {
	lines, coupon, err := e.State()
	if err != nil {
		return err
	}
	if err := s.States.Put(userID, repos.CartKeyLines, lines); err != nil {
		return err
	}
	if coupon == nil {
		return s.States.Delete(userID, repos.CartKeyCoupon)
	}
	return s.States.Put(userID, repos.CartKeyCoupon, coupon)
}

// CartView is the caller-facing snapshot after an operation.
type CartView struct {
	Lines      []cart.Line     `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	CouponCode string          `json:"coupon_code,omitempty"`
}

func view(e *cart.Engine) CartView {
	v := CartView{
		Lines:     e.Lines(),
		Subtotal:  e.Subtotal(),
		Discount:  e.Discount(),
		Total:     e.Total(),
		ItemCount: e.ItemCount(),
	}
	if c := e.AppliedCoupon(); c != nil {
		v.CouponCode = c.Code
	}
	return v
}

func (s *CartService) View(userID string) (CartView, error) {
	e, err := s.Engine(userID)
	if err != nil {
		return CartView{}, err
	}
	// restoring may have auto-removed a coupon; persist what the caller sees
	if err := s.save(userID, e); err != nil {
		return CartView{}, err
	}
	return view(e), nil
}

func (s *CartService) Add(userID, productID, size string, qty int) (CartView, error) {
	e, err := s.Engine(userID)
	if err != nil {
		return CartView{}, err
	}
	if err := e.AddToCart(productID, size, qty); err != nil {
		return view(e), err
	}
	return view(e), s.save(userID, e)
}

func (s *CartService) UpdateQuantity(userID, lineID string, qty int) (CartView, error) {
	e, err := s.Engine(userID)
	if err != nil {
		return CartView{}, err
	}
	if err := e.UpdateQuantity(lineID, qty); err != nil {
		return view(e), err
	}
	return view(e), s.save(userID, e)
}

func (s *CartService) Remove(userID, lineID string) (CartView, error) {
	e, err := s.Engine(userID)
	if err != nil {
		return CartView{}, err
	}
	e.RemoveFromCart(lineID)
	return view(e), s.save(userID, e)
}

// ApplyCoupon enforces the one-coupon contract: applying while another
// coupon is active is rejected here, not inside the engine.
func (s *CartService) ApplyCoupon(userID, code string) (CartView, string, error) {
	e, err := s.Engine(userID)
	if err != nil {
		return CartView{}, "", err
	}
	if c := e.AppliedCoupon(); c != nil && c.Code != strings.ToUpper(strings.TrimSpace(code)) {
		return view(e), "", cart.ErrCouponAlreadyApplied
	}
	msg, err := e.ApplyCoupon(code)
	if err != nil {
		return view(e), "", err
	}
	return view(e), msg, s.save(userID, e)
}

func (s *CartService) RemoveCoupon(userID string) (CartView, error) {
	e, err := s.Engine(userID)
	if err != nil {
		return CartView{}, err
	}
	e.RemoveCoupon()
	return view(e), s.save(userID, e)
}

// Clear drops the user's cart and persisted blobs; used on checkout and
// when the identity session ends.
func (s *CartService) Clear(userID string) error {
	return s.States.Clear(userID)
}
