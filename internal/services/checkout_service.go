package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/LogickStudio/demaincloset/internal/cart"
	"github.com/LogickStudio/demaincloset/internal/config"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/whatsapp"
)

var ErrCartEmpty = errors.New("cart is empty")

// StockIssuesError carries the lines that no longer have enough stock;
// the caller shows these and the order is not created.
type StockIssuesError struct {
	Issues []cart.StockIssue
}

func (e *StockIssuesError) Error() string {
	return fmt.Sprintf("%d item(s) no longer have enough stock", len(e.Issues))
}

type CheckoutInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// CheckoutService turns a validated cart into a recorded order plus a
// WhatsApp hand-off link. Stock is re-checked and decremented before
// the order row is written.
type CheckoutService struct {
	Carts    *CartService
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
	Cfg      config.Config
}

func NewCheckoutService(carts *CartService, products *repos.ProductRepo, orders *repos.OrderRepo, cfg config.Config) *CheckoutService {
	return &CheckoutService{Carts: carts, Products: products, Orders: orders, Cfg: cfg}
}

func (s *CheckoutService) Submit(userID string, in CheckoutInput) (CheckoutResult, error) {
	e, err := s.Carts.Engine(userID)
	if err != nil {
		return CheckoutResult{}, err
	}
	lines := e.Lines()
	if len(lines) == 0 {
		return CheckoutResult{}, ErrCartEmpty
	}

	issues, err := e.ValidateStock()
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(issues) > 0 {
		return CheckoutResult{}, &StockIssuesError{Issues: issues}
	}

	for _, l := range lines {
		if err := s.Products.DecrementStock(l.ProductID, l.Size, l.Quantity); err != nil {
			return CheckoutResult{}, err
		}
	}

	orderID := uuid.NewString()
	row := repos.OrderRow{
		ID:              orderID,
		UserID:          userID,
		CustomerName:    in.Name,
		CustomerPhone:   in.Phone,
		CustomerAddress: in.Address,
		Subtotal:        e.Subtotal(),
		Discount:        e.Discount(),
		Total:           e.Total(),
		ItemCount:       e.ItemCount(),
	}
	if c := e.AppliedCoupon(); c != nil {
		row.CouponCode = c.Code
	}
	items := make([]repos.OrderItemRow, 0, len(lines))
	for _, l := range lines {
		items = append(items, repos.OrderItemRow{
			OrderID: orderID, LineID: l.ID, ProductID: l.ProductID,
			Name: l.Name, Size: l.Size, Qty: l.Quantity, Price: l.Price,
		})
	}
	if err := s.Orders.Create(row, items); err != nil {
		return CheckoutResult{}, err
	}

	// best-effort; a failed coupon burn never blocks the order
	e.MarkCouponUsed()

	summary := whatsapp.Summary(whatsapp.Order{
		Lines:      lines,
		Subtotal:   e.Subtotal(),
		Discount:   e.Discount(),
		Total:      e.Total(),
		ItemCount:  e.ItemCount(),
		CouponCode: row.CouponCode,
		Customer: whatsapp.Customer{
			Name: in.Name, Phone: in.Phone, Email: in.Email, Address: in.Address,
		},
		Bank: whatsapp.BankDetails{
			AccountName:   s.Cfg.BankAccount,
			AccountNumber: s.Cfg.BankAccountNum,
			BankName:      s.Cfg.BankName,
		},
	})

	if err := s.Carts.Clear(userID); err != nil {
		applog.Warn(nil, "checkout.clear_cart", err, map[string]any{"user_id": userID, "order_id": orderID})
	}

	return CheckoutResult{
		OrderID:     orderID,
		WhatsAppURL: whatsapp.Link(s.Cfg.WhatsAppNumber, summary),
	}, nil
}
