package handlers

import (
	"errors"

	"github.com/LogickStudio/demaincloset/internal/cart"
	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/services"
	"github.com/LogickStudio/demaincloset/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// cartError maps engine failures onto API responses. Stock and
// min-purchase rejections carry user-facing messages verbatim.
func cartError(c *fiber.Ctx, err error) error {
	var stock *cart.StockExceededError
	var minp *cart.MinPurchaseError
	switch {
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": stock.Error(), "available": stock.Available, "can_add": stock.CanAdd,
		})
	case errors.As(err, &minp):
		return jsonError(c, fiber.StatusBadRequest, minp.Error())
	case errors.Is(err, cart.ErrUnauthenticated):
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, cart.ErrCouponAlreadyApplied):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, cart.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCouponInvalid),
		errors.Is(err, domain.ErrCouponInactive),
		errors.Is(err, domain.ErrCouponExpired),
		errors.Is(err, domain.ErrCouponAlreadyUsed),
		errors.Is(err, domain.ErrCouponNotAssigned):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		applog.Error(c, "cart.op.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "cart operation failed")
	}
}

// GET /api/v1/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(userID(c))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(cv)
}

// POST /api/v1/cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in struct {
		ProductID string `json:"product_id"`
		Size      string `json:"size"`
		Qty       int    `json:"qty"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, ok := validate.ID(in.ProductID)
	if !ok || in.Size == "" {
		applog.Security(c, "validation.fail", map[string]any{"field": "product_id"})
		return jsonError(c, fiber.StatusBadRequest, "missing product or size")
	}
	cv, err := h.Cart.Add(userID(c), id, in.Size, in.Qty)
	if err != nil {
		return cartError(c, err)
	}
	applog.Info(c, "cart.add", map[string]any{"product": id, "size": in.Size, "qty": in.Qty})
	return c.JSON(cv)
}

// PUT /api/v1/cart/items/:lineID
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	var in struct {
		Qty int `json:"qty"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	cv, err := h.Cart.UpdateQuantity(userID(c), c.Params("lineID"), in.Qty)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(cv)
}

// DELETE /api/v1/cart/items/:lineID
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	cv, err := h.Cart.Remove(userID(c), c.Params("lineID"))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(cv)
}

// POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var in struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	code, ok := validate.CouponCode(in.Code)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, domain.ErrCouponInvalid.Error())
	}
	cv, msg, err := h.Cart.ApplyCoupon(userID(c), code)
	if err != nil {
		applog.Info(c, "coupon.apply.reject", map[string]any{"code": code, "reason": err.Error()})
		return cartError(c, err)
	}
	applog.Audit(c, "coupon.apply", map[string]any{"code": code})
	return c.JSON(fiber.Map{"message": msg, "cart": cv})
}

// DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	cv, err := h.Cart.RemoveCoupon(userID(c))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(cv)
}

// POST /api/v1/checkout
func (h *CartHandler) PlaceOrder(c *fiber.Ctx) error {
	var in services.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid name")
	}
	in.Name = name
	phone, ok := validate.Phone(in.Phone)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid phone number")
	}
	in.Phone = phone
	if in.Email != "" {
		email, ok := validate.Email(in.Email)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid email")
		}
		in.Email = email
	}
	if in.Address == "" {
		return jsonError(c, fiber.StatusBadRequest, "delivery address is required")
	}

	res, err := h.Checkout.Submit(userID(c), in)
	var issues *services.StockIssuesError
	switch {
	case errors.As(err, &issues):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": issues.Error(), "issues": issues.Issues,
		})
	case errors.Is(err, services.ErrCartEmpty):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		applog.Error(c, "checkout.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not place order")
	}
	applog.Audit(c, "checkout.place", map[string]any{"order_id": res.OrderID})
	return c.Status(fiber.StatusCreated).JSON(res)
}
