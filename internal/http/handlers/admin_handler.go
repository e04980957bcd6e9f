package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Products *repos.ProductRepo
	Coupons  *repos.CouponRepo
	Users    *repos.UserRepo
	Orders   *repos.OrderRepo
	Messages *repos.MessageRepo
}

// GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	products, err := h.Products.Count()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load dashboard")
	}
	orders, _ := h.Orders.Count()
	users, _ := h.Users.Count()
	unread, _ := h.Messages.CountUnread()
	return c.JSON(fiber.Map{
		"products":        products,
		"orders":          orders,
		"users":           users,
		"unread_messages": unread,
	})
}

type productInput struct {
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Description      string           `json:"description"`
	Images           []string         `json:"images"`
	CareInstructions string           `json:"care_instructions"`
	Variants         []domain.Variant `json:"variants"`
}

func (in *productInput) toProduct(id string) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, errors.New("name and category are required")
	}
	if len(in.Variants) == 0 {
		return nil, errors.New("at least one variant is required")
	}
	for _, v := range in.Variants {
		if v.Size == "" || v.Price.IsNegative() || v.Stock < 0 {
			return nil, errors.New("invalid variant")
		}
	}
	imagesJSON := "[]"
	if len(in.Images) > 0 {
		raw, err := json.Marshal(in.Images)
		if err != nil {
			return nil, errors.New("invalid images")
		}
		imagesJSON = string(raw)
	}
	p := &domain.Product{
		ID:               id,
		Name:             strings.TrimSpace(in.Name),
		Category:         strings.TrimSpace(in.Category),
		Description:      in.Description,
		ImagesJSON:       imagesJSON,
		CareInstructions: in.CareInstructions,
		Variants:         in.Variants,
	}
	for i := range p.Variants {
		p.Variants[i].ProductID = id
	}
	return p, nil
}

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var in productInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	p, err := in.toProduct(uuid.NewString())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.Products.Create(p); err != nil {
		applog.Error(c, "admin.products.create.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not create product")
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/v1/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	existing, err := h.Products.Get(id)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "could not load product")
	}
	if existing == nil {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	var in productInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	p, err := in.toProduct(id)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.Products.Update(p); err != nil {
		applog.Error(c, "admin.products.update.fail", err, map[string]any{"product": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not update product")
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product": id})
	return c.JSON(p)
}

// DELETE /api/v1/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	if err := h.Products.Delete(id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not delete product")
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}

type couponInput struct {
	Code         string          `json:"code"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	MinPurchase  decimal.Decimal `json:"min_purchase"`
	IsActive     bool            `json:"is_active"`
	OwnerID      string          `json:"owner_id"`
}

func (in *couponInput) toCoupon(id string) (*domain.Coupon, error) {
	code, ok := validate.CouponCode(in.Code)
	if !ok {
		return nil, errors.New("invalid coupon code")
	}
	if in.DiscountType != domain.DiscountFixed && in.DiscountType != domain.DiscountPercentage {
		return nil, errors.New("discount_type must be fixed or percentage")
	}
	if !in.Value.IsPositive() {
		return nil, errors.New("value must be positive")
	}
	if in.DiscountType == domain.DiscountPercentage && in.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, errors.New("percentage discount cannot exceed 100")
	}
	if in.ExpiryDate.IsZero() {
		return nil, errors.New("expiry_date is required")
	}
	return &domain.Coupon{
		ID:           id,
		Code:         code,
		DiscountType: in.DiscountType,
		Value:        in.Value,
		ExpiryDate:   in.ExpiryDate,
		MinPurchase:  in.MinPurchase,
		IsActive:     in.IsActive,
		OwnerID:      in.OwnerID,
	}, nil
}

// GET /api/v1/admin/coupons
func (h *AdminHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.Coupons.ListAll()
	if err != nil {
		applog.Error(c, "admin.coupons.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load coupons")
	}
	return c.JSON(coupons)
}

// POST /api/v1/admin/coupons
func (h *AdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var in couponInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	coupon, err := in.toCoupon(uuid.NewString())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if existing, err := h.Coupons.FindByCode(coupon.Code); err == nil && existing != nil {
		return jsonError(c, fiber.StatusConflict, "a coupon with this code already exists")
	}
	if err := h.Coupons.Insert(coupon); err != nil {
		applog.Error(c, "admin.coupons.create.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not create coupon")
	}
	applog.Audit(c, "admin.coupons.create", map[string]any{"code": coupon.Code})
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// PUT /api/v1/admin/coupons/:id
func (h *AdminHandler) UpdateCoupon(c *fiber.Ctx) error {
	var in couponInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	coupon, err := in.toCoupon(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.Coupons.Update(coupon); err != nil {
		applog.Error(c, "admin.coupons.update.fail", err, map[string]any{"coupon": coupon.ID})
		return jsonError(c, fiber.StatusInternalServerError, "could not update coupon")
	}
	applog.Audit(c, "admin.coupons.update", map[string]any{"code": coupon.Code})
	return c.JSON(coupon)
}

// DELETE /api/v1/admin/coupons/:id
func (h *AdminHandler) DeleteCoupon(c *fiber.Ctx) error {
	if err := h.Coupons.Delete(c.Params("id")); err != nil {
		applog.Error(c, "admin.coupons.delete.fail", err, map[string]any{"coupon": c.Params("id")})
		return jsonError(c, fiber.StatusInternalServerError, "could not delete coupon")
	}
	applog.Audit(c, "admin.coupons.delete", map[string]any{"coupon": c.Params("id")})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Users.ListAll()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load users")
	}
	return c.JSON(users)
}

// GET /api/v1/admin/referrals
func (h *AdminHandler) Referrals(c *fiber.Ctx) error {
	users, err := h.Users.ListAll()
	if err != nil {
		applog.Error(c, "admin.referrals.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load referrals")
	}
	type row struct {
		UserID        string   `json:"user_id"`
		Name          string   `json:"name"`
		ReferralCode  string   `json:"referral_code"`
		ReferredUsers []string `json:"referred_users"`
	}
	out := make([]row, 0, len(users))
	for i := range users {
		referred := repos.ReferredUsers(&users[i])
		if len(referred) == 0 {
			continue
		}
		out = append(out, row{
			UserID:        users[i].ID,
			Name:          users[i].Name,
			ReferralCode:  users[i].ReferralCode,
			ReferredUsers: referred,
		})
	}
	return c.JSON(out)
}

// GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return c.JSON(orders)
}

// PUT /api/v1/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	status := strings.ToUpper(strings.TrimSpace(in.Status))
	switch status {
	case "SUBMITTED", "CONFIRMED", "SHIPPED", "DELIVERED", "CANCELLED":
	default:
		return jsonError(c, fiber.StatusBadRequest, "invalid status")
	}
	if err := h.Orders.UpdateStatus(c.Params("id"), status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": c.Params("id")})
		return jsonError(c, fiber.StatusInternalServerError, "could not update order")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": c.Params("id"), "status": status})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/admin/messages
func (h *AdminHandler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.Messages.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.messages.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load messages")
	}
	return c.JSON(msgs)
}

// PUT /api/v1/admin/messages/:id/read
func (h *AdminHandler) MarkMessageRead(c *fiber.Ctx) error {
	err := h.Messages.MarkRead(c.Params("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return jsonError(c, fiber.StatusNotFound, "message not found")
	}
	if err != nil {
		applog.Error(c, "admin.messages.read.fail", err, map[string]any{"message_id": c.Params("id")})
		return jsonError(c, fiber.StatusInternalServerError, "could not update message")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
