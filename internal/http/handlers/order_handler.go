package handlers

import (
	"database/sql"
	"errors"

	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/repos"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Repo *repos.OrderRepo
}

// GET /api/v1/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	orders, err := h.Repo.ListByUser(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return c.JSON(orders)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	o, items, err := h.Repo.Get(c.Params("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return jsonError(c, fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		applog.Error(c, "orders.get.fail", err, map[string]any{"order_id": c.Params("id")})
		return jsonError(c, fiber.StatusInternalServerError, "could not load order")
	}
	if o.UserID != u.ID && !u.IsAdmin() {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": o.ID})
		return jsonError(c, fiber.StatusNotFound, "order not found")
	}
	return c.JSON(fiber.Map{"order": o, "items": items})
}
