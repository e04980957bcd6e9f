package handlers

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/services"
	"github.com/LogickStudio/demaincloset/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	Reviews *repos.ReviewRepo
	Catalog *services.CatalogService
}

// GET /api/v1/products/:id/reviews
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	revs, err := h.Reviews.ListByProduct(id)
	if err != nil {
		applog.Error(c, "reviews.list.fail", err, map[string]any{"product": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not load reviews")
	}
	return c.JSON(revs)
}

// POST /api/v1/products/:id/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil || p == nil {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}

	var in struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	rating, ok := validate.Rating(strconv.Itoa(in.Rating))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	rev := &domain.Review{
		ID:        uuid.NewString(),
		ProductID: id,
		UserID:    u.ID,
		UserName:  u.Name,
		Rating:    rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := h.Reviews.Insert(rev); err != nil {
		applog.Error(c, "reviews.create.fail", err, map[string]any{"product": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not save review")
	}
	applog.Audit(c, "reviews.create", map[string]any{"product": id, "rating": rating})
	return c.Status(fiber.StatusCreated).JSON(rev)
}
