package handlers

import (
	"strconv"

	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/services"
	"github.com/LogickStudio/demaincloset/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func page(c *fiber.Ctx) (int, int) {
	p, _ := strconv.Atoi(c.Query("page", "1"))
	ps, _ := strconv.Atoi(c.Query("page_size", "12"))
	return p, ps
}

// GET /
func (h *ProductHandler) Home(c *fiber.Ctx) error {
	prods, err := h.Catalog.ListProducts("", 1, 8)
	if err != nil {
		applog.Error(c, "home.load.fail", err, nil)
		prods = nil
	}
	cats, _ := h.Catalog.ListCategories()
	return render(c, "home", fiber.Map{"Products": prods, "Categories": cats})
}

// GET /api/v1/categories
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load categories")
	}
	return c.JSON(cats)
}

// GET /api/v1/products?category=&page=&page_size=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	pg, ps := page(c)
	prods, err := h.Catalog.ListProducts(c.Query("category"), pg, ps)
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load products")
	}
	return c.JSON(prods)
}

// GET /api/v1/products/search?q=
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return jsonError(c, fiber.StatusBadRequest, "invalid search query")
	}
	pg, ps := page(c)
	prods, err := h.Catalog.Search(q, c.Query("category"), pg, ps)
	if err != nil {
		applog.Error(c, "products.search.fail", err, map[string]any{"q": q})
		return jsonError(c, fiber.StatusInternalServerError, "search failed")
	}
	return c.JSON(prods)
}

// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		applog.Error(c, "products.get.fail", err, map[string]any{"product": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not load product")
	}
	if p == nil {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	return c.JSON(p)
}
