package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"github.com/LogickStudio/demaincloset/internal/config"
	"github.com/LogickStudio/demaincloset/internal/http/handlers"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong, please try again"})
			}
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /static -> ./web/static")
	log.Printf("[static] /media  -> %s", mediaDir)

	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		full := filepath.Join(mediaDir, clean)
		return c.SendFile(full, true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg)
	requireUser := handlers.RequireUser(deps.Auth)
	requireAdmin := handlers.RequireAdmin(deps.Auth)

	// Public pages
	app.Get("/", deps.ProductHandler.Home)

	api := app.Group("/api/v1")

	// Catalog
	api.Get("/categories", deps.ProductHandler.Categories)
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.ProductHandler.Search)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Get("/products/:id/reviews", deps.ReviewHandler.List)
	api.Post("/products/:id/reviews", requireUser, deps.ReviewHandler.Create)

	// Auth (login throttled)
	api.Post("/auth/signup", deps.AuthHandler.Signup)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, please try again later"})
		},
	}), deps.AuthHandler.Login)
	api.Post("/auth/logout", requireUser, deps.AuthHandler.Logout)
	api.Get("/me", requireUser, deps.AuthHandler.Me)
	api.Put("/me", requireUser, deps.AuthHandler.UpdateProfile)
	api.Get("/me/referrals", requireUser, deps.AuthHandler.Referred)

	// Cart, coupons, checkout
	api.Get("/cart", requireUser, deps.CartHandler.View)
	api.Post("/cart/items", requireUser, deps.CartHandler.Add)
	api.Put("/cart/items/:lineID", requireUser, deps.CartHandler.UpdateQuantity)
	api.Delete("/cart/items/:lineID", requireUser, deps.CartHandler.Remove)
	api.Post("/cart/coupon", requireUser, deps.CartHandler.ApplyCoupon)
	api.Delete("/cart/coupon", requireUser, deps.CartHandler.RemoveCoupon)
	api.Post("/checkout", requireUser, deps.CartHandler.PlaceOrder)

	// Orders
	api.Get("/orders", requireUser, deps.OrderHandler.History)
	api.Get("/orders/:id", requireUser, deps.OrderHandler.View)

	// Contact
	api.Post("/contact", deps.MessageHandler.Submit)

	// Admin
	admin := api.Group("/admin", requireAdmin)
	admin.Get("/dashboard", deps.AdminHandler.Dashboard)
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Put("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", deps.AdminHandler.DeleteProduct)
	admin.Get("/coupons", deps.AdminHandler.ListCoupons)
	admin.Post("/coupons", deps.AdminHandler.CreateCoupon)
	admin.Put("/coupons/:id", deps.AdminHandler.UpdateCoupon)
	admin.Delete("/coupons/:id", deps.AdminHandler.DeleteCoupon)
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Get("/referrals", deps.AdminHandler.Referrals)
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Put("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/messages", deps.AdminHandler.ListMessages)
	admin.Put("/messages/:id/read", deps.AdminHandler.MarkMessageRead)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
