package handlers

import (
	"github.com/jmoiron/sqlx"

	"github.com/LogickStudio/demaincloset/internal/auth"
	"github.com/LogickStudio/demaincloset/internal/config"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	ReviewHandler  *ReviewHandler
	MessageHandler *MessageHandler
	AdminHandler   *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	couponRepo := repos.NewCouponRepo(db)
	userRepo := repos.NewUserRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	stateRepo := repos.NewCartStateRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	msgRepo := repos.NewMessageRepo(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(stateRepo, prodRepo, couponRepo)
	checkoutSvc := services.NewCheckoutService(cartSvc, prodRepo, orderRepo, cfg)
	referralSvc := services.NewReferralService(couponRepo, userRepo)
	authSvc := services.NewAuthService(userRepo, tokens, referralSvc, cartSvc)

	return &Deps{
		Auth:           authSvc,
		AuthHandler:    &AuthHandler{Auth: authSvc, Referrals: referralSvc, Users: userRepo},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc, Checkout: checkoutSvc},
		OrderHandler:   &OrderHandler{Repo: orderRepo},
		ReviewHandler:  &ReviewHandler{Reviews: reviewRepo, Catalog: catalogSvc},
		MessageHandler: &MessageHandler{Messages: msgRepo},
		AdminHandler: &AdminHandler{
			Products: prodRepo,
			Coupons:  couponRepo,
			Users:    userRepo,
			Orders:   orderRepo,
			Messages: msgRepo,
		},
	}
}
