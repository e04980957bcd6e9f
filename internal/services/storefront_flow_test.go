package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/LogickStudio/demaincloset/internal/auth"
	"github.com/LogickStudio/demaincloset/internal/cart"
	"github.com/LogickStudio/demaincloset/internal/config"
	"github.com/LogickStudio/demaincloset/internal/domain"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.EnsureSchema(db))
	return db
}

type env struct {
	db       *sqlx.DB
	products *repos.ProductRepo
	coupons  *repos.CouponRepo
	users    *repos.UserRepo
	orders   *repos.OrderRepo

	carts     *services.CartService
	checkout  *services.CheckoutService
	authSvc   *services.AuthService
	referrals *services.ReferralService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memdb(t)
	e := &env{
		db:       db,
		products: repos.NewProductRepo(db),
		coupons:  repos.NewCouponRepo(db),
		users:    repos.NewUserRepo(db),
		orders:   repos.NewOrderRepo(db),
	}
	e.carts = services.NewCartService(repos.NewCartStateRepo(db), e.products, e.coupons)
	e.checkout = services.NewCheckoutService(e.carts, e.products, e.orders, config.Config{
		WhatsAppNumber: "2349053223790",
		BankAccount:    "Demain Closet",
		BankAccountNum: "0123456789",
		BankName:       "GTBank",
	})
	e.referrals = services.NewReferralService(e.coupons, e.users)
	tokens := auth.NewTokenService("test-secret-test-secret", time.Hour)
	e.authSvc = services.NewAuthService(e.users, tokens, e.referrals, e.carts)
	return e
}

func seedProduct(t *testing.T, e *env, id string, price int64, stock int) {
	t.Helper()
	require.NoError(t, e.products.Create(&domain.Product{
		ID: id, Name: "Ankara Gown " + id, Category: "Clothes",
		Description: "test product", ImagesJSON: `["/media/p.jpg"]`,
		Variants: []domain.Variant{
			{ProductID: id, Size: "M", Price: decimal.NewFromInt(price), Stock: stock},
		},
	}))
}

func seedUser(t *testing.T, e *env, id, email, referral string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID: id, Email: email, Name: "Test " + id,
		Hash: "x", Role: "USER", ReferralCode: referral,
	}
	require.NoError(t, e.users.Create(u))
	return u
}

func TestStorefrontFlow_AddCouponCheckout(t *testing.T) {
	e := newEnv(t)
	seedProduct(t, e, "p1", 5000, 4)
	seedUser(t, e, "u1", "amara@example.com", "DEMAIN-AMARA1")

	require.NoError(t, e.coupons.Insert(&domain.Coupon{
		ID: uuid.NewString(), Code: "SAVE10",
		DiscountType: domain.DiscountPercentage, Value: decimal.NewFromInt(10),
		ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: true,
	}))

	cv, err := e.carts.Add("u1", "p1", "M", 2)
	require.NoError(t, err)
	require.Equal(t, 2, cv.ItemCount)
	require.True(t, cv.Subtotal.Equal(decimal.NewFromInt(10000)), "subtotal %s", cv.Subtotal)

	cv, msg, err := e.carts.ApplyCoupon("u1", "save10")
	require.NoError(t, err)
	require.Equal(t, "Coupon applied successfully!", msg)
	require.True(t, cv.Discount.Equal(decimal.NewFromInt(1000)))
	require.True(t, cv.Total.Equal(decimal.NewFromInt(9000)))

	res, err := e.checkout.Submit("u1", services.CheckoutInput{
		Name: "Amara", Phone: "+2348012345678", Address: "12 Admiralty Way, Lagos",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.OrderID)
	require.Contains(t, res.WhatsAppURL, "https://wa.me/2349053223790?text=")

	// stock decremented 4 -> 2
	p, err := e.products.Get("p1")
	require.NoError(t, err)
	require.Equal(t, 2, p.VariantBySize("M").Stock)

	// order persisted with engine totals
	row, items, err := e.orders.Get(res.OrderID)
	require.NoError(t, err)
	require.Equal(t, "SUBMITTED", row.Status)
	require.Equal(t, "SAVE10", row.CouponCode)
	require.True(t, row.Total.Equal(decimal.NewFromInt(9000)))
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Qty)

	// coupon burned for this user
	c, err := e.coupons.FindByCode("SAVE10")
	require.NoError(t, err)
	require.Contains(t, c.UsedBy, "u1")

	// cart cleared
	cv, err = e.carts.View("u1")
	require.NoError(t, err)
	require.Empty(t, cv.Lines)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t)
	_, err := e.checkout.Submit("u1", services.CheckoutInput{Name: "A", Phone: "1", Address: "x"})
	require.ErrorIs(t, err, services.ErrCartEmpty)
}

func TestCheckout_StockIssuesBlock(t *testing.T) {
	e := newEnv(t)
	seedProduct(t, e, "p1", 5000, 3)
	_, err := e.carts.Add("u1", "p1", "M", 3)
	require.NoError(t, err)

	// shrink stock behind the cart's back
	require.NoError(t, e.products.UpsertVariant(domain.Variant{
		ProductID: "p1", Size: "M", Price: decimal.NewFromInt(5000), Stock: 1,
	}))

	_, err = e.checkout.Submit("u1", services.CheckoutInput{Name: "A", Phone: "1", Address: "x"})
	var sie *services.StockIssuesError
	require.ErrorAs(t, err, &sie)
	require.Len(t, sie.Issues, 1)
	require.Equal(t, 1, sie.Issues[0].Available)

	// nothing recorded
	n, err := e.orders.Count()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCartService_PersistsAcrossEngines(t *testing.T) {
	e := newEnv(t)
	seedProduct(t, e, "p1", 2500, 10)

	_, err := e.carts.Add("u1", "p1", "M", 3)
	require.NoError(t, err)

	// a fresh view restores from the persisted blobs
	cv, err := e.carts.View("u1")
	require.NoError(t, err)
	require.Len(t, cv.Lines, 1)
	require.Equal(t, "p1_M", cv.Lines[0].ID)
	require.True(t, cv.Subtotal.Equal(decimal.NewFromInt(7500)))
}

func TestCartService_SecondCouponRejected(t *testing.T) {
	e := newEnv(t)
	seedProduct(t, e, "p1", 5000, 5)
	for _, code := range []string{"FIRST", "SECOND"} {
		require.NoError(t, e.coupons.Insert(&domain.Coupon{
			ID: uuid.NewString(), Code: code,
			DiscountType: domain.DiscountFixed, Value: decimal.NewFromInt(500),
			ExpiryDate: time.Now().Add(time.Hour), IsActive: true,
		}))
	}
	_, err := e.carts.Add("u1", "p1", "M", 1)
	require.NoError(t, err)
	_, _, err = e.carts.ApplyCoupon("u1", "FIRST")
	require.NoError(t, err)

	_, _, err = e.carts.ApplyCoupon("u1", "SECOND")
	require.ErrorIs(t, err, cart.ErrCouponAlreadyApplied)

	// reapplying the same code is not an error
	_, _, err = e.carts.ApplyCoupon("u1", "first")
	require.NoError(t, err)
}

func TestCartService_CouponAutoRemovalPersisted(t *testing.T) {
	e := newEnv(t)
	seedProduct(t, e, "p1", 5000, 5)
	require.NoError(t, e.coupons.Insert(&domain.Coupon{
		ID: uuid.NewString(), Code: "BIGSPEND",
		DiscountType: domain.DiscountFixed, Value: decimal.NewFromInt(1000),
		ExpiryDate: time.Now().Add(time.Hour), IsActive: true,
		MinPurchase: decimal.NewFromInt(8000),
	}))

	_, err := e.carts.Add("u1", "p1", "M", 2)
	require.NoError(t, err)
	_, _, err = e.carts.ApplyCoupon("u1", "BIGSPEND")
	require.NoError(t, err)

	cv, err := e.carts.UpdateQuantity("u1", "p1_M", 1)
	require.NoError(t, err)
	require.Empty(t, cv.CouponCode)
	require.True(t, cv.Total.Equal(decimal.NewFromInt(5000)))

	// the removal survives a reload
	cv, err = e.carts.View("u1")
	require.NoError(t, err)
	require.Empty(t, cv.CouponCode)
}
