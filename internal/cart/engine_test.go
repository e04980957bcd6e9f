package cart

import (
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LogickStudio/demaincloset/internal/domain"
)

type fakeCatalog struct {
	products map[string]*domain.Product
}

func (f *fakeCatalog) GetProductByID(id string) (*domain.Product, error) {
	return f.products[id], nil
}

type fakeCoupons struct {
	coupons    map[string]*domain.Coupon
	markedCode string
	markedUser string
	markErr    error
}

func (f *fakeCoupons) FindByCode(code string) (*domain.Coupon, error) {
	return f.coupons[code], nil
}

func (f *fakeCoupons) MarkUsed(code, userID string) error {
	f.markedCode, f.markedUser = code, userID
	return f.markErr
}

func naira(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func testProduct(id string, price int64, stock int) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     gofakeit.ProductName(),
		Category: "Clothes",
		Variants: []domain.Variant{
			{ProductID: id, Size: "M", Price: naira(price), Stock: stock},
			{ProductID: id, Size: "L", Price: naira(price + 500), Stock: stock / 2},
		},
	}
}

func testEngine(t *testing.T, products ...*domain.Product) (*Engine, *fakeCatalog, *fakeCoupons) {
	t.Helper()
	cat := &fakeCatalog{products: map[string]*domain.Product{}}
	for _, p := range products {
		cat.products[p.ID] = p
	}
	cps := &fakeCoupons{coupons: map[string]*domain.Coupon{}}
	return New("u-1", cat, cps), cat, cps
}

func TestAddToCart_NewAndRepeatAdds(t *testing.T) {
	e, _, _ := testEngine(t, testProduct("p1", 5000, 10))

	require.NoError(t, e.AddToCart("p1", "M", 2))
	require.NoError(t, e.AddToCart("p1", "M", 3))
	require.NoError(t, e.AddToCart("p1", "L", 1))

	lines := e.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p1_M", lines[0].ID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 6, e.ItemCount())
	assert.True(t, e.Subtotal().Equal(naira(5*5000+5500)), "subtotal %s", e.Subtotal())
}

func TestAddToCart_PriceSnapshotAtAddTime(t *testing.T) {
	p := testProduct("p1", 5000, 10)
	e, cat, _ := testEngine(t, p)
	require.NoError(t, e.AddToCart("p1", "M", 1))

	// Catalog price changes do not re-price the existing line.
	cat.products["p1"].Variants[0].Price = naira(9000)
	require.NoError(t, e.UpdateQuantity("p1_M", 2))
	assert.True(t, e.Subtotal().Equal(naira(10000)), "subtotal %s", e.Subtotal())
}

func TestAddToCart_RejectsOverStock(t *testing.T) {
	e, _, _ := testEngine(t, testProduct("p1", 5000, 3))
	require.NoError(t, e.AddToCart("p1", "M", 2))

	err := e.AddToCart("p1", "M", 2)
	var se *StockExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Available)
	assert.Equal(t, 1, se.CanAdd)

	// rejection leaves the cart unchanged, and rejecting again is identical
	assert.Equal(t, 2, e.ItemCount())
	err2 := e.AddToCart("p1", "M", 2)
	require.ErrorAs(t, err2, &se)
	assert.Equal(t, 2, e.ItemCount())
}

func TestAddToCart_CanAddFlooredAtZero(t *testing.T) {
	e, cat, _ := testEngine(t, testProduct("p1", 5000, 2))
	require.NoError(t, e.AddToCart("p1", "M", 2))

	// stock dropped below what is already in the cart
	cat.products["p1"].Variants[0].Stock = 1
	err := e.AddToCart("p1", "M", 1)
	var se *StockExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.CanAdd)
}

func TestAddToCart_UnknownProductOrVariant(t *testing.T) {
	e, _, _ := testEngine(t, testProduct("p1", 5000, 3))
	assert.ErrorIs(t, e.AddToCart("nope", "M", 1), ErrNotFound)
	assert.ErrorIs(t, e.AddToCart("p1", "XXL", 1), ErrNotFound)
	assert.Empty(t, e.Lines())
}

func TestUpdateQuantity_SilentClamp(t *testing.T) {
	e, _, _ := testEngine(t, testProduct("p1", 5000, 4))
	require.NoError(t, e.AddToCart("p1", "M", 1))

	// over-limit requests clamp silently, in contrast with AddToCart
	require.NoError(t, e.UpdateQuantity("p1_M", 99))
	assert.Equal(t, 4, e.Lines()[0].Quantity)

	// zero removes the line
	require.NoError(t, e.UpdateQuantity("p1_M", 0))
	assert.Empty(t, e.Lines())

	// unknown line is a no-op
	require.NoError(t, e.UpdateQuantity("ghost_M", 3))
}

func TestUpdateQuantity_MissingProductIsNoOp(t *testing.T) {
	e, cat, _ := testEngine(t, testProduct("p1", 5000, 4))
	require.NoError(t, e.AddToCart("p1", "M", 2))

	delete(cat.products, "p1")
	require.NoError(t, e.UpdateQuantity("p1_M", 3))
	assert.Equal(t, 2, e.Lines()[0].Quantity, "line must be left untouched")
}

func TestRemoveFromCart_Idempotent(t *testing.T) {
	e, _, _ := testEngine(t, testProduct("p1", 5000, 4))
	require.NoError(t, e.AddToCart("p1", "M", 2))
	e.RemoveFromCart("p1_M")
	assert.Empty(t, e.Lines())
	e.RemoveFromCart("p1_M")
	assert.Empty(t, e.Lines())
}

func expiring(d time.Duration) time.Time { return time.Now().Add(d) }

func TestApplyCoupon_ValidationOrder(t *testing.T) {
	e, _, cps := testEngine(t, testProduct("p1", 5000, 10))
	require.NoError(t, e.AddToCart("p1", "M", 2))

	cases := []struct {
		name   string
		coupon *domain.Coupon
		want   error
	}{
		{"inactive", &domain.Coupon{Code: "C1", IsActive: false, ExpiryDate: expiring(time.Hour)}, domain.ErrCouponInactive},
		{"expired", &domain.Coupon{Code: "C1", IsActive: true, ExpiryDate: expiring(-time.Hour)}, domain.ErrCouponExpired},
		{"already used", &domain.Coupon{Code: "C1", IsActive: true, ExpiryDate: expiring(time.Hour), UsedBy: []string{"u-1"}}, domain.ErrCouponAlreadyUsed},
		{"not assigned", &domain.Coupon{Code: "C1", IsActive: true, ExpiryDate: expiring(time.Hour), OwnerID: "someone-else"}, domain.ErrCouponNotAssigned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cps.coupons["C1"] = tc.coupon
			_, err := e.ApplyCoupon("c1") // lookup is case-insensitive
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, e.AppliedCoupon())
			assert.True(t, e.Discount().IsZero())
		})
	}

	_, err := e.ApplyCoupon("UNKNOWN")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
}

func TestApplyCoupon_Unauthenticated(t *testing.T) {
	cat := &fakeCatalog{products: map[string]*domain.Product{}}
	cps := &fakeCoupons{coupons: map[string]*domain.Coupon{}}
	e := New("", cat, cps)
	_, err := e.ApplyCoupon("ANY")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestApplyCoupon_MinPurchaseNotMet(t *testing.T) {
	e, _, cps := testEngine(t, testProduct("p1", 1000, 10))
	require.NoError(t, e.AddToCart("p1", "M", 1))
	cps.coupons["SAVE"] = &domain.Coupon{
		Code: "SAVE", IsActive: true, ExpiryDate: expiring(time.Hour),
		DiscountType: domain.DiscountFixed, Value: naira(500), MinPurchase: naira(5000),
	}

	_, err := e.ApplyCoupon("SAVE")
	var mp *MinPurchaseError
	require.ErrorAs(t, err, &mp)
	assert.Contains(t, err.Error(), "5,000")
	assert.Nil(t, e.AppliedCoupon())
}

func TestApplyCoupon_FixedAndPercentage(t *testing.T) {
	e, _, cps := testEngine(t, testProduct("p1", 1000, 10))
	require.NoError(t, e.AddToCart("p1", "M", 2)) // subtotal 2000

	cps.coupons["PCT15"] = &domain.Coupon{
		Code: "PCT15", IsActive: true, ExpiryDate: expiring(time.Hour),
		DiscountType: domain.DiscountPercentage, Value: naira(15),
	}
	msg, err := e.ApplyCoupon("PCT15")
	require.NoError(t, err)
	assert.Equal(t, "Coupon applied successfully!", msg)
	assert.True(t, e.Discount().Equal(naira(300)), "discount %s", e.Discount())
	assert.True(t, e.Total().Equal(naira(1700)), "total %s", e.Total())

	e.RemoveCoupon()
	cps.coupons["FIX"] = &domain.Coupon{
		Code: "FIX", IsActive: true, ExpiryDate: expiring(time.Hour),
		DiscountType: domain.DiscountFixed, Value: naira(9999),
	}
	_, err = e.ApplyCoupon("FIX")
	require.NoError(t, err)
	// fixed discount capped at subtotal; total floored at zero
	assert.True(t, e.Discount().Equal(naira(2000)))
	assert.True(t, e.Total().IsZero())
}

func TestCouponAutoRemovedWhenSubtotalDrops(t *testing.T) {
	e, _, cps := testEngine(t, testProduct("p1", 5000, 10))
	require.NoError(t, e.AddToCart("p1", "M", 2)) // subtotal 10000
	cps.coupons["SAVE1K"] = &domain.Coupon{
		Code: "SAVE1K", IsActive: true, ExpiryDate: expiring(time.Hour),
		DiscountType: domain.DiscountFixed, Value: naira(1000), MinPurchase: naira(5000),
	}

	_, err := e.ApplyCoupon("SAVE1K")
	require.NoError(t, err)
	assert.True(t, e.Discount().Equal(naira(1000)))
	assert.True(t, e.Total().Equal(naira(9000)))

	// dropping under the minimum silently clears the coupon
	require.NoError(t, e.UpdateQuantity("p1_M", 0))
	assert.Nil(t, e.AppliedCoupon())
	assert.True(t, e.Discount().IsZero())
	assert.True(t, e.Total().IsZero())
}

func TestInvariants_TotalNeverNegative(t *testing.T) {
	e, _, cps := testEngine(t, testProduct("p1", 700, 50))
	cps.coupons["BIG"] = &domain.Coupon{
		Code: "BIG", IsActive: true, ExpiryDate: expiring(time.Hour),
		DiscountType: domain.DiscountFixed, Value: naira(100000),
	}
	require.NoError(t, e.AddToCart("p1", "M", 1))
	for qty := 1; qty <= 5; qty++ {
		require.NoError(t, e.UpdateQuantity("p1_M", qty))
		if _, err := e.ApplyCoupon("BIG"); err != nil {
			t.Fatal(err)
		}
		sub := e.Subtotal()
		assert.False(t, e.Discount().GreaterThan(sub), "discount above subtotal at qty=%d", qty)
		assert.False(t, e.Total().IsNegative())
		assert.False(t, e.Total().GreaterThan(sub))
		e.RemoveCoupon()
	}
}

func TestStateRoundTrip(t *testing.T) {
	e, cat, cps := testEngine(t, testProduct("p1", 5000, 10), testProduct("p2", 3000, 8))
	require.NoError(t, e.AddToCart("p1", "M", 2))
	require.NoError(t, e.AddToCart("p2", "L", 3))
	cps.coupons["SAVE1K"] = &domain.Coupon{
		Code: "SAVE1K", IsActive: true, ExpiryDate: expiring(time.Hour),
		DiscountType: domain.DiscountFixed, Value: naira(1000),
	}
	_, err := e.ApplyCoupon("SAVE1K")
	require.NoError(t, err)

	lines, coupon, err := e.State()
	require.NoError(t, err)

	restored := New("u-1", cat, cps)
	restored.Restore(lines, coupon)

	if diff := cmp.Diff(e.Lines(), restored.Lines()); diff != "" {
		t.Fatalf("restored lines differ (-want +got):\n%s", diff)
	}
	require.NotNil(t, restored.AppliedCoupon())
	assert.Equal(t, "SAVE1K", restored.AppliedCoupon().Code)
	assert.True(t, e.Total().Equal(restored.Total()))
}

func TestRestore_CorruptBlobsLoadAsEmpty(t *testing.T) {
	e, _, _ := testEngine(t)
	e.Restore([]byte("{not json"), []byte("also not json"))
	assert.Empty(t, e.Lines())
	assert.Nil(t, e.AppliedCoupon())
	assert.True(t, e.Total().IsZero())
}

func TestValidateStock_BlocksOverStockedLines(t *testing.T) {
	e, cat, _ := testEngine(t, testProduct("p1", 5000, 5), testProduct("p2", 3000, 5))
	require.NoError(t, e.AddToCart("p1", "M", 4))
	require.NoError(t, e.AddToCart("p2", "M", 2))

	issues, err := e.ValidateStock()
	require.NoError(t, err)
	assert.Empty(t, issues)

	// stock moved underneath the cart between add and submission
	cat.products["p1"].Variants[0].Stock = 1
	delete(cat.products, "p2")

	issues, err = e.ValidateStock()
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Available)
	assert.Equal(t, 0, issues[1].Available, "vanished product counts as zero stock")
}

func TestMarkCouponUsed_FailureSwallowed(t *testing.T) {
	e, _, cps := testEngine(t, testProduct("p1", 5000, 10))
	require.NoError(t, e.AddToCart("p1", "M", 2))
	cps.coupons["SAVE1K"] = &domain.Coupon{
		Code: "SAVE1K", IsActive: true, ExpiryDate: expiring(time.Hour),
		DiscountType: domain.DiscountFixed, Value: naira(1000),
	}
	_, err := e.ApplyCoupon("SAVE1K")
	require.NoError(t, err)

	cps.markErr = errors.New("backend unavailable")
	e.MarkCouponUsed() // must not panic or propagate
	assert.Equal(t, "SAVE1K", cps.markedCode)
	assert.Equal(t, "u-1", cps.markedUser)
}
