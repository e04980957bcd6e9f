package whatsapp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LogickStudio/demaincloset/internal/cart"
)

func testOrder() Order {
	return Order{
		Lines: []cart.Line{
			{ID: "p1_M", ProductID: "p1", Name: "Classic Jalabia", Size: "M",
				Price: decimal.NewFromInt(5000), Quantity: 2},
		},
		Subtotal:   decimal.NewFromInt(10000),
		Discount:   decimal.NewFromInt(1000),
		Total:      decimal.NewFromInt(9000),
		ItemCount:  2,
		CouponCode: "SAVE1K",
		Customer: Customer{
			Name: "Amara", Phone: "+2348012345678",
			Email: "amara@example.com", Address: "12 Allen Avenue, Ikeja",
		},
		Bank: BankDetails{AccountName: "Demain Closet", AccountNumber: "0123456789", BankName: "GTBank"},
	}
}

func TestSummary(t *testing.T) {
	s := Summary(testOrder())

	assert.Contains(t, s, "- Classic Jalabia (M) x 2 = ₦10,000")
	assert.Contains(t, s, "Subtotal: ₦10,000")
	assert.Contains(t, s, "Coupon Applied (SAVE1K): -₦1,000")
	assert.Contains(t, s, "Total Amount: ₦9,000")
	assert.Contains(t, s, "Total Items: 2")
	assert.Contains(t, s, "Name: Amara")
	assert.Contains(t, s, "Bank: GTBank")
}

func TestSummary_NoCouponLineWhenNoneApplied(t *testing.T) {
	o := testOrder()
	o.CouponCode = ""
	o.Discount = decimal.Zero
	assert.NotContains(t, Summary(o), "Coupon Applied")
}

func TestLink(t *testing.T) {
	link := Link("2349053223790", "hello world ₦1,000")
	require.True(t, strings.HasPrefix(link, "https://wa.me/2349053223790?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "hello world ₦1,000", u.Query().Get("text"))
}
