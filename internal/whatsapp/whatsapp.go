// Package whatsapp formats the order summary handed to the WhatsApp
// deep link at checkout. This is a formatting concern only; the link is
// opened by the customer's client, not by this service.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LogickStudio/demaincloset/internal/cart"
	"github.com/LogickStudio/demaincloset/internal/domain"
)

type BankDetails struct {
	AccountName   string
	AccountNumber string
	BankName      string
}

type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// Order is everything the summary needs; totals are passed in so the
// message always agrees with what the engine computed.
type Order struct {
	Lines      []cart.Line
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	ItemCount  int
	CouponCode string
	Customer   Customer
	Bank       BankDetails
}

// Summary renders the human-readable order text sent over WhatsApp.
func Summary(o Order) string {
	var b strings.Builder
	b.WriteString("Hello Demain Closet, I'd like to place an order:\n\n")
	b.WriteString("--- ORDER SUMMARY ---\n")
	for _, l := range o.Lines {
		lineTotal := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(&b, "- %s (%s) x %d = %s\n", l.Name, l.Size, l.Quantity, domain.Naira(lineTotal))
	}
	b.WriteString("---------------------\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", domain.Naira(o.Subtotal))
	if o.CouponCode != "" {
		fmt.Fprintf(&b, "Coupon Applied (%s): -%s\n", o.CouponCode, domain.Naira(o.Discount))
	}
	fmt.Fprintf(&b, "Total Amount: %s\n\n", domain.Naira(o.Total))
	fmt.Fprintf(&b, "Total Items: %d\n", o.ItemCount)
	b.WriteString("--- CUSTOMER DETAILS ---\n")
	fmt.Fprintf(&b, "Name: %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "Phone: %s\n", o.Customer.Phone)
	email := o.Customer.Email
	if email == "" {
		email = "Not provided"
	}
	fmt.Fprintf(&b, "Email: %s\n", email)
	fmt.Fprintf(&b, "Address: %s\n\n", o.Customer.Address)
	b.WriteString("--- PAYMENT ---\n")
	b.WriteString("Payment has been made. I will share the receipt in this chat for confirmation.\n\n")
	b.WriteString("Bank Details Used for Transfer:\n")
	fmt.Fprintf(&b, "Account Name: %s\n", o.Bank.AccountName)
	fmt.Fprintf(&b, "Account Number: %s\n", o.Bank.AccountNumber)
	fmt.Fprintf(&b, "Bank: %s\n\n", o.Bank.BankName)
	b.WriteString("Please confirm my order. Thank you!")
	return b.String()
}

// Link builds the wa.me deep link for the given number and summary.
func Link(number, summary string) string {
	return "https://wa.me/" + number + "?text=" + url.QueryEscape(summary)
}
