package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var nairaPrinter = message.NewPrinter(language.English)

// Naira renders an amount as "₦12,345" (or "₦12,345.50" for fractional
// kobo), matching how the storefront displays prices.
func Naira(d decimal.Decimal) string {
	f, _ := d.Float64()
	if d.IsInteger() {
		return "₦" + nairaPrinter.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(0)))
	}
	return "₦" + nairaPrinter.Sprintf("%v", number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
