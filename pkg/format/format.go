// Package format holds the money and date presentation rules shared by the
// HTML template, the PDF engines and the spreadsheet export.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NairaSymbol prefixes every formatted amount
const NairaSymbol = "₦"

// DefaultTimezone is used when no school timezone is configured
const DefaultTimezone = "Africa/Lagos"

const longDateLayout = "2 January 2006"

var grouping = message.NewPrinter(language.English)

// Naira formats an amount with the naira sign, no decimals and thousands grouping
func Naira(amount float64) string {
	n := decimal.NewFromFloat(amount).Round(0).IntPart()
	if n < 0 {
		return "-" + NairaSymbol + grouping.Sprintf("%d", -n)
	}
	return NairaSymbol + grouping.Sprintf("%d", n)
}

// Date formats t as a long date ("18 October 2026") in loc
func Date(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = Location(DefaultTimezone)
	}
	return t.In(loc).Format(longDateLayout)
}

// Location loads a timezone, falling back to West Africa Time
func Location(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WAT", 60*60)
	}
	return loc
}

// Total sums amounts without float drift
func Total(amounts []float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	f, _ := sum.Float64()
	return f
}

// ReceiptNumber zero-pads a receipt number to at least four digits
func ReceiptNumber(n int64) string {
	return fmt.Sprintf("%04d", n)
}
