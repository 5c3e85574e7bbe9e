// Package money formats estimate amounts for display.
package money

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Simplici0/estimator/internal/pricing"
)

// DefaultCurrency is used when an estimate does not name one.
const DefaultCurrency = "USD"

var printer = message.NewPrinter(language.English)

// ParseCurrency validates an ISO 4217 code and returns it upper-cased.
// An empty code resolves to DefaultCurrency.
func ParseCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", eris.Wrapf(err, "money: unknown currency %q", code)
	}
	return unit.String(), nil
}

// Format renders amount rounded to cents with digit grouping, prefixed by
// the currency code, e.g. "USD 9,126.00".
func Format(amount float64, code string) (string, error) {
	unit, err := ParseCurrency(code)
	if err != nil {
		return "", err
	}
	return unit + " " + printer.Sprint(number.Decimal(RoundCents(amount), number.Scale(2))), nil
}

// RoundCents rounds amount half away from zero to two decimal places.
func RoundCents(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// FormatWhole renders a whole-unit amount without decimals, e.g. "USD 7,757".
func FormatWhole(amount int64, code string) (string, error) {
	unit, err := ParseCurrency(code)
	if err != nil {
		return "", err
	}
	return unit + " " + printer.Sprint(number.Decimal(amount)), nil
}

// FormatRange renders an estimate range as "USD 7,757 – USD 10,495".
func FormatRange(r pricing.Range, code string) (string, error) {
	low, err := FormatWhole(r.Min, code)
	if err != nil {
		return "", err
	}
	high, err := FormatWhole(r.Max, code)
	if err != nil {
		return "", err
	}
	return low + " – " + high, nil
}
