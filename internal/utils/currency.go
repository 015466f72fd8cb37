package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var SupportedCurrencies = map[string]Currency{
	"CAD": {Code: "CAD", Symbol: "$", Name: "Canadian Dollar"},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
}

func FormatCurrency(amount float64, currencyCode string) string {
	// Round to 2 decimal places
	amount = math.Round(amount*100) / 100

	return fmt.Sprintf("%s%.2f", GetCurrencySymbol(currencyCode), amount)
}

// ParseCurrencyAmount converts a formatted price string ("$1,500.00") to a
// float. Currency symbols, commas, and surrounding whitespace are stripped
// before parsing.
func ParseCurrencyAmount(amountStr string) (float64, error) {
	cleaned := strings.TrimSpace(amountStr)
	cleaned = strings.ReplaceAll(cleaned, "C$", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return 0, fmt.Errorf("empty price string")
	}

	return strconv.ParseFloat(cleaned, 64)
}

// CentsToDecimal converts a minor-unit amount into a decimal dollar amount.
// The conversion is exact: payment reconciliation compares these values
// against processor records, so float rounding is never acceptable here.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

func GetCurrencySymbol(currencyCode string) string {
	currency, exists := SupportedCurrencies[currencyCode]
	if !exists {
		return "$"
	}
	return currency.Symbol
}

func ValidateCurrencyCode(code string) bool {
	_, exists := SupportedCurrencies[code]
	return exists
}
