// Package pricing normalizes heterogeneous price strings into comparable
// amounts and converts between currencies via a static rate table.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// currencySymbols maps display symbols to ISO codes. Multi-character symbols
// come first so "C$" is not consumed as a bare "$".
var currencySymbols = []struct {
	Symbol string
	Code   string
}{
	{"C$", "CAD"},
	{"A$", "AUD"},
	{"R$", "BRL"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"₽", "RUB"},
	{"₩", "KRW"},
}

// ratesToUSD is a static exchange table. Rates are not refreshed at runtime.
var ratesToUSD = map[string]float64{
	"USD": 1.0,
	"EUR": 1.08,
	"GBP": 1.27,
	"JPY": 0.0067,
	"INR": 0.012,
	"CAD": 0.74,
	"AUD": 0.65,
	"RUB": 0.011,
	"BRL": 0.20,
	"KRW": 0.00075,
}

// zeroDecimalCurrencies render without fractional digits.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
}

var (
	prefixRe   = regexp.MustCompile(`(?i)^(from|starting at|price:|now)\s*`)
	suffixRe   = regexp.MustCompile(`(?i)\s*(per unit|each|/each|/ea)$`)
	isoRe      = regexp.MustCompile(`(?i)^(USD|EUR|GBP|JPY|INR|CAD|AUD|RUB|BRL|KRW)\s*`)
	nonNumRe   = regexp.MustCompile(`[^\d.,\-]`)
	rangeDash  = regexp.MustCompile(`^(.+?)\s+[-–—~]\s+(.+)$`)
	rangeToSep = regexp.MustCompile(`(?i)^(.+?)\s+to\s+(.+)$`)
)

// Clean strips boilerplate prefixes/suffixes and collapses whitespace.
func Clean(priceStr string) string {
	cleaned := strings.TrimSpace(priceStr)
	cleaned = prefixRe.ReplaceAllString(cleaned, "")
	cleaned = suffixRe.ReplaceAllString(cleaned, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// DetectCurrency finds the currency marker in a price string and returns the
// ISO code along with the remaining text. The matched token is consumed so
// the remainder is purely numeric. Defaults to USD.
func DetectCurrency(priceStr string) (string, string) {
	cleaned := Clean(priceStr)

	for _, cs := range currencySymbols {
		if strings.Contains(cleaned, cs.Symbol) {
			rest := strings.TrimSpace(strings.ReplaceAll(cleaned, cs.Symbol, ""))
			return cs.Code, rest
		}
	}

	if m := isoRe.FindString(cleaned); m != "" {
		code := strings.ToUpper(strings.TrimSpace(m))
		return code, strings.TrimSpace(cleaned[len(m):])
	}

	return "USD", cleaned
}

// parseNumeric parses a numeric value, disambiguating European (1.234,56) and
// US (1,234.56) separator conventions.
func parseNumeric(valueStr string) (float64, bool) {
	cleaned := nonNumRe.ReplaceAllString(valueStr, "")
	if cleaned == "" {
		return 0, false
	}

	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimLeft(cleaned, "-")

	commas := strings.Count(cleaned, ",")
	dots := strings.Count(cleaned, ".")

	switch {
	case commas == 0 && dots <= 1:
		// Plain digits or a US decimal.

	case commas == 1 && dots == 0:
		// European decimal (99,50) when two fractional digits, otherwise a
		// US thousands separator (1,234).
		parts := strings.SplitN(cleaned, ",", 2)
		if len(parts[1]) == 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}

	case commas >= 1 && dots >= 1:
		// Whichever separator appears last is the decimal point.
		if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}

	default:
		// Repeated instances of a single separator are thousands markers.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

// Normalize parses a raw price string into an amount in targetCurrency and
// reports the detected source currency. A nil amount means the string held no
// parsable numeric value. Unknown currency codes convert at rate 1.0.
func Normalize(priceStr, targetCurrency string) (*float64, string) {
	if priceStr == "" {
		return nil, "USD"
	}

	sourceCurrency, rest := DetectCurrency(priceStr)

	value, ok := parseNumeric(rest)
	if !ok {
		return nil, sourceCurrency
	}

	if sourceCurrency != targetCurrency {
		sourceRate := rateOrDefault(sourceCurrency)
		targetRate := rateOrDefault(targetCurrency)
		value = value * sourceRate / targetRate
	}

	value = round2(value)
	return &value, sourceCurrency
}

// ExtractRange splits strings like "$10 - $20" or "10.00 to 20.00" and
// normalizes both endpoints independently. A plain price yields identical
// endpoints.
func ExtractRange(priceStr string) (*float64, *float64) {
	if priceStr == "" {
		return nil, nil
	}

	for _, re := range []*regexp.Regexp{rangeDash, rangeToSep} {
		if m := re.FindStringSubmatch(priceStr); m != nil {
			low, _ := Normalize(m[1], "USD")
			high, _ := Normalize(m[2], "USD")
			return low, high
		}
	}

	price, _ := Normalize(priceStr, "USD")
	return price, price
}

// DiscountPercentage computes the percentage saved off the original price,
// rounded to one decimal. Invalid or non-discounted inputs yield 0.
func DiscountPercentage(originalPrice, currentPrice float64) float64 {
	if originalPrice <= 0 || currentPrice < 0 {
		return 0
	}
	if currentPrice >= originalPrice {
		return 0
	}
	discount := (originalPrice - currentPrice) / originalPrice * 100
	return math.Round(discount*10) / 10
}

var displayPrinter = message.NewPrinter(language.English)

// FormatPrice renders an amount with its currency's display symbol and
// thousands grouping. Zero-decimal currencies render as integers; unmapped
// codes fall back to a "<CODE> " prefix.
func FormatPrice(price float64, currency string) string {
	symbol := currency + " "
	for _, cs := range currencySymbols {
		if cs.Code == currency {
			symbol = cs.Symbol
			break
		}
	}

	if zeroDecimalCurrencies[currency] {
		return symbol + displayPrinter.Sprintf("%d", int64(price))
	}
	return symbol + displayPrinter.Sprintf("%.2f", price)
}

func rateOrDefault(currency string) float64 {
	if rate, ok := ratesToUSD[currency]; ok {
		return rate
	}
	return 1.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
