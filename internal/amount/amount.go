// Package amount turns free-form amount text into totals and token base units.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when text is not a positive decimal numeral.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTooPrecise is returned when an amount has more fractional digits
	// than the token's decimals can represent.
	ErrTooPrecise = errors.New("amount exceeds token precision")
)

var (
	separators = regexp.MustCompile(`[\n,]+`)
	numeral    = regexp.MustCompile(`^-?\d*\.?\d+$`)
	positive   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Split breaks text on any run of commas and newlines, trims every entry
// and drops the empty ones. Recipient and amount lists share this rule.
func Split(text string) []string {
	parts := separators.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CalculateTotal sums every numeral found in text. Entries that are not
// signed decimal numerals (after currency symbols are stripped) are ignored,
// so empty or all-junk input totals exactly 0.
func CalculateTotal(text string) float64 {
	var total float64
	for _, entry := range Split(text) {
		if v, ok := parseNumeral(entry); ok {
			total += v
		}
	}
	return total
}

// FormatTotal renders a CalculateTotal result for display, rounded to six
// places with trailing zeros dropped.
func FormatTotal(v float64) string {
	return decimal.NewFromFloat(v).Round(6).String()
}

func parseNumeral(entry string) (float64, bool) {
	clean := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, entry)
	clean = strings.TrimSpace(clean)
	if !numeral.MatchString(clean) {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsPositive reports whether text is an unsigned decimal numeral greater than zero.
func IsPositive(text string) bool {
	if !positive.MatchString(text) {
		return false
	}
	d, err := decimal.NewFromString(text)
	return err == nil && d.IsPositive()
}

// ParseUnits converts a human-readable amount into token base units using
// fixed-point scaling, e.g. ParseUnits("1.5", 6) == 1500000.
func ParseUnits(text string, decimals uint8) (*big.Int, error) {
	if !IsPositive(text) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s has more than %d decimal places", ErrTooPrecise, text, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// Sum adds base-unit amounts. A nil or empty slice sums to zero.
func Sum(values []*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v)
	}
	return total
}
