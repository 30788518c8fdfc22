// Package validate classifies the raw airdrop form inputs. Every function is
// pure: identical input always yields identical error text, and nothing is
// corrected on the user's behalf.
package validate

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/Mohsinsiddi/tsender/internal/amount"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/token"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress reports whether s is a 0x-prefixed 40-hex-digit address.
// Checksum case is not enforced.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// TokenAddress returns the token field error, or "".
func TokenAddress(s string) string {
	if s == "" {
		return "Token address is required"
	}
	if !IsAddress(s) {
		return "Invalid ERC20 token address"
	}
	return ""
}

// Recipients splits s into entries and returns them with the field error.
func Recipients(s string) ([]string, string) {
	list := amount.Split(s)
	if len(list) == 0 {
		return list, "At least one recipient is required"
	}
	var bad []string
	for _, r := range list {
		if !IsAddress(r) {
			bad = append(bad, r)
		}
	}
	if len(bad) > 0 {
		return list, "Invalid Ethereum address(es): " + strings.Join(bad, ", ")
	}
	return list, ""
}

// Amounts splits s into entries and returns them with the field error.
func Amounts(s string) ([]string, string) {
	list := amount.Split(s)
	if len(list) == 0 {
		return list, "At least one amount is required"
	}
	var bad []string
	for _, a := range list {
		if !amount.IsPositive(a) {
			bad = append(bad, a)
		}
	}
	if len(bad) > 0 {
		return list, "Invalid amount(s): " + strings.Join(bad, ", ")
	}
	return list, ""
}

// CountMismatch returns the cross-field error when both lists are non-empty
// and differ in length.
func CountMismatch(recipients, amounts []string) string {
	if len(recipients) > 0 && len(amounts) > 0 && len(recipients) != len(amounts) {
		return fmt.Sprintf("Number of recipients (%d) must match number of amounts (%d)", len(recipients), len(amounts))
	}
	return ""
}

// Validate runs every syntactic check. The count mismatch, when present,
// replaces any other amounts error.
func Validate(fields form.Fields) form.Errors {
	var errs form.Errors
	errs.Token = TokenAddress(fields.TokenAddress)

	recipients, rerr := Recipients(fields.Recipients)
	amounts, aerr := Amounts(fields.Amounts)
	errs.Recipients = rerr
	errs.Amounts = aerr
	if mismatch := CountMismatch(recipients, amounts); mismatch != "" {
		errs.Amounts = mismatch
	}
	return errs
}

// Against runs Validate and then the checks that need resolved token
// metadata: precision against decimals and total against balance. A nil
// meta skips them.
func Against(fields form.Fields, meta *token.Metadata) form.Errors {
	errs := Validate(fields)
	if meta == nil || errs.Amounts != "" {
		return errs
	}
	errs.Amounts = AmountsAgainst(fields.Amounts, meta)
	return errs
}

// AmountsAgainst checks already-valid amounts text against token metadata
// and returns the amounts error, or "".
func AmountsAgainst(text string, meta *token.Metadata) string {
	units, bad, err := BaseUnits(amount.Split(text), meta.Decimals)
	if err != nil {
		if errors.Is(err, amount.ErrTooPrecise) {
			return fmt.Sprintf("Too many decimal places for %s (max %d): %s", meta.Symbol, meta.Decimals, strings.Join(bad, ", "))
		}
		return "Invalid amount(s): " + strings.Join(bad, ", ")
	}
	if !meta.HasBalance() {
		return ""
	}
	total := amount.Sum(units)
	if total.Cmp(meta.Balance) > 0 {
		return fmt.Sprintf("Insufficient balance: need %s %s, have %s %s",
			amount.FormatUnits(total, meta.Decimals), meta.Symbol,
			amount.FormatUnits(meta.Balance, meta.Decimals), meta.Symbol)
	}
	return ""
}

// BaseUnits converts every entry with the token's decimals. On failure it
// returns the offending entries and the first error.
func BaseUnits(entries []string, decimals uint8) ([]*big.Int, []string, error) {
	units := make([]*big.Int, 0, len(entries))
	var (
		bad   []string
		first error
	)
	for _, e := range entries {
		v, err := amount.ParseUnits(e, decimals)
		if err != nil {
			bad = append(bad, e)
			if first == nil {
				first = err
			}
			continue
		}
		units = append(units, v)
	}
	if first != nil {
		return nil, bad, first
	}
	return units, nil, nil
}
