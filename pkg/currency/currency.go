// Package currency converts between human-readable decimal amounts and
// fixed-point base-unit integers. USDC-style assets carry 6 implied decimals;
// amounts are kept as strings end to end to avoid float rounding.
package currency

import (
	"fmt"
	"math/big"
	"strings"
)

// DefaultDecimals is the implied decimal precision for supported assets.
const DefaultDecimals = 6

// ParseAmount converts a decimal string to its base-unit integer.
// The input must be an unsigned decimal with at most `decimals` fractional
// digits; anything else is rejected so a malformed amount never reaches
// persistence.
func ParseAmount(amount string, decimals int) (*big.Int, error) {
	whole, fraction, err := splitDecimal(amount, decimals)
	if err != nil {
		return nil, err
	}

	padded := fraction + strings.Repeat("0", decimals-len(fraction))
	raw, ok := new(big.Int).SetString(whole+padded, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return raw, nil
}

// FormatAmount converts a base-unit integer string back to a decimal string.
// Trailing fractional zeros are stripped, so values round-trip numerically
// rather than byte-for-byte ("4.50" -> 4500000 -> "4.5").
func FormatAmount(raw string, decimals int) (string, error) {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("invalid raw amount %q", raw)
	}

	s := n.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	whole := s[:len(s)-decimals]
	fraction := strings.TrimRight(s[len(s)-decimals:], "0")
	if fraction == "" {
		return whole, nil
	}
	return whole + "." + fraction, nil
}

// IsPositive reports whether the decimal string parses to a value > 0.
func IsPositive(amount string, decimals int) bool {
	raw, err := ParseAmount(amount, decimals)
	return err == nil && raw.Sign() > 0
}

func splitDecimal(amount string, decimals int) (whole, fraction string, err error) {
	if amount == "" {
		return "", "", fmt.Errorf("amount is empty")
	}

	parts := strings.SplitN(amount, ".", 2)
	whole = parts[0]
	if len(parts) == 2 {
		fraction = parts[1]
	}

	if whole == "" && fraction == "" {
		return "", "", fmt.Errorf("invalid amount %q", amount)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (fraction != "" && !isDigits(fraction)) {
		return "", "", fmt.Errorf("invalid amount %q", amount)
	}
	if len(fraction) > decimals {
		return "", "", fmt.Errorf("amount %q exceeds %d decimal places", amount, decimals)
	}
	return whole, fraction, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
