package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	ETHDecimals  = 18 // native currency has 18 decimals (wei)
	USDTDecimals = 6  // payroll token has 6 decimals (micro)
)

var (
	// ErrEmptyAmount is returned for blank input or a lone decimal point.
	ErrEmptyAmount = errors.New("amount is empty")
	// ErrInvalidAmount is returned when input is not digits with at most one decimal point.
	ErrInvalidAmount = errors.New("invalid amount")
)

// MicroToUSDT converts micro units to a token string without float precision loss
func MicroToUSDT(micro *big.Int) string {
	return FormatWithDecimals(micro, USDTDecimals)
}

// USDTToMicro converts a token string to micro units without float precision loss
func USDTToMicro(usdt string) (*big.Int, error) {
	return ParseWithDecimals(usdt, USDTDecimals)
}

// WeiToETH converts wei to an ETH string
func WeiToETH(wei *big.Int) string {
	return FormatWithDecimals(wei, ETHDecimals)
}

// FormatWithDecimals converts integer to decimal string by inserting decimal point
// Example: FormatWithDecimals(1500000000, 6) = "1500.000000"
func FormatWithDecimals(value *big.Int, decimals int) string {
	if value == nil {
		value = new(big.Int)
	}
	s := value.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	if decimals <= 0 {
		if neg {
			return "-" + s
		}
		return s
	}

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	pos := len(s) - decimals
	out := s[:pos] + "." + s[pos:]
	if neg {
		return "-" + out
	}
	return out
}

// ParseWithDecimals converts decimal string to integer by removing decimal point.
// Accepted input is an optional run of digits, an optional ".", and any number of
// fractional digits; at least one digit must be present. Fractional digits beyond
// decimals are truncated.
// Example: ParseWithDecimals("0.024981", 6) = 24981
func ParseWithDecimals(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return nil, ErrEmptyAmount
	}

	whole, frac, hasPoint := strings.Cut(s, ".")
	if hasPoint && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("%w: more than one decimal point", ErrInvalidAmount)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	// Pad or truncate fractional part to exact decimals
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	combined := strings.TrimLeft(whole+frac, "0")
	if combined == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return n, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
