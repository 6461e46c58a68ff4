package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const moneyPrecision = 2

// ParseAmount parses a monetary magnitude into a decimal. Amounts cross the
// engine boundary as strings (the data layer may hand over decrypted values or
// raw numeric text), so parsing happens exactly once, here. Empty, malformed
// and non-finite input ("NaN", "Inf") is rejected with an error; callers in
// the engine skip such rows rather than aborting the whole computation.
func ParseAmount(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, nil
}

// SafeParse parses a string into a decimal, returning zero for invalid or
// empty input. Used where a missing value legitimately means zero (snapshot
// fields, optional prices), never where corruption must be detected.
func SafeParse(value string) decimal.Decimal {
	d, err := ParseAmount(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SafeParsePtr is SafeParse over an optional string.
func SafeParsePtr(value *string) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return SafeParse(*value)
}

// FormatMoney rounds to cents and strips trailing zeros.
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(moneyPrecision).StringFixed(moneyPrecision)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
