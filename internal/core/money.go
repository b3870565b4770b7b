// Package core holds the expense tracker's domain model: users, expenses,
// the owner ledger, money parsing and month bucketing.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents. Arithmetic stays in integers; floats only
// appear at the serialization boundary.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Colones returns the amount as a float64 for display purposes only.
func (m Money) Colones() float64 {
	return float64(m.Cents) / 100.0
}

// FormatColones renders the amount for display the way es-CR number
// formatting does: space-grouped thousands, comma decimal separator,
// trailing zeros trimmed ("5 000", "450,5", "12,34").
func (m Money) FormatColones() string {
	whole := m.Cents / 100
	frac := m.Cents % 100
	if frac < 0 {
		frac = -frac
	}

	digits := strconv.FormatInt(whole, 10)
	var grouped strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		grouped.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteString(digits[i : i+3])
	}

	switch {
	case frac == 0:
		return grouped.String()
	case frac%10 == 0:
		return fmt.Sprintf("%s,%d", grouped.String(), frac/10)
	default:
		return fmt.Sprintf("%s,%02d", grouped.String(), frac)
	}
}

// MarshalJSON writes the amount as a plain decimal number so the stored
// blobs stay readable by the original data consumers.
func (m Money) MarshalJSON() ([]byte, error) {
	whole := m.Cents / 100
	frac := m.Cents % 100
	if frac < 0 {
		frac = -frac
	}
	if frac == 0 {
		return []byte(strconv.FormatInt(whole, 10)), nil
	}
	return []byte(fmt.Sprintf("%d.%02d", whole, frac)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", data, err)
	}
	m.Cents = CentsFromFloat(f)
	return nil
}

// CentsFromFloat converts a decimal amount to cents with half-up rounding.
func CentsFromFloat(f float64) int64 {
	return int64(math.Round(f * 100))
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signed values are rejected; zero is allowed. Returns ErrInvalidAmount
// for anything that is not a plain non-negative decimal.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}
