package entities

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// PriceMaxDigits is the total number of digits a price may carry.
	PriceMaxDigits = 7
	// PriceDecimalPlaces is the number of fraction digits kept for a price.
	PriceDecimalPlaces = 2
)

var (
	ErrPriceInvalid          = errors.New("a valid number is required")
	ErrPriceTooManyDecimals  = fmt.Errorf("ensure that there are no more than %d decimal places", PriceDecimalPlaces)
	ErrPriceTooManyDigits    = fmt.Errorf("ensure that there are no more than %d digits in total", PriceMaxDigits)
	errPriceUnsupportedValue = errors.New("unsupported price value")
)

// Price is a decimal amount with two fraction digits, held in minor units
// (25.00 is Price(2500)) so that storage and ordering stay exact.
type Price int64

// NewPrice builds a price from whole units, e.g. NewPrice(25) is 25.00.
func NewPrice(units int64) Price {
	return Price(units * 100)
}

// ParsePrice parses a plain decimal such as "25", "25.5" or "-3.10".
// Exponents and more than two fraction digits are rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrPriceInvalid
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")
	if intPart == "" && frac == "" {
		return 0, ErrPriceInvalid
	}
	if !allDigits(intPart) || !allDigits(frac) {
		return 0, ErrPriceInvalid
	}
	if len(frac) > PriceDecimalPlaces {
		return 0, ErrPriceTooManyDecimals
	}

	intPart = strings.TrimLeft(intPart, "0")
	if len(intPart) > PriceMaxDigits-PriceDecimalPlaces {
		return 0, ErrPriceTooManyDigits
	}
	if intPart == "" {
		intPart = "0"
	}
	frac += strings.Repeat("0", PriceDecimalPlaces-len(frac))

	v, err := strconv.ParseInt(intPart+frac, 10, 64)
	if err != nil {
		return 0, ErrPriceInvalid
	}
	if negative {
		v = -v
	}
	return Price(v), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats the price with exactly two fraction digits.
func (p Price) String() string {
	v := int64(p)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the price as a string, e.g. "25.00".
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts either a JSON number (150, 25.5) or a string ("150.00").
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return ErrPriceInvalid
		}
		raw = unquoted
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer.
func (p Price) Value() (driver.Value, error) {
	return int64(p), nil
}

// Scan implements sql.Scanner.
func (p *Price) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*p = 0
	case int64:
		*p = Price(v)
	case float64:
		*p = Price(math.Round(v))
	case []byte:
		return p.scanText(string(v))
	case string:
		return p.scanText(v)
	default:
		return fmt.Errorf("%w: %T", errPriceUnsupportedValue, value)
	}
	return nil
}

func (p *Price) scanText(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("scan price %q: %w", s, err)
	}
	*p = Price(v)
	return nil
}
