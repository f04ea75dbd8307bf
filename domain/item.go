package domain

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrItemNotFound = errors.New("item not found")

type Item struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
}

// Price is a float that also accepts numeric strings on input, so "9.99" and 9.99 decode alike.
// Only finite decimal literals are accepted.
type Price float64

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	if !decimalLiteral.MatchString(raw) {
		return &PriceError{Value: string(data)}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return &PriceError{Value: string(data)}
	}

	*p = Price(v)
	return nil
}

type PriceError struct {
	Value string
}

func (e *PriceError) Error() string {
	return "price must be a number, got " + e.Value
}
