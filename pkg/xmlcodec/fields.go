package xmlcodec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingField is wrapped by FieldError when a required field is absent
var ErrMissingField = errors.New("required field missing")

// FieldError is a failure to map one field of a decoded node
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %s (%q): %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Date layouts used by the service. "ansi" dates carry no time part.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2.1.2006",
}

// ParseDecimal parses a wire decimal. A comma decimal separator is
// accepted and spaces used as thousands separators are dropped.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := normalizeNumber(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty decimal")
	}
	return decimal.NewFromString(s)
}

// ParseOptionalDecimal is ParseDecimal except that an empty string yields
// an invalid NullDecimal rather than an error or zero.
func ParseOptionalDecimal(raw string) (decimal.NullDecimal, error) {
	if normalizeNumber(raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseDecimal(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// FormatDecimal renders d with a fixed number of places and a comma
// separator, the form the service documents for request bodies.
func FormatDecimal(d decimal.Decimal, places int32) string {
	return strings.Replace(d.StringFixed(places), ".", ",", 1)
}

// FormatAmount renders d with at least minPlaces places. Unlike
// FormatDecimal it never rounds, so extra precision is sent as is.
func FormatAmount(d decimal.Decimal, minPlaces int32) string {
	places := minPlaces
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return FormatDecimal(d, places)
}

// ParseDate parses the date formats the service emits
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// FormatDate renders t as an ansi date
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func normalizeNumber(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	return strings.Replace(s, ",", ".", 1)
}

// RequiredText returns the text under key or a FieldError
func (n *Node) RequiredText(key string) (string, error) {
	s, ok := n.Text(key)
	if !ok || strings.TrimSpace(s) == "" {
		return "", &FieldError{Field: key, Err: ErrMissingField}
	}
	return s, nil
}

// Decimal returns the required decimal under key
func (n *Node) Decimal(key string) (decimal.Decimal, error) {
	s, err := n.RequiredText(key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, &FieldError{Field: key, Value: s, Err: err}
	}
	return d, nil
}

// OptionalDecimal returns the decimal under key; absent or empty fields
// yield an invalid NullDecimal.
func (n *Node) OptionalDecimal(key string) (decimal.NullDecimal, error) {
	s, _ := n.Text(key)
	d, err := ParseOptionalDecimal(s)
	if err != nil {
		return decimal.NullDecimal{}, &FieldError{Field: key, Value: s, Err: err}
	}
	return d, nil
}

// Int returns the required integer under key
func (n *Node) Int(key string) (int64, error) {
	s, err := n.RequiredText(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &FieldError{Field: key, Value: s, Err: err}
	}
	return v, nil
}

// OptionalInt returns the integer under key, nil when absent or empty
func (n *Node) OptionalInt(key string) (*int64, error) {
	s, _ := n.Text(key)
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, &FieldError{Field: key, Value: s, Err: err}
	}
	return &v, nil
}

// Date returns the required date under key
func (n *Node) Date(key string) (time.Time, error) {
	s, err := n.RequiredText(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, &FieldError{Field: key, Value: s, Err: err}
	}
	return t, nil
}

// OptionalDate returns the date under key, nil when absent or empty
func (n *Node) OptionalDate(key string) (*time.Time, error) {
	s, _ := n.Text(key)
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, &FieldError{Field: key, Value: s, Err: err}
	}
	return &t, nil
}
