package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/shopspring/decimal"
)

// ParseJSON decodes a venue payload. Every failure wraps model.ErrMalformedMessage.
func ParseJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		if errors.Is(err, model.ErrMalformedMessage) {
			return err
		}
		return fmt.Errorf("%w: json unmarshal: %v", model.ErrMalformedMessage, err)
	}
	return nil
}

// Number is a numeric field sent either as a JSON number or a numeric string.
// A missing or null field leaves Valid false; it is never read as zero.
type Number struct {
	Value decimal.Decimal
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	text, ok, err := scalarText(b)
	if err != nil || !ok {
		return err
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("%w: numeric value %s: %v", model.ErrMalformedMessage, b, err)
	}
	if err := model.CheckDecimalBounds(d); err != nil {
		return fmt.Errorf("numeric value %s: %w", b, err)
	}
	n.Value, n.Valid = d, true
	return nil
}

// Require returns the value or a parse error naming field.
func (n Number) Require(field string) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Decimal{}, fmt.Errorf("%w: missing %s", model.ErrMalformedMessage, field)
	}
	return n.Value, nil
}

// Text is a scalar field (string or number) kept as its textual form.
type Text struct {
	Value string
	Valid bool
}

func (t *Text) UnmarshalJSON(b []byte) error {
	text, ok, err := scalarText(b)
	if err != nil || !ok {
		return err
	}
	t.Value, t.Valid = text, text != ""
	return nil
}

// Require returns the text or a parse error naming field.
func (t Text) Require(field string) (string, error) {
	if !t.Valid {
		return "", fmt.Errorf("%w: missing %s", model.ErrMalformedMessage, field)
	}
	return t.Value, nil
}

// Timestamp parses the field as exchange time (epoch seconds or ISO).
func (t Text) Timestamp(field string) (model.ExchangeTime, error) {
	s, err := t.Require(field)
	if err != nil {
		return model.ExchangeTime{}, err
	}
	ts, err := model.ParseExchangeTime(s)
	if err != nil {
		return model.ExchangeTime{}, fmt.Errorf("%s: %w", field, err)
	}
	return ts, nil
}

// scalarText returns the unquoted text of a JSON string or number.
// ok is false for null.
func scalarText(b []byte) (string, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return "", false, nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, fmt.Errorf("%w: string value %s: %v", model.ErrMalformedMessage, b, err)
		}
		return s, true, nil
	case '{', '[', 't', 'f':
		return "", false, fmt.Errorf("%w: expected string or number, got %s", model.ErrMalformedMessage, b)
	default:
		return string(b), true, nil
	}
}
