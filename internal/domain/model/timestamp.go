package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const microLayout = "2006-01-02T15:04:05.000000Z07:00"

// zone-less ISO strings are read as UTC
const localISOLayout = "2006-01-02T15:04:05.999999999"

// int64 microseconds cover under 10^13 epoch seconds
const maxEpochDigits = 13

// ExchangeTime is an exchange-assigned timestamp: a millisecond base plus the
// microsecond remainder (0..999) that the millisecond clock cannot hold.
// Precision below one microsecond is dropped, never rounded.
type ExchangeTime struct {
	Millis          int64
	MicrosRemainder int
}

// NewExchangeTime truncates t to microseconds.
func NewExchangeTime(t time.Time) ExchangeTime {
	return FromUnixMicro(t.UnixMicro())
}

// FromUnixMicro splits microseconds since epoch into base and remainder.
func FromUnixMicro(us int64) ExchangeTime {
	ms, rem := us/1000, us%1000
	if rem < 0 {
		rem += 1000
		ms--
	}
	return ExchangeTime{Millis: ms, MicrosRemainder: int(rem)}
}

// UnixMicro recombines base and remainder.
func (t ExchangeTime) UnixMicro() int64 {
	return t.Millis*1000 + int64(t.MicrosRemainder)
}

// Base is the millisecond-resolution part as a time.Time.
func (t ExchangeTime) Base() time.Time {
	return time.UnixMilli(t.Millis).UTC()
}

func (t ExchangeTime) Time() time.Time {
	return time.UnixMicro(t.UnixMicro()).UTC()
}

func (t ExchangeTime) IsZero() bool {
	return t.Millis == 0 && t.MicrosRemainder == 0
}

func (t ExchangeTime) String() string {
	return t.Time().Format(microLayout)
}

func (t ExchangeTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *ExchangeTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseExchangeTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseISOTime parses an RFC 3339 timestamp with optional fractional seconds.
func ParseISOTime(s string) (ExchangeTime, error) {
	s = strings.TrimSpace(s)
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		var lerr error
		if ts, lerr = time.ParseInLocation(localISOLayout, s, time.UTC); lerr != nil {
			return ExchangeTime{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformedMessage, s, err)
		}
	}
	return NewExchangeTime(ts), nil
}

// ParseEpochSeconds parses decimal seconds since epoch, e.g. "1609848000.123456".
// Decimal arithmetic keeps the microsecond digits exact.
func ParseEpochSeconds(s string) (ExchangeTime, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return ExchangeTime{}, fmt.Errorf("%w: epoch timestamp %q: %v", ErrMalformedMessage, s, err)
	}
	if err := CheckDecimalBounds(d); err != nil {
		return ExchangeTime{}, fmt.Errorf("epoch timestamp: %w", err)
	}
	if integerDigits(d) > maxEpochDigits {
		return ExchangeTime{}, fmt.Errorf("%w: epoch timestamp %q out of range", ErrMalformedMessage, s)
	}
	us := d.Shift(6).Floor()
	if !us.BigInt().IsInt64() {
		return ExchangeTime{}, fmt.Errorf("%w: epoch timestamp %q out of range", ErrMalformedMessage, s)
	}
	return FromUnixMicro(us.IntPart()), nil
}

// ParseExchangeTime accepts either epoch seconds or an ISO string.
func ParseExchangeTime(s string) (ExchangeTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ExchangeTime{}, fmt.Errorf("%w: empty timestamp", ErrMalformedMessage)
	}
	if _, err := decimal.NewFromString(s); err == nil {
		return ParseEpochSeconds(s)
	}
	return ParseISOTime(s)
}
