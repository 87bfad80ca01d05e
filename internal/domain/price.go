package domain

import "github.com/shopspring/decimal"

// Direction represents the price movement direction
type Direction int

const (
	DirectionSame Direction = 0
	DirectionUp   Direction = +1
	DirectionDown Direction = -1
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "same"
	}
}

// PriceState holds the last trade price of one instrument
type PriceState struct {
	Price     decimal.Decimal
	HasValue  bool
	Direction Direction
}

// Update records a new price. Returns true if the price changed.
func (ps *PriceState) Update(price decimal.Decimal) bool {
	if !ps.HasValue {
		ps.HasValue = true
		ps.Price = price
		ps.Direction = DirectionSame
		return true
	}

	switch price.Cmp(ps.Price) {
	case 1:
		ps.Direction = DirectionUp
	case -1:
		ps.Direction = DirectionDown
	default:
		ps.Direction = DirectionSame
		return false
	}
	ps.Price = price
	return true
}
