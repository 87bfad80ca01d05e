package bitnomial

import "github.com/bradsherman/tardis-node/internal/infrastructure/exchange"

// Name is the venue id carried on every normalized event.
const Name = "bitnomial"

// DefaultWsURL is the public market data endpoint.
const DefaultWsURL = "wss://bitnomial.com/exchange/ws"

// message discriminants
const (
	typeTrade      = "trade"
	typeBook       = "book"
	typeLevel      = "level"
	typeDisconnect = "disconnect"
	typeSubscribe  = "subscribe"
)

// taker / book side vocabulary
const (
	sideBid = "Bid"
	sideAsk = "Ask"
)

type tradeMessage struct {
	Type      string          `json:"type"`
	AckID     exchange.Text   `json:"ack_id"`
	Price     exchange.Number `json:"price"`
	Quantity  exchange.Number `json:"quantity"`
	Symbol    string          `json:"symbol"`
	TakerSide string          `json:"taker_side"`
	Timestamp exchange.Text   `json:"timestamp"`
}

// bookLevel is a [price, quantity] pair, both strings on the wire.
type bookLevel [2]exchange.Number

type bookSnapshotMessage struct {
	Type      string        `json:"type"`
	AckID     exchange.Text `json:"ack_id"`
	Asks      []bookLevel   `json:"asks"`
	Bids      []bookLevel   `json:"bids"`
	Symbol    string        `json:"symbol"`
	Timestamp exchange.Text `json:"timestamp"`
}

// levelUpdateMessage touches a single level; price and quantity arrive as numbers.
type levelUpdateMessage struct {
	Type      string          `json:"type"`
	AckID     exchange.Text   `json:"ack_id"`
	Price     exchange.Number `json:"price"`
	Quantity  exchange.Number `json:"quantity"`
	Side      string          `json:"side"`
	Symbol    string          `json:"symbol"`
	Timestamp exchange.Text   `json:"timestamp"`
}
