package model

// Filter is a venue-agnostic subscription request. Nil Symbols means every symbol.
type Filter struct {
	Channel string   `toml:"channel" json:"channel"`
	Symbols []string `toml:"symbols" json:"symbols,omitempty"`
}
