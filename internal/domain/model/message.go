package model

import (
	"encoding/json"
	"fmt"
)

// Message is one raw venue frame with its discriminant already decoded.
type Message struct {
	Type string
	Data json.RawMessage
}

type envelope struct {
	Type string `json:"type"`
}

// ParseMessage decodes the `type` discriminant of a JSON frame.
func ParseMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return Message{Type: env.Type, Data: data}, nil
}
