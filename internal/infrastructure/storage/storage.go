package storage

import (
	"encoding/json"
	"fmt"

	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// Key identifies an instrument across venues, e.g. "bitnomial:BUSU1".
func Key(e model.Event) string {
	return fmt.Sprintf("%s:%s", e.Venue(), e.Instrument())
}

// EncodeEvent is the JSON form shared by the stream and bus sinks.
func EncodeEvent(e model.Event) ([]byte, error) {
	return json.Marshal(e)
}
