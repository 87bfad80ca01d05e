package port

import (
	"time"

	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// Mapper translates one venue message shape into normalized events.
// Implementations are stateless and safe for concurrent use.
type Mapper interface {
	// CanHandle reports whether msg carries the discriminant this mapper maps.
	CanHandle(msg model.Message) bool
	// GetFilters returns the channels that must be subscribed for this mapper
	// to receive data. Nil symbols means every symbol.
	GetFilters(symbols []string) []model.Filter
	// Map returns the events for msg, or an error scoped to msg alone.
	Map(msg model.Message, localTimestamp time.Time) ([]model.Event, error)
}

// SubscriptionBuilder translates filters into native subscribe payloads and
// classifies protocol-level messages.
type SubscriptionBuilder interface {
	SubscribeMessages(filters []model.Filter) ([]any, error)
	IsErrorMessage(msg model.Message) bool
}
