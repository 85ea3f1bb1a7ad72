// Package realtime is the push channel for remote order changes. Writers
// publish the full row snapshot after every order mutation; trackers subscribe
// filtered to a single order id, the way the storefront's tracking view
// watches exactly one order.
package realtime

import (
	"context"
	"time"

	"github.com/example/storefront/internal/domain/order"
)

// OrderChange is one pushed notification: a full snapshot of the changed row.
// Order.Version is the monotonic counter consumers use to drop stale
// deliveries.
type OrderChange struct {
	Order      order.Order `json:"order"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Publisher delivers order changes into the push channel.
type Publisher interface {
	PublishOrderChange(ctx context.Context, change OrderChange) error
}

// Feed delivers pushed changes for a single order id. The returned cancel
// function releases the subscription; it must be called when the consumer
// stops watching so subscriptions never leak across navigations.
type Feed interface {
	Subscribe(ctx context.Context, orderID string) (<-chan OrderChange, func(), error)
}
