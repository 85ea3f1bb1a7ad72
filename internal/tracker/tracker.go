// Package tracker maintains the status view of a single order by merging an
// initial fetch with the live push stream.
package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/realtime"
)

// OrderGetter is the slice of the remote store the tracker reads.
type OrderGetter interface {
	Get(ctx context.Context, id string) (*order.Order, error)
}

// Snapshot is what the display surface renders: the full order plus its
// position on the status ladder. Step is order.StepUnknown for statuses
// outside the canonical set.
type Snapshot struct {
	Order order.Order
	Step  int
}

// Tracker watches one order. Start fetches the current record and opens a
// subscription scoped to the order id; each push replaces the whole local
// snapshot. Pushes carrying a version at or below the displayed one are
// dropped, so an out-of-order delivery can never regress the progress bar.
type Tracker struct {
	orders OrderGetter
	feed   realtime.Feed

	mu      sync.Mutex
	current *order.Order
	closed  bool

	updates chan Snapshot
	release func()
	done    chan struct{}
	stop    sync.Once
}

func New(orders OrderGetter, feed realtime.Feed) *Tracker {
	return &Tracker{
		orders:  orders,
		feed:    feed,
		updates: make(chan Snapshot, 8),
		done:    make(chan struct{}),
	}
}

// Start issues the blocking fetch and opens the subscription. The initial
// fetch and the first push race benignly: both land through the version gate,
// so either arrival order converges on the newer snapshot.
func (t *Tracker) Start(ctx context.Context, orderID string) error {
	ch, release, err := t.feed.Subscribe(ctx, orderID)
	if err != nil {
		return fmt.Errorf("subscribe to order %s: %w", orderID, err)
	}
	t.release = release

	fetched, err := t.orders.Get(ctx, orderID)
	if err != nil {
		release()
		return fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	t.apply(*fetched)

	go func() {
		for {
			select {
			case change, ok := <-ch:
				if !ok {
					return
				}
				t.apply(change.Order)
			case <-t.done:
				return
			}
		}
	}()
	return nil
}

// Updates delivers snapshots to the display surface. The channel closes when
// the tracker stops.
func (t *Tracker) Updates() <-chan Snapshot {
	return t.updates
}

// Current returns the latest snapshot.
func (t *Tracker) Current() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Snapshot{}, false
	}
	return Snapshot{Order: *t.current, Step: order.StepIndex(t.current.Status)}, true
}

// Stop releases the subscription. It is idempotent and must be called when
// the view is torn down or the watched order id changes, so subscriptions
// never leak across navigations.
func (t *Tracker) Stop() {
	t.stop.Do(func() {
		close(t.done)
		if t.release != nil {
			t.release()
		}
		t.mu.Lock()
		t.closed = true
		close(t.updates)
		t.mu.Unlock()
	})
}

// apply installs a snapshot unless it is stale.
func (t *Tracker) apply(o order.Order) {
	t.mu.Lock()
	if t.current != nil && o.Version <= t.current.Version {
		t.mu.Unlock()
		log.Printf("[Tracker] Dropping stale push for order %s (v%d <= v%d)", o.ID, o.Version, t.current.Version)
		return
	}
	t.current = &o
	snapshot := Snapshot{Order: o, Step: order.StepIndex(o.Status)}

	if !t.closed {
		select {
		case t.updates <- snapshot:
		default:
			// A slow display surface drops intermediate snapshots; the next
			// push carries the full state anyway.
		}
	}
	t.mu.Unlock()

	if !o.Status.Valid() {
		log.Printf("[Tracker] Order %s has unrecognized status %q; rendering fallback", o.ID, o.Status)
	}
}
