package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/realtime"
)

type fakeOrders struct {
	order *order.Order
	err   error
}

func (f *fakeOrders) Get(ctx context.Context, id string) (*order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o := *f.order
	return &o, nil
}

type fakeFeed struct {
	ch       chan realtime.OrderChange
	err      error
	released bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan realtime.OrderChange, 16)}
}

func (f *fakeFeed) Subscribe(ctx context.Context, orderID string) (<-chan realtime.OrderChange, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.ch, func() { f.released = true }, nil
}

func (f *fakeFeed) push(o order.Order) {
	f.ch <- realtime.OrderChange{Order: o, OccurredAt: time.Now()}
}

func testOrder(status order.Status, version int) order.Order {
	return order.Order{ID: "order-1", UserID: "user-1", Status: status, Version: version}
}

func waitSnapshot(t *testing.T, tr *Tracker) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-tr.Updates():
		require.True(t, ok, "updates channel closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

// ============================================
// Start Tests
// ============================================

func TestTracker_Start_InitialFetch(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	defer tr.Stop()

	require.NoError(t, tr.Start(context.Background(), "order-1"))

	snap, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, order.StatusPending, snap.Order.Status)
	assert.Equal(t, 0, snap.Step)
}

func TestTracker_Start_FetchFailureReleasesSubscription(t *testing.T) {
	orders := &fakeOrders{err: errors.New("connection refused")}
	feed := newFakeFeed()
	tr := New(orders, feed)

	err := tr.Start(context.Background(), "order-1")

	require.Error(t, err)
	assert.True(t, feed.released)
	_, ok := tr.Current()
	assert.False(t, ok)
}

func TestTracker_Start_SubscribeFailure(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	feed.err = errors.New("broker unavailable")
	tr := New(orders, feed)

	err := tr.Start(context.Background(), "order-1")

	require.Error(t, err)
}

// ============================================
// Push Handling Tests
// ============================================

func TestTracker_FullLifecycleAdvancesSteps(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	defer tr.Stop()
	require.NoError(t, tr.Start(context.Background(), "order-1"))

	// Drain the snapshot from the initial fetch.
	first := waitSnapshot(t, tr)
	assert.Equal(t, 0, first.Step)

	statuses := []order.Status{order.StatusProcessing, order.StatusOutForDelivery, order.StatusDelivered}
	for i, status := range statuses {
		feed.push(testOrder(status, i+2))
		snap := waitSnapshot(t, tr)
		assert.Equal(t, status, snap.Order.Status)
		assert.Equal(t, i+1, snap.Step)
	}

	current, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, order.StatusDelivered, current.Order.Status)
	assert.Equal(t, 3, current.Step)
}

func TestTracker_DropsStalePush(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusProcessing, Version: 3}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	defer tr.Stop()
	require.NoError(t, tr.Start(context.Background(), "order-1"))
	waitSnapshot(t, tr)

	// An older delivery arriving late must not regress the view.
	feed.push(testOrder(order.StatusPending, 2))
	feed.push(testOrder(order.StatusOutForDelivery, 4))

	snap := waitSnapshot(t, tr)
	assert.Equal(t, order.StatusOutForDelivery, snap.Order.Status)
	assert.Equal(t, 4, snap.Order.Version)
}

func TestTracker_DropsEqualVersionPush(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusProcessing, Version: 3}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	defer tr.Stop()
	require.NoError(t, tr.Start(context.Background(), "order-1"))
	waitSnapshot(t, tr)

	// Redelivery of the already-displayed version.
	feed.push(testOrder(order.StatusProcessing, 3))
	feed.push(testOrder(order.StatusOutForDelivery, 4))

	snap := waitSnapshot(t, tr)
	assert.Equal(t, 4, snap.Order.Version)
}

func TestTracker_UnknownStatusRendersFallback(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	defer tr.Stop()
	require.NoError(t, tr.Start(context.Background(), "order-1"))
	waitSnapshot(t, tr)

	feed.push(testOrder(order.Status("refunded"), 2))

	snap := waitSnapshot(t, tr)
	assert.Equal(t, order.StepUnknown, snap.Step)
	assert.Equal(t, order.Status("refunded"), snap.Order.Status)
}

func TestTracker_CancelledIsOffTheLadder(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	defer tr.Stop()
	require.NoError(t, tr.Start(context.Background(), "order-1"))
	waitSnapshot(t, tr)

	feed.push(testOrder(order.StatusCancelled, 2))

	snap := waitSnapshot(t, tr)
	assert.Equal(t, order.StepUnknown, snap.Step)
	assert.Equal(t, order.StatusCancelled, snap.Order.Status)
}

// ============================================
// Stop Tests
// ============================================

func TestTracker_Stop_ReleasesSubscription(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	require.NoError(t, tr.Start(context.Background(), "order-1"))

	tr.Stop()

	assert.True(t, feed.released)
}

func TestTracker_Stop_ClosesUpdates(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	require.NoError(t, tr.Start(context.Background(), "order-1"))

	tr.Stop()

	select {
	case _, ok := <-tr.Updates():
		if ok {
			// The buffered initial snapshot drains first.
			_, ok = <-tr.Updates()
			assert.False(t, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("updates channel never closed")
	}
}

func TestTracker_Stop_Idempotent(t *testing.T) {
	orders := &fakeOrders{order: &order.Order{ID: "order-1", Status: order.StatusPending, Version: 1}}
	feed := newFakeFeed()
	tr := New(orders, feed)
	require.NoError(t, tr.Start(context.Background(), "order-1"))

	tr.Stop()
	tr.Stop()
}
