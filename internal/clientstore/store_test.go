package clientstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
)

func testProduct(id string, price int) product.Product {
	return product.Product{ID: id, Name: "Product " + id, Price: price}
}

// ============================================
// Persistence Tests
// ============================================

func TestStore_Open_EmptyDirectory(t *testing.T) {
	store, err := Open(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, store.Cart().Items)
	assert.Empty(t, store.Wishlist())
	assert.Empty(t, store.CachedOrders())
}

func TestStore_ReopenRestoresState(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	store.AddToCart(testProduct("prod-1", 1000))
	store.AddToCart(testProduct("prod-1", 1000))
	store.AddToCart(testProduct("prod-2", 500))
	store.ToggleWishlist(testProduct("prod-3", 200))

	reopened, err := Open(dir)
	require.NoError(t, err)

	snapshot := reopened.Cart()
	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, 2, snapshot.Items[0].Quantity)
	assert.Equal(t, 2500, reopened.CartTotal())

	wishlist := reopened.Wishlist()
	require.Len(t, wishlist, 1)
	assert.Equal(t, "prod-3", wishlist[0].ID)
}

func TestStore_ReopenAfterClear(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	store.AddToCart(testProduct("prod-1", 1000))
	store.ClearCart()

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Empty(t, reopened.Cart().Items)
}

// ============================================
// Cart Tests
// ============================================

func TestStore_UpdateQuantity_ZeroRemoves(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	store.AddToCart(testProduct("prod-1", 1000))

	store.UpdateQuantity("prod-1", 0)

	assert.Empty(t, store.Cart().Items)
}

func TestStore_CartSnapshotIsDetached(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	store.AddToCart(testProduct("prod-1", 1000))

	snapshot := store.Cart()
	snapshot.Items[0].Quantity = 99

	assert.Equal(t, 1000, store.CartTotal())
}

// ============================================
// Order Cache Tests
// ============================================

func TestStore_CacheOrder_AppendsUnseen(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	store.CacheOrder(order.Order{ID: "order-1", Status: order.StatusPending, Version: 1})
	store.CacheOrder(order.Order{ID: "order-2", Status: order.StatusPending, Version: 1})

	assert.Len(t, store.CachedOrders(), 2)
}

func TestStore_CacheOrder_ReplacesById(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	store.CacheOrder(order.Order{ID: "order-1", Status: order.StatusPending, Version: 1})

	store.CacheOrder(order.Order{ID: "order-1", Status: order.StatusProcessing, Version: 2})

	cached := store.CachedOrders()
	require.Len(t, cached, 1)
	assert.Equal(t, order.StatusProcessing, cached[0].Status)
	assert.Equal(t, 2, cached[0].Version)
}

func TestStore_CachedOrdersSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	store.CacheOrder(order.Order{ID: "order-1", Status: order.StatusDelivered, Version: 5})

	reopened, err := Open(dir)
	require.NoError(t, err)
	cached := reopened.CachedOrders()
	require.Len(t, cached, 1)
	assert.Equal(t, order.StatusDelivered, cached[0].Status)
}

// ============================================
// Blob Tests
// ============================================

func TestBlob_LoadMissingFile(t *testing.T) {
	blob, err := NewBlob(t.TempDir(), "missing")
	require.NoError(t, err)

	var v map[string]string
	found, err := blob.Load(&v)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestBlob_SaveThenLoad(t *testing.T) {
	blob, err := NewBlob(t.TempDir(), "session")
	require.NoError(t, err)

	require.NoError(t, blob.Save(map[string]string{"token": "abc"}))

	var v map[string]string
	found, err := blob.Load(&v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", v["token"])
}

func TestBlob_NamespacesAreIsolated(t *testing.T) {
	dir := t.TempDir()
	a, err := NewBlob(dir, "a")
	require.NoError(t, err)
	b, err := NewBlob(dir, "b")
	require.NoError(t, err)

	require.NoError(t, a.Save(map[string]int{"n": 1}))
	require.NoError(t, b.Save(map[string]int{"n": 2}))

	var va, vb map[string]int
	_, err = a.Load(&va)
	require.NoError(t, err)
	_, err = b.Load(&vb)
	require.NoError(t, err)
	assert.Equal(t, 1, va["n"])
	assert.Equal(t, 2, vb["n"])
}
