package wishlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/product"
)

func testProduct(id string) product.Product {
	return product.Product{ID: id, Name: "Product " + id, Price: 1000}
}

func TestWishlist_Toggle_AddsWhenAbsent(t *testing.T) {
	var w Wishlist

	added := w.Toggle(testProduct("prod-1"))

	assert.True(t, added)
	assert.True(t, w.Contains("prod-1"))
	require.Len(t, w.Items, 1)
}

func TestWishlist_Toggle_RemovesWhenPresent(t *testing.T) {
	var w Wishlist
	w.Toggle(testProduct("prod-1"))

	added := w.Toggle(testProduct("prod-1"))

	assert.False(t, added)
	assert.False(t, w.Contains("prod-1"))
	assert.Empty(t, w.Items)
}

func TestWishlist_Toggle_TwiceRestoresOriginalState(t *testing.T) {
	var w Wishlist
	w.Toggle(testProduct("prod-1"))
	w.Toggle(testProduct("prod-2"))

	w.Toggle(testProduct("prod-1"))
	w.Toggle(testProduct("prod-1"))

	require.Len(t, w.Items, 2)
	assert.True(t, w.Contains("prod-1"))
	assert.True(t, w.Contains("prod-2"))
}

func TestWishlist_Toggle_OneEntryPerProduct(t *testing.T) {
	var w Wishlist

	w.Toggle(testProduct("prod-1"))
	w.Toggle(testProduct("prod-2"))
	w.Toggle(testProduct("prod-1"))
	w.Toggle(testProduct("prod-1"))

	require.Len(t, w.Items, 2)
}

func TestWishlist_Contains_EmptyList(t *testing.T) {
	var w Wishlist

	assert.False(t, w.Contains("prod-1"))
}
