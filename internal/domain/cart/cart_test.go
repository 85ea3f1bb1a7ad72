package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/product"
)

func testProduct(id string, price int) product.Product {
	return product.Product{ID: id, Name: "Product " + id, Price: price}
}

// ============================================
// Add Tests
// ============================================

func TestCart_Add_NewProduct(t *testing.T) {
	var c Cart

	c.Add(testProduct("prod-1", 1000))

	require.Len(t, c.Items, 1)
	assert.Equal(t, "prod-1", c.Items[0].Product.ID)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestCart_Add_ExistingProductIncrements(t *testing.T) {
	var c Cart

	c.Add(testProduct("prod-1", 1000))
	c.Add(testProduct("prod-1", 1000))
	c.Add(testProduct("prod-1", 1000))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestCart_Add_KeepsInsertionOrder(t *testing.T) {
	var c Cart

	c.Add(testProduct("prod-2", 500))
	c.Add(testProduct("prod-1", 1000))
	c.Add(testProduct("prod-3", 200))
	c.Add(testProduct("prod-1", 1000))

	require.Len(t, c.Items, 3)
	assert.Equal(t, "prod-2", c.Items[0].Product.ID)
	assert.Equal(t, "prod-1", c.Items[1].Product.ID)
	assert.Equal(t, "prod-3", c.Items[2].Product.ID)
}

func TestCart_Add_TotalAfterRepeatedAdds(t *testing.T) {
	var c Cart
	p := testProduct("prod-1", 750)

	for i := 0; i < 5; i++ {
		c.Add(p)
	}

	assert.Equal(t, 5*750, c.Total())
}

// ============================================
// Remove Tests
// ============================================

func TestCart_Remove_ExistingProduct(t *testing.T) {
	var c Cart
	c.Add(testProduct("prod-1", 1000))
	c.Add(testProduct("prod-2", 500))

	c.Remove("prod-1")

	require.Len(t, c.Items, 1)
	assert.Equal(t, "prod-2", c.Items[0].Product.ID)
}

func TestCart_Remove_AbsentProductIsNoop(t *testing.T) {
	var c Cart
	c.Add(testProduct("prod-1", 1000))

	c.Remove("prod-missing")

	assert.Len(t, c.Items, 1)
}

// ============================================
// SetQuantity Tests
// ============================================

func TestCart_SetQuantity(t *testing.T) {
	var c Cart
	c.Add(testProduct("prod-1", 1000))

	c.SetQuantity("prod-1", 4)

	item, ok := c.Get("prod-1")
	require.True(t, ok)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, 4000, c.Total())
}

func TestCart_SetQuantity_ZeroRemoves(t *testing.T) {
	var c Cart
	c.Add(testProduct("prod-1", 1000))
	c.Add(testProduct("prod-2", 500))

	c.SetQuantity("prod-1", 0)

	// Setting zero behaves exactly like Remove.
	_, ok := c.Get("prod-1")
	assert.False(t, ok)
	assert.Len(t, c.Items, 1)
}

func TestCart_SetQuantity_AbsentProductIsNoop(t *testing.T) {
	var c Cart
	c.Add(testProduct("prod-1", 1000))

	c.SetQuantity("prod-missing", 3)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

// ============================================
// Total Tests
// ============================================

func TestCart_Total(t *testing.T) {
	tests := []struct {
		name     string
		build    func(c *Cart)
		expected int
	}{
		{"empty cart", func(c *Cart) {}, 0},
		{"single item", func(c *Cart) {
			c.Add(testProduct("prod-1", 1000))
		}, 1000},
		{"mixed quantities", func(c *Cart) {
			c.Add(testProduct("prod-1", 1000))
			c.Add(testProduct("prod-1", 1000))
			c.Add(testProduct("prod-2", 250))
		}, 2250},
		{"free item", func(c *Cart) {
			c.Add(testProduct("prod-1", 0))
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			tt.build(&c)
			assert.Equal(t, tt.expected, c.Total())
		})
	}
}

func TestCart_Total_RecomputedAfterMutation(t *testing.T) {
	var c Cart
	c.Add(testProduct("prod-1", 1000))
	c.Add(testProduct("prod-2", 500))
	assert.Equal(t, 1500, c.Total())

	c.SetQuantity("prod-2", 3)
	assert.Equal(t, 2500, c.Total())

	c.Remove("prod-1")
	assert.Equal(t, 1500, c.Total())
}

// ============================================
// Clear Tests
// ============================================

func TestCart_Clear(t *testing.T) {
	var c Cart
	c.Add(testProduct("prod-1", 1000))
	c.Add(testProduct("prod-2", 500))

	c.Clear()

	assert.True(t, c.Empty())
	assert.Equal(t, 0, c.Total())
}

func TestCart_Clear_EmptyCart(t *testing.T) {
	var c Cart

	c.Clear()

	assert.True(t, c.Empty())
}
