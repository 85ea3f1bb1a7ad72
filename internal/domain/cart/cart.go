package cart

import "github.com/example/storefront/internal/domain/product"

// Item is a product selected for purchase together with its quantity.
type Item struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart holds the not-yet-ordered selections. Items keep insertion order so the
// storefront renders them stably. At most one item exists per product id.
type Cart struct {
	Items []Item `json:"items"`
}

// Add puts a product into the cart. Adding a product that is already present
// increments its quantity by one.
func (c *Cart) Add(p product.Product) {
	for i := range c.Items {
		if c.Items[i].Product.ID == p.ID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, Item{Product: p, Quantity: 1})
}

// Remove deletes the item for the given product id. Removing an absent product
// is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity for the given product id. A quantity of zero
// removes the item. Callers are expected to clamp negative input to at least
// one before calling.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity == 0 {
		c.Remove(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.Items = nil
}

// Total recomputes the cart total from current contents. The cart never stores
// a precomputed total.
func (c *Cart) Total() int {
	var total int
	for _, item := range c.Items {
		total += item.Product.Price * item.Quantity
	}
	return total
}

// Get returns the item for a product id, if present.
func (c *Cart) Get(productID string) (Item, bool) {
	for _, item := range c.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return Item{}, false
}

// Empty reports whether the cart has no items.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
