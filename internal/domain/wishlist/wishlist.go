package wishlist

import "github.com/example/storefront/internal/domain/product"

// Wishlist is a set of saved-for-later product references, at most one entry
// per product id.
type Wishlist struct {
	Items []product.Product `json:"items"`
}

// Toggle adds the product if absent and removes it if present. It returns the
// resulting membership so callers can report "added" vs "removed".
func (w *Wishlist) Toggle(p product.Product) bool {
	for i := range w.Items {
		if w.Items[i].ID == p.ID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return false
		}
	}
	w.Items = append(w.Items, p)
	return true
}

// Contains reports whether the product id is saved.
func (w *Wishlist) Contains(productID string) bool {
	for _, p := range w.Items {
		if p.ID == productID {
			return true
		}
	}
	return false
}
