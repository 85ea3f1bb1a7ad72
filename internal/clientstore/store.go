package clientstore

import (
	"log"
	"sync"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/wishlist"
)

// Namespace of the cart/wishlist/orders-cache blob. The session blob lives in
// its own namespace owned by the auth bridge.
const Namespace = "storefront"

type state struct {
	Cart     cart.Cart         `json:"cart"`
	Wishlist wishlist.Wishlist `json:"wishlist"`
	Orders   []order.Order     `json:"orders"`
}

// Store is the single source of truth for cart and wishlist, plus a cache of
// recently observed orders. Every mutation persists the full state blob
// synchronously before returning.
type Store struct {
	mu    sync.Mutex
	blob  *Blob
	state state
}

// Open rehydrates the store from dir, starting empty when no blob exists yet.
func Open(dir string) (*Store, error) {
	blob, err := NewBlob(dir, Namespace)
	if err != nil {
		return nil, err
	}
	s := &Store{blob: blob}
	if _, err := blob.Load(&s.state); err != nil {
		return nil, err
	}
	return s, nil
}

// AddToCart inserts the product with quantity one, or increments an existing
// entry. It always succeeds; a persistence failure is logged, not surfaced.
func (s *Store) AddToCart(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart.Add(p)
	s.persist()
}

// RemoveFromCart deletes the matching item if present.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart.Remove(productID)
	s.persist()
}

// UpdateQuantity sets the quantity; zero removes the item.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart.SetQuantity(productID, quantity)
	s.persist()
}

// ClearCart empties the cart. Called once, after successful order placement.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart.Clear()
	s.persist()
}

// Cart returns a snapshot of the current cart contents.
func (s *Store) Cart() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := cart.Cart{Items: make([]cart.Item, len(s.state.Cart.Items))}
	copy(snapshot.Items, s.state.Cart.Items)
	return snapshot
}

// CartTotal recomputes the total from current contents.
func (s *Store) CartTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cart.Total()
}

// ToggleWishlist adds or removes the product and returns the resulting
// membership state.
func (s *Store) ToggleWishlist(p product.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := s.state.Wishlist.Toggle(p)
	s.persist()
	return added
}

// Wishlist returns a snapshot of saved products.
func (s *Store) Wishlist() []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]product.Product, len(s.state.Wishlist.Items))
	copy(out, s.state.Wishlist.Items)
	return out
}

// CacheOrder replaces the cached snapshot for an order, or appends it when
// unseen. The cache is display state only; the remote row stays authoritative.
func (s *Store) CacheOrder(o order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Orders {
		if s.state.Orders[i].ID == o.ID {
			s.state.Orders[i] = o
			s.persist()
			return
		}
	}
	s.state.Orders = append(s.state.Orders, o)
	s.persist()
}

// CachedOrders returns the cached order snapshots.
func (s *Store) CachedOrders() []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Order, len(s.state.Orders))
	copy(out, s.state.Orders)
	return out
}

func (s *Store) persist() {
	if err := s.blob.Save(&s.state); err != nil {
		log.Printf("[ClientStore] Failed to persist state: %v", err)
	}
}
