package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/clientstore"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/geocode"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/realtime"
	"github.com/example/storefront/internal/remote"
)

type Handlers struct {
	bridge    *identity.Bridge
	store     *clientstore.Store
	products  *remote.ProductStore
	wishlists *remote.WishlistStore
	orders    *remote.OrderStore
	checkout  *checkout.Orchestrator
	feed      realtime.Feed
	stripe    *payment.StripeProvider
	geocoder  *geocode.Client
}

func NewHandlers(
	bridge *identity.Bridge,
	store *clientstore.Store,
	products *remote.ProductStore,
	wishlists *remote.WishlistStore,
	orders *remote.OrderStore,
	orchestrator *checkout.Orchestrator,
	feed realtime.Feed,
	stripe *payment.StripeProvider,
	geocoder *geocode.Client,
) *Handlers {
	return &Handlers{
		bridge:    bridge,
		store:     store,
		products:  products,
		wishlists: wishlists,
		orders:    orders,
		checkout:  orchestrator,
		feed:      feed,
		stripe:    stripe,
		geocoder:  geocoder,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondJSONError(w, "failed to load catalog", http.StatusBadGateway)
		return
	}

	category := r.URL.Query().Get("category")
	query := r.URL.Query().Get("q")
	respondJSON(w, http.StatusOK, product.Filter(products, category, query))
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, remote.ErrProductNotFound) {
			respondJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "failed to load product", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	snapshot := h.store.Cart()
	respondJSON(w, http.StatusOK, map[string]any{
		"items": snapshot.Items,
		"total": snapshot.Total(),
	})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Get(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, remote.ErrProductNotFound) {
			respondJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "failed to load product", http.StatusBadGateway)
		return
	}

	h.store.AddToCart(*p)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if *req.Quantity < 0 {
		respondJSONError(w, "quantity must not be negative", http.StatusBadRequest)
		return
	}

	h.store.UpdateQuantity(productID, *req.Quantity)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/items/")
	h.store.RemoveFromCart(productID)
	w.WriteHeader(http.StatusOK)
}

// Wishlist Handlers

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"items": h.store.Wishlist()})
}

func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Get(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, remote.ErrProductNotFound) {
			respondJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "failed to load product", http.StatusBadGateway)
		return
	}

	added := h.store.ToggleWishlist(*p)

	// Mirror membership server-side for signed-in users; the local store
	// stays authoritative for display, so a mirror failure is best-effort.
	if user, ok := h.bridge.CurrentUser(); ok {
		if _, err := h.wishlists.Toggle(r.Context(), user.ID, p.ID); err != nil {
			log.Printf("[API] Failed to mirror wishlist toggle for %s: %v", p.ID, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"added": added})
}

// Checkout Handler

type checkoutRequest struct {
	PaymentMethod string          `json:"payment_method"`
	Address       string          `json:"address"`
	Location      *geocode.LatLng `json:"location,omitempty"`
}

func (h *Handlers) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// An empty address with coordinates present resolves through the
	// geocoder, the way the map widget fills the address field.
	if strings.TrimSpace(req.Address) == "" && req.Location != nil && h.geocoder != nil {
		if resolved, err := h.geocoder.Reverse(r.Context(), *req.Location); err == nil {
			req.Address = resolved
		}
	}

	result, err := h.checkout.Submit(r.Context(), checkout.Submission{
		Method:   payment.Method(req.PaymentMethod),
		Address:  req.Address,
		Location: req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoSession):
			respondJSONError(w, "session expired, please log in again", http.StatusUnauthorized)
		case errors.Is(err, checkout.ErrNoPaymentMethod),
			errors.Is(err, checkout.ErrAddressTooShort),
			errors.Is(err, checkout.ErrEmptyCart):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			respondJSONError(w, "failed to place order", http.StatusBadGateway)
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"order":            result.Order,
		"awaiting_payment": result.AwaitingPayment,
	})
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "failed to load orders", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, remote.ErrOrderNotFound) {
			respondJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "failed to load order", http.StatusBadGateway)
		return
	}

	user, _ := middleware.GetUser(r.Context())
	if user == nil || (o.UserID != user.ID && user.Role != "admin") {
		respondJSONError(w, "forbidden", http.StatusForbidden)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Admin Handlers

// UpdateOrderStatus is the fulfillment hand: it advances the remote row and
// the push channel fans the change out to any open tracking views.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/status")

	var req struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, remote.ErrOrderNotFound):
			respondJSONError(w, "order not found", http.StatusNotFound)
		case errors.Is(err, remote.ErrInvalidTransition):
			respondJSONError(w, err.Error(), http.StatusConflict)
		default:
			respondJSONError(w, "failed to update order", http.StatusBadGateway)
		}
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Geocode Handler

func (h *Handlers) Geocode(w http.ResponseWriter, r *http.Request) {
	if h.geocoder == nil {
		respondJSONError(w, "geocoding not configured", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	if query := q.Get("q"); query != "" {
		loc, place, err := h.geocoder.Forward(r.Context(), query)
		if err != nil {
			respondJSONError(w, "location not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"location": loc, "address": place})
		return
	}

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		respondJSONError(w, "q or lat/lng required", http.StatusBadRequest)
		return
	}
	place, err := h.geocoder.Reverse(r.Context(), geocode.LatLng{Lat: lat, Lng: lng})
	if err != nil {
		respondJSONError(w, "location not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"address": place})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
