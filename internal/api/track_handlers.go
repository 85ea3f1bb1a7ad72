package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/remote"
	"github.com/example/storefront/internal/tracker"
)

const maxWebhookBytes = 64 << 10

// TrackOrder streams live status snapshots for one order as server-sent
// events. Each tracker instance lives for exactly one connection.
func (h *Handlers) TrackOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/track")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondJSONError(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

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

	t := tracker.New(h.orders, h.feed)
	if err := t.Start(r.Context(), id); err != nil {
		respondJSONError(w, "failed to start tracking", http.StatusBadGateway)
		return
	}
	defer t.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if snap, ok := t.Current(); ok {
		writeEvent(w, snap)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-t.Updates():
			if !ok {
				return
			}
			writeEvent(w, snap)
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, snap tracker.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[API] Failed to encode tracking event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: order\ndata: %s\n\n", data)
}

// PaymentWebhook receives gateway notifications for online payments.
func (h *Handlers) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		respondJSONError(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	if err := h.stripe.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		log.Printf("[API] Webhook rejected: %v", err)
		respondJSONError(w, "webhook rejected", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}
