// Package notification turns order changes into customer email.
package notification

import (
	"context"
	"log"
	"sync"

	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/realtime"
	"github.com/example/storefront/internal/remote"
)

const (
	mailConfirmation = "confirmation"
	mailDelivery     = "delivery"
)

// Handler consumes the push topic and mails the customer at the two moments
// they care about: order confirmation and hand-off to the courier. Cash
// orders are confirmed at creation; online orders only once the gateway
// reported payment success, so an abandoned checkout mails nothing.
type Handler struct {
	emailService *email.Service
	profiles     *remote.ProfileStore
	products     *remote.ProductStore

	mu   sync.Mutex
	sent map[string]bool // order id + mail kind
}

func NewHandler(emailSvc *email.Service, profiles *remote.ProfileStore, products *remote.ProductStore) *Handler {
	return &Handler{
		emailService: emailSvc,
		profiles:     profiles,
		products:     products,
		sent:         make(map[string]bool),
	}
}

// HandleChange is the realtime.ChangeHandler entry point.
func (h *Handler) HandleChange(ctx context.Context, change realtime.OrderChange) error {
	o := change.Order

	if confirmable(o) && !h.alreadyMailed(o.ID, mailConfirmation) {
		if err := h.sendConfirmation(ctx, o); err != nil {
			return err
		}
	}
	if o.Status == order.StatusOutForDelivery && !h.alreadyMailed(o.ID, mailDelivery) {
		return h.sendDeliveryNotice(ctx, o)
	}
	return nil
}

// confirmable reports whether the order has earned its confirmation mail.
func confirmable(o order.Order) bool {
	if o.PaymentStatus == order.PaymentSuccess {
		return true
	}
	return o.Version == 1 && o.PaymentMethod == string(payment.MethodCOD)
}

func (h *Handler) sendConfirmation(ctx context.Context, o order.Order) error {
	profile, err := h.profiles.Get(ctx, o.UserID)
	if err != nil {
		log.Printf("[Notifier] No profile for user %s: %v", o.UserID, err)
		return nil
	}

	names := make(map[string]string, len(o.Items))
	for _, item := range o.Items {
		if p, err := h.products.Get(ctx, item.ProductID); err == nil {
			names[item.ProductID] = p.Name
		}
	}

	if err := h.emailService.SendOrderConfirmation(profile.Email, o, names); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", profile.Email, err)
		return err
	}
	log.Printf("[Notifier] Confirmation sent to %s for order %s", profile.Email, o.ID)
	return nil
}

func (h *Handler) sendDeliveryNotice(ctx context.Context, o order.Order) error {
	profile, err := h.profiles.Get(ctx, o.UserID)
	if err != nil {
		log.Printf("[Notifier] No profile for user %s: %v", o.UserID, err)
		return nil
	}

	if err := h.emailService.SendDeliveryNotice(profile.Email, o); err != nil {
		log.Printf("[Notifier] Failed to send delivery notice to %s: %v", profile.Email, err)
		return err
	}
	log.Printf("[Notifier] Delivery notice sent to %s for order %s", profile.Email, o.ID)
	return nil
}

// alreadyMailed records the send and reports redelivery. The map only guards
// within one process lifetime; the consumer group offset guards across
// restarts.
func (h *Handler) alreadyMailed(orderID, kind string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := orderID + "/" + kind
	if h.sent[key] {
		return true
	}
	h.sent[key] = true
	return false
}
