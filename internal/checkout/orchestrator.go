// Package checkout converts a cart snapshot into a placed order, gated by
// authentication and address/payment validity.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/geocode"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/payment"
)

const minAddressLength = 10

var (
	ErrNoSession       = errors.New("no live session")
	ErrNoPaymentMethod = errors.New("no payment method selected")
	ErrAddressTooShort = errors.New("delivery address is too short")
	ErrEmptyCart       = errors.New("cart is empty")
)

// SessionProber is the slice of the auth bridge checkout needs. Submission
// re-probes the provider; cached client state is never trusted on its own.
type SessionProber interface {
	Probe(ctx context.Context) (*identity.Session, error)
	CurrentUser() (*identity.User, bool)
}

// CartStore is the slice of the persisted client store checkout touches.
type CartStore interface {
	Cart() cart.Cart
	ClearCart()
	CacheOrder(o order.Order)
}

// OrderWriter creates orders and records payment outcomes.
type OrderWriter interface {
	Create(ctx context.Context, o *order.Order) error
	UpdatePayment(ctx context.Context, id string, paymentStatus order.PaymentStatus, paymentID string, target order.Status) (*order.Order, error)
}

// ProviderSource resolves payment providers, loading them lazily.
type ProviderSource interface {
	Provider(method payment.Method) (payment.Provider, error)
}

// Submission is one checkout attempt.
type Submission struct {
	Method   payment.Method
	Address  string
	Location *geocode.LatLng
}

// Result reports a placed order. AwaitingPayment is true on the online path,
// where the gateway callbacks finish the flow later.
type Result struct {
	Order           *order.Order
	AwaitingPayment bool
}

type Orchestrator struct {
	sessions  SessionProber
	store     CartStore
	orders    OrderWriter
	providers ProviderSource
	currency  string
}

func NewOrchestrator(sessions SessionProber, store CartStore, orders OrderWriter, providers ProviderSource, currency string) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		store:     store,
		orders:    orders,
		providers: providers,
		currency:  currency,
	}
}

// Submit runs the checkout. Preconditions are checked in order before any
// remote call; a creation failure aborts wholly, leaving the cart untouched.
func (c *Orchestrator) Submit(ctx context.Context, sub Submission) (*Result, error) {
	session, err := c.sessions.Probe(ctx)
	if err != nil {
		return nil, ErrNoSession
	}
	if !payment.ValidMethod(sub.Method) {
		return nil, ErrNoPaymentMethod
	}
	if len(strings.TrimSpace(sub.Address)) < minAddressLength {
		return nil, ErrAddressTooShort
	}

	snapshot := c.store.Cart()
	if snapshot.Empty() {
		return nil, ErrEmptyCart
	}

	o := &order.Order{
		UserID:           session.UserID,
		Items:            orderItems(snapshot),
		Total:            snapshot.Total(),
		PaymentMethod:    string(sub.Method),
		Address:          sub.Address,
		DeliveryLocation: sub.Location,
	}

	if err := c.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	provider, err := c.providers.Provider(sub.Method)
	if err != nil {
		return &Result{Order: o}, fmt.Errorf("load payment provider: %w", err)
	}

	req := payment.Request{
		OrderID:  o.ID,
		Amount:   o.Total,
		Currency: c.currency,
	}
	if user, ok := c.sessions.CurrentUser(); ok {
		req.CustomerName = user.Name
		req.CustomerEmail = user.Email
		req.CustomerPhone = user.Phone
	}

	if sub.Method == payment.MethodOnline {
		// Payment status marks the hand-off to the gateway. It is recorded
		// before the callbacks are armed: a success landing during Init must
		// stay the last write. The cart is NOT cleared until that callback.
		if updated, err := c.orders.UpdatePayment(ctx, o.ID, order.PaymentInitiated, "", ""); err == nil {
			o = updated
		} else {
			log.Printf("[Checkout] Failed to mark payment initiated for order %s: %v", o.ID, err)
		}
		c.store.CacheOrder(*o)
	}

	if err := provider.Init(ctx, req, c.callbacks(sub.Method, o)); err != nil {
		// Order survives in its recorded state; the cart is preserved for retry.
		return &Result{Order: o}, fmt.Errorf("initialize payment gateway: %w", err)
	}

	if sub.Method == payment.MethodOnline {
		return &Result{Order: o, AwaitingPayment: true}, nil
	}

	return &Result{Order: o}, nil
}

// callbacks arms the gateway contract for one order. On the cash path the
// success callback runs synchronously inside Submit.
func (c *Orchestrator) callbacks(method payment.Method, o *order.Order) payment.Callbacks {
	if method == payment.MethodCOD {
		return payment.Callbacks{
			OnSuccess: func(ctx context.Context, _ string) error {
				c.store.ClearCart()
				c.store.CacheOrder(*o)
				return nil
			},
		}
	}

	orderID := o.ID
	return payment.Callbacks{
		OnSuccess: func(ctx context.Context, paymentID string) error {
			updated, err := c.orders.UpdatePayment(ctx, orderID, order.PaymentSuccess, paymentID, order.StatusProcessing)
			if err != nil {
				return err
			}
			c.store.ClearCart()
			c.store.CacheOrder(*updated)
			return nil
		},
		OnFailure: func(ctx context.Context, reason string) error {
			log.Printf("[Checkout] Payment failed for order %s: %s", orderID, reason)
			updated, err := c.orders.UpdatePayment(ctx, orderID, order.PaymentFailed, "", order.StatusCancelled)
			if err != nil {
				return err
			}
			// Cart is deliberately preserved so the user can retry.
			c.store.CacheOrder(*updated)
			return nil
		},
		OnDismiss: func(ctx context.Context) error {
			updated, err := c.orders.UpdatePayment(ctx, orderID, order.PaymentCancelled, "", "")
			if err != nil {
				return err
			}
			c.store.CacheOrder(*updated)
			return nil
		},
	}
}

func orderItems(snapshot cart.Cart) []order.Item {
	items := make([]order.Item, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, order.Item{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		})
	}
	return items
}
