package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

var ErrUnknownPayment = errors.New("no pending payment for order")

// StripeProvider is the online gateway path. Init creates a PaymentIntent
// carrying the order id in its metadata; the gateway reports the outcome
// asynchronously through the webhook, which dispatches to the armed
// callbacks.
type StripeProvider struct {
	apiKey        string
	webhookSecret string

	sdkOnce sync.Once

	mu      sync.Mutex
	pending map[string]Callbacks // order id -> armed callbacks
}

func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	return &StripeProvider{
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		pending:       make(map[string]Callbacks),
	}
}

func (s *StripeProvider) Method() Method {
	return MethodOnline
}

func (s *StripeProvider) Init(ctx context.Context, req Request, cb Callbacks) error {
	// SDK key setup happens once no matter how often a checkout re-inits
	// the gateway.
	s.sdkOnce.Do(func() {
		stripe.Key = s.apiKey
	})

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id":       req.OrderID,
			"customer_name":  req.CustomerName,
			"customer_email": req.CustomerEmail,
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return fmt.Errorf("create payment intent: %w", err)
	}

	s.mu.Lock()
	s.pending[req.OrderID] = cb
	s.mu.Unlock()

	log.Printf("[Stripe] PaymentIntent %s created for order %s (%d %s)", intent.ID, req.OrderID, req.Amount, req.Currency)
	return nil
}

// HandleWebhook verifies a gateway event and fires the matching callback.
// With no webhook secret configured the payload is trusted as-is (test mode).
func (s *StripeProvider) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	var event stripe.Event
	if s.webhookSecret == "" {
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("decode webhook payload: %w", err)
		}
	} else {
		var err error
		event, err = webhook.ConstructEvent(payload, signature, s.webhookSecret)
		if err != nil {
			return fmt.Errorf("verify webhook signature: %w", err)
		}
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("decode payment intent: %w", err)
	}
	orderID := intent.Metadata["order_id"]

	cb, ok := s.take(orderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPayment, orderID)
	}

	var cbErr error
	switch event.Type {
	case "payment_intent.succeeded":
		cbErr = cb.OnSuccess(ctx, intent.ID)
	case "payment_intent.payment_failed":
		reason := "payment failed"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			reason = intent.LastPaymentError.Msg
		}
		cbErr = cb.OnFailure(ctx, reason)
	case "payment_intent.canceled":
		cbErr = cb.OnDismiss(ctx)
	default:
		// Not a terminal outcome; keep the callbacks armed.
		s.rearm(orderID, cb)
		return nil
	}
	if cbErr != nil {
		// Re-arm so the gateway's redelivery of the event can finish the flow.
		s.rearm(orderID, cb)
	}
	return cbErr
}

func (s *StripeProvider) rearm(orderID string, cb Callbacks) {
	s.mu.Lock()
	s.pending[orderID] = cb
	s.mu.Unlock()
}

func (s *StripeProvider) take(orderID string) (Callbacks, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cb, ok := s.pending[orderID]
	if ok {
		delete(s.pending, orderID)
	}
	return cb, ok
}
