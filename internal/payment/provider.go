// Package payment collapses the gateway integrations behind one capability
// contract: a provider is initialized with an order and yields
// success/failure/dismiss callbacks. The method selected at checkout picks
// the provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type Method string

const (
	// MethodOnline routes through the hosted gateway.
	MethodOnline Method = "online"
	// MethodCOD is cash on delivery; it completes immediately.
	MethodCOD Method = "cod"
)

var ErrUnknownMethod = errors.New("unknown payment method")

// ValidMethod reports whether m is one of the selectable methods.
func ValidMethod(m Method) bool {
	return m == MethodOnline || m == MethodCOD
}

// Request hands the provider everything it needs to take a payment.
type Request struct {
	OrderID       string
	Amount        int // smallest currency unit
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Callbacks is the gateway callback contract. Exactly one of the three fires
// per initialized payment.
type Callbacks struct {
	OnSuccess func(ctx context.Context, paymentID string) error
	OnFailure func(ctx context.Context, reason string) error
	OnDismiss func(ctx context.Context) error
}

// Provider is a payment path. Init registers the order with the gateway and
// arms the callbacks; for synchronous providers (cash on delivery) the
// success callback fires before Init returns.
type Provider interface {
	Method() Method
	Init(ctx context.Context, req Request, cb Callbacks) error
}

// Registry constructs providers lazily and exactly once per method, so
// repeated initialization requests are deduplicated the way repeated SDK
// loads are.
type Registry struct {
	mu        sync.Mutex
	factories map[Method]func() Provider
	loaded    map[Method]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Method]func() Provider),
		loaded:    make(map[Method]Provider),
	}
}

// Register installs a factory for a method. Later registrations for the same
// method replace earlier ones until the provider has been loaded.
func (r *Registry) Register(method Method, factory func() Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[method] = factory
}

// Provider returns the provider for a method, constructing it on first use.
func (r *Registry) Provider(method Method) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.loaded[method]; ok {
		return p, nil
	}
	factory, ok := r.factories[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	p := factory()
	r.loaded[method] = p
	return p, nil
}
