package order

import (
	"time"

	"github.com/example/storefront/internal/geocode"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Steps is the canonical forward ladder shown by the tracking view.
// StatusCancelled sits outside the ladder as a side exit from pending.
var Steps = []Status{StatusPending, StatusProcessing, StatusOutForDelivery, StatusDelivered}

// StepUnknown is the step index for statuses outside the canonical set. The
// tracker renders a fallback state for it instead of crashing.
const StepUnknown = -1

// StepIndex locates a status on the ladder. Cancelled and unrecognized
// statuses return StepUnknown.
func StepIndex(s Status) int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return StepUnknown
}

// Valid reports whether the status belongs to the canonical set, cancelled
// included.
func (s Status) Valid() bool {
	return s == StatusCancelled || StepIndex(s) != StepUnknown
}

// validTransitions defines the allowed remote-side transitions. The tracker
// never enforces these; only the writers (payment webhook, fulfillment,
// admin) do.
var validTransitions = map[Status][]Status{
	StatusPending:        {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {}, // terminal
	StatusCancelled:      {}, // terminal
}

// CanTransition checks whether from may move to target.
func CanTransition(from, target Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "initiated"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Item is a line item with the price copied at order time, so later catalog
// price changes never affect placed orders.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
}

// Order is the server-authoritative purchase record. Version increases by one
// on every remote write; pushed snapshots carry it so stale deliveries can be
// dropped.
type Order struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Items            []Item          `json:"items"`
	Total            int             `json:"total"`
	Status           Status          `json:"status"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    PaymentStatus   `json:"payment_status,omitempty"`
	PaymentID        string          `json:"payment_id,omitempty"`
	Address          string          `json:"address"`
	DeliveryLocation *geocode.LatLng `json:"delivery_location,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ItemTotal recomputes the sum of line item price times quantity. At creation
// time it must equal Total; it is not re-validated afterward.
func (o *Order) ItemTotal() int {
	var total int
	for _, item := range o.Items {
		total += item.Price * item.Quantity
	}
	return total
}
