package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================
// Step Ladder Tests
// ============================================

func TestStepIndex(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected int
	}{
		{"pending", StatusPending, 0},
		{"processing", StatusProcessing, 1},
		{"out for delivery", StatusOutForDelivery, 2},
		{"delivered", StatusDelivered, 3},
		{"cancelled is off the ladder", StatusCancelled, StepUnknown},
		{"unrecognized status", Status("refunded"), StepUnknown},
		{"empty status", Status(""), StepUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StepIndex(tt.status))
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"pending", StatusPending, true},
		{"processing", StatusProcessing, true},
		{"out for delivery", StatusOutForDelivery, true},
		{"delivered", StatusDelivered, true},
		{"cancelled", StatusCancelled, true},
		{"unrecognized", Status("refunded"), false},
		{"empty", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.Valid())
		})
	}
}

// ============================================
// Transition Tests
// ============================================

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		target  Status
		allowed bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"processing to out for delivery", StatusProcessing, StatusOutForDelivery, true},
		{"out for delivery to delivered", StatusOutForDelivery, StatusDelivered, true},
		{"pending cannot skip to delivered", StatusPending, StatusDelivered, false},
		{"processing cannot cancel", StatusProcessing, StatusCancelled, false},
		{"delivered is terminal", StatusDelivered, StatusProcessing, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"no backward moves", StatusOutForDelivery, StatusProcessing, false},
		{"unknown source", Status("refunded"), StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.target))
		})
	}
}

// ============================================
// Item Total Tests
// ============================================

func TestOrder_ItemTotal(t *testing.T) {
	o := Order{
		Items: []Item{
			{ProductID: "prod-1", Quantity: 2, Price: 1000},
			{ProductID: "prod-2", Quantity: 1, Price: 250},
		},
	}

	assert.Equal(t, 2250, o.ItemTotal())
}

func TestOrder_ItemTotal_NoItems(t *testing.T) {
	var o Order

	assert.Equal(t, 0, o.ItemTotal())
}
