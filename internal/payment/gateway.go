// Package payment defines the payment gateway capability. The shipped
// implementation is a mock that returns canned success responses; a
// real gateway integration only has to satisfy Gateway, nothing in the
// booking core changes.
package payment

import (
	"context"

	"github.com/google/uuid"
)

// Order is a gateway-side payment order awaiting completion by the
// client.
type Order struct {
	ID          string `json:"id"`
	AmountCents uint32 `json:"amount_cents"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
}

// Gateway is the capability interface for an external payment
// provider.
type Gateway interface {
	// CreateOrder registers a payment intent and returns the order the
	// client completes.
	CreateOrder(ctx context.Context, amountCents uint32, currency, receipt string) (*Order, error)
	// VerifyPayment checks a completed payment against its order.
	VerifyPayment(ctx context.Context, orderID, paymentRef string) error
}

// MockGateway answers every call with success. Order ids are random
// UUIDs prefixed like real gateway ids so client flows exercise the
// same shapes they would in production.
type MockGateway struct{}

// NewMockGateway returns the canned-success gateway.
func NewMockGateway() *MockGateway { return &MockGateway{} }

// CreateOrder returns a fresh order with a generated id.
func (g *MockGateway) CreateOrder(_ context.Context, amountCents uint32, currency, receipt string) (*Order, error) {
	if currency == "" {
		currency = "INR"
	}
	return &Order{
		ID:          "order_" + uuid.NewString(),
		AmountCents: amountCents,
		Currency:    currency,
		Receipt:     receipt,
	}, nil
}

// VerifyPayment always succeeds.
func (g *MockGateway) VerifyPayment(_ context.Context, _, _ string) error { return nil }
