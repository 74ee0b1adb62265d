package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGatewayCreateOrder(t *testing.T) {
	g := NewMockGateway()

	o, err := g.CreateOrder(context.Background(), 1000_00, "", "PG-7K3MQ2XWZ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(o.ID, "order_"))
	assert.Equal(t, uint32(1000_00), o.AmountCents)
	assert.Equal(t, "INR", o.Currency) // default currency
	assert.Equal(t, "PG-7K3MQ2XWZ", o.Receipt)

	o2, err := g.CreateOrder(context.Background(), 50, "EUR", "PG-AAAA")
	require.NoError(t, err)
	assert.Equal(t, "EUR", o2.Currency)
	assert.NotEqual(t, o.ID, o2.ID)
}

func TestMockGatewayVerifyAlwaysSucceeds(t *testing.T) {
	g := NewMockGateway()
	assert.NoError(t, g.VerifyPayment(context.Background(), "order_x", "pay_y"))
}
