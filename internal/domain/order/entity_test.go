// internal/domain/order/entity_test.go
package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusRefunded, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPaid, OrderStatusProcessing, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusFulfilled, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusFulfilled, true},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusFulfilled, OrderStatusRefunded, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusRefunded, OrderStatusPending, false},
	}

	for _, tc := range cases {
		o := &Order{Status: tc.from}
		assert.Equal(t, tc.allowed, o.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPending}).CanBeCancelled())
	assert.True(t, (&Order{Status: OrderStatusPaid}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusShipped}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusFulfilled}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusCancelled}).CanBeCancelled())
}

func TestNewOrderNumber(t *testing.T) {
	first := NewOrderNumber()
	second := NewOrderNumber()

	assert.True(t, strings.HasPrefix(first, "ORD-"))
	assert.NotEqual(t, first, second)
}

func TestNewPaymentReference(t *testing.T) {
	ref := NewPaymentReference()
	assert.True(t, strings.HasPrefix(ref, "PAY-"))
	assert.NotEqual(t, ref, NewPaymentReference())
}
