package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("Success")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, status)

	_, err = ParsePaymentStatus("success")
	assert.Error(t, err, "status values are case sensitive")
}

func TestOutboxEnums(t *testing.T) {
	assert.True(t, EventPaymentConfirmed.IsValid())
	assert.False(t, OutboxEventType("order_created").IsValid())

	agg, err := ParseOutboxAggregateType("payment")
	require.NoError(t, err)
	assert.Equal(t, AggregatePayment, agg)

	_, err = ParseOutboxEventType("nope")
	assert.Error(t, err)
}

func TestParseErrorNamesKind(t *testing.T) {
	_, err := ParsePaymentStatus("Refunded")
	require.Error(t, err)
	assert.Equal(t, `invalid payment status "Refunded"`, err.Error())
	assert.False(t, PaymentStatus("").IsValid())
	assert.True(t, PaymentStatusPending.IsValid())
}
