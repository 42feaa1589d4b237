package enums

import "slices"

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregatePayment OutboxAggregateType = "payment"
)

var aggregateTypes = []OutboxAggregateType{AggregateOrder, AggregatePayment}

func (a OutboxAggregateType) IsValid() bool {
	_, err := ParseOutboxAggregateType(string(a))
	return err == nil
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parse("aggregate type", value, aggregateTypes)
}

// OutboxEventType names a domain event written to the outbox. The value is
// also published as the event_type message attribute.
type OutboxEventType string

const (
	EventOrderPlaced      OutboxEventType = "order_placed"
	EventPaymentInitiated OutboxEventType = "payment_initiated"
	EventPaymentConfirmed OutboxEventType = "payment_confirmed"
)

var eventTypes = []OutboxEventType{EventOrderPlaced, EventPaymentInitiated, EventPaymentConfirmed}

// OutboxEventTypes lists every event type the services emit.
func OutboxEventTypes() []OutboxEventType {
	return slices.Clone(eventTypes)
}

func (e OutboxEventType) IsValid() bool {
	_, err := ParseOutboxEventType(string(e))
	return err == nil
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parse("event type", value, eventTypes)
}
