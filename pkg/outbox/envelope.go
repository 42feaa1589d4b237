package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event sources recorded on ActorRef.
const (
	SourceStorefront = "storefront"
	SourceGateway    = "gateway"
	SourceCron       = "cron"
)

// ActorRef identifies who produced the event. UserID is the storefront's
// opaque customer id and may be empty for gateway or cron driven events.
type ActorRef struct {
	UserID string `json:"userId,omitempty"`
	Source string `json:"source"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored outbox payload.
func DecodeEnvelope(payload []byte) (PayloadEnvelope, error) {
	var envelope PayloadEnvelope
	err := json.Unmarshal(payload, &envelope)
	return envelope, err
}

func newEnvelope(event DomainEvent) (PayloadEnvelope, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return PayloadEnvelope{}, fmt.Errorf("marshal %s payload: %w", event.EventType, err)
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt.UTC(),
		Actor:      event.Actor,
		Data:       data,
	}
	if envelope.Version == 0 {
		envelope.Version = envelopeVersion
	}
	if event.OccurredAt.IsZero() {
		envelope.OccurredAt = time.Now().UTC()
	}
	return envelope, nil
}
