package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"order-amendment-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderAmended publishes OrderAmended event
func (ep *EventPublisher) PublishOrderAmended(ctx context.Context, event *models.OrderAmendedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onCatalogUpdated func(context.Context, *models.CatalogUpdatedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnCatalogUpdated registers a handler for CatalogUpdated events
func (eh *EventHandler) OnCatalogUpdated(handler func(context.Context, *models.CatalogUpdatedEvent) error) {
	eh.onCatalogUpdated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeCatalogUpdated:
		if eh.onCatalogUpdated != nil {
			var event models.CatalogUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CatalogUpdated event: %w", err)
			}
			return eh.onCatalogUpdated(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
