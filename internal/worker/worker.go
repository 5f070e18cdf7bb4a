package worker

import (
	"context"
	"log"

	"order-amendment-service/internal/broker"
	"order-amendment-service/internal/models"
	"order-amendment-service/internal/service"
)

// CatalogWorker invalidates cached normalized catalogs when the catalog
// provider publishes menu changes.
type CatalogWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer *broker.Consumer, catalogService *service.CatalogService) *CatalogWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnCatalogUpdated(func(ctx context.Context, event *models.CatalogUpdatedEvent) error {
		return catalogService.InvalidateCatalog(ctx, event.CafeID)
	})

	return &CatalogWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *CatalogWorker) Start(ctx context.Context) error {
	log.Println("Starting catalog worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CatalogWorker) Stop() error {
	log.Println("Stopping catalog worker...")
	return w.consumer.Close()
}
