package cache

import "github.com/AccelByte/extend-rpg-localserver/pkg/domain"

// CatalogCache provides O(1) in-memory lookups for catalog definitions.
// It is built at startup from the catalog file; all lookups are read-only
// and thread-safe. It satisfies the stage, product and event catalog
// interfaces consumed by the request handlers.
type CatalogCache interface {
	// GetStageByID retrieves a stage by its unique ID.
	// Returns nil if the stage does not exist.
	GetStageByID(stageID string) *domain.StageDefinition

	// GetProductByID retrieves a shop product by its unique ID.
	// Returns nil if the product does not exist.
	GetProductByID(productID string) *domain.ProductDefinition

	// GetEventByID retrieves an event by its unique ID.
	// Returns nil if the event does not exist.
	GetEventByID(eventID string) *domain.EventDefinition

	// GetAllStages returns all stages in catalog file order.
	GetAllStages() []*domain.StageDefinition

	// GetAllProducts returns all products in catalog file order.
	GetAllProducts() []*domain.ProductDefinition

	// GetAllEvents returns all events in catalog file order.
	GetAllEvents() []*domain.EventDefinition

	// Reload rebuilds the cache from the catalog file.
	// On error the previous catalog stays in place.
	Reload() error
}
