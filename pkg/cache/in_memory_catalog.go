package cache

import (
	"log/slog"
	"sync"

	"github.com/AccelByte/extend-rpg-localserver/pkg/config"
	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
)

// InMemoryCatalog provides O(1) in-memory lookups for catalog definitions.
// Indexes are rebuilt as a whole on reload; definitions are never modified.
type InMemoryCatalog struct {
	stagesByID   map[string]*domain.StageDefinition   // "stage-id" -> Stage
	productsByID map[string]*domain.ProductDefinition // "product-id" -> Product
	eventsByID   map[string]*domain.EventDefinition   // "event-id" -> Event
	stages       []*domain.StageDefinition            // All stages (ordered)
	products     []*domain.ProductDefinition          // All products (ordered)
	events       []*domain.EventDefinition            // All events (ordered)
	catalogPath  string                               // Path to catalog file (for reload)
	mu           sync.RWMutex                         // Protects all indexes
	logger       *slog.Logger
}

// NewInMemoryCatalog creates a new cache from a validated catalog.
//
// Parameters:
//   - catalog: Validated catalog containing stages, products and events
//   - catalogPath: Path to the catalog file (used for reload)
//   - logger: Structured logger for operational logging
func NewInMemoryCatalog(catalog *config.Catalog, catalogPath string, logger *slog.Logger) *InMemoryCatalog {
	c := &InMemoryCatalog{
		catalogPath: catalogPath,
		logger:      logger,
	}

	c.buildCache(catalog)

	return c
}

// buildCache replaces all indexes with ones built from catalog.
func (c *InMemoryCatalog) buildCache(catalog *config.Catalog) {
	stagesByID := make(map[string]*domain.StageDefinition, len(catalog.Stages))
	for _, stage := range catalog.Stages {
		stagesByID[stage.ID] = stage
	}
	productsByID := make(map[string]*domain.ProductDefinition, len(catalog.Products))
	for _, product := range catalog.Products {
		productsByID[product.ID] = product
	}
	eventsByID := make(map[string]*domain.EventDefinition, len(catalog.Events))
	for _, event := range catalog.Events {
		eventsByID[event.ID] = event
	}

	c.mu.Lock()
	c.stagesByID = stagesByID
	c.productsByID = productsByID
	c.eventsByID = eventsByID
	c.stages = append([]*domain.StageDefinition(nil), catalog.Stages...)
	c.products = append([]*domain.ProductDefinition(nil), catalog.Products...)
	c.events = append([]*domain.EventDefinition(nil), catalog.Events...)
	c.mu.Unlock()

	c.logger.Info("Catalog cache built successfully",
		"stages", len(stagesByID),
		"products", len(productsByID),
		"events", len(eventsByID),
	)
}

// GetStageByID retrieves a stage by its unique ID.
func (c *InMemoryCatalog) GetStageByID(stageID string) *domain.StageDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stagesByID[stageID]
}

// GetProductByID retrieves a shop product by its unique ID.
func (c *InMemoryCatalog) GetProductByID(productID string) *domain.ProductDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.productsByID[productID]
}

// GetEventByID retrieves an event by its unique ID.
func (c *InMemoryCatalog) GetEventByID(eventID string) *domain.EventDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.eventsByID[eventID]
}

// GetAllStages returns all stages in catalog file order.
// The slice is shared; callers must not modify it.
func (c *InMemoryCatalog) GetAllStages() []*domain.StageDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stages
}

// GetAllProducts returns all products in catalog file order.
func (c *InMemoryCatalog) GetAllProducts() []*domain.ProductDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.products
}

// GetAllEvents returns all events in catalog file order.
func (c *InMemoryCatalog) GetAllEvents() []*domain.EventDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.events
}

// Reload reloads the cache from the catalog file.
//
// Returns:
//   - error: If the catalog file cannot be read or validation fails
func (c *InMemoryCatalog) Reload() error {
	loader := config.NewCatalogLoader(c.catalogPath, c.logger)
	catalog, err := loader.LoadCatalog()
	if err != nil {
		return err
	}

	c.buildCache(catalog)

	c.logger.Info("Catalog cache reloaded successfully")

	return nil
}
