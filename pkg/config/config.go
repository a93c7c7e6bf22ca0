package config

import "github.com/AccelByte/extend-rpg-localserver/pkg/domain"

// Catalog is the static game data loaded from the catalog file (JSON or YAML).
// It is parsed and validated once during startup and treated as read-only afterwards.
type Catalog struct {
	Stages   []*domain.StageDefinition   `json:"stages" yaml:"stages"`
	Products []*domain.ProductDefinition `json:"products" yaml:"products"`
	Events   []*domain.EventDefinition   `json:"events" yaml:"events"`
}
