package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
)

// CatalogLoader loads and validates the game catalog from a JSON or YAML file.
// The file extension selects the decoder.
type CatalogLoader struct {
	catalogPath string
	validator   *Validator
	logger      *slog.Logger
}

// NewCatalogLoader creates a new CatalogLoader instance.
//
// Parameters:
//   - catalogPath: Path to the catalog file (.json, .yaml or .yml)
//   - logger: Structured logger for operational logging
func NewCatalogLoader(catalogPath string, logger *slog.Logger) *CatalogLoader {
	return &CatalogLoader{
		catalogPath: catalogPath,
		validator:   NewValidator(),
		logger:      logger,
	}
}

// Path returns the catalog file path.
func (l *CatalogLoader) Path() string {
	return l.catalogPath
}

// LoadCatalog reads, decodes and validates the catalog file.
//
// This is a fail-fast operation: an unreadable or invalid catalog prevents
// startup, and a failed reload leaves the previous catalog in place.
func (l *CatalogLoader) LoadCatalog() (*Catalog, error) {
	data, err := os.ReadFile(l.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	catalog, err := Decode(data, filepath.Ext(l.catalogPath))
	if err != nil {
		return nil, err
	}

	applyDefaults(catalog)

	if err := l.validator.Validate(catalog); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	l.logger.Info("Catalog loaded successfully",
		"stages", len(catalog.Stages),
		"products", len(catalog.Products),
		"events", len(catalog.Events),
		"catalog_path", l.catalogPath,
	)

	return catalog, nil
}

// Decode parses catalog data in the format named by ext (".json", ".yaml", ".yml").
func Decode(data []byte, ext string) (*Catalog, error) {
	var catalog Catalog

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format '%s' (must be .json, .yaml or .yml)", ext)
	}

	return &catalog, nil
}

// applyDefaults fills fields that older catalog files leave empty.
func applyDefaults(catalog *Catalog) {
	for _, stage := range catalog.Stages {
		if stage.EntryLimitPolicy == "" {
			stage.EntryLimitPolicy = domain.LimitPolicyNone
		}
		if stage.EntryCost.Kind == "" {
			stage.EntryCost.Kind = domain.CurrencyStamina
		}
	}
	for _, product := range catalog.Products {
		if product.LimitPolicy == "" {
			product.LimitPolicy = domain.LimitPolicyNone
		}
		if product.Price.Kind == "" {
			product.Price.Kind = domain.CurrencyGold
		}
	}
	for _, event := range catalog.Events {
		if event.Name == "" {
			event.Name = event.ID
		}
	}
}
