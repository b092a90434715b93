package chatreply

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/models/*.yaml
var embeddedCatalogs embed.FS

// Catalog Philosophy:
//
// The model catalog is MODEL METADATA for context budgeting, UI listings and
// advisory warnings. It does NOT enforce validation - provider APIs are the
// source of truth, and models missing from the catalog are still sent as-is.
//
// Library users can override embedded catalogs by:
//  1. Calling LoadCatalogFromFile() with custom YAML
//  2. Calling RegisterProviderCatalog() programmatically

// ProviderCatalog represents the full model catalog for a provider
type ProviderCatalog struct {
	Version     string               `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated string               `yaml:"last_updated"` // ISO 8601 date (e.g., "2025-01-15")
	Provider    ProviderID           `yaml:"provider"`
	Models      map[string]ModelInfo `yaml:"models"`
	Constraints ProviderConstraints  `yaml:"constraints"`
}

// ModelInfo describes a specific model
type ModelInfo struct {
	DisplayName     string        `yaml:"display_name"`
	ContextWindow   int           `yaml:"context_window"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Features        ModelFeatures `yaml:"features"`
}

// ModelFeatures indicates which features a model supports
type ModelFeatures struct {
	Vision    bool `yaml:"vision"`
	Streaming bool `yaml:"streaming"`
}

// ProviderConstraints defines provider-wide parameter limits and requirements
type ProviderConstraints struct {
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	TopPMin        float64 `yaml:"top_p_min"`
	TopPMax        float64 `yaml:"top_p_max"`
	RequiresAPIKey bool    `yaml:"requires_api_key"`
	RequiresHost   bool    `yaml:"requires_host"`
}

// CatalogRegistry manages provider model catalogs
type CatalogRegistry struct {
	catalogs map[ProviderID]*ProviderCatalog
	mu       sync.RWMutex
}

var (
	globalCatalog     *CatalogRegistry
	globalCatalogOnce sync.Once
)

// GetCatalogRegistry returns the global catalog registry (singleton)
func GetCatalogRegistry() *CatalogRegistry {
	globalCatalogOnce.Do(func() {
		globalCatalog = NewCatalogRegistry()
		if err := globalCatalog.loadEmbedded(); err != nil {
			// Don't panic - lookups just miss and callers fall back to defaults
			slog.Warn("failed to load embedded model catalogs", "error", err)
		}
	})
	return globalCatalog
}

// NewCatalogRegistry creates an empty registry
func NewCatalogRegistry() *CatalogRegistry {
	return &CatalogRegistry{
		catalogs: make(map[ProviderID]*ProviderCatalog),
	}
}

// loadEmbedded loads every embedded YAML catalog
func (r *CatalogRegistry) loadEmbedded() error {
	entries, err := embeddedCatalogs.ReadDir("config/models")
	if err != nil {
		return fmt.Errorf("failed to list embedded catalogs: %w", err)
	}

	for _, entry := range entries {
		data, err := embeddedCatalogs.ReadFile(path.Join("config/models", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read embedded catalog %s: %w", entry.Name(), err)
		}
		if err := r.LoadCatalog(data); err != nil {
			return fmt.Errorf("embedded catalog %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// LoadCatalog parses a YAML catalog and registers it under its provider field
func (r *CatalogRegistry) LoadCatalog(data []byte) error {
	var catalog ProviderCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if catalog.Provider == "" {
		return fmt.Errorf("catalog is missing the provider field")
	}

	r.RegisterProviderCatalog(catalog.Provider, &catalog)
	return nil
}

// LoadCatalogFromFile loads a provider catalog from a YAML file.
// The file format should match the embedded YAML structure.
func (r *CatalogRegistry) LoadCatalogFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}
	return r.LoadCatalog(data)
}

// RegisterProviderCatalog programmatically registers a provider catalog.
func (r *CatalogRegistry) RegisterProviderCatalog(provider ProviderID, catalog *ProviderCatalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs[provider] = catalog
}

// GetProviderCatalog returns the catalog for a provider
func (r *CatalogRegistry) GetProviderCatalog(provider ProviderID) (*ProviderCatalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog, ok := r.catalogs[provider]
	if !ok {
		return nil, fmt.Errorf("no catalog found for provider: %s", provider)
	}
	return catalog, nil
}

// GetModel returns the catalog entry for a specific model
func (r *CatalogRegistry) GetModel(provider ProviderID, model string) (*ModelInfo, error) {
	catalog, err := r.GetProviderCatalog(provider)
	if err != nil {
		return nil, err
	}

	info, ok := catalog.Models[model]
	if !ok {
		return nil, fmt.Errorf("model %s not found for provider %s", model, provider)
	}
	return &info, nil
}

// KnowsModel checks if the catalog lists a model for a provider
func (r *CatalogRegistry) KnowsModel(provider ProviderID, model string) bool {
	_, err := r.GetModel(provider, model)
	return err == nil
}

// SupportsVision checks if a model accepts pictures
func (r *CatalogRegistry) SupportsVision(provider ProviderID, model string) bool {
	info, err := r.GetModel(provider, model)
	if err != nil {
		return false
	}
	return info.Features.Vision
}

// ModelNames returns the catalog's model names for a provider in lexical order
func (r *CatalogRegistry) ModelNames(provider ProviderID) []string {
	catalog, err := r.GetProviderCatalog(provider)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(catalog.Models))
	for name := range catalog.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadCatalogFromFile is a convenience function that calls the global registry's LoadCatalogFromFile.
func LoadCatalogFromFile(filename string) error {
	return GetCatalogRegistry().LoadCatalogFromFile(filename)
}

// RegisterProviderCatalog is a convenience function that calls the global registry's RegisterProviderCatalog.
func RegisterProviderCatalog(provider ProviderID, catalog *ProviderCatalog) {
	GetCatalogRegistry().RegisterProviderCatalog(provider, catalog)
}
