package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"charm.land/catwalk/pkg/catwalk"
)

var (
	providersCache []catwalk.Provider
	providersMu    sync.RWMutex
	cacheLoaded    bool
)

// GetProviders returns the provider catalog from catwalk.
// It caches the result after first fetch.
func GetProviders(ctx context.Context) ([]catwalk.Provider, error) {
	providersMu.RLock()
	if cacheLoaded {
		defer providersMu.RUnlock()
		return providersCache, nil
	}
	providersMu.RUnlock()

	providersMu.Lock()
	defer providersMu.Unlock()

	if cacheLoaded {
		return providersCache, nil
	}

	client := catwalk.New()
	providers, err := client.GetProviders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch providers from catwalk: %w", err)
	}

	providersCache = providers
	cacheLoaded = true
	return providers, nil
}

// ListModels returns the catalog models, optionally restricted to one provider.
func ListModels(ctx context.Context, providerID string) ([]ModelInfo, error) {
	providers, err := GetProviders(ctx)
	if err != nil {
		return nil, err
	}
	models := modelInfos(providers, providerID)
	if providerID != "" && len(models) == 0 {
		return nil, fmt.Errorf("provider %q not found in catalog", providerID)
	}
	return models, nil
}

// modelInfos flattens the catalog, sorted by provider then model ID.
func modelInfos(providers []catwalk.Provider, providerID string) []ModelInfo {
	var models []ModelInfo
	for _, p := range providers {
		if providerID != "" && string(p.ID) != providerID {
			continue
		}
		for _, m := range p.Models {
			models = append(models, ModelInfo{
				ID:             m.ID,
				Name:           m.Name,
				Provider:       string(p.ID),
				ContextWindow:  m.ContextWindow,
				CostPer1MIn:    m.CostPer1MIn,
				CostPer1MOut:   m.CostPer1MOut,
				CanReason:      m.CanReason,
				SupportsImages: m.SupportsImages,
			})
		}
	}
	sort.SliceStable(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].ID < models[j].ID
	})
	return models
}

// ModelInfo is a simplified model representation for listing.
type ModelInfo struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Provider       string  `json:"provider" yaml:"provider"`
	ContextWindow  int64   `json:"context_window" yaml:"context_window"`
	CostPer1MIn    float64 `json:"cost_per_1m_in" yaml:"cost_per_1m_in"`
	CostPer1MOut   float64 `json:"cost_per_1m_out" yaml:"cost_per_1m_out"`
	CanReason      bool    `json:"can_reason" yaml:"can_reason"`
	SupportsImages bool    `json:"supports_images" yaml:"supports_images"`
}
