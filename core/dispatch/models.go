package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leofalp/aibridge/providers/ai"
)

// Models returns the model list for one provider, freshest first according
// to the provider's own CompareModels ordering. It tries a remote refresh
// and falls back to the statically configured list when the refresh fails;
// a refresh failure is never surfaced to the caller.
//
// Concurrent calls for the same provider are coalesced into a single remote
// fetch.
func (d *Dispatcher) Models(ctx context.Context, providerID string) ([]string, error) {
	provider, ok := d.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, providerID)
	}

	fetched, err, _ := d.modelsGroup.Do(providerID, func() (any, error) {
		return provider.FetchModels(ctx)
	})

	var models []string
	if err != nil || fetched == nil {
		if err != nil {
			slog.Warn("remote model refresh failed, using static list", "provider", providerID, "error", err.Error())
		}
		models = staticModels(provider.Descriptor())
	} else {
		models = append([]string(nil), fetched.([]string)...)
	}

	sort.SliceStable(models, func(a, b int) bool {
		return provider.CompareModels(models[a], models[b]) < 0
	})
	return models, nil
}

// staticModels flattens the descriptor's per-capability model lists into a
// deduplicated slice.
func staticModels(desc ai.Descriptor) []string {
	seen := map[string]bool{}
	var models []string
	for _, cap := range ai.AllCapabilities() {
		for _, m := range desc.Models[cap] {
			if !seen[m] {
				seen[m] = true
				models = append(models, m)
			}
		}
	}
	return models
}
