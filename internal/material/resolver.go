// Package material turns an extracted component list into priced line items
// through a tiered lookup: catalog, similarity index, one batched reasoning
// estimate, and finally a fixed fallback price.
package material

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"costwise/internal/llm"
	"costwise/internal/llmclient"
	"costwise/internal/logging"
	"costwise/internal/similarity"
	"costwise/internal/store"
	"costwise/internal/types"
	"costwise/internal/util/jsonutil"
)

const (
	// SimilarityThreshold is the minimum score for accepting the top
	// similarity hit.
	SimilarityThreshold = 0.6

	// DefaultFallbackPrice guards against the reasoning service silently
	// omitting entries from the batch estimate.
	DefaultFallbackPrice = 1.0
	DefaultFallbackUnit  = "unit"
)

// Resolver prices components. Embedder and Index are optional; when either is
// nil the similarity tier is skipped.
type Resolver struct {
	Store    store.Store
	Embedder similarity.Embedder
	Index    similarity.Index
	Client   llmclient.ReasoningClient

	FallbackPrice float64
	FallbackUnit  string
}

// Result is the priced component list. MaterialsTotal is the exact sum of
// the resolved items, never independently estimated.
type Result struct {
	MaterialCosts  []types.MaterialCostItem `json:"materialCosts"`
	MaterialsTotal float64                  `json:"materialsTotal"`
}

// estimateEntry is one row of the batch-estimate response.
type estimateEntry struct {
	Name         string  `json:"name"`
	Material     string  `json:"material"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Unit         string  `json:"unit"`
}

// Resolve prices every component. Per component the first successful tier
// wins; a component that misses every tier is priced at the fixed fallback
// and logged, never dropped.
func (r *Resolver) Resolve(ctx context.Context, components []types.ProductComponent, estimatePrompt string) (Result, error) {
	items := make([]types.MaterialCostItem, len(components))
	var unresolved []int

	for i, comp := range components {
		if item, ok := r.fromCatalog(ctx, comp); ok {
			items[i] = item
			continue
		}
		if item, ok := r.fromSimilarity(ctx, comp); ok {
			items[i] = item
			continue
		}
		unresolved = append(unresolved, i)
	}

	// One reasoning call for everything tiers 1-2 missed, to bound
	// cost and latency.
	var estimates []estimateEntry
	if len(unresolved) > 0 {
		estimates = r.batchEstimate(ctx, components, unresolved, estimatePrompt)
	}
	for _, i := range unresolved {
		comp := components[i]
		if entry, ok := matchEstimate(estimates, comp); ok {
			items[i] = priced(comp, entry.PricePerUnit, nonEmpty(entry.Unit, comp.Unit), "estimate")
			continue
		}
		fallbackPrice := r.FallbackPrice
		if fallbackPrice <= 0 {
			fallbackPrice = DefaultFallbackPrice
		}
		logging.Warn("material resolution gap, fixed fallback applied",
			zap.String("component", comp.Name),
			zap.String("material", comp.Material))
		items[i] = priced(comp, fallbackPrice, nonEmpty(r.FallbackUnit, DefaultFallbackUnit), "fallback")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.TotalCost))
	}
	return Result{MaterialCosts: items, MaterialsTotal: total.InexactFloat64()}, nil
}

func (r *Resolver) fromCatalog(ctx context.Context, comp types.ProductComponent) (types.MaterialCostItem, bool) {
	price, ok, err := r.Store.FindMaterialPrice(ctx, comp.Material)
	if err != nil {
		logging.Warn("catalog lookup failed", zap.String("material", comp.Material), zap.Error(err))
		return types.MaterialCostItem{}, false
	}
	if !ok {
		return types.MaterialCostItem{}, false
	}
	return priced(comp, price.PricePerUnit, nonEmpty(price.Unit, comp.Unit), "catalog"), true
}

func (r *Resolver) fromSimilarity(ctx context.Context, comp types.ProductComponent) (types.MaterialCostItem, bool) {
	if r.Embedder == nil || r.Index == nil {
		return types.MaterialCostItem{}, false
	}
	vector, err := r.Embedder.Embed(ctx, comp.Material)
	if err != nil {
		logging.Warn("embedding failed", zap.String("material", comp.Material), zap.Error(err))
		return types.MaterialCostItem{}, false
	}
	matches, err := r.Index.Search(ctx, vector, similarity.SearchOptions{Threshold: SimilarityThreshold, Limit: 1})
	if err != nil || len(matches) == 0 {
		return types.MaterialCostItem{}, false
	}
	price, ok := matches[0].Item.(types.MaterialPrice)
	if !ok {
		return types.MaterialCostItem{}, false
	}
	return priced(comp, price.PricePerUnit, nonEmpty(price.Unit, comp.Unit), "similarity"), true
}

// batchEstimate issues the single reasoning call for all unresolved
// components. Failures here are non-fatal; callers fall through to the fixed
// fallback.
func (r *Resolver) batchEstimate(ctx context.Context, components []types.ProductComponent, unresolved []int, prompt string) []estimateEntry {
	if r.Client == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nItems:\n")
	for _, i := range unresolved {
		comp := components[i]
		fmt.Fprintf(&b, "- name: %s, material: %s, unit: %s\n", comp.Name, comp.Material, comp.Unit)
	}

	ctx = llm.WithStage(ctx, "material_estimate")
	text, err := r.Client.Complete(ctx, b.String(), llmclient.CompleteOptions{MaxTokens: 1024})
	if err != nil {
		logging.Warn("batch material estimate failed", zap.Int("items", len(unresolved)), zap.Error(err))
		return nil
	}

	var entries []estimateEntry
	if !jsonutil.Extract(text, jsonutil.ShapeArray, &entries) {
		logging.Warn("batch material estimate not parseable", zap.Int("responseLen", len(text)))
		return nil
	}
	return entries
}

// matchEstimate finds the response row for comp: exact name, then exact
// material, then a case-insensitive scan over both. First match in that
// precedence order wins.
func matchEstimate(entries []estimateEntry, comp types.ProductComponent) (estimateEntry, bool) {
	for _, e := range entries {
		if e.Name == comp.Name && e.PricePerUnit > 0 {
			return e, true
		}
	}
	for _, e := range entries {
		if e.Material == comp.Material && e.PricePerUnit > 0 {
			return e, true
		}
	}
	for _, e := range entries {
		if e.PricePerUnit <= 0 {
			continue
		}
		if strings.EqualFold(e.Name, comp.Name) || strings.EqualFold(e.Material, comp.Material) {
			return e, true
		}
	}
	return estimateEntry{}, false
}

func priced(comp types.ProductComponent, pricePerUnit float64, unit, source string) types.MaterialCostItem {
	total := decimal.NewFromFloat(comp.Quantity).
		Mul(decimal.NewFromFloat(pricePerUnit)).
		Round(4)
	return types.MaterialCostItem{
		Component:    comp.Name,
		Material:     comp.Material,
		Quantity:     comp.Quantity,
		Unit:         unit,
		PricePerUnit: pricePerUnit,
		TotalCost:    total.InexactFloat64(),
		Source:       source,
	}
}

func nonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
