// Package extract parses the primary analysis response into typed records
// and applies the normalization defaults.
package extract

import (
	"errors"
	"strings"

	"costwise/internal/types"
	"costwise/internal/util/jsonutil"
)

// ErrNoAnalysis indicates the analysis response carried no parseable JSON.
// This is the one extraction failure that is fatal for a request: with no
// components there is nothing to decompose downstream.
var ErrNoAnalysis = errors.New("analysis response contains no parseable JSON")

// ComponentDefaults enumerates every fallback applied during component
// normalization. One table per data shape, so all call sites agree.
type ComponentDefaults struct {
	Name     string
	Material string
	Quantity float64
	Unit     string
}

// DefaultsFor derives the normalization table from the resolved category
// config.
func DefaultsFor(defaultUnit string, defaultQuantity float64) ComponentDefaults {
	d := ComponentDefaults{
		Name:     "Unknown",
		Material: "unknown",
		Quantity: 1,
		Unit:     "piece",
	}
	if defaultUnit != "" {
		d.Unit = defaultUnit
	}
	if defaultQuantity > 0 {
		d.Quantity = defaultQuantity
	}
	return d
}

// AnalysisResult is the typed form of the full analysis response.
type AnalysisResult struct {
	ProductName          string                           `json:"productName"`
	Components           []types.ProductComponent         `json:"-"`
	RawEstimatedUnitCost float64                          `json:"rawEstimatedUnitCost"`
	CostPercentages      types.CostPercentages            `json:"costPercentages"`
	Details              map[string]types.DetailBreakdown `json:"details"`
}

// rawAnalysis defers component decoding so loosely typed fields can be
// coerced rather than rejected.
type rawAnalysis struct {
	ProductName          string                           `json:"productName"`
	Components           []map[string]any                 `json:"components"`
	RawEstimatedUnitCost any                              `json:"rawEstimatedUnitCost"`
	CostPercentages      types.CostPercentages            `json:"costPercentages"`
	Details              map[string]types.DetailBreakdown `json:"details"`
}

// Analysis extracts and normalizes the full analysis JSON from text.
func Analysis(text string, defaults ComponentDefaults) (AnalysisResult, error) {
	var raw rawAnalysis
	if !jsonutil.Extract(text, jsonutil.ShapeObject, &raw) {
		return AnalysisResult{}, ErrNoAnalysis
	}

	out := AnalysisResult{
		ProductName:     raw.ProductName,
		CostPercentages: raw.CostPercentages,
		Details:         raw.Details,
	}
	if cost, ok := jsonutil.Number(raw.RawEstimatedUnitCost); ok {
		out.RawEstimatedUnitCost = cost
	}
	out.Components = make([]types.ProductComponent, 0, len(raw.Components))
	for _, item := range raw.Components {
		out.Components = append(out.Components, NormalizeComponent(item, defaults))
	}
	return out, nil
}

// NormalizeComponent applies the defaulting rules to one loosely typed
// component record.
func NormalizeComponent(item map[string]any, defaults ComponentDefaults) types.ProductComponent {
	comp := types.ProductComponent{
		Name:     defaults.Name,
		Material: defaults.Material,
		Quantity: defaults.Quantity,
		Unit:     defaults.Unit,
	}
	if name, ok := item["name"].(string); ok && strings.TrimSpace(name) != "" {
		comp.Name = strings.TrimSpace(name)
	}
	if material, ok := item["material"].(string); ok && strings.TrimSpace(material) != "" {
		comp.Material = strings.ToLower(strings.TrimSpace(material))
	}
	if qty, ok := jsonutil.Number(item["quantity"]); ok && qty > 0 {
		comp.Quantity = qty
	}
	if unit, ok := item["unit"].(string); ok && strings.TrimSpace(unit) != "" {
		comp.Unit = strings.ToLower(strings.TrimSpace(unit))
	}
	return comp
}
