package extract

import (
	"errors"
	"testing"
)

func TestAnalysisExtraction(t *testing.T) {
	text := `Some preamble from the model.
{
  "productName": "Choco Biscuit",
  "components": [
    {"name": "Flour", "material": "Wheat Flour", "quantity": 0.05, "unit": "KG"},
    {"material": "sugar", "quantity": "0.02"},
    {}
  ],
  "rawEstimatedUnitCost": "0.4",
  "costPercentages": {"rawMaterial":0.5,"conversion":0.2,"labour":0.1,"packing":0.1,"overhead":0.05,"margin":0.05}
}`
	defaults := DefaultsFor("kg", 0.001)
	result, err := Analysis(text, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProductName != "Choco Biscuit" {
		t.Fatalf("unexpected product name: %q", result.ProductName)
	}
	if result.RawEstimatedUnitCost != 0.4 {
		t.Fatalf("expected coerced unit cost 0.4, got %f", result.RawEstimatedUnitCost)
	}
	if len(result.Components) != 3 {
		t.Fatalf("expected 3 components, got %d", len(result.Components))
	}

	first := result.Components[0]
	if first.Material != "wheat flour" || first.Unit != "kg" {
		t.Fatalf("expected lowercased material and unit: %+v", first)
	}

	second := result.Components[1]
	if second.Name != "Unknown" {
		t.Fatalf("expected default name, got %q", second.Name)
	}
	if second.Quantity != 0.02 {
		t.Fatalf("expected coerced string quantity, got %f", second.Quantity)
	}

	empty := result.Components[2]
	if empty.Material != "unknown" || empty.Quantity != 0.001 || empty.Unit != "kg" {
		t.Fatalf("defaults not applied: %+v", empty)
	}
}

func TestAnalysisFatalOnNoJSON(t *testing.T) {
	_, err := Analysis("the model refused to answer", DefaultsFor("", 0))
	if !errors.Is(err, ErrNoAnalysis) {
		t.Fatalf("expected ErrNoAnalysis, got %v", err)
	}
}

func TestNormalizeComponentZeroQuantity(t *testing.T) {
	comp := NormalizeComponent(map[string]any{"name": "Cap", "quantity": 0.0}, DefaultsFor("piece", 1))
	if comp.Quantity != 1 {
		t.Fatalf("non-positive quantity should fall back to default, got %f", comp.Quantity)
	}
}

func TestDefaultsForFallbacks(t *testing.T) {
	d := DefaultsFor("", 0)
	want := ComponentDefaults{Name: "Unknown", Material: "unknown", Quantity: 1, Unit: "piece"}
	if d != want {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}
