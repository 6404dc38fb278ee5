package category

import (
	"context"
	"testing"

	"costwise/internal/llmclient"
)

type cannedClient struct {
	text string
	err  error
}

func (c *cannedClient) Name() string { return "canned" }
func (c *cannedClient) Close() error { return nil }
func (c *cannedClient) Complete(context.Context, string, llmclient.CompleteOptions) (string, error) {
	return c.text, c.err
}

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"Food":              "food",
		"Biscuits & Cookies": "biscuits-cookies",
		"  personal   care ": "personal-care",
		"--already--norm--":  "already-norm",
		"":                   "",
	}
	for in, want := range cases {
		if got := NormalizeID(in); got != want {
			t.Fatalf("NormalizeID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveFallsBackToBaseModule(t *testing.T) {
	r := NewResolver(&cannedClient{})
	resolved := r.Resolve("home-care", "")

	// home-care has no dedicated module; the full base prompt set applies.
	prompts := resolved.Prompts
	for name, p := range map[string]string{
		"analysis":          prompts.Analysis,
		"material estimate": prompts.MaterialEstimate,
		"labor estimate":    prompts.LaborEstimate,
		"overhead estimate": prompts.OverheadEstimate,
		"report":            prompts.Report,
	} {
		if p == "" {
			t.Fatalf("missing %s prompt in base fallback", name)
		}
	}
	if resolved.Config.DefaultUnit != "piece" {
		t.Fatalf("unexpected default unit: %q", resolved.Config.DefaultUnit)
	}
}

func TestResolveFieldLevelMerge(t *testing.T) {
	r := NewResolver(&cannedClient{})
	resolved := r.Resolve("food", "biscuits-cookies")

	// Subcategory overrides the material estimate prompt only.
	if resolved.Prompts.MaterialEstimate == baseModule.Prompts.MaterialEstimate {
		t.Fatalf("expected subcategory material estimate override")
	}
	// Analysis comes from the category module, not the subcategory.
	if resolved.Prompts.Analysis != moduleTable["food"].Prompts.Analysis {
		t.Fatalf("expected category analysis prompt")
	}
	// Report is untouched by both overrides and inherits from base.
	if resolved.Prompts.Report != baseModule.Prompts.Report {
		t.Fatalf("expected base report prompt")
	}
	if resolved.Config.DefaultUnit != "kg" || resolved.Config.DefaultQuantity != 0.001 {
		t.Fatalf("unexpected config: %+v", resolved.Config)
	}
	// Overhead range is unset in the food module and inherits from base.
	if resolved.Config.OverheadLow != baseModule.Config.OverheadLow {
		t.Fatalf("expected base overhead range")
	}
}

func TestResolveCachesAndResets(t *testing.T) {
	r := NewResolver(&cannedClient{})
	first := r.Resolve("Food", "Biscuits & Cookies")
	second := r.Resolve("food", "biscuits-cookies")
	if first.Prompts.MaterialEstimate != second.Prompts.MaterialEstimate {
		t.Fatalf("normalized keys should hit the same cache entry")
	}
	if len(r.cache) != 1 {
		t.Fatalf("expected one cache entry, got %d", len(r.cache))
	}
	r.Reset()
	if len(r.cache) != 0 {
		t.Fatalf("expected empty cache after reset")
	}
}

func TestClassifyHappyPath(t *testing.T) {
	client := &cannedClient{text: `prose {"category":"food","subCategory":"snacks","confidence":0.88,"reasoning":"salty"} more`}
	r := NewResolver(client)

	result := r.Classify(context.Background(), "potato chips")
	if result.Category != "food" || result.SubCategory != "snacks" {
		t.Fatalf("unexpected classification: %+v", result)
	}
	if result.Confidence != 0.88 {
		t.Fatalf("unexpected confidence: %f", result.Confidence)
	}
}

func TestClassifyParseFailureIsNonFatal(t *testing.T) {
	r := NewResolver(&cannedClient{text: "no json here"})
	result := r.Classify(context.Background(), "mystery item")
	if result.Category != DefaultCategory {
		t.Fatalf("expected default category, got %q", result.Category)
	}
	if result.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %f", result.Confidence)
	}
}

func TestClassifyUnknownCategoryFallsBack(t *testing.T) {
	r := NewResolver(&cannedClient{text: `{"category":"spaceships","confidence":0.99}`})
	result := r.Classify(context.Background(), "rocket")
	if result.Category != DefaultCategory || result.Confidence != 0.5 {
		t.Fatalf("expected default fallback, got %+v", result)
	}
}

func TestClassifyUnknownSubcategoryDropped(t *testing.T) {
	r := NewResolver(&cannedClient{text: `{"category":"food","subCategory":"rocket-fuel","confidence":0.7}`})
	result := r.Classify(context.Background(), "something edible")
	if result.Category != "food" {
		t.Fatalf("expected food, got %q", result.Category)
	}
	if result.SubCategory != "" {
		t.Fatalf("expected dropped subcategory, got %q", result.SubCategory)
	}
}
