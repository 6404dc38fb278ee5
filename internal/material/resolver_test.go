package material

import (
	"context"
	"testing"

	"costwise/internal/llmclient"
	"costwise/internal/similarity"
	"costwise/internal/store"
	"costwise/internal/types"
)

type fixedEmbedder struct {
	vectors map[string][]float32
}

func (f *fixedEmbedder) Name() string { return "fixed" }
func (f *fixedEmbedder) Close() error { return nil }
func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return f.vectors[text], nil
}

type scriptedClient struct {
	text  string
	err   error
	calls int
}

func (c *scriptedClient) Name() string { return "scripted" }
func (c *scriptedClient) Close() error { return nil }
func (c *scriptedClient) Complete(context.Context, string, llmclient.CompleteOptions) (string, error) {
	c.calls++
	return c.text, c.err
}

func TestResolveCatalogTier(t *testing.T) {
	r := &Resolver{Store: store.NewMemoryStore()}
	comps := []types.ProductComponent{
		{Name: "Flour", Material: "wheat flour", Quantity: 0.05, Unit: "kg"},
	}
	result, err := r.Resolve(context.Background(), comps, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.MaterialCosts[0]
	if item.Source != "catalog" {
		t.Fatalf("expected catalog source, got %q", item.Source)
	}
	if item.TotalCost != 0.0275 {
		t.Fatalf("expected 0.05*0.55 rounded, got %f", item.TotalCost)
	}
	if result.MaterialsTotal != 0.0275 {
		t.Fatalf("total must equal sum of items, got %f", result.MaterialsTotal)
	}
}

func TestResolveSimilarityTier(t *testing.T) {
	s := store.NewEmptyMemoryStore()
	catalog := types.MaterialPrice{Name: "maida", PricePerUnit: 0.6, Unit: "kg"}

	ix := similarity.NewMemoryIndex()
	ix.Add("maida", "maida", []float32{1, 0}, catalog)

	r := &Resolver{
		Store:    s,
		Embedder: &fixedEmbedder{vectors: map[string][]float32{"refined flour": {0.95, 0.05}}},
		Index:    ix,
	}
	comps := []types.ProductComponent{
		{Name: "Base", Material: "refined flour", Quantity: 2, Unit: "kg"},
	}
	result, err := r.Resolve(context.Background(), comps, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.MaterialCosts[0]
	if item.Source != "similarity" {
		t.Fatalf("expected similarity source, got %q", item.Source)
	}
	if item.PricePerUnit != 0.6 || item.TotalCost != 1.2 {
		t.Fatalf("unexpected pricing: %+v", item)
	}
}

func TestResolveBatchEstimateMatchPrecedence(t *testing.T) {
	client := &scriptedClient{text: `[
		{"name":"other","material":"exotic resin","pricePerUnit":9.0,"unit":"kg"},
		{"name":"Shell","material":"exotic resin","pricePerUnit":3.5,"unit":"kg"}
	]`}
	r := &Resolver{Store: store.NewEmptyMemoryStore(), Client: client}
	comps := []types.ProductComponent{
		{Name: "Shell", Material: "exotic resin", Quantity: 1, Unit: "kg"},
	}
	result, err := r.Resolve(context.Background(), comps, "estimate prices")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.MaterialCosts[0]
	if item.Source != "estimate" {
		t.Fatalf("expected estimate source, got %q", item.Source)
	}
	// Exact name match wins over the earlier exact material row.
	if item.PricePerUnit != 3.5 {
		t.Fatalf("expected name-matched price 3.5, got %f", item.PricePerUnit)
	}
	if client.calls != 1 {
		t.Fatalf("expected a single batch call, got %d", client.calls)
	}
}

func TestResolveBatchEstimateCaseInsensitiveFallback(t *testing.T) {
	client := &scriptedClient{text: `[{"name":"SHELL","material":"Exotic Resin","pricePerUnit":2.0,"unit":"kg"}]`}
	r := &Resolver{Store: store.NewEmptyMemoryStore(), Client: client}
	comps := []types.ProductComponent{
		{Name: "Shell", Material: "exotic resin", Quantity: 3, Unit: "kg"},
	}
	result, err := r.Resolve(context.Background(), comps, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MaterialCosts[0].PricePerUnit != 2.0 {
		t.Fatalf("expected case-insensitive match, got %+v", result.MaterialCosts[0])
	}
}

func TestResolveFixedFallback(t *testing.T) {
	// No catalog hit, no similarity wiring, unparseable estimate response.
	client := &scriptedClient{text: "the model rambled with no JSON"}
	r := &Resolver{Store: store.NewEmptyMemoryStore(), Client: client}
	comps := []types.ProductComponent{
		{Name: "Mystery", Material: "unobtainium", Quantity: 2.5, Unit: "kg"},
	}
	result, err := r.Resolve(context.Background(), comps, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.MaterialCosts[0]
	if item.Source != "fallback" {
		t.Fatalf("expected fallback source, got %q", item.Source)
	}
	if item.PricePerUnit != DefaultFallbackPrice || item.Unit != DefaultFallbackUnit {
		t.Fatalf("unexpected fallback pricing: %+v", item)
	}
	if item.TotalCost != 2.5 {
		t.Fatalf("expected quantity*fallback, got %f", item.TotalCost)
	}
}

func TestResolveSkipsNonPositiveEstimates(t *testing.T) {
	client := &scriptedClient{text: `[{"name":"Cap","material":"hdpe cap","pricePerUnit":0,"unit":"kg"}]`}
	r := &Resolver{Store: store.NewEmptyMemoryStore(), Client: client}
	comps := []types.ProductComponent{
		{Name: "Cap", Material: "hdpe cap", Quantity: 1, Unit: "piece"},
	}
	result, err := r.Resolve(context.Background(), comps, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MaterialCosts[0].Source != "fallback" {
		t.Fatalf("zero-priced estimate must not be accepted: %+v", result.MaterialCosts[0])
	}
}
