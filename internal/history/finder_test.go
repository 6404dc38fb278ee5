package history

import (
	"context"
	"testing"

	"costwise/internal/similarity"
	"costwise/internal/store"
	"costwise/internal/types"
)

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Name() string { return "stub" }
func (s *stubEmbedder) Close() error { return nil }
func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 1}, nil
}

func TestFindSimilarBySimilarity(t *testing.T) {
	st := store.NewEmptyMemoryStore()
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"chocolate wafer": {1, 0},
	}}
	f := NewFinder(st, embedder, similarity.NewMemoryIndex())

	rec := types.HistoricalCostRecord{ProductName: "Choco Bar", ProductDescription: "wafer bar", TotalCost: 0.4}
	embedder.vectors[rec.ProductName+" "+rec.ProductDescription] = []float32{0.9, 0.1}
	f.IndexRecord(context.Background(), rec)

	got := f.FindSimilar(context.Background(), "chocolate wafer", 5)
	if len(got) != 1 || got[0].ProductName != "Choco Bar" {
		t.Fatalf("expected similarity hit, got %+v", got)
	}
}

func TestFindSimilarTokenOverlapFallback(t *testing.T) {
	st := store.NewEmptyMemoryStore()
	for _, name := range []string{"Lemon Soda", "Cream Biscuit", "Cotton Shirt"} {
		if _, err := st.SaveHistoricalCost(context.Background(), types.HistoricalCostRecord{
			ProductName:        name,
			ProductDescription: name + " standard pack",
		}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	// No embedder wired; the token tier is the only path.
	f := NewFinder(st, nil, nil)
	got := f.FindSimilar(context.Background(), "biscuit with cream filling", 5)
	if len(got) != 1 || got[0].ProductName != "Cream Biscuit" {
		t.Fatalf("expected token-overlap hit, got %+v", got)
	}
}

func TestFindSimilarRespectsLimit(t *testing.T) {
	st := store.NewEmptyMemoryStore()
	for i := 0; i < 10; i++ {
		if _, err := st.SaveHistoricalCost(context.Background(), types.HistoricalCostRecord{
			ProductName:        "soda",
			ProductDescription: "carbonated soda",
		}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	f := NewFinder(st, nil, nil)
	got := f.FindSimilar(context.Background(), "soda", 3)
	if len(got) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(got))
	}
}

func TestFindSimilarEmptyQuery(t *testing.T) {
	f := NewFinder(store.NewEmptyMemoryStore(), nil, nil)
	if got := f.FindSimilar(context.Background(), "   ", 5); len(got) != 0 {
		t.Fatalf("expected no matches for blank query, got %+v", got)
	}
}
