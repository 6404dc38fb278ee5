// Package history finds comparable past products for a new estimate.
package history

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"costwise/internal/logging"
	"costwise/internal/similarity"
	"costwise/internal/store"
	"costwise/internal/types"
)

// SimilarityThreshold filters tier-1 matches.
const SimilarityThreshold = 0.5

// DefaultLimit bounds a comparables search when the caller passes none.
const DefaultLimit = 5

// Finder searches past records, similarity first, naive token overlap as the
// fallback. An empty result is a valid, common outcome; nothing here is ever
// fatal.
type Finder struct {
	Store    store.Store
	Embedder similarity.Embedder
	Index    *similarity.MemoryIndex
}

func NewFinder(st store.Store, embedder similarity.Embedder, index *similarity.MemoryIndex) *Finder {
	return &Finder{Store: st, Embedder: embedder, Index: index}
}

// IndexRecord adds one saved record to the similarity index. Embedding
// failures are logged and skipped; the token-overlap tier still covers the
// record via the store.
func (f *Finder) IndexRecord(ctx context.Context, rec types.HistoricalCostRecord) {
	if f.Embedder == nil || f.Index == nil {
		return
	}
	text := rec.ProductName + " " + rec.ProductDescription
	vector, err := f.Embedder.Embed(ctx, text)
	if err != nil {
		logging.Warn("failed to index historical record", zap.String("product", rec.ProductName), zap.Error(err))
		return
	}
	f.Index.Add(rec.ProductName, text, vector, rec)
}

// FindSimilar returns up to limit comparable records for the description.
func (f *Finder) FindSimilar(ctx context.Context, description string, limit int) []types.HistoricalCostRecord {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if records := f.bySimilarity(ctx, description, limit); len(records) > 0 {
		return records
	}
	return f.byTokenOverlap(ctx, description, limit)
}

func (f *Finder) bySimilarity(ctx context.Context, description string, limit int) []types.HistoricalCostRecord {
	if f.Embedder == nil || f.Index == nil || f.Index.Len() == 0 {
		return nil
	}
	vector, err := f.Embedder.Embed(ctx, description)
	if err != nil {
		logging.Warn("comparables embedding failed", zap.Error(err))
		return nil
	}
	matches, err := f.Index.Search(ctx, vector, similarity.SearchOptions{Threshold: SimilarityThreshold, Limit: limit})
	if err != nil {
		return nil
	}
	records := make([]types.HistoricalCostRecord, 0, len(matches))
	for _, m := range matches {
		if rec, ok := m.Item.(types.HistoricalCostRecord); ok {
			records = append(records, rec)
		}
	}
	return records
}

// byTokenOverlap keeps any record whose name plus description contains at
// least one whitespace token of the query as a substring.
func (f *Finder) byTokenOverlap(ctx context.Context, description string, limit int) []types.HistoricalCostRecord {
	tokens := strings.Fields(strings.ToLower(description))
	if len(tokens) == 0 {
		return nil
	}

	all, err := f.Store.ListHistoricalCosts(ctx, 200)
	if err != nil {
		logging.Warn("historical record listing failed", zap.Error(err))
		return nil
	}

	out := make([]types.HistoricalCostRecord, 0, limit)
	for _, rec := range all {
		haystack := strings.ToLower(rec.ProductName + " " + rec.ProductDescription)
		for _, token := range tokens {
			if strings.Contains(haystack, token) {
				out = append(out, rec)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out
}
