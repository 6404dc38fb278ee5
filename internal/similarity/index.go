// Package similarity abstracts the vector-similarity collaborator: an
// embedding engine plus a ranked nearest-neighbour search over a catalog.
package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
	Close() error
}

// Match is one ranked search hit.
type Match struct {
	ID    string
	Text  string
	Item  any
	Score float64
}

// SearchOptions bound a search call.
type SearchOptions struct {
	Threshold float64
	Limit     int
}

// Index is the read side of the similarity collaborator.
type Index interface {
	Search(ctx context.Context, vector []float32, opts SearchOptions) ([]Match, error)
}

// MemoryIndex is an in-memory cosine-similarity index. Entries are added at
// startup or append-only at runtime; reads are shared across requests.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []indexEntry
}

type indexEntry struct {
	id     string
	text   string
	item   any
	vector []float32
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add appends one entry. Duplicate ids are allowed; search ranks by score
// only.
func (ix *MemoryIndex) Add(id, text string, vector []float32, item any) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = append(ix.entries, indexEntry{id: id, text: text, item: item, vector: vector})
}

// Len returns the number of indexed entries.
func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Search returns matches scoring at or above opts.Threshold, best first,
// bounded to opts.Limit.
func (ix *MemoryIndex) Search(ctx context.Context, vector []float32, opts SearchOptions) ([]Match, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matches := make([]Match, 0, len(ix.entries))
	for _, entry := range ix.entries {
		score, err := Cosine(vector, entry.vector)
		if err != nil {
			continue
		}
		if score < opts.Threshold {
			continue
		}
		matches = append(matches, Match{ID: entry.id, Text: entry.text, Item: entry.item, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

// Cosine computes the cosine similarity of two vectors of equal dimension.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d != %d", len(a), len(b))
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}
