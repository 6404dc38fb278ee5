package artifact

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps artifacts in process memory. Used when no object store
// is configured and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Put(_ context.Context, runID, path string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(runID, path)] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, runID, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key(runID, path)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, runID string) ([]string, error) {
	prefix := strings.TrimSpace(runID) + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, 8)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			paths = append(paths, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func key(runID, path string) string {
	return strings.TrimSpace(runID) + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}
