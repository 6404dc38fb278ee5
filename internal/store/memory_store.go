package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"costwise/internal/types"
)

// MemoryStore keeps the catalog and history in process memory. It ships a
// seed catalog so the service is usable without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	materials []types.MaterialPrice
	labor     []types.LaborRate
	history   []types.HistoricalCostRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		materials: seedMaterials(),
		labor:     seedLaborRates(),
	}
}

// NewEmptyMemoryStore returns a store with no seed data.
func NewEmptyMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Close() error { return nil }

// AddMaterialPrice appends a catalog entry.
func (s *MemoryStore) AddMaterialPrice(p types.MaterialPrice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = append(s.materials, p)
}

// AddLaborRate appends a labor rate entry.
func (s *MemoryStore) AddLaborRate(r types.LaborRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labor = append(s.labor, r)
}

func (s *MemoryStore) FindMaterialPrice(_ context.Context, name string) (types.MaterialPrice, bool, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return types.MaterialPrice{}, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.materials {
		if strings.ToLower(m.Name) == needle {
			return m, true, nil
		}
	}
	for _, m := range s.materials {
		lower := strings.ToLower(m.Name)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return m, true, nil
		}
	}
	return types.MaterialPrice{}, false, nil
}

func (s *MemoryStore) ListMaterialPrices(_ context.Context) ([]types.MaterialPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.MaterialPrice(nil), s.materials...), nil
}

func (s *MemoryStore) FindLaborRate(_ context.Context, processType, skillLevel, region string) (types.LaborRate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.labor {
		if strings.EqualFold(r.ProcessType, strings.TrimSpace(processType)) &&
			strings.EqualFold(r.SkillLevel, strings.TrimSpace(skillLevel)) &&
			(region == "" || strings.EqualFold(r.Region, strings.TrimSpace(region))) {
			return r, true, nil
		}
	}
	return types.LaborRate{}, false, nil
}

func (s *MemoryStore) SaveHistoricalCost(_ context.Context, rec types.HistoricalCostRecord) (types.HistoricalCostRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, rec)
	return rec, nil
}

func (s *MemoryStore) ListHistoricalCosts(_ context.Context, limit int) ([]types.HistoricalCostRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.HistoricalCostRecord, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i])
	}
	return out, nil
}

func seedMaterials() []types.MaterialPrice {
	return []types.MaterialPrice{
		{Name: "wheat flour", PricePerUnit: 0.55, Unit: "kg"},
		{Name: "sugar", PricePerUnit: 0.68, Unit: "kg"},
		{Name: "palm oil", PricePerUnit: 1.05, Unit: "kg"},
		{Name: "cocoa powder", PricePerUnit: 4.2, Unit: "kg"},
		{Name: "milk powder", PricePerUnit: 3.4, Unit: "kg"},
		{Name: "salt", PricePerUnit: 0.12, Unit: "kg"},
		{Name: "corn starch", PricePerUnit: 0.75, Unit: "kg"},
		{Name: "glucose syrup", PricePerUnit: 0.82, Unit: "kg"},
		{Name: "bopp film", PricePerUnit: 2.15, Unit: "kg"},
		{Name: "corrugated board", PricePerUnit: 0.85, Unit: "kg"},
		{Name: "pet resin", PricePerUnit: 1.35, Unit: "kg"},
		{Name: "hdpe", PricePerUnit: 1.25, Unit: "kg"},
		{Name: "aluminium foil", PricePerUnit: 3.8, Unit: "kg"},
		{Name: "glass bottle", PricePerUnit: 0.09, Unit: "piece"},
		{Name: "abs plastic", PricePerUnit: 1.9, Unit: "kg"},
		{Name: "copper wire", PricePerUnit: 9.5, Unit: "kg"},
		{Name: "cotton fabric", PricePerUnit: 4.1, Unit: "kg"},
		{Name: "polyester fabric", PricePerUnit: 2.6, Unit: "kg"},
	}
}

func seedLaborRates() []types.LaborRate {
	return []types.LaborRate{
		{ProcessType: "line operation", SkillLevel: "low", Region: "default", HourlyRate: 2.1},
		{ProcessType: "line operation", SkillLevel: "medium", Region: "default", HourlyRate: 3.2},
		{ProcessType: "machine operation", SkillLevel: "medium", Region: "default", HourlyRate: 3.5},
		{ProcessType: "assembly", SkillLevel: "low", Region: "default", HourlyRate: 2.0},
		{ProcessType: "assembly", SkillLevel: "medium", Region: "default", HourlyRate: 2.9},
		{ProcessType: "quality control", SkillLevel: "medium", Region: "default", HourlyRate: 3.6},
		{ProcessType: "testing", SkillLevel: "high", Region: "default", HourlyRate: 5.4},
		{ProcessType: "packing", SkillLevel: "low", Region: "default", HourlyRate: 1.8},
		{ProcessType: "stitching", SkillLevel: "medium", Region: "default", HourlyRate: 2.4},
		{ProcessType: "cutting", SkillLevel: "medium", Region: "default", HourlyRate: 2.6},
	}
}
