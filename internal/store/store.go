// Package store is the durable catalog and record collaborator: exact-match
// material/labor lookups and append-only historical cost records.
package store

import (
	"context"
	"errors"
	"os"
	"strings"

	"costwise/internal/types"
)

// ErrNotFound is returned by lookups that miss the catalog.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistent operations the pipeline depends on.
type Store interface {
	// FindMaterialPrice resolves name against the priced catalog, exact
	// match first, then case-insensitive substring match.
	FindMaterialPrice(ctx context.Context, name string) (types.MaterialPrice, bool, error)

	// ListMaterialPrices returns the whole catalog, used to build the
	// similarity index at startup.
	ListMaterialPrices(ctx context.Context) ([]types.MaterialPrice, error)

	// FindLaborRate resolves an hourly rate for a process/skill/region
	// triple.
	FindLaborRate(ctx context.Context, processType, skillLevel, region string) (types.LaborRate, bool, error)

	// SaveHistoricalCost appends one record. Records are never mutated and
	// have no uniqueness constraint.
	SaveHistoricalCost(ctx context.Context, rec types.HistoricalCostRecord) (types.HistoricalCostRecord, error)

	// ListHistoricalCosts returns up to limit records, newest first.
	ListHistoricalCosts(ctx context.Context, limit int) ([]types.HistoricalCostRecord, error)

	Close() error
}

// New returns a Postgres-backed store when dsn is set and reachable,
// otherwise the seeded in-memory store.
func New(dsn string) Store {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return NewMemoryStore()
	}
	s, err := NewPostgresStore(dsn)
	if err != nil {
		return NewMemoryStore()
	}
	return s
}

// NewFromEnv selects the store from COSTWISE_PG_DSN.
func NewFromEnv() Store {
	return New(os.Getenv("COSTWISE_PG_DSN"))
}
