package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"costwise/internal/types"
)

// PostgresStore backs the catalog and history with Postgres via the pgx
// stdlib driver. Material and labor lookups are read-mostly, so results are
// cached in small LRU caches; the append-only history path is uncached.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	materialCache *lru.Cache[string, types.MaterialPrice]
	laborCache    *lru.Cache[string, types.LaborRate]
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	materialCache, err := lru.New[string, types.MaterialPrice](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	laborCache, err := lru.New[string, types.LaborRate](256)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{
		db:            db,
		materialCache: materialCache,
		laborCache:    laborCache,
	}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS material_prices (
	name TEXT PRIMARY KEY,
	price_per_unit DOUBLE PRECISION NOT NULL,
	unit TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS labor_rates (
	process_type TEXT NOT NULL,
	skill_level TEXT NOT NULL,
	region TEXT NOT NULL,
	hourly_rate DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (process_type, skill_level, region)
);
CREATE TABLE IF NOT EXISTS historical_costs (
	id BIGSERIAL PRIMARY KEY,
	product_name TEXT NOT NULL,
	product_description TEXT NOT NULL,
	total_cost DOUBLE PRECISION NOT NULL,
	breakdown JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
	})
	return s.schemaErr
}

func (s *PostgresStore) FindMaterialPrice(ctx context.Context, name string) (types.MaterialPrice, bool, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return types.MaterialPrice{}, false, nil
	}
	if cached, ok := s.materialCache.Get(needle); ok {
		return cached, true, nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return types.MaterialPrice{}, false, err
	}

	var m types.MaterialPrice
	err := s.db.QueryRowContext(ctx,
		`SELECT name, price_per_unit, unit FROM material_prices WHERE lower(name) = $1`,
		needle,
	).Scan(&m.Name, &m.PricePerUnit, &m.Unit)
	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx,
			`SELECT name, price_per_unit, unit FROM material_prices
			 WHERE lower(name) LIKE '%' || $1 || '%' OR $1 LIKE '%' || lower(name) || '%'
			 ORDER BY length(name) LIMIT 1`,
			needle,
		).Scan(&m.Name, &m.PricePerUnit, &m.Unit)
	}
	if err == sql.ErrNoRows {
		return types.MaterialPrice{}, false, nil
	}
	if err != nil {
		return types.MaterialPrice{}, false, err
	}
	s.materialCache.Add(needle, m)
	return m, true, nil
}

func (s *PostgresStore) ListMaterialPrices(ctx context.Context) ([]types.MaterialPrice, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, price_per_unit, unit FROM material_prices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.MaterialPrice
	for rows.Next() {
		var m types.MaterialPrice
		if err := rows.Scan(&m.Name, &m.PricePerUnit, &m.Unit); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindLaborRate(ctx context.Context, processType, skillLevel, region string) (types.LaborRate, bool, error) {
	key := strings.ToLower(processType) + "|" + strings.ToLower(skillLevel) + "|" + strings.ToLower(region)
	if cached, ok := s.laborCache.Get(key); ok {
		return cached, true, nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return types.LaborRate{}, false, err
	}

	var r types.LaborRate
	err := s.db.QueryRowContext(ctx,
		`SELECT process_type, skill_level, region, hourly_rate FROM labor_rates
		 WHERE lower(process_type) = lower($1) AND lower(skill_level) = lower($2)
		   AND ($3 = '' OR lower(region) = lower($3))
		 LIMIT 1`,
		strings.TrimSpace(processType), strings.TrimSpace(skillLevel), strings.TrimSpace(region),
	).Scan(&r.ProcessType, &r.SkillLevel, &r.Region, &r.HourlyRate)
	if err == sql.ErrNoRows {
		return types.LaborRate{}, false, nil
	}
	if err != nil {
		return types.LaborRate{}, false, err
	}
	s.laborCache.Add(key, r)
	return r, true, nil
}

func (s *PostgresStore) SaveHistoricalCost(ctx context.Context, rec types.HistoricalCostRecord) (types.HistoricalCostRecord, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return rec, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return rec, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO historical_costs (product_name, product_description, total_cost, breakdown, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ProductName, rec.ProductDescription, rec.TotalCost, breakdown, rec.CreatedAt,
	)
	return rec, err
}

func (s *PostgresStore) ListHistoricalCosts(ctx context.Context, limit int) ([]types.HistoricalCostRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_name, product_description, total_cost, breakdown, created_at
		 FROM historical_costs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.HistoricalCostRecord
	for rows.Next() {
		var rec types.HistoricalCostRecord
		var breakdown []byte
		if err := rows.Scan(&rec.ProductName, &rec.ProductDescription, &rec.TotalCost, &breakdown, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(breakdown, &rec.Breakdown); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
