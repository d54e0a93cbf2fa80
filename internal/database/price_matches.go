package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artpricematcher/price-matcher/internal/types"
)

const matchColumns = `
	product_id, competitor_id, manufacturer_id, reference, ean13,
	wholesale_price, current_price, current_margin, competitor_price,
	new_price, new_margin, discount_percent, last_update, price_file, url`

// MatchStore is the price_matches staging table
type MatchStore struct {
	pool *pgxpool.Pool
}

// NewMatchStore creates a staging store
func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// UpsertMatch inserts or replaces the staged row for (product, competitor)
func (s *MatchStore) UpsertMatch(ctx context.Context, m *types.PriceMatch) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO price_matches (`+matchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), $13, $14)
		ON CONFLICT (product_id, competitor_id) DO UPDATE SET
			manufacturer_id = EXCLUDED.manufacturer_id,
			reference = EXCLUDED.reference,
			ean13 = EXCLUDED.ean13,
			wholesale_price = EXCLUDED.wholesale_price,
			current_price = EXCLUDED.current_price,
			current_margin = EXCLUDED.current_margin,
			competitor_price = EXCLUDED.competitor_price,
			new_price = EXCLUDED.new_price,
			new_margin = EXCLUDED.new_margin,
			discount_percent = EXCLUDED.discount_percent,
			last_update = now(),
			price_file = EXCLUDED.price_file,
			url = EXCLUDED.url`,
		m.ProductID, m.CompetitorID, m.ManufacturerID, m.Reference, m.EAN13,
		m.WholesalePrice, m.CurrentPrice, m.CurrentMargin, m.CompetitorPrice,
		m.NewPrice, m.NewMargin, m.DiscountPercent, m.PriceFile, m.URL,
	)
	if err != nil {
		return fmt.Errorf("error upserting match %d/%d: %w", m.ProductID, m.CompetitorID, err)
	}
	return nil
}

// DeleteMatch removes a staged row. Missing rows are not an error.
func (s *MatchStore) DeleteMatch(ctx context.Context, productID, competitorID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM price_matches WHERE product_id = $1 AND competitor_id = $2`, productID, competitorID)
	if err != nil {
		return fmt.Errorf("error deleting match %d/%d: %w", productID, competitorID, err)
	}
	return nil
}

// ListMatchesForUpdate returns up to limit promotable rows, largest discount first
func (s *MatchStore) ListMatchesForUpdate(ctx context.Context, competitorID int64, limit int) ([]types.PriceMatch, error) {
	return s.query(ctx, `
		SELECT`+matchColumns+` FROM price_matches
		WHERE competitor_id = $1 AND competitor_price > 0 AND new_price > 0
		ORDER BY discount_percent DESC, product_id
		LIMIT $2`, competitorID, limit)
}

// ListPriceDifferences returns rows where the competitor undercuts the
// current price by at least minDiscount percent
func (s *MatchStore) ListPriceDifferences(ctx context.Context, competitorID int64, minDiscount float64) ([]types.PriceMatch, error) {
	return s.query(ctx, `
		SELECT`+matchColumns+` FROM price_matches
		WHERE competitor_id = $1
		  AND current_price > 0 AND competitor_price > 0
		  AND (current_price - competitor_price) / current_price * 100 >= $2
		ORDER BY discount_percent DESC, product_id`, competitorID, minDiscount)
}

// ListMatches returns every staged row for a competitor
func (s *MatchStore) ListMatches(ctx context.Context, competitorID int64) ([]types.PriceMatch, error) {
	return s.query(ctx, `
		SELECT`+matchColumns+` FROM price_matches
		WHERE competitor_id = $1
		ORDER BY discount_percent DESC, product_id`, competitorID)
}

// CountMatches counts staged rows for a competitor
func (s *MatchStore) CountMatches(ctx context.Context, competitorID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM price_matches WHERE competitor_id = $1`, competitorID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting matches: %w", err)
	}
	return n, nil
}

func (s *MatchStore) query(ctx context.Context, sql string, args ...any) ([]types.PriceMatch, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying matches: %w", err)
	}
	defer rows.Close()

	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.PriceMatch, error) {
		var m types.PriceMatch
		err := row.Scan(
			&m.ProductID, &m.CompetitorID, &m.ManufacturerID, &m.Reference, &m.EAN13,
			&m.WholesalePrice, &m.CurrentPrice, &m.CurrentMargin, &m.CompetitorPrice,
			&m.NewPrice, &m.NewMargin, &m.DiscountPercent, &m.LastUpdate, &m.PriceFile, &m.URL,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning matches: %w", err)
	}
	return matches, nil
}
