package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artpricematcher/price-matcher/internal/types"
)

const activeDiscountColumns = `
	id, product_id, competitor_id, specific_price_id, regular_price,
	discount_price, competitor_price, discount_percent, margin_percent,
	date_add, date_expiration`

// ActiveDiscountStore tracks the specific prices created by the matcher
type ActiveDiscountStore struct {
	pool *pgxpool.Pool
}

// NewActiveDiscountStore creates a tracking store
func NewActiveDiscountStore(pool *pgxpool.Pool) *ActiveDiscountStore {
	return &ActiveDiscountStore{pool: pool}
}

// UpsertActiveDiscount tracks d, replacing any row for the same product and
// competitor. date_add is kept on update. d.ID is set.
func (s *ActiveDiscountStore) UpsertActiveDiscount(ctx context.Context, d *types.ActiveDiscount) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO active_discounts (
			product_id, competitor_id, specific_price_id, regular_price, discount_price,
			competitor_price, discount_percent, margin_percent, date_add, date_expiration
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), $9)
		ON CONFLICT (product_id, competitor_id) DO UPDATE SET
			specific_price_id = EXCLUDED.specific_price_id,
			regular_price = EXCLUDED.regular_price,
			discount_price = EXCLUDED.discount_price,
			competitor_price = EXCLUDED.competitor_price,
			discount_percent = EXCLUDED.discount_percent,
			margin_percent = EXCLUDED.margin_percent,
			date_expiration = EXCLUDED.date_expiration
		RETURNING id, date_add`,
		d.ProductID, d.CompetitorID, d.SpecificPriceID, d.RegularPrice, d.DiscountPrice,
		d.CompetitorPrice, d.DiscountPercent, d.MarginPercent, d.DateExpiration,
	).Scan(&d.ID, &d.DateAdd)
	if err != nil {
		return fmt.Errorf("error tracking discount for product %d: %w", d.ProductID, err)
	}
	return nil
}

// GetActiveDiscount returns types.ErrDiscountNotFound for unknown ids
func (s *ActiveDiscountStore) GetActiveDiscount(ctx context.Context, id int64) (*types.ActiveDiscount, error) {
	rows, err := s.query(ctx, `SELECT`+activeDiscountColumns+` FROM active_discounts WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: id %d", types.ErrDiscountNotFound, id)
	}
	return &rows[0], nil
}

// ListActiveDiscounts lists tracked discounts ordered by expiration. A nil
// competitorID lists all competitors.
func (s *ActiveDiscountStore) ListActiveDiscounts(ctx context.Context, competitorID *int64) ([]types.ActiveDiscount, error) {
	return s.query(ctx, `
		SELECT`+activeDiscountColumns+` FROM active_discounts
		WHERE $1::bigint IS NULL OR competitor_id = $1
		ORDER BY date_expiration, id`, competitorID)
}

// ListExpiredDiscounts returns rows whose expiration is before now
func (s *ActiveDiscountStore) ListExpiredDiscounts(ctx context.Context, now time.Time) ([]types.ActiveDiscount, error) {
	return s.query(ctx, `
		SELECT`+activeDiscountColumns+` FROM active_discounts
		WHERE date_expiration < $1
		ORDER BY id`, now)
}

// DeleteActiveDiscounts removes tracking rows by id and returns how many were deleted
func (s *ActiveDiscountStore) DeleteActiveDiscounts(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM active_discounts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("error deleting active discounts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetActiveDiscountExpiration moves the expiration of one tracked discount
func (s *ActiveDiscountStore) SetActiveDiscountExpiration(ctx context.Context, id int64, expiration time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE active_discounts SET date_expiration = $2 WHERE id = $1`, id, expiration)
	if err != nil {
		return fmt.Errorf("error extending discount %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", types.ErrDiscountNotFound, id)
	}
	return nil
}

func (s *ActiveDiscountStore) query(ctx context.Context, sql string, args ...any) ([]types.ActiveDiscount, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying active discounts: %w", err)
	}
	defer rows.Close()

	discounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.ActiveDiscount, error) {
		var d types.ActiveDiscount
		err := row.Scan(
			&d.ID, &d.ProductID, &d.CompetitorID, &d.SpecificPriceID, &d.RegularPrice,
			&d.DiscountPrice, &d.CompetitorPrice, &d.DiscountPercent, &d.MarginPercent,
			&d.DateAdd, &d.DateExpiration,
		)
		return d, err
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error scanning active discounts: %w", err)
	}
	return discounts, nil
}
