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

// DiscountStore manages fixed-price rows in the specific_price table for one shop
type DiscountStore struct {
	pool   *pgxpool.Pool
	shopID int64
}

// NewDiscountStore creates a specific price store scoped to shopID
func NewDiscountStore(pool *pgxpool.Pool, shopID int64) *DiscountStore {
	return &DiscountStore{pool: pool, shopID: shopID}
}

// nullTime maps the zero time to NULL, the "no end date" value
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FindSpecificPrice returns the newest single-unit, rule-less specific price
// of a product in the current shop
func (s *DiscountStore) FindSpecificPrice(ctx context.Context, productID int64) (*types.SpecificPrice, bool, error) {
	var (
		sp       types.SpecificPrice
		from, to *time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id_specific_price, id_product, id_shop, id_group, price, "from", "to"
		FROM specific_price
		WHERE id_product = $1 AND from_quantity = 1 AND id_specific_price_rule = 0 AND id_shop = $2
		ORDER BY id_specific_price DESC
		LIMIT 1`, productID, s.shopID,
	).Scan(&sp.ID, &sp.ProductID, &sp.ShopID, &sp.GroupID, &sp.Price, &from, &to)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error finding specific price of product %d: %w", productID, err)
	}
	if from != nil {
		sp.From = *from
	}
	if to != nil {
		sp.To = *to
	}
	return &sp, true, nil
}

// CreateSpecificPrice inserts a fixed price for sp.GroupID and sets sp.ID
func (s *DiscountStore) CreateSpecificPrice(ctx context.Context, sp *types.SpecificPrice) error {
	sp.ShopID = s.shopID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO specific_price (
			id_specific_price_rule, id_product, id_shop, id_group, id_customer,
			price, from_quantity, reduction, reduction_type, "from", "to"
		) VALUES (0, $1, $2, $3, 0, $4, 1, 0, 'amount', $5, $6)
		RETURNING id_specific_price`,
		sp.ProductID, sp.ShopID, sp.GroupID, sp.Price, nullTime(sp.From), nullTime(sp.To),
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("error creating specific price for product %d: %w", sp.ProductID, err)
	}
	return nil
}

// UpdateSpecificPrice changes the price and validity window of an existing row
func (s *DiscountStore) UpdateSpecificPrice(ctx context.Context, id int64, price float64, from, to time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE specific_price SET price = $2, "from" = $3, "to" = $4
		WHERE id_specific_price = $1`, id, price, nullTime(from), nullTime(to))
	if err != nil {
		return fmt.Errorf("error updating specific price %d: %w", id, err)
	}
	return nil
}

// SetSpecificPriceExpiration moves the end of a specific price
func (s *DiscountStore) SetSpecificPriceExpiration(ctx context.Context, id int64, to time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE specific_price SET "to" = $2 WHERE id_specific_price = $1`, id, nullTime(to))
	if err != nil {
		return fmt.Errorf("error extending specific price %d: %w", id, err)
	}
	return nil
}

// DeleteSpecificPrices removes specific prices by id
func (s *DiscountStore) DeleteSpecificPrices(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM specific_price WHERE id_specific_price = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("error deleting specific prices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpiredSpecificPrices removes every specific price that ended before now.
// Rows without an end date are kept.
func (s *DiscountStore) DeleteExpiredSpecificPrices(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM specific_price WHERE "to" IS NOT NULL AND "to" < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired specific prices: %w", err)
	}
	return tag.RowsAffected(), nil
}
