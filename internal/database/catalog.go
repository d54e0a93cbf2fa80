package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// CatalogStore reads products from catalog tables kept in Postgres
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore creates a Postgres catalog store
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

func (s *CatalogStore) findOne(ctx context.Context, sql, value string) (int64, bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx, sql, value).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error looking up product: %w", err)
	}
	return id, true, nil
}

// FindActiveByEAN looks up an active product by EAN13
func (s *CatalogStore) FindActiveByEAN(ctx context.Context, ean string) (int64, bool, error) {
	return s.findOne(ctx, `
		SELECT id_product FROM product
		WHERE ean13 = $1 AND active
		ORDER BY id_product LIMIT 1`, ean)
}

// FindActiveByManufacturerReference looks up an active product by reference
// with its manufacturer joined
func (s *CatalogStore) FindActiveByManufacturerReference(ctx context.Context, reference string) (int64, bool, error) {
	return s.findOne(ctx, `
		SELECT p.id_product FROM product p
		LEFT JOIN manufacturer m ON m.id_manufacturer = p.id_manufacturer
		WHERE p.reference = $1 AND p.active
		ORDER BY p.id_product LIMIT 1`, reference)
}

// FindActiveBySupplierReference looks up an active product by a supplier's reference
func (s *CatalogStore) FindActiveBySupplierReference(ctx context.Context, reference string) (int64, bool, error) {
	return s.findOne(ctx, `
		SELECT p.id_product FROM product_supplier ps
		JOIN product p ON p.id_product = ps.id_product
		WHERE ps.product_supplier_reference = $1 AND p.active
		ORDER BY p.id_product LIMIT 1`, reference)
}

// FindActiveByReference looks up an active product by its own reference
func (s *CatalogStore) FindActiveByReference(ctx context.Context, reference string) (int64, bool, error) {
	return s.findOne(ctx, `
		SELECT id_product FROM product
		WHERE reference = $1 AND active
		ORDER BY id_product LIMIT 1`, reference)
}

const productColumns = `id_product, name, reference, ean13, price, wholesale_price, id_manufacturer, active`

func scanProduct(row pgx.Row) (types.Product, error) {
	var p types.Product
	err := row.Scan(&p.ID, &p.Name, &p.Reference, &p.EAN13, &p.Price, &p.WholesalePrice, &p.ManufacturerID, &p.Active)
	return p, err
}

// GetProduct loads a product with its category ids. Inactive products are
// returned as well.
func (s *CatalogStore) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM product WHERE id_product = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", types.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading product %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `SELECT id_category FROM category_product WHERE id_product = $1 ORDER BY id_category`, id)
	if err != nil {
		return nil, fmt.Errorf("error loading categories of product %d: %w", id, err)
	}
	p.CategoryIDs, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning categories of product %d: %w", id, err)
	}
	return &p, nil
}

// GetProductsByIDs loads products without categories, keyed by id.
// Unknown ids are absent from the result.
func (s *CatalogStore) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]types.Product, error) {
	result := make(map[int64]types.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM product WHERE id_product = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

// GetTaxRate returns the tax percentage of a product's tax rules group.
// Products without a group are untaxed.
func (s *CatalogStore) GetTaxRate(ctx context.Context, productID int64) (float64, error) {
	var rate float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(t.rate, 0) FROM product p
		LEFT JOIN tax_rules_group t ON t.id_tax_rules_group = p.id_tax_rules_group
		WHERE p.id_product = $1`, productID).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: id %d", types.ErrProductNotFound, productID)
	}
	if err != nil {
		return 0, fmt.Errorf("error loading tax rate of product %d: %w", productID, err)
	}
	return rate, nil
}
