// Package prestashop reads the catalog from, and writes specific prices to,
// a live PrestaShop MySQL database
package prestashop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/artpricematcher/price-matcher/config"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// zeroDateFloor separates real end dates from the 0000-00-00 sentinel
var zeroDateFloor = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Options scopes lookups to one shop, country and language
type Options struct {
	TablePrefix string
	ShopID      int64
	CountryID   int64
	LangID      int64
}

// Store implements the catalog and specific price stores over gorm
type Store struct {
	db   *gorm.DB
	opts Options
}

// Open connects to the shop database described by cfg
func Open(cfg config.CatalogConfig, shopID int64) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("catalog dsn is not configured")
	}
	opts := Options{TablePrefix: cfg.TablePrefix, ShopID: shopID, CountryID: cfg.CountryID, LangID: cfg.LangID}
	store, err := OpenDialector(mysql.Open(cfg.DSN), opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := store.db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error connecting to shop database: %w", err)
	}
	return store, nil
}

// OpenDialector opens a store over any gorm dialector
func OpenDialector(d gorm.Dialector, opts Options) (*Store, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   opts.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error opening shop database: %w", err)
	}
	return &Store{db: db, opts: opts}, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) table(name, alias string) string {
	return s.opts.TablePrefix + name + " " + alias
}

func first(ids []int64) (int64, bool) {
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// FindActiveByEAN looks up an active product by EAN13
func (s *Store) FindActiveByEAN(ctx context.Context, ean string) (int64, bool, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&product{}).
		Where("ean13 = ? AND active = ?", ean, true).
		Order("id_product").Limit(1).
		Pluck("id_product", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("error looking up product by ean: %w", err)
	}
	id, ok := first(ids)
	return id, ok, nil
}

// FindActiveByManufacturerReference looks up an active product by reference
// with its manufacturer joined
func (s *Store) FindActiveByManufacturerReference(ctx context.Context, reference string) (int64, bool, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Table(s.table("product", "p")).
		Joins("LEFT JOIN "+s.table("manufacturer", "m")+" ON m.id_manufacturer = p.id_manufacturer").
		Where("p.reference = ? AND p.active = ?", reference, true).
		Order("p.id_product").Limit(1).
		Pluck("p.id_product", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("error looking up product by manufacturer reference: %w", err)
	}
	id, ok := first(ids)
	return id, ok, nil
}

// FindActiveBySupplierReference looks up an active product by a supplier's reference
func (s *Store) FindActiveBySupplierReference(ctx context.Context, reference string) (int64, bool, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Table(s.table("product_supplier", "ps")).
		Joins("JOIN "+s.table("product", "p")+" ON p.id_product = ps.id_product").
		Where("ps.product_supplier_reference = ? AND p.active = ?", reference, true).
		Order("p.id_product").Limit(1).
		Pluck("p.id_product", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("error looking up product by supplier reference: %w", err)
	}
	id, ok := first(ids)
	return id, ok, nil
}

// FindActiveByReference looks up an active product by its own reference
func (s *Store) FindActiveByReference(ctx context.Context, reference string) (int64, bool, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&product{}).
		Where("reference = ? AND active = ?", reference, true).
		Order("id_product").Limit(1).
		Pluck("id_product", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("error looking up product by reference: %w", err)
	}
	id, ok := first(ids)
	return id, ok, nil
}

func (p product) toDomain(name string) types.Product {
	return types.Product{
		ID:             p.ID,
		Name:           name,
		Reference:      p.Reference,
		EAN13:          p.EAN13,
		Price:          p.Price,
		WholesalePrice: p.WholesalePrice,
		ManufacturerID: p.ManufacturerID,
		Active:         p.Active,
	}
}

func (s *Store) names(ctx context.Context, ids []int64) (map[int64]string, error) {
	var rows []productLang
	err := s.db.WithContext(ctx).
		Where("id_product IN ? AND id_lang = ? AND id_shop = ?", ids, s.opts.LangID, s.opts.ShopID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error loading product names: %w", err)
	}
	names := make(map[int64]string, len(rows))
	for _, r := range rows {
		names[r.ProductID] = r.Name
	}
	return names, nil
}

// GetProduct loads a product with its localized name and category ids
func (s *Store) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	var p product
	err := s.db.WithContext(ctx).Take(&p, "id_product = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", types.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading product %d: %w", id, err)
	}

	names, err := s.names(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	result := p.toDomain(names[id])

	err = s.db.WithContext(ctx).Model(&categoryProduct{}).
		Where("id_product = ?", id).
		Order("id_category").
		Pluck("id_category", &result.CategoryIDs).Error
	if err != nil {
		return nil, fmt.Errorf("error loading categories of product %d: %w", id, err)
	}
	return &result, nil
}

// GetProductsByIDs loads products without categories, keyed by id
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]types.Product, error) {
	result := make(map[int64]types.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []product
	if err := s.db.WithContext(ctx).Where("id_product IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error loading products: %w", err)
	}
	names, err := s.names(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		result[p.ID] = p.toDomain(names[p.ID])
	}
	return result, nil
}

// GetTaxRate returns the rate of the product's tax rules group for the
// configured country. Products without a matching rule are untaxed.
func (s *Store) GetTaxRate(ctx context.Context, productID int64) (float64, error) {
	var rates []float64
	err := s.db.WithContext(ctx).Table(s.table("product", "p")).
		Joins("JOIN "+s.table("tax_rule", "tr")+" ON tr.id_tax_rules_group = p.id_tax_rules_group").
		Joins("JOIN "+s.table("tax", "t")+" ON t.id_tax = tr.id_tax").
		Where("p.id_product = ? AND tr.id_country = ?", productID, s.opts.CountryID).
		Limit(1).
		Pluck("t.rate", &rates).Error
	if err != nil {
		return 0, fmt.Errorf("error loading tax rate of product %d: %w", productID, err)
	}
	if len(rates) == 0 {
		return 0, nil
	}
	return rates[0], nil
}

func (sp specificPrice) toDomain() *types.SpecificPrice {
	out := &types.SpecificPrice{
		ID:        sp.ID,
		ProductID: sp.ProductID,
		ShopID:    sp.ShopID,
		GroupID:   sp.GroupID,
		Price:     sp.Price,
	}
	if sp.From.After(zeroDateFloor) {
		out.From = sp.From
	}
	if sp.To.After(zeroDateFloor) {
		out.To = sp.To
	}
	return out
}

// FindSpecificPrice returns the newest single-unit, rule-less specific price
// of a product in the configured shop
func (s *Store) FindSpecificPrice(ctx context.Context, productID int64) (*types.SpecificPrice, bool, error) {
	var sp specificPrice
	err := s.db.WithContext(ctx).
		Where("id_product = ? AND from_quantity = 1 AND id_specific_price_rule = 0 AND id_shop = ?", productID, s.opts.ShopID).
		Order("id_specific_price DESC").
		Take(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error finding specific price of product %d: %w", productID, err)
	}
	return sp.toDomain(), true, nil
}

// CreateSpecificPrice inserts a fixed price for sp.GroupID and sets sp.ID
func (s *Store) CreateSpecificPrice(ctx context.Context, sp *types.SpecificPrice) error {
	sp.ShopID = s.opts.ShopID
	row := specificPrice{
		ProductID:     sp.ProductID,
		ShopID:        sp.ShopID,
		GroupID:       sp.GroupID,
		Price:         sp.Price,
		FromQuantity:  1,
		ReductionTax:  1,
		ReductionType: "amount",
		From:          sp.From,
		To:            sp.To,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("error creating specific price for product %d: %w", sp.ProductID, err)
	}
	sp.ID = row.ID
	return nil
}

// UpdateSpecificPrice changes the price and validity window of an existing row
func (s *Store) UpdateSpecificPrice(ctx context.Context, id int64, price float64, from, to time.Time) error {
	err := s.db.WithContext(ctx).Model(&specificPrice{}).
		Where("id_specific_price = ?", id).
		Updates(map[string]any{"price": price, "from": from, "to": to}).Error
	if err != nil {
		return fmt.Errorf("error updating specific price %d: %w", id, err)
	}
	return nil
}

// SetSpecificPriceExpiration moves the end of a specific price
func (s *Store) SetSpecificPriceExpiration(ctx context.Context, id int64, to time.Time) error {
	err := s.db.WithContext(ctx).Model(&specificPrice{}).
		Where("id_specific_price = ?", id).
		Update("to", to).Error
	if err != nil {
		return fmt.Errorf("error extending specific price %d: %w", id, err)
	}
	return nil
}

// DeleteSpecificPrices removes specific prices by id
func (s *Store) DeleteSpecificPrices(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id_specific_price IN ?", ids).Delete(&specificPrice{})
	if res.Error != nil {
		return 0, fmt.Errorf("error deleting specific prices: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteExpiredSpecificPrices removes every specific price that ended before
// now, keeping rows with the zero end date
func (s *Store) DeleteExpiredSpecificPrices(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("`to` > ? AND `to` < ?", zeroDateFloor, now).
		Delete(&specificPrice{})
	if res.Error != nil {
		return 0, fmt.Errorf("error deleting expired specific prices: %w", res.Error)
	}
	return res.RowsAffected, nil
}
