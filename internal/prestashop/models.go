package prestashop

import "time"

// Table structs map to PrestaShop tables; the configured prefix is applied
// by the naming strategy, so product becomes ps_product.

type product struct {
	ID              int64   `gorm:"column:id_product;primaryKey"`
	Reference       string  `gorm:"column:reference"`
	EAN13           string  `gorm:"column:ean13"`
	Price           float64 `gorm:"column:price"`
	WholesalePrice  float64 `gorm:"column:wholesale_price"`
	ManufacturerID  int64   `gorm:"column:id_manufacturer"`
	TaxRulesGroupID int64   `gorm:"column:id_tax_rules_group"`
	Active          bool    `gorm:"column:active"`
}

type productLang struct {
	ProductID int64  `gorm:"column:id_product;primaryKey"`
	ShopID    int64  `gorm:"column:id_shop;primaryKey"`
	LangID    int64  `gorm:"column:id_lang;primaryKey"`
	Name      string `gorm:"column:name"`
}

type manufacturer struct {
	ID   int64  `gorm:"column:id_manufacturer;primaryKey"`
	Name string `gorm:"column:name"`
}

type productSupplier struct {
	ID         int64  `gorm:"column:id_product_supplier;primaryKey"`
	ProductID  int64  `gorm:"column:id_product"`
	SupplierID int64  `gorm:"column:id_supplier"`
	Reference  string `gorm:"column:product_supplier_reference"`
}

type categoryProduct struct {
	CategoryID int64 `gorm:"column:id_category;primaryKey"`
	ProductID  int64 `gorm:"column:id_product;primaryKey"`
	Position   int   `gorm:"column:position"`
}

type taxRule struct {
	ID              int64 `gorm:"column:id_tax_rule;primaryKey"`
	TaxRulesGroupID int64 `gorm:"column:id_tax_rules_group"`
	CountryID       int64 `gorm:"column:id_country"`
	TaxID           int64 `gorm:"column:id_tax"`
}

type tax struct {
	ID   int64   `gorm:"column:id_tax;primaryKey"`
	Rate float64 `gorm:"column:rate"`
}

// specificPrice uses the zero time in To for "no end date", which the
// MySQL driver writes as 0000-00-00
type specificPrice struct {
	ID                 int64     `gorm:"column:id_specific_price;primaryKey"`
	RuleID             int64     `gorm:"column:id_specific_price_rule"`
	CartID             int64     `gorm:"column:id_cart"`
	ProductID          int64     `gorm:"column:id_product"`
	ShopID             int64     `gorm:"column:id_shop"`
	ShopGroupID        int64     `gorm:"column:id_shop_group"`
	CurrencyID         int64     `gorm:"column:id_currency"`
	CountryID          int64     `gorm:"column:id_country"`
	GroupID            int64     `gorm:"column:id_group"`
	CustomerID         int64     `gorm:"column:id_customer"`
	ProductAttributeID int64     `gorm:"column:id_product_attribute"`
	Price              float64   `gorm:"column:price"`
	FromQuantity       int       `gorm:"column:from_quantity"`
	Reduction          float64   `gorm:"column:reduction"`
	ReductionTax       int       `gorm:"column:reduction_tax"`
	ReductionType      string    `gorm:"column:reduction_type"`
	From               time.Time `gorm:"column:from"`
	To                 time.Time `gorm:"column:to"`
}
