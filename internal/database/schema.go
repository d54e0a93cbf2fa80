package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ownSchema holds the matcher's tables. They always live in Postgres.
const ownSchema = `
CREATE TABLE IF NOT EXISTS competitors (
	id                         BIGSERIAL PRIMARY KEY,
	name                       TEXT NOT NULL UNIQUE,
	url                        TEXT NOT NULL DEFAULT '',
	active                     BOOLEAN NOT NULL DEFAULT TRUE,
	cron_download              BOOLEAN NOT NULL DEFAULT TRUE,
	cron_compare               BOOLEAN NOT NULL DEFAULT TRUE,
	cron_update                BOOLEAN NOT NULL DEFAULT TRUE,
	override_discount_settings BOOLEAN NOT NULL DEFAULT FALSE,
	discount_strategy          TEXT,
	min_margin_percent         DOUBLE PRECISION,
	max_discount_percent       DOUBLE PRECISION,
	price_underbid             DOUBLE PRECISION,
	min_price_threshold        DOUBLE PRECISION,
	discount_days_valid        INTEGER,
	date_add                   TIMESTAMPTZ NOT NULL DEFAULT now(),
	date_upd                   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pricematcher_config (
	name     TEXT PRIMARY KEY,
	value    TEXT NOT NULL DEFAULT '',
	date_upd TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS price_matches (
	product_id       BIGINT NOT NULL,
	competitor_id    BIGINT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	manufacturer_id  BIGINT NOT NULL DEFAULT 0,
	reference        TEXT NOT NULL DEFAULT '',
	ean13            TEXT NOT NULL DEFAULT '',
	wholesale_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_margin   DOUBLE PRECISION NOT NULL DEFAULT 0,
	competitor_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	new_price        DOUBLE PRECISION NOT NULL DEFAULT 0,
	new_margin       DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_update      TIMESTAMPTZ NOT NULL DEFAULT now(),
	price_file       TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (product_id, competitor_id)
);
CREATE INDEX IF NOT EXISTS idx_price_matches_competitor ON price_matches (competitor_id, discount_percent DESC);

CREATE TABLE IF NOT EXISTS active_discounts (
	id                BIGSERIAL PRIMARY KEY,
	product_id        BIGINT NOT NULL,
	competitor_id     BIGINT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	specific_price_id BIGINT NOT NULL DEFAULT 0,
	regular_price     DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
	competitor_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_percent  DOUBLE PRECISION NOT NULL DEFAULT 0,
	margin_percent    DOUBLE PRECISION NOT NULL DEFAULT 0,
	date_add          TIMESTAMPTZ NOT NULL DEFAULT now(),
	date_expiration   TIMESTAMPTZ NOT NULL,
	UNIQUE (product_id, competitor_id)
);
CREATE INDEX IF NOT EXISTS idx_active_discounts_expiration ON active_discounts (date_expiration);

CREATE TABLE IF NOT EXISTS operation_statistics (
	id                BIGSERIAL PRIMARY KEY,
	run_id            UUID NOT NULL,
	competitor_id     BIGINT REFERENCES competitors(id) ON DELETE SET NULL,
	operation_type    TEXT NOT NULL CHECK (operation_type IN ('download', 'compare', 'update', 'clean')),
	total_products    INTEGER NOT NULL DEFAULT 0,
	success_count     INTEGER NOT NULL DEFAULT 0,
	error_count       INTEGER NOT NULL DEFAULT 0,
	skipped_count     INTEGER NOT NULL DEFAULT 0,
	execution_time_ms BIGINT NOT NULL DEFAULT 0,
	execution_date    TIMESTAMPTZ NOT NULL DEFAULT now(),
	initiated_by      TEXT NOT NULL DEFAULT 'manual'
);
CREATE INDEX IF NOT EXISTS idx_operation_statistics_date ON operation_statistics (execution_date DESC);
`

// catalogSchema mirrors the subset of shop tables the matcher reads and the
// specific_price table it writes. "to" IS NULL means no end date.
const catalogSchema = `
CREATE TABLE IF NOT EXISTS manufacturer (
	id_manufacturer BIGSERIAL PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	active          BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS tax_rules_group (
	id_tax_rules_group BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL DEFAULT '',
	rate               DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS product (
	id_product         BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL DEFAULT '',
	reference          TEXT NOT NULL DEFAULT '',
	ean13              TEXT NOT NULL DEFAULT '',
	price              DOUBLE PRECISION NOT NULL DEFAULT 0,
	wholesale_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
	id_manufacturer    BIGINT NOT NULL DEFAULT 0,
	id_tax_rules_group BIGINT NOT NULL DEFAULT 0,
	active             BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_product_ean13 ON product (ean13);
CREATE INDEX IF NOT EXISTS idx_product_reference ON product (reference);

CREATE TABLE IF NOT EXISTS product_supplier (
	id_product_supplier        BIGSERIAL PRIMARY KEY,
	id_product                 BIGINT NOT NULL,
	id_supplier                BIGINT NOT NULL DEFAULT 0,
	product_supplier_reference TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_product_supplier_reference ON product_supplier (product_supplier_reference);

CREATE TABLE IF NOT EXISTS category_product (
	id_category BIGINT NOT NULL,
	id_product  BIGINT NOT NULL,
	PRIMARY KEY (id_category, id_product)
);

CREATE TABLE IF NOT EXISTS specific_price (
	id_specific_price      BIGSERIAL PRIMARY KEY,
	id_specific_price_rule BIGINT NOT NULL DEFAULT 0,
	id_product             BIGINT NOT NULL,
	id_shop                BIGINT NOT NULL DEFAULT 1,
	id_group               BIGINT NOT NULL DEFAULT 0,
	id_customer            BIGINT NOT NULL DEFAULT 0,
	price                  DOUBLE PRECISION NOT NULL,
	from_quantity          INTEGER NOT NULL DEFAULT 1,
	reduction              DOUBLE PRECISION NOT NULL DEFAULT 0,
	reduction_type         TEXT NOT NULL DEFAULT 'amount',
	"from"                 TIMESTAMPTZ,
	"to"                   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_specific_price_product ON specific_price (id_product, id_shop);
`

// Migrate creates the matcher tables, and the catalog tables when the
// catalog is served from the same Postgres database
func Migrate(ctx context.Context, pool *pgxpool.Pool, withCatalog bool) error {
	if _, err := pool.Exec(ctx, ownSchema); err != nil {
		return fmt.Errorf("migrate matcher tables: %w", err)
	}
	if withCatalog {
		if _, err := pool.Exec(ctx, catalogSchema); err != nil {
			return fmt.Errorf("migrate catalog tables: %w", err)
		}
	}
	return nil
}
