package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artpricematcher/price-matcher/internal/types"
)

const competitorColumns = `
	id, name, url, active, cron_download, cron_compare, cron_update,
	override_discount_settings, discount_strategy, min_margin_percent,
	max_discount_percent, price_underbid, min_price_threshold,
	discount_days_valid, date_add, date_upd`

// CompetitorStore persists competitors
type CompetitorStore struct {
	pool *pgxpool.Pool
}

// NewCompetitorStore creates a competitor store
func NewCompetitorStore(pool *pgxpool.Pool) *CompetitorStore {
	return &CompetitorStore{pool: pool}
}

func scanCompetitor(row pgx.Row) (*types.Competitor, error) {
	var c types.Competitor
	err := row.Scan(
		&c.ID, &c.Name, &c.URL, &c.Active, &c.CronDownload, &c.CronCompare, &c.CronUpdate,
		&c.OverrideDiscountSettings, &c.DiscountStrategy, &c.MinMarginPercent,
		&c.MaxDiscountPercent, &c.PriceUnderbid, &c.MinPriceThreshold,
		&c.DiscountDaysValid, &c.DateAdd, &c.DateUpd,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompetitors returns all competitors ordered by id
func (s *CompetitorStore) ListCompetitors(ctx context.Context) ([]types.Competitor, error) {
	rows, err := s.pool.Query(ctx, `SELECT`+competitorColumns+` FROM competitors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying competitors: %w", err)
	}
	defer rows.Close()

	var result []types.Competitor
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning competitor: %w", err)
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

// GetCompetitor returns types.ErrCompetitorNotFound for unknown ids
func (s *CompetitorStore) GetCompetitor(ctx context.Context, id int64) (*types.Competitor, error) {
	c, err := scanCompetitor(s.pool.QueryRow(ctx, `SELECT`+competitorColumns+` FROM competitors WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", types.ErrCompetitorNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying competitor %d: %w", id, err)
	}
	return c, nil
}

// GetCompetitorByName matches the name case-insensitively
func (s *CompetitorStore) GetCompetitorByName(ctx context.Context, name string) (*types.Competitor, error) {
	c, err := scanCompetitor(s.pool.QueryRow(ctx,
		`SELECT`+competitorColumns+` FROM competitors WHERE lower(name) = lower($1)`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", types.ErrCompetitorNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying competitor %s: %w", name, err)
	}
	return c, nil
}

// CreateCompetitor inserts c and sets its id and timestamps
func (s *CompetitorStore) CreateCompetitor(ctx context.Context, c *types.Competitor) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO competitors (name, url, active, cron_download, cron_compare, cron_update)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, date_add, date_upd`,
		c.Name, c.URL, c.Active, c.CronDownload, c.CronCompare, c.CronUpdate,
	).Scan(&c.ID, &c.DateAdd, &c.DateUpd)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", types.ErrDuplicateName, c.Name)
		}
		return fmt.Errorf("error creating competitor: %w", err)
	}
	return nil
}

// UpdateCompetitor updates url and cron flags
func (s *CompetitorStore) UpdateCompetitor(ctx context.Context, c *types.Competitor) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE competitors
		SET url = $2, cron_download = $3, cron_compare = $4, cron_update = $5, date_upd = now()
		WHERE id = $1`,
		c.ID, c.URL, c.CronDownload, c.CronCompare, c.CronUpdate)
	if err != nil {
		return fmt.Errorf("error updating competitor %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", types.ErrCompetitorNotFound, c.ID)
	}
	return nil
}

// ToggleCompetitor flips the active flag and returns the new value
func (s *CompetitorStore) ToggleCompetitor(ctx context.Context, id int64) (bool, error) {
	var active bool
	err := s.pool.QueryRow(ctx,
		`UPDATE competitors SET active = NOT active, date_upd = now() WHERE id = $1 RETURNING active`, id,
	).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%w: id %d", types.ErrCompetitorNotFound, id)
	}
	if err != nil {
		return false, fmt.Errorf("error toggling competitor %d: %w", id, err)
	}
	return active, nil
}

// UpdateCompetitorSettings stores the override flag and values. Nil values clear the override.
func (s *CompetitorStore) UpdateCompetitorSettings(ctx context.Context, c *types.Competitor) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE competitors
		SET override_discount_settings = $2, discount_strategy = $3, min_margin_percent = $4,
		    max_discount_percent = $5, price_underbid = $6, min_price_threshold = $7,
		    discount_days_valid = $8, date_upd = now()
		WHERE id = $1`,
		c.ID, c.OverrideDiscountSettings, c.DiscountStrategy, c.MinMarginPercent,
		c.MaxDiscountPercent, c.PriceUnderbid, c.MinPriceThreshold, c.DiscountDaysValid)
	if err != nil {
		return fmt.Errorf("error updating settings for competitor %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", types.ErrCompetitorNotFound, c.ID)
	}
	return nil
}

// TouchCompetitor sets date_upd to now
func (s *CompetitorStore) TouchCompetitor(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `UPDATE competitors SET date_upd = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error touching competitor %d: %w", id, err)
	}
	return nil
}

// DeleteCompetitor removes the competitor; staged matches and tracked
// discounts go with it through ON DELETE CASCADE
func (s *CompetitorStore) DeleteCompetitor(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting competitor %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", types.ErrCompetitorNotFound, id)
	}
	return nil
}
