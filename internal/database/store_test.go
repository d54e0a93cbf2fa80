package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpricematcher/price-matcher/internal/database"
	"github.com/artpricematcher/price-matcher/internal/database/dbtest"
	"github.com/artpricematcher/price-matcher/internal/types"
)

func TestStores(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	dbtest.Exec(t, pool,
		`INSERT INTO manufacturer (id_manufacturer, name) VALUES (7, 'Acme')`,
		`INSERT INTO tax_rules_group (id_tax_rules_group, name, rate) VALUES (1, 'Standard', 25)`,
		`INSERT INTO product (id_product, name, reference, ean13, price, wholesale_price, id_manufacturer, id_tax_rules_group, active) VALUES
			(1, 'Lamp', 'LAMP-1', '7310000000001', 200, 80, 7, 1, TRUE),
			(2, 'Chair', 'CHAIR-1', '7310000000002', 150, 60, 0, 0, TRUE),
			(3, 'Old lamp', 'LAMP-1', '7310000000001', 90, 40, 7, 1, FALSE)`,
		`INSERT INTO product_supplier (id_product, id_supplier, product_supplier_reference) VALUES (2, 4, 'SUP-CH')`,
		`INSERT INTO category_product (id_category, id_product) VALUES (12, 1), (10, 1)`,
	)

	competitors := database.NewCompetitorStore(pool)
	comp := &types.Competitor{Name: "Rival", Active: true, CronUpdate: true}
	require.NoError(t, competitors.CreateCompetitor(ctx, comp))

	t.Run("competitors", func(t *testing.T) {
		err := competitors.CreateCompetitor(ctx, &types.Competitor{Name: "Rival"})
		assert.ErrorIs(t, err, types.ErrDuplicateName)

		got, err := competitors.GetCompetitorByName(ctx, "rival")
		require.NoError(t, err)
		assert.Equal(t, comp.ID, got.ID)

		_, err = competitors.GetCompetitor(ctx, 999)
		assert.ErrorIs(t, err, types.ErrCompetitorNotFound)

		days := 4
		got.OverrideDiscountSettings = true
		got.DiscountDaysValid = &days
		require.NoError(t, competitors.UpdateCompetitorSettings(ctx, got))

		reloaded, err := competitors.GetCompetitor(ctx, comp.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.DiscountDaysValid)
		assert.Equal(t, 4, *reloaded.DiscountDaysValid)
		assert.Nil(t, reloaded.MinMarginPercent)

		active, err := competitors.ToggleCompetitor(ctx, comp.ID)
		require.NoError(t, err)
		assert.False(t, active)
		active, err = competitors.ToggleCompetitor(ctx, comp.ID)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("config", func(t *testing.T) {
		cfg := database.NewConfigStore(pool)
		require.NoError(t, cfg.SeedConfig(ctx, map[string]string{"cron_token": "seeded", "price_underbid": "5"}))
		require.NoError(t, cfg.SetConfig(ctx, map[string]string{"price_underbid": "0"}))
		require.NoError(t, cfg.SeedConfig(ctx, map[string]string{"price_underbid": "5"}))

		values, err := cfg.GetConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, "seeded", values["cron_token"])
		assert.Equal(t, "0", values["price_underbid"])
	})

	t.Run("catalog", func(t *testing.T) {
		catalog := database.NewCatalogStore(pool)

		id, ok, err := catalog.FindActiveByEAN(ctx, "7310000000001")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(1), id)

		id, ok, err = catalog.FindActiveByManufacturerReference(ctx, "CHAIR-1")
		require.NoError(t, err)
		assert.True(t, ok, "manufacturer join must not filter products without one")
		assert.Equal(t, int64(2), id)

		id, ok, err = catalog.FindActiveBySupplierReference(ctx, "SUP-CH")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(2), id)

		_, ok, err = catalog.FindActiveByReference(ctx, "NOPE")
		require.NoError(t, err)
		assert.False(t, ok)

		p, err := catalog.GetProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 12}, p.CategoryIDs)
		assert.Equal(t, 80.0, p.WholesalePrice)

		_, err = catalog.GetProduct(ctx, 404)
		assert.ErrorIs(t, err, types.ErrProductNotFound)

		products, err := catalog.GetProductsByIDs(ctx, []int64{1, 3, 404})
		require.NoError(t, err)
		assert.Len(t, products, 2)
		assert.False(t, products[3].Active)

		rate, err := catalog.GetTaxRate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 25.0, rate)
		rate, err = catalog.GetTaxRate(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 0.0, rate)
	})

	t.Run("matches", func(t *testing.T) {
		matches := database.NewMatchStore(pool)
		m := &types.PriceMatch{
			ProductID: 1, CompetitorID: comp.ID, CurrentPrice: 200, CompetitorPrice: 180,
			NewPrice: 170, NewMargin: 52.9, DiscountPercent: 15, PriceFile: "rival_x.csv",
		}
		require.NoError(t, matches.UpsertMatch(ctx, m))
		m.NewPrice = 175
		m.DiscountPercent = 12.5
		require.NoError(t, matches.UpsertMatch(ctx, m))
		require.NoError(t, matches.UpsertMatch(ctx, &types.PriceMatch{
			ProductID: 2, CompetitorID: comp.ID, CurrentPrice: 150, CompetitorPrice: 149, NewPrice: 0,
		}))

		count, err := matches.CountMatches(ctx, comp.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		forUpdate, err := matches.ListMatchesForUpdate(ctx, comp.ID, 1000)
		require.NoError(t, err)
		require.Len(t, forUpdate, 1)
		assert.Equal(t, 175.0, forUpdate[0].NewPrice)

		diffs, err := matches.ListPriceDifferences(ctx, comp.ID, 5)
		require.NoError(t, err)
		require.Len(t, diffs, 1)
		assert.Equal(t, int64(1), diffs[0].ProductID)

		require.NoError(t, matches.DeleteMatch(ctx, 2, comp.ID))
		require.NoError(t, matches.DeleteMatch(ctx, 2, comp.ID))
		count, err = matches.CountMatches(ctx, comp.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("specific prices and tracking", func(t *testing.T) {
		discounts := database.NewDiscountStore(pool, 1)
		tracking := database.NewActiveDiscountStore(pool)
		now := time.Now().UTC().Truncate(time.Second)

		_, ok, err := discounts.FindSpecificPrice(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		first := &types.SpecificPrice{ProductID: 1, GroupID: 1, Price: 170, From: now, To: now.Add(48 * time.Hour)}
		second := &types.SpecificPrice{ProductID: 1, GroupID: 3, Price: 170, From: now, To: now.Add(48 * time.Hour)}
		require.NoError(t, discounts.CreateSpecificPrice(ctx, first))
		require.NoError(t, discounts.CreateSpecificPrice(ctx, second))

		found, ok, err := discounts.FindSpecificPrice(ctx, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, second.ID, found.ID, "highest id wins")

		_, ok, err = database.NewDiscountStore(pool, 2).FindSpecificPrice(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok, "other shops are not visible")

		require.NoError(t, discounts.UpdateSpecificPrice(ctx, first.ID, 165, now, now.Add(-time.Hour)))

		d := &types.ActiveDiscount{
			ProductID: 1, CompetitorID: comp.ID, SpecificPriceID: second.ID,
			RegularPrice: 200, DiscountPrice: 170, DateExpiration: now.Add(-time.Minute),
		}
		require.NoError(t, tracking.UpsertActiveDiscount(ctx, d))
		firstID := d.ID
		d.DiscountPrice = 168
		require.NoError(t, tracking.UpsertActiveDiscount(ctx, d))
		assert.Equal(t, firstID, d.ID, "upsert keeps one row per product and competitor")

		expired, err := tracking.ListExpiredDiscounts(ctx, now)
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, 168.0, expired[0].DiscountPrice)

		expired, err = tracking.ListExpiredDiscounts(ctx, now.Add(-time.Minute))
		require.NoError(t, err)
		assert.Empty(t, expired, "expiring exactly now is still live")

		ext := now.Add(72 * time.Hour)
		require.NoError(t, tracking.SetActiveDiscountExpiration(ctx, d.ID, ext))
		require.NoError(t, discounts.SetSpecificPriceExpiration(ctx, second.ID, ext))
		assert.ErrorIs(t, tracking.SetActiveDiscountExpiration(ctx, 9999, ext), types.ErrDiscountNotFound)

		all, err := tracking.ListActiveDiscounts(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)
		other := int64(9999)
		none, err := tracking.ListActiveDiscounts(ctx, &other)
		require.NoError(t, err)
		assert.Empty(t, none)

		deleted, err := discounts.DeleteExpiredSpecificPrices(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, deleted, "an end date equal to now is kept")

		deleted, err = discounts.DeleteExpiredSpecificPrices(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		dbtest.Exec(t, pool, `INSERT INTO specific_price (id_product, price) VALUES (2, 10)`)
		deleted, err = discounts.DeleteExpiredSpecificPrices(ctx, now.Add(365*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted, "rows without an end date are kept")

		n, err := tracking.DeleteActiveDiscounts(ctx, []int64{d.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = tracking.GetActiveDiscount(ctx, d.ID)
		assert.ErrorIs(t, err, types.ErrDiscountNotFound)
	})

	t.Run("statistics", func(t *testing.T) {
		stats := database.NewStatisticsStore(pool)
		for i := 0; i < 3; i++ {
			require.NoError(t, stats.InsertOperation(ctx, &types.OperationRecord{
				RunID: uuid.NewString(), CompetitorID: &comp.ID, Operation: types.OperationCompare,
				TotalProducts: 10, SuccessCount: 4, ErrorCount: 1, SkippedCount: 5,
				ExecutionTime: 1500 * time.Millisecond, InitiatedBy: types.InitiatorCron,
			}))
		}
		require.NoError(t, stats.InsertOperation(ctx, &types.OperationRecord{
			RunID: uuid.NewString(), Operation: types.OperationClean, SuccessCount: 2, InitiatedBy: types.InitiatorManual,
		}))

		summary, err := stats.SummarizeOperations(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		require.Len(t, summary, 2)
		byOp := map[types.OperationType]types.OperationSummary{}
		for _, s := range summary {
			byOp[s.Operation] = s
		}
		assert.Equal(t, 3, byOp[types.OperationCompare].Runs)
		assert.Equal(t, 30, byOp[types.OperationCompare].TotalProducts)
		assert.Equal(t, "Rival", byOp[types.OperationCompare].CompetitorName)
		assert.Equal(t, 4500*time.Millisecond, byOp[types.OperationCompare].TotalTime)
		assert.Nil(t, byOp[types.OperationClean].CompetitorID)

		recent, err := stats.RecentOperations(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, types.OperationClean, recent[0].Operation)

		require.NoError(t, stats.InsertOperation(ctx, &types.OperationRecord{
			RunID: uuid.NewString(), Operation: types.OperationDownload, InitiatedBy: types.InitiatorCron,
			ExecutionDate: time.Now().AddDate(-2, 0, 0),
		}))
		pruned, err := stats.DeleteOperationsBefore(ctx, time.Now().AddDate(-1, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, pruned)
	})

	t.Run("advisory lock", func(t *testing.T) {
		release, err := database.AcquireCompetitorLock(ctx, pool, comp.ID)
		require.NoError(t, err)

		_, err = database.AcquireCompetitorLock(ctx, pool, comp.ID)
		assert.ErrorIs(t, err, types.ErrRunInProgress)

		other, err := database.AcquireCompetitorLock(ctx, pool, comp.ID+1)
		require.NoError(t, err)
		other()

		wide, err := database.AcquireCompetitorLock(ctx, pool, comp.ID+1<<32)
		require.NoError(t, err, "ids equal in the low 32 bits do not share a lock")
		wide()

		release()
		again, err := database.NewLocker(pool).Acquire(ctx, comp.ID)
		require.NoError(t, err)
		again()
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, database.NewActiveDiscountStore(pool).UpsertActiveDiscount(ctx, &types.ActiveDiscount{
			ProductID: 2, CompetitorID: comp.ID, DateExpiration: time.Now().Add(time.Hour),
		}))
		require.NoError(t, competitors.DeleteCompetitor(ctx, comp.ID))
		assert.ErrorIs(t, competitors.DeleteCompetitor(ctx, comp.ID), types.ErrCompetitorNotFound)

		left, err := database.NewActiveDiscountStore(pool).ListActiveDiscounts(ctx, &comp.ID)
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}
