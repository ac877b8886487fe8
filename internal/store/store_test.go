package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/importhub/internal/db"
	"github.com/Simplici0/importhub/internal/landed"
	"github.com/Simplici0/importhub/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database))
	return New(database)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSuppliers_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateSupplier(ctx, Supplier{Name: "Ningbo Tools", Country: "CN", Active: true})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = s.CreateSupplier(ctx, Supplier{Name: "Ningbo Tools"})
	require.ErrorIs(t, err, ErrConflict)

	created.Active = false
	require.NoError(t, s.UpdateSupplier(ctx, created))

	got, err := s.GetSupplier(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err := s.ListSuppliers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := s.ListSuppliers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteSupplier(ctx, created.ID))
	_, err = s.GetSupplier(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeleteSupplier(ctx, created.ID), ErrNotFound)
}

func TestItems_DecimalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	it, err := s.CreateItem(ctx, CatalogItem{SKU: "KIT-01", Name: "Drill", Category: "tools", UnitCBM: dec("0.0125"), UnitWeightKg: dec("2.35")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), it.MOQ)

	got, err := s.GetItemBySKU(ctx, "KIT-01")
	require.NoError(t, err)
	assert.True(t, got.UnitCBM.Equal(dec("0.0125")))
	assert.True(t, got.UnitWeightKg.Equal(dec("2.35")))

	byCategory, err := s.ListItems(ctx, "garden")
	require.NoError(t, err)
	assert.Empty(t, byCategory)
}

func TestLatestPrices_PicksNewestPerSupplier(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateSupplier(ctx, Supplier{Name: "A", Active: true})
	require.NoError(t, err)
	b, err := s.CreateSupplier(ctx, Supplier{Name: "B", Active: false})
	require.NoError(t, err)
	it, err := s.CreateItem(ctx, CatalogItem{SKU: "X", Name: "X"})
	require.NoError(t, err)

	for _, p := range []Price{
		{SupplierID: a.ID, CatalogItemID: it.ID, PriceFobUSD: dec("12"), ValidFrom: "2024-01-01 10:00:00"},
		{SupplierID: a.ID, CatalogItemID: it.ID, PriceFobUSD: dec("10.5"), ValidFrom: "2024-03-01 10:00:00"},
		{SupplierID: a.ID, CatalogItemID: it.ID, PriceFobUSD: dec("11"), ValidFrom: "2024-02-01 10:00:00"},
		{SupplierID: b.ID, CatalogItemID: it.ID, PriceFobUSD: dec("9.99"), PriceOriginal: dec("50"), CurrencyOriginal: "CNY"},
	} {
		_, err := s.CreatePrice(ctx, p)
		require.NoError(t, err)
	}

	latest, err := s.LatestPrices(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	assert.Equal(t, a.ID, latest[0].SupplierID)
	assert.True(t, latest[0].Active)
	assert.True(t, latest[0].PriceFobUSD.Equal(dec("10.5")))
	assert.Equal(t, b.ID, latest[1].SupplierID)
	assert.False(t, latest[1].Active)

	history, err := s.ListPrices(ctx, it.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestCreatePrice_NormalizesValidFrom(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sup, err := s.CreateSupplier(ctx, Supplier{Name: "A", Active: true})
	require.NoError(t, err)
	it, err := s.CreateItem(ctx, CatalogItem{SKU: "X", Name: "X"})
	require.NoError(t, err)

	old, err := s.CreatePrice(ctx, Price{SupplierID: sup.ID, CatalogItemID: it.ID, PriceFobUSD: dec("100"), ValidFrom: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 00:00:00", old.ValidFrom)

	newer, err := s.CreatePrice(ctx, Price{SupplierID: sup.ID, CatalogItemID: it.ID, PriceFobUSD: dec("80"), ValidFrom: "2026-06-01T09:30:00-03:00"})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01 12:30:00", newer.ValidFrom)

	_, err = s.CreatePrice(ctx, Price{SupplierID: sup.ID, CatalogItemID: it.ID, PriceFobUSD: dec("1"), ValidFrom: "01/06/2026"})
	require.ErrorIs(t, err, ErrInvalid)

	latest, err := s.LatestPrices(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.True(t, latest[0].PriceFobUSD.Equal(dec("80")))

	history, err := s.ListPrices(ctx, it.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestForeignKeys_EnforcedOnEveryPooledConnection(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sup, err := s.CreateSupplier(ctx, Supplier{Name: "A", Active: true})
	require.NoError(t, err)
	it, err := s.CreateItem(ctx, CatalogItem{SKU: "X", Name: "X"})
	require.NoError(t, err)
	q := newQuote(t, s, "Q", "", "2024-01-01 10:00:00")
	line, err := s.AddQuoteLine(ctx, QuoteLine{QuoteID: q.ID, CatalogItemID: it.ID, SupplierID: &sup.ID, Quantity: 1})
	require.NoError(t, err)

	// Pin one connection so the deletes below run on another.
	held, err := s.DB().Conn(ctx)
	require.NoError(t, err)
	defer held.Close()

	require.ErrorIs(t, s.DeleteItem(ctx, it.ID), ErrConflict)
	_, err = s.GetItem(ctx, it.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSupplier(ctx, sup.ID))
	lines, err := s.ListQuoteLines(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, line.ID, lines[0].ID)
	assert.Nil(t, lines[0].SupplierID)

	require.NoError(t, s.DeleteQuote(ctx, q.ID))
	lines, err = s.ListQuoteLines(ctx, q.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSKUMappings_Resolve(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sp, err := s.CreateSupplier(ctx, Supplier{Name: "A", Active: true})
	require.NoError(t, err)
	it, err := s.CreateItem(ctx, CatalogItem{SKU: "X", Name: "X"})
	require.NoError(t, err)

	_, err = s.CreateSKUMapping(ctx, SKUMapping{SupplierID: sp.ID, SupplierSKU: "A-778", CatalogItemID: it.ID})
	require.NoError(t, err)
	_, err = s.CreateSKUMapping(ctx, SKUMapping{SupplierID: sp.ID, SupplierSKU: "A-778", CatalogItemID: it.ID})
	require.ErrorIs(t, err, ErrConflict)

	itemID, err := s.ResolveSKU(ctx, sp.ID, "A-778")
	require.NoError(t, err)
	assert.Equal(t, it.ID, itemID)

	_, err = s.ResolveSKU(ctx, sp.ID, "unknown")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCostSettings_Upsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetCostSettings(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	cfg := landed.CostConfig{
		ContainerType:          landed.Container40FT,
		FreightPerContainerUSD: dec("3500"),
		InsuranceRate:          dec("0.005"),
		FixedCostsUSD:          dec("500"),
		Destination:            landed.DestinationBR,
	}
	require.NoError(t, s.PutCostSettings(ctx, cfg))
	cfg.Destination = landed.DestinationUS
	require.NoError(t, s.PutCostSettings(ctx, cfg))

	got, err := s.GetCostSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, landed.DestinationUS, got.Destination)
	assert.Equal(t, landed.Container40FT, got.ContainerType)
	assert.True(t, got.InsuranceRate.Equal(dec("0.005")))
}

func newQuote(t *testing.T, s *Store, title, notes, createdAt string) Quote {
	t.Helper()

	q, err := s.CreateQuote(context.Background(), Quote{
		Title: title,
		Notes: notes,
		Config: landed.CostConfig{
			ContainerType:          landed.Container40HC,
			FreightPerContainerUSD: dec("3000"),
			InsuranceRate:          dec("0.004"),
			FixedCostsUSD:          dec("250"),
			Destination:            landed.DestinationAR,
		},
	})
	require.NoError(t, err)
	_, err = s.DB().Exec(`UPDATE quotes SET created_at = ? WHERE id = ?`, createdAt, q.ID)
	require.NoError(t, err)
	return q
}

func TestListQuotes_OrdersByDateDescAndReadsLanded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := newQuote(t, s, "Primera", "nota uno", "2024-01-01 10:00:00")
	third := newQuote(t, s, "Tercera", "nota tres", "2024-01-03 12:00:00")
	newQuote(t, s, "Segunda", "nota dos", "2024-01-02 11:00:00")

	require.NoError(t, s.SaveQuoteSnapshot(ctx, first.ID, landed.CostBreakdown{Landed: dec("100.50")}))
	require.NoError(t, s.SaveQuoteSnapshot(ctx, third.ID, landed.CostBreakdown{Landed: dec("300")}))

	quotes, err := s.ListQuotes(ctx, "")
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, []string{"Tercera", "Segunda", "Primera"}, []string{quotes[0].Title, quotes[1].Title, quotes[2].Title})
	assert.True(t, quotes[0].Landed.Equal(dec("300")))
	assert.True(t, quotes[1].Landed.IsZero())
	assert.True(t, quotes[2].Landed.Equal(dec("100.5")))

	sum, priced, err := s.SumSnapshotLanded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, priced)
	assert.True(t, sum.Equal(dec("400.5")))
}

func TestListQuotes_FilterByTitleAndNotes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	newQuote(t, s, "Casa", "pedido rojo", "2024-01-01 10:00:00")
	newQuote(t, s, "Llaveros", "cliente vip", "2024-01-02 10:00:00")
	newQuote(t, s, "Prototipo", "urgente para casa", "2024-01-03 10:00:00")

	byTitle, err := s.ListQuotes(ctx, "Llave")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Llaveros", byTitle[0].Title)

	byNotes, err := s.ListQuotes(ctx, "casa")
	require.NoError(t, err)
	assert.Len(t, byNotes, 2)
}

func TestQuoteLines_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	q := newQuote(t, s, "Q", "", "2024-01-01 10:00:00")
	it, err := s.CreateItem(ctx, CatalogItem{SKU: "X", Name: "X"})
	require.NoError(t, err)

	override := dec("7.25")
	withOverride, err := s.AddQuoteLine(ctx, QuoteLine{QuoteID: q.ID, CatalogItemID: it.ID, Quantity: 4, FobOverrideUSD: &override})
	require.NoError(t, err)
	_, err = s.AddQuoteLine(ctx, QuoteLine{QuoteID: q.ID, CatalogItemID: it.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = s.AddQuoteLine(ctx, QuoteLine{QuoteID: q.ID, CatalogItemID: it.ID, Quantity: 0})
	require.Error(t, err)

	lines, err := s.ListQuoteLines(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.NotNil(t, lines[0].FobOverrideUSD)
	assert.True(t, lines[0].FobOverrideUSD.Equal(override))
	assert.Nil(t, lines[1].FobOverrideUSD)
	assert.Nil(t, lines[1].SupplierID)

	got, err := s.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, landed.DestinationAR, got.Config.Destination)
	assert.Nil(t, got.Config.ContainerQtyOverride)

	require.NoError(t, s.DeleteQuoteLine(ctx, q.ID, withOverride.ID))
	require.ErrorIs(t, s.DeleteQuoteLine(ctx, q.ID, withOverride.ID), ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sup, err := s.CreateSupplier(ctx, Supplier{Name: "A", Active: true})
	require.NoError(t, err)
	it, err := s.CreateItem(ctx, CatalogItem{SKU: "X", Name: "X"})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.CreatePrice(ctx, Price{SupplierID: sup.ID, CatalogItemID: it.ID, PriceFobUSD: dec("5")}); err != nil {
			return err
		}
		_, err := tx.CreatePrice(ctx, Price{SupplierID: sup.ID, CatalogItemID: it.ID, PriceFobUSD: dec("6"), ValidFrom: "yesterday"})
		return err
	})
	require.ErrorIs(t, err, ErrInvalid)

	prices, err := s.ListPrices(ctx, it.ID)
	require.NoError(t, err)
	assert.Empty(t, prices)

	require.NoError(t, s.WithTx(ctx, func(tx *Store) error {
		_, err := tx.CreatePrice(ctx, Price{SupplierID: sup.ID, CatalogItemID: it.ID, PriceFobUSD: dec("5")})
		return err
	}))
	prices, err = s.ListPrices(ctx, it.ID)
	require.NoError(t, err)
	assert.Len(t, prices, 1)
}
