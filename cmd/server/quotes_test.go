package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/importhub/internal/export"
	"github.com/Simplici0/importhub/internal/quote"
	"github.com/Simplici0/importhub/internal/store"
)

func seedQuoteRow(t *testing.T, srv *server, createdAt, title, notes, breakdownJSON string) {
	t.Helper()

	_, err := srv.store.DB().Exec(`
		INSERT INTO quotes (
			title, notes, container_type, freight_per_container_usd,
			insurance_rate, fixed_costs_usd, destination, breakdown_json, created_at
		) VALUES (?, ?, '40HC', '3500', '0.005', '500', 'BR', ?, ?)
	`, title, notes, breakdownJSON, createdAt)
	if err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}
}

func TestListQuotesOrdersByDateDescAndReadsLanded(t *testing.T) {
	srv := newTestServer(t)

	seedQuoteRow(t, srv, "2024-01-01 10:00:00", "Primera", "nota uno", `{"landed": "100.50"}`)
	seedQuoteRow(t, srv, "2024-01-03 12:00:00", "Tercera", "nota tres", `{"landed": "300"}`)
	seedQuoteRow(t, srv, "2024-01-02 11:00:00", "Segunda", "nota dos", ``)

	rr := doRequest(t, srv.routes(), http.MethodGet, "/api/quotes", adminToken(t, srv), nil)
	expectStatus(t, rr, http.StatusOK)

	var quotes []store.QuoteListItem
	decodeBody(t, rr, &quotes)
	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}
	if quotes[0].Title != "Tercera" || quotes[1].Title != "Segunda" || quotes[2].Title != "Primera" {
		t.Fatalf("quotes are not sorted desc by created_at: %+v", quotes)
	}
	if !quotes[0].Landed.Equal(decimal.NewFromInt(300)) || !quotes[1].Landed.IsZero() || !quotes[2].Landed.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("unexpected landed values: %+v", quotes)
	}
}

func TestListQuotesFilterByTitleAndNotes(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	token := adminToken(t, srv)

	seedQuoteRow(t, srv, "2024-01-01 10:00:00", "Casa", "bombas rojas", "")
	seedQuoteRow(t, srv, "2024-01-02 10:00:00", "Llaveros", "cliente vip", "")
	seedQuoteRow(t, srv, "2024-01-03 10:00:00", "Prototipo", "urgente para casa", "")

	var byTitle []store.QuoteListItem
	rr := doRequest(t, h, http.MethodGet, "/api/quotes?q=Llave", token, nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &byTitle)
	if len(byTitle) != 1 || byTitle[0].Title != "Llaveros" {
		t.Fatalf("expected 1 quote filtered by title, got %+v", byTitle)
	}

	var byNotes []store.QuoteListItem
	rr = doRequest(t, h, http.MethodGet, "/api/quotes?q=casa", token, nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &byNotes)
	if len(byNotes) != 2 {
		t.Fatalf("expected 2 quotes filtered by notes/title, got %+v", byNotes)
	}
}

// buildQuote creates a one-line quote through the API and returns its id.
func buildQuote(t *testing.T, srv *server) int64 {
	t.Helper()

	h := srv.routes()
	token := adminToken(t, srv)

	rr := doRequest(t, h, http.MethodPost, "/api/clients", token, clientRequest{Name: "Ferretería Sur", Country: "AR"})
	expectStatus(t, rr, http.StatusCreated)
	var client store.Client
	decodeBody(t, rr, &client)

	rr = doRequest(t, h, http.MethodPost, "/api/suppliers", token, supplierRequest{Name: "Acme"})
	expectStatus(t, rr, http.StatusCreated)
	var supplier store.Supplier
	decodeBody(t, rr, &supplier)

	rr = doRequest(t, h, http.MethodPost, "/api/items", token, map[string]any{
		"sku": "PUMP-1", "name": "Pump", "unit_cbm": "0.5", "unit_weight_kg": "10",
	})
	expectStatus(t, rr, http.StatusCreated)
	var item store.CatalogItem
	decodeBody(t, rr, &item)

	rr = doRequest(t, h, http.MethodPost, fmt.Sprintf("/api/items/%d/prices", item.ID), token, map[string]any{
		"supplier_id": supplier.ID, "price_fob_usd": "100",
	})
	expectStatus(t, rr, http.StatusCreated)

	rr = doRequest(t, h, http.MethodPost, "/api/quotes", token, map[string]any{"client_id": client.ID, "title": "Bombas"})
	expectStatus(t, rr, http.StatusCreated)
	var q store.Quote
	decodeBody(t, rr, &q)
	if q.Config.ContainerType != testCosts().ContainerType {
		t.Fatalf("expected quote to start from stored cost settings, got %+v", q.Config)
	}

	rr = doRequest(t, h, http.MethodPost, fmt.Sprintf("/api/quotes/%d/lines", q.ID), token, map[string]any{
		"catalog_item_id": item.ID, "supplier_id": supplier.ID, "quantity": 10,
	})
	expectStatus(t, rr, http.StatusCreated)
	return q.ID
}

func TestQuoteDetailPricesAndPersistsSnapshot(t *testing.T) {
	srv := newTestServer(t)
	id := buildQuote(t, srv)

	rr := doRequest(t, srv.routes(), http.MethodGet, fmt.Sprintf("/api/quotes/%d", id), adminToken(t, srv), nil)
	expectStatus(t, rr, http.StatusOK)

	var detail quote.Detail
	decodeBody(t, rr, &detail)
	if !detail.Breakdown.Landed.Equal(decimal.RequireFromString("8043.53")) {
		t.Fatalf("expected landed 8043.53, got %s", detail.Breakdown.Landed)
	}
	if len(detail.Lines) != 1 || detail.Lines[0].PriceSource != quote.SourceSupplier {
		t.Fatalf("unexpected lines: %+v", detail.Lines)
	}
	if detail.Client == nil || detail.Client.Name != "Ferretería Sur" {
		t.Fatalf("expected client on detail, got %+v", detail.Client)
	}

	stored, err := srv.store.GetQuote(context.Background(), id)
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}
	if !strings.Contains(stored.BreakdownJSON, `"landed":"8043.53"`) {
		t.Fatalf("expected snapshot to be persisted, got %q", stored.BreakdownJSON)
	}
}

func TestHandleQuoteTextReturnsPlainText(t *testing.T) {
	srv := newTestServer(t)
	id := buildQuote(t, srv)

	rr := doRequest(t, srv.routes(), http.MethodGet, fmt.Sprintf("/api/quotes/%d/text", id), adminToken(t, srv), nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", rr.Header().Get("Content-Type"))
	}

	body := rr.Body.String()
	for _, expected := range []string{"Bombas", "Cliente: Ferretería Sur", "Landed (BR): 8043.53 USD", "Supuestos:", "PUMP-1 Pump x10"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}

func TestHandleQuoteXLSX(t *testing.T) {
	srv := newTestServer(t)
	id := buildQuote(t, srv)

	rr := doRequest(t, srv.routes(), http.MethodGet, fmt.Sprintf("/api/quotes/%d/xlsx", id), adminToken(t, srv), nil)
	expectStatus(t, rr, http.StatusOK)
	if rr.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	title, err := f.GetCellValue(export.QuoteSheet, "A1")
	if err != nil || title != "Bombas" {
		t.Fatalf("unexpected title cell %q (err %v)", title, err)
	}
}

func TestQuoteScenariosRejectsUnknownName(t *testing.T) {
	srv := newTestServer(t)
	id := buildQuote(t, srv)
	h := srv.routes()
	token := adminToken(t, srv)

	rr := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/quotes/%d/scenarios?name=optimistic&name=base", id), token, nil)
	expectStatus(t, rr, http.StatusOK)

	rr = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/quotes/%d/scenarios?name=wild", id), token, nil)
	expectStatus(t, rr, http.StatusBadRequest)

	rr = doRequest(t, h, http.MethodGet, "/api/quotes/999/scenarios", token, nil)
	expectStatus(t, rr, http.StatusNotFound)
}

func TestPricesImport(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	token := adminToken(t, srv)
	ctx := context.Background()

	supplier, err := srv.store.CreateSupplier(ctx, store.Supplier{Name: "Acme", Active: true})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	pump, err := srv.store.CreateItem(ctx, store.CatalogItem{SKU: "PUMP-1", Name: "Pump"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	valve, err := srv.store.CreateItem(ctx, store.CatalogItem{SKU: "VALVE-1", Name: "Valve"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := srv.store.CreateSKUMapping(ctx, store.SKUMapping{SupplierID: supplier.ID, SupplierSKU: "AC-77", CatalogItemID: valve.ID}); err != nil {
		t.Fatalf("create sku mapping: %v", err)
	}

	buf := priceWorkbook(t, map[string]string{
		"A1": "sku", "B1": "supplier_sku", "C1": "price",
		"A2": "PUMP-1", "C2": "12.5",
		"B3": "AC-77", "C3": "4",
		"A4": "GHOST", "C4": "1",
	})

	rr := importPrices(t, h, token, supplier.ID, buf)
	expectStatus(t, rr, http.StatusOK)

	var result importResult
	decodeBody(t, rr, &result)
	if result.Imported != 2 || len(result.Skipped) != 1 || result.Skipped[0].Row != 4 {
		t.Fatalf("unexpected import result: %+v", result)
	}

	prices, err := srv.store.LatestPrices(ctx, pump.ID)
	if err != nil {
		t.Fatalf("latest prices: %v", err)
	}
	if len(prices) != 1 || !prices[0].PriceFobUSD.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected pump prices: %+v", prices)
	}
}

func TestPricesImportRollsBackOnFailure(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	token := adminToken(t, srv)
	ctx := context.Background()

	supplier, err := srv.store.CreateSupplier(ctx, store.Supplier{Name: "Acme", Active: true})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	pump, err := srv.store.CreateItem(ctx, store.CatalogItem{SKU: "PUMP-1", Name: "Pump"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	valve, err := srv.store.CreateItem(ctx, store.CatalogItem{SKU: "VALVE-1", Name: "Valve"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := srv.store.DB().Exec(fmt.Sprintf(`
		CREATE TRIGGER reject_valve_price BEFORE INSERT ON prices
		WHEN NEW.catalog_item_id = %d
		BEGIN SELECT RAISE(ABORT, 'valve prices are frozen'); END
	`, valve.ID)); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	buf := priceWorkbook(t, map[string]string{
		"A1": "sku", "B1": "price",
		"A2": "PUMP-1", "B2": "12.5",
		"A3": "VALVE-1", "B3": "4",
	})
	rr := importPrices(t, h, token, supplier.ID, buf)
	expectStatus(t, rr, http.StatusInternalServerError)

	prices, err := srv.store.ListPrices(ctx, pump.ID)
	if err != nil {
		t.Fatalf("list prices: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("expected no pump prices after rollback, got %+v", prices)
	}
}

func TestPricesCreateRejectsBadValidFrom(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	token := adminToken(t, srv)
	ctx := context.Background()

	supplier, err := srv.store.CreateSupplier(ctx, store.Supplier{Name: "Acme", Active: true})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	item, err := srv.store.CreateItem(ctx, store.CatalogItem{SKU: "PUMP-1", Name: "Pump"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	path := fmt.Sprintf("/api/items/%d/prices", item.ID)

	rr := doRequest(t, h, http.MethodPost, path, token, map[string]any{
		"supplier_id": supplier.ID, "price_fob_usd": "100", "valid_from": "2024-01-01",
	})
	expectStatus(t, rr, http.StatusCreated)
	var created store.Price
	decodeBody(t, rr, &created)
	if created.ValidFrom != "2024-01-01 00:00:00" {
		t.Fatalf("expected normalized valid_from, got %q", created.ValidFrom)
	}

	rr = doRequest(t, h, http.MethodPost, path, token, map[string]any{
		"supplier_id": supplier.ID, "price_fob_usd": "80", "valid_from": "01/06/2026",
	})
	expectStatus(t, rr, http.StatusBadRequest)
	var body errorResponse
	decodeBody(t, rr, &body)
	if _, ok := body.Fields["valid_from"]; !ok {
		t.Fatalf("expected valid_from field error, got %+v", body)
	}

	latest, err := srv.store.LatestPrices(ctx, item.ID)
	if err != nil {
		t.Fatalf("latest prices: %v", err)
	}
	if len(latest) != 1 || !latest[0].PriceFobUSD.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected latest prices: %+v", latest)
	}
}

func priceWorkbook(t *testing.T, cells map[string]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for ref, v := range cells {
		if err := f.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatalf("set cell: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func importPrices(t *testing.T, h http.Handler, token string, supplierID int64, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/suppliers/%d/prices/import", supplierID), body)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
