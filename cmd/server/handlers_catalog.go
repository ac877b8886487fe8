package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/importhub/internal/export"
	"github.com/Simplici0/importhub/internal/store"
)

const maxUploadBytes = 10 << 20

type clientRequest struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country"`
	Email   string `json:"email" validate:"omitempty,email"`
	Notes   string `json:"notes"`
}

func (req clientRequest) client(id int64) store.Client {
	return store.Client{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
		Email:   strings.TrimSpace(req.Email),
		Notes:   strings.TrimSpace(req.Notes),
	}
}

func (s *server) handleClientsList(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, clients)
}

func (s *server) handleClientsCreate(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.store.CreateClient(r.Context(), req.client(0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, c)
}

func (s *server) handleClientsGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.store.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, c)
}

func (s *server) handleClientsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req clientRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateClient(r.Context(), req.client(id)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleClientsGet(w, r)
}

func (s *server) handleClientsDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.store.DeleteClient)
}

type supplierRequest struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country"`
	Contact string `json:"contact"`
	Active  *bool  `json:"active"`
}

func (req supplierRequest) supplier(id int64) store.Supplier {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return store.Supplier{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
		Contact: strings.TrimSpace(req.Contact),
		Active:  active,
	}
}

func (s *server) handleSuppliersList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "1"
	suppliers, err := s.store.ListSuppliers(r.Context(), activeOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, suppliers)
}

func (s *server) handleSuppliersCreate(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sp, err := s.store.CreateSupplier(r.Context(), req.supplier(0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, sp)
}

func (s *server) handleSuppliersGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sp, err := s.store.GetSupplier(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, sp)
}

func (s *server) handleSuppliersUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req supplierRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateSupplier(r.Context(), req.supplier(id)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleSuppliersGet(w, r)
}

func (s *server) handleSuppliersDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.store.DeleteSupplier)
}

type skuMappingRequest struct {
	SupplierSKU   string `json:"supplier_sku" validate:"required"`
	CatalogItemID int64  `json:"catalog_item_id" validate:"gt=0"`
}

func (s *server) handleSKUMappingsList(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mappings, err := s.store.ListSKUMappings(r.Context(), supplierID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, mappings)
}

func (s *server) handleSKUMappingsCreate(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req skuMappingRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.store.CreateSKUMapping(r.Context(), store.SKUMapping{
		SupplierID:    supplierID,
		SupplierSKU:   strings.TrimSpace(req.SupplierSKU),
		CatalogItemID: req.CatalogItemID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, m)
}

func (s *server) handleSKUMappingsDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.store.DeleteSKUMapping)
}

type itemRequest struct {
	SKU          string          `json:"sku" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category"`
	HSCode       string          `json:"hs_code"`
	UnitCBM      decimal.Decimal `json:"unit_cbm" validate:"gte=0"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg" validate:"gte=0"`
	MOQ          int64           `json:"moq" validate:"gte=0"`
}

func (req itemRequest) item(id int64) store.CatalogItem {
	moq := req.MOQ
	if moq == 0 {
		moq = 1
	}
	return store.CatalogItem{
		ID:           id,
		SKU:          strings.TrimSpace(req.SKU),
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		HSCode:       strings.TrimSpace(req.HSCode),
		UnitCBM:      req.UnitCBM,
		UnitWeightKg: req.UnitWeightKg,
		MOQ:          moq,
	}
}

func (s *server) handleItemsList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, items)
}

func (s *server) handleItemsCreate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.store.CreateItem(r.Context(), req.item(0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, it)
}

func (s *server) handleItemsGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.store.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, it)
}

func (s *server) handleItemsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req itemRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateItem(r.Context(), req.item(id)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleItemsGet(w, r)
}

func (s *server) handleItemsDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.store.DeleteItem)
}

type priceRequest struct {
	SupplierID       int64           `json:"supplier_id" validate:"gt=0"`
	PriceFobUSD      decimal.Decimal `json:"price_fob_usd" validate:"gte=0"`
	PriceOriginal    decimal.Decimal `json:"price_original" validate:"gte=0"`
	CurrencyOriginal string          `json:"currency_original" validate:"omitempty,len=3"`
	ValidFrom        string          `json:"valid_from" validate:"omitempty,timestamp"`
}

func (s *server) handlePricesList(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	prices, err := s.store.ListPrices(r.Context(), itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, prices)
}

func (s *server) handlePricesCreate(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req priceRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.store.CreatePrice(r.Context(), store.Price{
		SupplierID:       req.SupplierID,
		CatalogItemID:    itemID,
		PriceFobUSD:      req.PriceFobUSD,
		PriceOriginal:    req.PriceOriginal,
		CurrencyOriginal: strings.ToUpper(strings.TrimSpace(req.CurrencyOriginal)),
		ValidFrom:        strings.TrimSpace(req.ValidFrom),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, p)
}

func (s *server) handlePricesDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.store.DeletePrice)
}

type importResult struct {
	Imported int               `json:"imported"`
	Skipped  []export.RowError `json:"skipped"`
}

// handlePricesImport reads an xlsx price list for one supplier from the
// request body. Rows that cannot be tied to a catalog item are skipped; any
// other failure rolls back the whole list.
func (s *server) handlePricesImport(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.store.GetSupplier(r.Context(), supplierID); err != nil {
		s.writeError(w, r, err)
		return
	}

	rows, skipped, err := export.ReadPrices(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.writeError(w, r, badRequestf("read price list: %v", err))
		return
	}

	result := importResult{Skipped: skipped}
	if result.Skipped == nil {
		result.Skipped = make([]export.RowError, 0)
	}
	err = s.store.WithTx(r.Context(), func(tx *store.Store) error {
		for _, row := range rows {
			itemID, err := resolveImportItem(r.Context(), tx, supplierID, row)
			if errors.Is(err, store.ErrNotFound) {
				result.Skipped = append(result.Skipped, export.RowError{Row: row.Row, Reason: "unknown sku"})
				continue
			}
			if err != nil {
				return err
			}

			if _, err := tx.CreatePrice(r.Context(), store.Price{
				SupplierID:       supplierID,
				CatalogItemID:    itemID,
				PriceFobUSD:      row.PriceFobUSD,
				PriceOriginal:    row.PriceOriginal,
				CurrencyOriginal: row.Currency,
			}); err != nil {
				return fmt.Errorf("row %d: %w", row.Row, err)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("imported price list",
		zap.Int64("supplier_id", supplierID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)))
	s.writeJSON(w, r, http.StatusOK, result)
}

func resolveImportItem(ctx context.Context, st *store.Store, supplierID int64, row export.PriceRow) (int64, error) {
	if row.SKU != "" {
		it, err := st.GetItemBySKU(ctx, row.SKU)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", row.Row, err)
		}
		return it.ID, nil
	}
	id, err := st.ResolveSKU(ctx, supplierID, row.SupplierSKU)
	if err != nil {
		return 0, fmt.Errorf("row %d: %w", row.Row, err)
	}
	return id, nil
}

func (s *server) deleteWith(w http.ResponseWriter, r *http.Request, del func(context.Context, int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
