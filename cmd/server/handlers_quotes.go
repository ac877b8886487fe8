package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/importhub/internal/export"
	"github.com/Simplici0/importhub/internal/landed"
	"github.com/Simplici0/importhub/internal/quote"
	"github.com/Simplici0/importhub/internal/store"
	"github.com/Simplici0/importhub/internal/validate"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type quoteRequest struct {
	ClientID *int64                      `json:"client_id,omitempty" validate:"omitnil,gt=0"`
	Title    string                      `json:"title"`
	Notes    string                      `json:"notes"`
	Status   string                      `json:"status" validate:"omitempty,oneof=draft sent accepted rejected"`
	Config   *validate.CostConfigRequest `json:"config,omitempty"`
}

type quoteLineRequest struct {
	CatalogItemID  int64            `json:"catalog_item_id" validate:"gt=0"`
	SupplierID     *int64           `json:"supplier_id,omitempty" validate:"omitnil,gt=0"`
	Quantity       int64            `json:"quantity" validate:"gte=1"`
	FobOverrideUSD *decimal.Decimal `json:"fob_override_usd,omitempty" validate:"omitnil,gte=0"`
}

type estimateResponse struct {
	Breakdown landed.CostBreakdown    `json:"breakdown"`
	Scenarios []landed.ScenarioResult `json:"scenarios,omitempty"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.store.ListQuotes(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, quotes)
}

func (s *server) handleQuotesCreate(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	q := store.Quote{
		ClientID: req.ClientID,
		Title:    strings.TrimSpace(req.Title),
		Notes:    strings.TrimSpace(req.Notes),
		Status:   req.Status,
	}
	if req.Config != nil {
		q.Config = req.Config.Config()
	} else {
		cfg, err := s.store.GetCostSettings(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		q.Config = cfg
	}

	created, err := s.store.CreateQuote(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, created)
}

func (s *server) handleQuotesUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req quoteRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.store.GetQuote(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q.ClientID = req.ClientID
	q.Title = strings.TrimSpace(req.Title)
	q.Notes = strings.TrimSpace(req.Notes)
	if req.Status != "" {
		q.Status = req.Status
	}
	if req.Config != nil {
		q.Config = req.Config.Config()
	}
	if err := s.store.UpdateQuote(r.Context(), q); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleQuoteDetail(w, r)
}

func (s *server) handleQuotesDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.store.DeleteQuote)
}

func (s *server) handleQuoteLinesCreate(w http.ResponseWriter, r *http.Request) {
	quoteID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req quoteLineRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.store.GetQuote(r.Context(), quoteID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.store.GetItem(r.Context(), req.CatalogItemID); err != nil {
		s.writeError(w, r, badRequestf("unknown catalog item %d", req.CatalogItemID))
		return
	}

	line, err := s.store.AddQuoteLine(r.Context(), store.QuoteLine{
		QuoteID:        quoteID,
		CatalogItemID:  req.CatalogItemID,
		SupplierID:     req.SupplierID,
		Quantity:       req.Quantity,
		FobOverrideUSD: req.FobOverrideUSD,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, line)
}

func (s *server) handleQuoteLinesDelete(w http.ResponseWriter, r *http.Request) {
	quoteID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lineID, err := pathID(r, "lineID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteQuoteLine(r.Context(), quoteID, lineID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuoteDetail reprices the quote on every read so the snapshot
// always reflects current prices.
func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	d, ok := s.quoteDetail(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

func (s *server) handleQuoteBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bd, err := s.quotes.Breakdown(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, bd)
}

func (s *server) handleQuoteScenarios(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names, err := scenarioNames(r.URL.Query()["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := s.quotes.Scenarios(r.Context(), id, names...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, results)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	d, ok := s.quoteDetail(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := quote.WriteText(&buf, d); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *server) handleQuoteXLSX(w http.ResponseWriter, r *http.Request) {
	d, ok := s.quoteDetail(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteQuote(&buf, d); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%d.xlsx"`, d.Quote.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *server) quoteDetail(w http.ResponseWriter, r *http.Request) (quote.Detail, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return quote.Detail{}, false
	}
	d, err := s.quotes.Detail(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return quote.Detail{}, false
	}
	return d, true
}

// handleEstimate prices ad-hoc lines without touching the database.
func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req validate.EstimateRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	inputs := req.Inputs()
	cfg := req.Config.Config()
	resp := estimateResponse{Breakdown: landed.Compute(inputs, cfg)}
	if len(req.Scenarios) > 0 {
		names := make([]landed.Scenario, 0, len(req.Scenarios))
		for _, n := range req.Scenarios {
			names = append(names, landed.Scenario(n))
		}
		resp.Scenarios = landed.SimulateAll(inputs, cfg, names...)
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func scenarioNames(raw []string) ([]landed.Scenario, error) {
	names := make([]landed.Scenario, 0, len(raw))
	for _, n := range raw {
		name := landed.Scenario(strings.TrimSpace(n))
		if _, ok := landed.Preset(name); !ok {
			return nil, badRequestf("unknown scenario %q", n)
		}
		names = append(names, name)
	}
	return names, nil
}
