package main

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/importhub/internal/intel"
	"github.com/Simplici0/importhub/internal/landed"
	"github.com/Simplici0/importhub/internal/validate"
)

type compareRequest struct {
	Quantity int64                       `json:"quantity" validate:"gte=1"`
	Config   *validate.CostConfigRequest `json:"config,omitempty"`
}

type kitRequest struct {
	BudgetUSD       decimal.Decimal             `json:"budget_usd" validate:"gt=0"`
	CategoryWeights map[string]decimal.Decimal  `json:"category_weights" validate:"required,min=1"`
	Config          *validate.CostConfigRequest `json:"config,omitempty"`
}

// costConfig returns the requested config or the stored defaults.
func (s *server) costConfig(ctx context.Context, req *validate.CostConfigRequest) (landed.CostConfig, error) {
	if req != nil {
		return req.Config(), nil
	}
	return s.store.GetCostSettings(ctx)
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req compareRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg, err := s.costConfig(r.Context(), req.Config)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cmp, err := s.intel.CompareItem(r.Context(), itemID, req.Quantity, cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, cmp)
}

func (s *server) handlePriceStats(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stats, err := s.intel.PriceStats(r.Context(), itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, stats)
}

func (s *server) handleKit(w http.ResponseWriter, r *http.Request) {
	var req kitRequest
	if err := s.bind(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	for category, weight := range req.CategoryWeights {
		if weight.IsNegative() {
			s.writeError(w, r, validate.FieldErrors{"category_weights[" + category + "]": "must be greater than or equal to 0"})
			return
		}
	}
	cfg, err := s.costConfig(r.Context(), req.Config)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kit, err := s.intel.GenerateKit(r.Context(), intel.KitRequest{
		BudgetUSD:       req.BudgetUSD,
		CategoryWeights: req.CategoryWeights,
		Config:          cfg,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, kit)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.intel.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}
