package store

import (
	"context"

	"github.com/Simplici0/importhub/internal/landed"
)

// GetCostSettings returns the singleton default cost configuration.
func (s *Store) GetCostSettings(ctx context.Context) (landed.CostConfig, error) {
	var cfg landed.CostConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT container_type, freight_per_container_usd, insurance_rate, fixed_costs_usd, destination
		FROM cost_settings
		WHERE id = 1
	`).Scan(&cfg.ContainerType, &cfg.FreightPerContainerUSD, &cfg.InsuranceRate, &cfg.FixedCostsUSD, &cfg.Destination)
	if err != nil {
		return landed.CostConfig{}, classify("query cost settings", err)
	}
	return cfg, nil
}

// PutCostSettings upserts the singleton default cost configuration.
func (s *Store) PutCostSettings(ctx context.Context, cfg landed.CostConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cost_settings (id, container_type, freight_per_container_usd, insurance_rate, fixed_costs_usd, destination)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			container_type = excluded.container_type,
			freight_per_container_usd = excluded.freight_per_container_usd,
			insurance_rate = excluded.insurance_rate,
			fixed_costs_usd = excluded.fixed_costs_usd,
			destination = excluded.destination,
			updated_at = CURRENT_TIMESTAMP
	`, string(cfg.ContainerType), cfg.FreightPerContainerUSD, cfg.InsuranceRate, cfg.FixedCostsUSD, string(cfg.Destination))
	if err != nil {
		return classify("upsert cost settings", err)
	}
	return nil
}
