// Package seed prepares a fresh database for first use.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/importhub/internal/landed"
)

const demoSupplierName = "Proveedor Demo"

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	Costs         landed.CostConfig
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	for _, step := range []func(context.Context, *sql.Tx, Config, *Stats) error{
		seedAdmin,
		ensureCostSettings,
		ensureDemoSupplier,
	} {
		if err := step(ctx, tx, cfg, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// seedAdmin creates the admin account, or promotes an existing account with
// the same email. The stored password is never overwritten.
func seedAdmin(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var role string
	err := tx.QueryRowContext(ctx, `SELECT role FROM users WHERE email = ?`, cfg.AdminEmail).Scan(&role)
	switch {
	case err == nil:
		if role == "admin" {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET role = 'admin' WHERE email = ?`, cfg.AdminEmail); err != nil {
			return fmt.Errorf("promote admin user: %w", err)
		}
		stats.Updates++
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check admin user existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash, role) VALUES (?, ?, 'admin')`, cfg.AdminEmail, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureCostSettings(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM cost_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check cost settings existence: %w", err)
	}
	if exists {
		return nil
	}

	c := cfg.Costs
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cost_settings (
			id,
			container_type,
			freight_per_container_usd,
			insurance_rate,
			fixed_costs_usd,
			destination
		)
		VALUES (1, ?, ?, ?, ?, ?)
	`, string(c.ContainerType), c.FreightPerContainerUSD, c.InsuranceRate, c.FixedCostsUSD, string(c.Destination)); err != nil {
		return fmt.Errorf("insert cost settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureDemoSupplier(ctx context.Context, tx *sql.Tx, _ Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM suppliers WHERE name = ? LIMIT 1)`, demoSupplierName).Scan(&exists); err != nil {
		return fmt.Errorf("check demo supplier existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO suppliers (name, country, contact, active)
		VALUES (?, ?, ?, ?)
	`, demoSupplierName, "CN", "", true); err != nil {
		return fmt.Errorf("insert demo supplier: %w", err)
	}
	stats.Inserts++
	return nil
}
