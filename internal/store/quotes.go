package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/importhub/internal/landed"
)

const (
	QuoteDraft    = "draft"
	QuoteSent     = "sent"
	QuoteAccepted = "accepted"
	QuoteRejected = "rejected"
)

type Quote struct {
	ID        int64             `json:"id"`
	ClientID  *int64            `json:"client_id,omitempty"`
	Title     string            `json:"title"`
	Notes     string            `json:"notes"`
	Status    string            `json:"status"`
	Config    landed.CostConfig `json:"config"`
	CreatedAt string            `json:"created_at"`
	// BreakdownJSON is the last persisted engine result, empty until the
	// quote is first priced.
	BreakdownJSON string `json:"-"`
}

type QuoteLine struct {
	ID             int64            `json:"id"`
	QuoteID        int64            `json:"quote_id"`
	CatalogItemID  int64            `json:"catalog_item_id"`
	SupplierID     *int64           `json:"supplier_id,omitempty"`
	Quantity       int64            `json:"quantity"`
	FobOverrideUSD *decimal.Decimal `json:"fob_override_usd,omitempty"`
}

type QuoteListItem struct {
	ID        int64           `json:"id"`
	CreatedAt string          `json:"created_at"`
	Title     string          `json:"title"`
	Status    string          `json:"status"`
	Landed    decimal.Decimal `json:"landed"`
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func ptrInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}

func (s *Store) CreateQuote(ctx context.Context, q Quote) (Quote, error) {
	if q.Status == "" {
		q.Status = QuoteDraft
	}
	c := q.Config
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO quotes (
			client_id, title, notes, status,
			container_type, container_qty_override, freight_per_container_usd,
			insurance_rate, fixed_costs_usd, destination
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`,
		nullInt(q.ClientID), q.Title, q.Notes, q.Status,
		string(c.ContainerType), nullInt(c.ContainerQtyOverride), c.FreightPerContainerUSD,
		c.InsuranceRate, c.FixedCostsUSD, string(c.Destination),
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return Quote{}, classify("insert quote", err)
	}
	return q, nil
}

func (s *Store) GetQuote(ctx context.Context, id int64) (Quote, error) {
	var (
		q        Quote
		clientID sql.NullInt64
		override sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			id, client_id, title, notes, status,
			container_type, container_qty_override, freight_per_container_usd,
			insurance_rate, fixed_costs_usd, destination,
			breakdown_json, created_at
		FROM quotes
		WHERE id = ?
	`, id).Scan(
		&q.ID, &clientID, &q.Title, &q.Notes, &q.Status,
		&q.Config.ContainerType, &override, &q.Config.FreightPerContainerUSD,
		&q.Config.InsuranceRate, &q.Config.FixedCostsUSD, &q.Config.Destination,
		&q.BreakdownJSON, &q.CreatedAt,
	)
	if err != nil {
		return Quote{}, classify("query quote", err)
	}
	q.ClientID = ptrInt(clientID)
	q.Config.ContainerQtyOverride = ptrInt(override)
	return q, nil
}

// ListQuotes returns quotes newest first, filtered by title or notes when
// query is non-empty.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]QuoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, title, status, breakdown_json
		FROM quotes
		WHERE (? = '' OR title LIKE ? OR notes LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, classify("query quotes", err)
	}
	defer rows.Close()

	quotes := make([]QuoteListItem, 0)
	for rows.Next() {
		var item QuoteListItem
		var breakdownJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &item.Status, &breakdownJSON); err != nil {
			return nil, classify("scan quote", err)
		}
		item.Landed = extractLandedFromJSON(breakdownJSON)
		quotes = append(quotes, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate quotes", err)
	}
	return quotes, nil
}

// extractLandedFromJSON reads the landed figure of a stored snapshot,
// yielding zero for quotes that were never priced.
func extractLandedFromJSON(breakdownJSON string) decimal.Decimal {
	if breakdownJSON == "" {
		return decimal.Zero
	}
	var snapshot struct {
		Landed decimal.Decimal `json:"landed"`
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &snapshot); err != nil {
		return decimal.Zero
	}
	return snapshot.Landed
}

func (s *Store) UpdateQuote(ctx context.Context, q Quote) error {
	c := q.Config
	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET
			client_id = ?,
			title = ?,
			notes = ?,
			status = ?,
			container_type = ?,
			container_qty_override = ?,
			freight_per_container_usd = ?,
			insurance_rate = ?,
			fixed_costs_usd = ?,
			destination = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		nullInt(q.ClientID), q.Title, q.Notes, q.Status,
		string(c.ContainerType), nullInt(c.ContainerQtyOverride), c.FreightPerContainerUSD,
		c.InsuranceRate, c.FixedCostsUSD, string(c.Destination), q.ID,
	)
	if err != nil {
		return classify("update quote", err)
	}
	return affectedOne("update quote", result)
}

// SaveQuoteSnapshot stores the serialized breakdown computed for a quote.
func (s *Store) SaveQuoteSnapshot(ctx context.Context, quoteID int64, breakdown landed.CostBreakdown) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return classify("encode quote snapshot", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET breakdown_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(raw), quoteID)
	if err != nil {
		return classify("save quote snapshot", err)
	}
	return affectedOne("save quote snapshot", result)
}

func (s *Store) DeleteQuote(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delete quote", "quotes", id)
}

func (s *Store) AddQuoteLine(ctx context.Context, l QuoteLine) (QuoteLine, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO quote_lines (quote_id, catalog_item_id, supplier_id, quantity, fob_override_usd)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, l.QuoteID, l.CatalogItemID, nullInt(l.SupplierID), l.Quantity, nullDecimal(l.FobOverrideUSD)).Scan(&l.ID)
	if err != nil {
		return QuoteLine{}, classify("insert quote line", err)
	}
	return l, nil
}

func (s *Store) ListQuoteLines(ctx context.Context, quoteID int64) ([]QuoteLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quote_id, catalog_item_id, supplier_id, quantity, fob_override_usd
		FROM quote_lines
		WHERE quote_id = ?
		ORDER BY id
	`, quoteID)
	if err != nil {
		return nil, classify("query quote lines", err)
	}
	defer rows.Close()

	lines := make([]QuoteLine, 0)
	for rows.Next() {
		var (
			l          QuoteLine
			supplierID sql.NullInt64
			override   decimal.NullDecimal
		)
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.CatalogItemID, &supplierID, &l.Quantity, &override); err != nil {
			return nil, classify("scan quote line", err)
		}
		l.SupplierID = ptrInt(supplierID)
		if override.Valid {
			l.FobOverrideUSD = &override.Decimal
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate quote lines", err)
	}
	return lines, nil
}

func (s *Store) DeleteQuoteLine(ctx context.Context, quoteID, lineID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quote_lines WHERE id = ? AND quote_id = ?`, lineID, quoteID)
	if err != nil {
		return classify("delete quote line", err)
	}
	return affectedOne("delete quote line", result)
}

// SumSnapshotLanded totals the landed figure of every priced quote.
func (s *Store) SumSnapshotLanded(ctx context.Context) (decimal.Decimal, int, error) {
	quotes, err := s.ListQuotes(ctx, "")
	if err != nil {
		return decimal.Zero, 0, err
	}
	sum := decimal.Zero
	priced := 0
	for _, q := range quotes {
		if q.Landed.IsZero() {
			continue
		}
		sum = sum.Add(q.Landed)
		priced++
	}
	return sum, priced, nil
}
