package store

import "context"

type Supplier struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	Contact   string `json:"contact"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

const supplierColumns = `id, name, country, contact, active, created_at`

func scanSupplier(sc interface{ Scan(...any) error }) (Supplier, error) {
	var sp Supplier
	err := sc.Scan(&sp.ID, &sp.Name, &sp.Country, &sp.Contact, &sp.Active, &sp.CreatedAt)
	return sp, err
}

func (s *Store) CreateSupplier(ctx context.Context, sp Supplier) (Supplier, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suppliers (name, country, contact, active)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at
	`, sp.Name, sp.Country, sp.Contact, sp.Active).Scan(&sp.ID, &sp.CreatedAt)
	if err != nil {
		return Supplier{}, classify("insert supplier", err)
	}
	return sp, nil
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	sp, err := scanSupplier(s.db.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`, id))
	if err != nil {
		return Supplier{}, classify("query supplier", err)
	}
	return sp, nil
}

// ListSuppliers returns suppliers by name; activeOnly drops inactive ones.
func (s *Store) ListSuppliers(ctx context.Context, activeOnly bool) ([]Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE (? = FALSE OR active = TRUE)
		ORDER BY name, id
	`, activeOnly)
	if err != nil {
		return nil, classify("query suppliers", err)
	}
	defer rows.Close()

	suppliers := make([]Supplier, 0)
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, classify("scan supplier", err)
		}
		suppliers = append(suppliers, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate suppliers", err)
	}
	return suppliers, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sp Supplier) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE suppliers
		SET
			name = ?,
			country = ?,
			contact = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sp.Name, sp.Country, sp.Contact, sp.Active, sp.ID)
	if err != nil {
		return classify("update supplier", err)
	}
	return affectedOne("update supplier", result)
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delete supplier", "suppliers", id)
}
