package store

import "context"

// SKUMapping links a supplier's own SKU to a catalog item.
type SKUMapping struct {
	ID            int64  `json:"id"`
	SupplierID    int64  `json:"supplier_id"`
	SupplierSKU   string `json:"supplier_sku"`
	CatalogItemID int64  `json:"catalog_item_id"`
}

func (s *Store) CreateSKUMapping(ctx context.Context, m SKUMapping) (SKUMapping, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sku_mappings (supplier_id, supplier_sku, catalog_item_id)
		VALUES (?, ?, ?)
		RETURNING id
	`, m.SupplierID, m.SupplierSKU, m.CatalogItemID).Scan(&m.ID)
	if err != nil {
		return SKUMapping{}, classify("insert sku mapping", err)
	}
	return m, nil
}

func (s *Store) ListSKUMappings(ctx context.Context, supplierID int64) ([]SKUMapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, supplier_id, supplier_sku, catalog_item_id
		FROM sku_mappings
		WHERE (? = 0 OR supplier_id = ?)
		ORDER BY supplier_id, supplier_sku
	`, supplierID, supplierID)
	if err != nil {
		return nil, classify("query sku mappings", err)
	}
	defer rows.Close()

	mappings := make([]SKUMapping, 0)
	for rows.Next() {
		var m SKUMapping
		if err := rows.Scan(&m.ID, &m.SupplierID, &m.SupplierSKU, &m.CatalogItemID); err != nil {
			return nil, classify("scan sku mapping", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate sku mappings", err)
	}
	return mappings, nil
}

// ResolveSKU returns the catalog item mapped to a supplier SKU.
func (s *Store) ResolveSKU(ctx context.Context, supplierID int64, supplierSKU string) (int64, error) {
	var itemID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT catalog_item_id
		FROM sku_mappings
		WHERE supplier_id = ? AND supplier_sku = ?
	`, supplierID, supplierSKU).Scan(&itemID)
	if err != nil {
		return 0, classify("resolve supplier sku", err)
	}
	return itemID, nil
}

func (s *Store) DeleteSKUMapping(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delete sku mapping", "sku_mappings", id)
}
