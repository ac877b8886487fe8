package store

import "context"

type Client struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

func (s *Store) CreateClient(ctx context.Context, c Client) (Client, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, country, email, notes)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at
	`, c.Name, c.Country, c.Email, c.Notes).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Client{}, classify("insert client", err)
	}
	return c, nil
}

func (s *Store) GetClient(ctx context.Context, id int64) (Client, error) {
	var c Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, country, email, notes, created_at
		FROM clients
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Country, &c.Email, &c.Notes, &c.CreatedAt)
	if err != nil {
		return Client{}, classify("query client", err)
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, country, email, notes, created_at
		FROM clients
		ORDER BY name, id
	`)
	if err != nil {
		return nil, classify("query clients", err)
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Email, &c.Notes, &c.CreatedAt); err != nil {
			return nil, classify("scan client", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate clients", err)
	}
	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, c Client) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET
			name = ?,
			country = ?,
			email = ?,
			notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, c.Name, c.Country, c.Email, c.Notes, c.ID)
	if err != nil {
		return classify("update client", err)
	}
	return affectedOne("update client", result)
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delete client", "clients", id)
}
