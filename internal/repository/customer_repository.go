package repository

import (
	"context"
	"database/sql"
	"fmt"

	"zonelan-service/internal/models"
)

// CustomerQueries define las consultas sobre clientes e incidencias
type CustomerQueries interface {
	GetCustomer(ctx context.Context, id int) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id int) error

	GetIncident(ctx context.Context, id int) (*models.Incident, error)
	ListIncidents(ctx context.Context, customerID *int) ([]*models.Incident, error)
	CreateIncident(ctx context.Context, i *models.Incident) error
	UpdateIncident(ctx context.Context, i *models.Incident) error
	DeleteIncident(ctx context.Context, id int) error
}

func (q *queries) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	var c models.Customer
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, tax_id, address, phone, email, created_at, updated_at
		FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (q *queries) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, tax_id, address, phone, email, created_at, updated_at
		FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var c models.Customer
		err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

func (q *queries) CreateCustomer(ctx context.Context, c *models.Customer) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO customers (name, tax_id, address, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		c.Name, c.TaxID, c.Address, c.Phone, c.Email,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (q *queries) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $1, tax_id = $2, address = $3, phone = $4, email = $5, updated_at = NOW()
		WHERE id = $6`,
		c.Name, c.TaxID, c.Address, c.Phone, c.Email, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return requireRowsAffected(result, "customer", c.ID)
}

func (q *queries) DeleteCustomer(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return requireRowsAffected(result, "customer", id)
}

func (q *queries) GetIncident(ctx context.Context, id int) (*models.Incident, error) {
	var i models.Incident
	err := q.db.QueryRowContext(ctx, `
		SELECT id, customer_id, title, description, status, priority, created_at, updated_at
		FROM incidents WHERE id = $1`, id,
	).Scan(&i.ID, &i.CustomerID, &i.Title, &i.Description, &i.Status, &i.Priority, &i.CreatedAt, &i.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return &i, nil
}

func (q *queries) ListIncidents(ctx context.Context, customerID *int) ([]*models.Incident, error) {
	query := `
		SELECT id, customer_id, title, description, status, priority, created_at, updated_at
		FROM incidents`
	var args []interface{}
	if customerID != nil {
		query += ` WHERE customer_id = $1`
		args = append(args, *customerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*models.Incident
	for rows.Next() {
		var i models.Incident
		err := rows.Scan(&i.ID, &i.CustomerID, &i.Title, &i.Description, &i.Status,
			&i.Priority, &i.CreatedAt, &i.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, &i)
	}
	return incidents, rows.Err()
}

func (q *queries) CreateIncident(ctx context.Context, i *models.Incident) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO incidents (customer_id, title, description, status, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		i.CustomerID, i.Title, i.Description, i.Status, i.Priority,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

func (q *queries) UpdateIncident(ctx context.Context, i *models.Incident) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE incidents
		SET title = $1, description = $2, status = $3, priority = $4, updated_at = NOW()
		WHERE id = $5`,
		i.Title, i.Description, i.Status, i.Priority, i.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}
	return requireRowsAffected(result, "incident", i.ID)
}

// DeleteIncident elimina una incidencia; sus partes de trabajo caen en cascada
func (q *queries) DeleteIncident(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	return requireRowsAffected(result, "incident", id)
}
