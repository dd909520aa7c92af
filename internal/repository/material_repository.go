package repository

import (
	"context"
	"database/sql"
	"fmt"

	"zonelan-service/internal/models"
)

// MaterialQueries define las consultas sobre materiales
type MaterialQueries interface {
	GetMaterial(ctx context.Context, id int) (*models.Material, error)
	ListMaterials(ctx context.Context) ([]*models.Material, error)
	CreateMaterial(ctx context.Context, m *models.Material) error
	UpdateMaterial(ctx context.Context, m *models.Material) error
	UpdateMaterialQuantity(ctx context.Context, id, quantity int) error
}

const materialColumns = `id, name, quantity, price, created_at, updated_at`

func scanMaterial(row interface{ Scan(...interface{}) error }) (*models.Material, error) {
	var m models.Material
	err := row.Scan(&m.ID, &m.Name, &m.Quantity, &m.Price, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMaterial obtiene un material por id; nil si no existe
func (q *queries) GetMaterial(ctx context.Context, id int) (*models.Material, error) {
	m, err := scanMaterial(q.db.QueryRowContext(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return m, nil
}

// ListMaterials lista todos los materiales ordenados por nombre
func (q *queries) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+materialColumns+` FROM materials ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	var materials []*models.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// CreateMaterial inserta un material y rellena id y timestamps
func (q *queries) CreateMaterial(ctx context.Context, m *models.Material) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO materials (name, quantity, price)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		m.Name, m.Quantity, m.Price,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

// UpdateMaterial actualiza nombre, cantidad y precio
func (q *queries) UpdateMaterial(ctx context.Context, m *models.Material) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE materials SET name = $1, quantity = $2, price = $3, updated_at = NOW()
		WHERE id = $4`,
		m.Name, m.Quantity, m.Price, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update material: %w", err)
	}
	return requireRowsAffected(result, "material", m.ID)
}

// UpdateMaterialQuantity actualiza solo la cantidad total
func (q *queries) UpdateMaterialQuantity(ctx context.Context, id, quantity int) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE materials SET quantity = $1, updated_at = NOW() WHERE id = $2`,
		quantity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update material quantity: %w", err)
	}
	return requireRowsAffected(result, "material", id)
}

func requireRowsAffected(result sql.Result, entity string, id int) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no %s record found with id %d", entity, id)
	}
	return nil
}
