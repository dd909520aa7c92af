package repository

import (
	"context"
	"database/sql"
	"fmt"

	"zonelan-service/internal/models"
)

// StorageQueries define las consultas sobre la jerarquía de almacenamiento:
// almacenes, dependencias, estanterías y baldas
type StorageQueries interface {
	GetWarehouse(ctx context.Context, id int) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]*models.Warehouse, error)
	CreateWarehouse(ctx context.Context, w *models.Warehouse) error
	UpdateWarehouse(ctx context.Context, w *models.Warehouse) error
	DeleteWarehouse(ctx context.Context, id int) error
	LastWarehouseCode(ctx context.Context) (string, error)

	GetDepartment(ctx context.Context, id int) (*models.Department, error)
	ListDepartments(ctx context.Context, warehouseID int) ([]*models.Department, error)
	CreateDepartment(ctx context.Context, d *models.Department) error
	UpdateDepartment(ctx context.Context, d *models.Department) error
	DeleteDepartment(ctx context.Context, id int) error
	LastDepartmentCode(ctx context.Context, warehouseID int) (string, error)

	GetShelf(ctx context.Context, id int) (*models.Shelf, error)
	ListShelves(ctx context.Context, departmentID int) ([]*models.Shelf, error)
	CreateShelf(ctx context.Context, s *models.Shelf) error
	UpdateShelf(ctx context.Context, s *models.Shelf) error
	DeleteShelf(ctx context.Context, id int) error
	LastShelfCode(ctx context.Context, departmentID int) (string, error)

	GetTray(ctx context.Context, id int) (*models.Tray, error)
	ListTrays(ctx context.Context, shelfID int) ([]*models.Tray, error)
	CreateTray(ctx context.Context, t *models.Tray) error
	UpdateTray(ctx context.Context, t *models.Tray) error
	DeleteTray(ctx context.Context, id int) error
	LastTrayCode(ctx context.Context, shelfID int) (string, error)

	CountTrayLocations(ctx context.Context, trayID int) (int, error)
}

// lastCode devuelve el código máximo de una consulta de un solo valor;
// cadena vacía cuando la tabla aún no tiene filas para ese padre
func (q *queries) lastCode(ctx context.Context, query string, args ...interface{}) (string, error) {
	var code sql.NullString
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&code)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last code: %w", err)
	}
	return code.String, nil
}

// --- Almacenes ---

func (q *queries) GetWarehouse(ctx context.Context, id int) (*models.Warehouse, error) {
	var w models.Warehouse
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, code, location, description, is_active, created_at, updated_at
		FROM warehouses WHERE id = $1`, id,
	).Scan(&w.ID, &w.Name, &w.Code, &w.Location, &w.Description, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	return &w, nil
}

func (q *queries) ListWarehouses(ctx context.Context) ([]*models.Warehouse, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, code, location, description, is_active, created_at, updated_at
		FROM warehouses ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []*models.Warehouse
	for rows.Next() {
		var w models.Warehouse
		err := rows.Scan(&w.ID, &w.Name, &w.Code, &w.Location, &w.Description,
			&w.IsActive, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, &w)
	}
	return warehouses, rows.Err()
}

func (q *queries) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO warehouses (name, code, location, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		w.Name, w.Code, w.Location, w.Description, w.IsActive,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create warehouse: %w", err)
	}
	return nil
}

func (q *queries) UpdateWarehouse(ctx context.Context, w *models.Warehouse) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE warehouses
		SET name = $1, location = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5`,
		w.Name, w.Location, w.Description, w.IsActive, w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update warehouse: %w", err)
	}
	return requireRowsAffected(result, "warehouse", w.ID)
}

func (q *queries) DeleteWarehouse(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete warehouse: %w", err)
	}
	return requireRowsAffected(result, "warehouse", id)
}

func (q *queries) LastWarehouseCode(ctx context.Context) (string, error) {
	return q.lastCode(ctx, `SELECT MAX(code) FROM warehouses`)
}

// --- Dependencias ---

func (q *queries) GetDepartment(ctx context.Context, id int) (*models.Department, error) {
	var d models.Department
	err := q.db.QueryRowContext(ctx, `
		SELECT id, warehouse_id, name, code, description, is_active, created_at, updated_at
		FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.WarehouseID, &d.Name, &d.Code, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &d, nil
}

func (q *queries) ListDepartments(ctx context.Context, warehouseID int) ([]*models.Department, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, warehouse_id, name, code, description, is_active, created_at, updated_at
		FROM departments WHERE warehouse_id = $1 ORDER BY code`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		var d models.Department
		err := rows.Scan(&d.ID, &d.WarehouseID, &d.Name, &d.Code, &d.Description,
			&d.IsActive, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, &d)
	}
	return departments, rows.Err()
}

func (q *queries) CreateDepartment(ctx context.Context, d *models.Department) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO departments (warehouse_id, name, code, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		d.WarehouseID, d.Name, d.Code, d.Description, d.IsActive,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (q *queries) UpdateDepartment(ctx context.Context, d *models.Department) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE departments
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4`,
		d.Name, d.Description, d.IsActive, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update department: %w", err)
	}
	return requireRowsAffected(result, "department", d.ID)
}

func (q *queries) DeleteDepartment(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return requireRowsAffected(result, "department", id)
}

func (q *queries) LastDepartmentCode(ctx context.Context, warehouseID int) (string, error) {
	return q.lastCode(ctx, `SELECT MAX(code) FROM departments WHERE warehouse_id = $1`, warehouseID)
}

// --- Estanterías ---

func (q *queries) GetShelf(ctx context.Context, id int) (*models.Shelf, error) {
	var s models.Shelf
	err := q.db.QueryRowContext(ctx, `
		SELECT id, department_id, name, code, description, is_active, created_at, updated_at
		FROM shelves WHERE id = $1`, id,
	).Scan(&s.ID, &s.DepartmentID, &s.Name, &s.Code, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shelf: %w", err)
	}
	return &s, nil
}

func (q *queries) ListShelves(ctx context.Context, departmentID int) ([]*models.Shelf, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, department_id, name, code, description, is_active, created_at, updated_at
		FROM shelves WHERE department_id = $1 ORDER BY code`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shelves: %w", err)
	}
	defer rows.Close()

	var shelves []*models.Shelf
	for rows.Next() {
		var s models.Shelf
		err := rows.Scan(&s.ID, &s.DepartmentID, &s.Name, &s.Code, &s.Description,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shelf: %w", err)
		}
		shelves = append(shelves, &s)
	}
	return shelves, rows.Err()
}

func (q *queries) CreateShelf(ctx context.Context, s *models.Shelf) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO shelves (department_id, name, code, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		s.DepartmentID, s.Name, s.Code, s.Description, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shelf: %w", err)
	}
	return nil
}

func (q *queries) UpdateShelf(ctx context.Context, s *models.Shelf) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE shelves
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4`,
		s.Name, s.Description, s.IsActive, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shelf: %w", err)
	}
	return requireRowsAffected(result, "shelf", s.ID)
}

func (q *queries) DeleteShelf(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM shelves WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shelf: %w", err)
	}
	return requireRowsAffected(result, "shelf", id)
}

func (q *queries) LastShelfCode(ctx context.Context, departmentID int) (string, error) {
	return q.lastCode(ctx, `SELECT MAX(code) FROM shelves WHERE department_id = $1`, departmentID)
}

// --- Baldas ---

func (q *queries) GetTray(ctx context.Context, id int) (*models.Tray, error) {
	var t models.Tray
	err := q.db.QueryRowContext(ctx, `
		SELECT id, shelf_id, name, code, description, is_active, created_at, updated_at
		FROM trays WHERE id = $1`, id,
	).Scan(&t.ID, &t.ShelfID, &t.Name, &t.Code, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tray: %w", err)
	}
	return &t, nil
}

func (q *queries) ListTrays(ctx context.Context, shelfID int) ([]*models.Tray, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, shelf_id, name, code, description, is_active, created_at, updated_at
		FROM trays WHERE shelf_id = $1 ORDER BY code`, shelfID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trays: %w", err)
	}
	defer rows.Close()

	var trays []*models.Tray
	for rows.Next() {
		var t models.Tray
		err := rows.Scan(&t.ID, &t.ShelfID, &t.Name, &t.Code, &t.Description,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tray: %w", err)
		}
		trays = append(trays, &t)
	}
	return trays, rows.Err()
}

func (q *queries) CreateTray(ctx context.Context, t *models.Tray) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO trays (shelf_id, name, code, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		t.ShelfID, t.Name, t.Code, t.Description, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tray: %w", err)
	}
	return nil
}

func (q *queries) UpdateTray(ctx context.Context, t *models.Tray) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE trays
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4`,
		t.Name, t.Description, t.IsActive, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tray: %w", err)
	}
	return requireRowsAffected(result, "tray", t.ID)
}

func (q *queries) DeleteTray(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM trays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tray: %w", err)
	}
	return requireRowsAffected(result, "tray", id)
}

func (q *queries) LastTrayCode(ctx context.Context, shelfID int) (string, error) {
	return q.lastCode(ctx, `SELECT MAX(code) FROM trays WHERE shelf_id = $1`, shelfID)
}

// CountTrayLocations cuenta cuántas ubicaciones con stock cuelgan de una balda
func (q *queries) CountTrayLocations(ctx context.Context, trayID int) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM material_locations WHERE tray_id = $1 AND quantity > 0`,
		trayID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tray locations: %w", err)
	}
	return count, nil
}
