package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"zonelan-service/internal/models"
)

// LedgerQueries define las consultas del libro de stock: histórico,
// movimientos y ubicaciones de material
type LedgerQueries interface {
	GetMaterialForUpdate(ctx context.Context, id int) (*models.Material, error)

	GetLocation(ctx context.Context, id int) (*models.MaterialLocation, error)
	GetLocationForUpdate(ctx context.Context, id int) (*models.MaterialLocation, error)
	GetLocationByMaterialTray(ctx context.Context, materialID, trayID int) (*models.MaterialLocation, error)
	CreateLocation(ctx context.Context, loc *models.MaterialLocation) error
	UpdateLocation(ctx context.Context, loc *models.MaterialLocation) error
	UpdateLocationQuantity(ctx context.Context, id, quantity int) error
	DeleteLocation(ctx context.Context, id int) error
	ListLocationsByMaterial(ctx context.Context, materialID int) ([]*models.MaterialLocationWithDetails, error)
	ListLocationsByTray(ctx context.Context, trayID int) ([]*models.MaterialLocationWithDetails, error)
	ListLowStockLocations(ctx context.Context) ([]*models.MaterialLocationWithDetails, error)
	SumLocationQuantities(ctx context.Context, materialID int) (int, error)

	CreateControl(ctx context.Context, c *models.MaterialControl) error
	SetControlMovement(ctx context.Context, controlID, movementID int) error
	ListControls(ctx context.Context, filter models.ControlFilter) ([]*models.MaterialControlWithDetails, error)

	CreateMovement(ctx context.Context, mv *models.MaterialMovement) error
	ListMovements(ctx context.Context, filter models.MovementFilter) ([]*models.MaterialMovement, error)

	GetTrayPath(ctx context.Context, trayID int) (*models.TrayPath, error)
}

// GetMaterialForUpdate obtiene un material bloqueando la fila hasta el commit
func (q *queries) GetMaterialForUpdate(ctx context.Context, id int) (*models.Material, error) {
	m, err := scanMaterial(q.db.QueryRowContext(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock material: %w", err)
	}
	return m, nil
}

const locationColumns = `id, material_id, tray_id, quantity, minimum_quantity, notes, created_at, updated_at`

func scanLocation(row interface{ Scan(...interface{}) error }) (*models.MaterialLocation, error) {
	var loc models.MaterialLocation
	err := row.Scan(&loc.ID, &loc.MaterialID, &loc.TrayID, &loc.Quantity,
		&loc.MinimumQuantity, &loc.Notes, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (q *queries) GetLocation(ctx context.Context, id int) (*models.MaterialLocation, error) {
	loc, err := scanLocation(q.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM material_locations WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}

func (q *queries) GetLocationForUpdate(ctx context.Context, id int) (*models.MaterialLocation, error) {
	loc, err := scanLocation(q.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM material_locations WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock location: %w", err)
	}
	return loc, nil
}

// GetLocationByMaterialTray busca la ubicación por el par único (material, balda)
func (q *queries) GetLocationByMaterialTray(ctx context.Context, materialID, trayID int) (*models.MaterialLocation, error) {
	loc, err := scanLocation(q.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM material_locations WHERE material_id = $1 AND tray_id = $2`,
		materialID, trayID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location by material and tray: %w", err)
	}
	return loc, nil
}

func (q *queries) CreateLocation(ctx context.Context, loc *models.MaterialLocation) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO material_locations (material_id, tray_id, quantity, minimum_quantity, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		loc.MaterialID, loc.TrayID, loc.Quantity, loc.MinimumQuantity, loc.Notes,
	).Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

func (q *queries) UpdateLocation(ctx context.Context, loc *models.MaterialLocation) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE material_locations
		SET quantity = $1, minimum_quantity = $2, notes = $3, updated_at = NOW()
		WHERE id = $4`,
		loc.Quantity, loc.MinimumQuantity, loc.Notes, loc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return requireRowsAffected(result, "location", loc.ID)
}

func (q *queries) UpdateLocationQuantity(ctx context.Context, id, quantity int) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE material_locations SET quantity = $1, updated_at = NOW() WHERE id = $2`,
		quantity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update location quantity: %w", err)
	}
	return requireRowsAffected(result, "location", id)
}

func (q *queries) DeleteLocation(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx,
		`DELETE FROM material_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return requireRowsAffected(result, "location", id)
}

const locationDetailSelect = `
	SELECT ml.id, ml.material_id, ml.tray_id, ml.quantity, ml.minimum_quantity,
	       ml.notes, ml.created_at, ml.updated_at,
	       m.name,
	       w.name, w.code, d.name, d.code, s.name, s.code, t.name, t.code
	FROM material_locations ml
	JOIN materials m ON m.id = ml.material_id
	JOIN trays t ON t.id = ml.tray_id
	JOIN shelves s ON s.id = t.shelf_id
	JOIN departments d ON d.id = s.department_id
	JOIN warehouses w ON w.id = d.warehouse_id`

func scanLocationDetails(rows *sql.Rows) (*models.MaterialLocationWithDetails, error) {
	var loc models.MaterialLocationWithDetails
	var path models.TrayPath
	err := rows.Scan(&loc.ID, &loc.MaterialID, &loc.TrayID, &loc.Quantity,
		&loc.MinimumQuantity, &loc.Notes, &loc.CreatedAt, &loc.UpdatedAt,
		&loc.MaterialName,
		&path.WarehouseName, &path.WarehouseCode,
		&path.DepartmentName, &path.DepartmentCode,
		&path.ShelfName, &path.ShelfCode,
		&path.TrayName, &path.TrayCode)
	if err != nil {
		return nil, err
	}
	loc.FullPath = path.FullPath()
	loc.FullCode = path.FullCode()
	return &loc, nil
}

func (q *queries) listLocationDetails(ctx context.Context, where string, arg interface{}) ([]*models.MaterialLocationWithDetails, error) {
	rows, err := q.db.QueryContext(ctx, locationDetailSelect+where, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []*models.MaterialLocationWithDetails
	for rows.Next() {
		loc, err := scanLocationDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (q *queries) ListLocationsByMaterial(ctx context.Context, materialID int) ([]*models.MaterialLocationWithDetails, error) {
	return q.listLocationDetails(ctx, ` WHERE ml.material_id = $1 ORDER BY ml.id`, materialID)
}

func (q *queries) ListLocationsByTray(ctx context.Context, trayID int) ([]*models.MaterialLocationWithDetails, error) {
	return q.listLocationDetails(ctx, ` WHERE ml.tray_id = $1 ORDER BY m.name`, trayID)
}

// ListLowStockLocations devuelve las ubicaciones con stock por debajo de su mínimo configurado
func (q *queries) ListLowStockLocations(ctx context.Context) ([]*models.MaterialLocationWithDetails, error) {
	rows, err := q.db.QueryContext(ctx, locationDetailSelect+
		` WHERE ml.minimum_quantity > 0 AND ml.quantity < ml.minimum_quantity ORDER BY m.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock locations: %w", err)
	}
	defer rows.Close()

	var locations []*models.MaterialLocationWithDetails
	for rows.Next() {
		loc, err := scanLocationDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// SumLocationQuantities suma el stock ubicado de un material en todas las baldas
func (q *queries) SumLocationQuantities(ctx context.Context, materialID int) (int, error) {
	var total int
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM material_locations WHERE material_id = $1`,
		materialID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum location quantities: %w", err)
	}
	return total, nil
}

// CreateControl inserta una fila en el histórico; las filas nunca se modifican
func (q *queries) CreateControl(ctx context.Context, c *models.MaterialControl) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO material_controls
			(user_id, material_id, quantity, operation, reason,
			 report_id, contract_report_id, ticket_id, movement_id,
			 location_reference, invoice_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		c.UserID, c.MaterialID, c.Quantity, c.Operation, c.Reason,
		c.ReportID, c.ContractReportID, c.TicketID, c.MovementID,
		c.LocationReference, c.InvoiceImage,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create control record: %w", err)
	}
	return nil
}

// SetControlMovement enlaza un control con el movimiento creado en la misma transacción
func (q *queries) SetControlMovement(ctx context.Context, controlID, movementID int) error {
	result, err := q.db.ExecContext(ctx,
		`UPDATE material_controls SET movement_id = $1 WHERE id = $2`,
		movementID, controlID)
	if err != nil {
		return fmt.Errorf("failed to link control to movement: %w", err)
	}
	return requireRowsAffected(result, "control", controlID)
}

func (q *queries) ListControls(ctx context.Context, filter models.ControlFilter) ([]*models.MaterialControlWithDetails, error) {
	query := `
		SELECT mc.id, mc.user_id, mc.material_id, mc.quantity, mc.operation, mc.reason,
		       mc.report_id, mc.contract_report_id, mc.ticket_id, mc.movement_id,
		       mc.location_reference, mc.invoice_image, mc.created_at,
		       m.name
		FROM material_controls mc
		JOIN materials m ON m.id = mc.material_id`

	var conditions []string
	var args []interface{}
	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.MaterialID != nil {
		addCondition("mc.material_id = $%d", *filter.MaterialID)
	}
	if filter.Operation != nil {
		addCondition("mc.operation = $%d", *filter.Operation)
	}
	if filter.Reason != nil {
		addCondition("mc.reason = $%d", *filter.Reason)
	}
	if filter.DateFrom != nil {
		addCondition("mc.created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCondition("mc.created_at <= $%d", *filter.DateTo)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY mc.created_at DESC, mc.id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list control records: %w", err)
	}
	defer rows.Close()

	var controls []*models.MaterialControlWithDetails
	for rows.Next() {
		var c models.MaterialControlWithDetails
		err := rows.Scan(&c.ID, &c.UserID, &c.MaterialID, &c.Quantity, &c.Operation, &c.Reason,
			&c.ReportID, &c.ContractReportID, &c.TicketID, &c.MovementID,
			&c.LocationReference, &c.InvoiceImage, &c.CreatedAt,
			&c.MaterialName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan control record: %w", err)
		}
		controls = append(controls, &c)
	}
	return controls, rows.Err()
}

func (q *queries) CreateMovement(ctx context.Context, mv *models.MaterialMovement) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO material_movements
			(material_id, source_location_id, target_location_id, quantity,
			 operation, user_id, notes, control_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		mv.MaterialID, mv.SourceLocationID, mv.TargetLocationID, mv.Quantity,
		mv.Operation, mv.UserID, mv.Notes, mv.ControlID,
	).Scan(&mv.ID, &mv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create movement: %w", err)
	}
	return nil
}

func (q *queries) ListMovements(ctx context.Context, filter models.MovementFilter) ([]*models.MaterialMovement, error) {
	query := `
		SELECT id, material_id, source_location_id, target_location_id, quantity,
		       operation, user_id, notes, control_id, created_at
		FROM material_movements`

	var conditions []string
	var args []interface{}
	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.MaterialID != nil {
		addCondition("material_id = $%d", *filter.MaterialID)
	}
	if filter.Operation != nil {
		addCondition("operation = $%d", *filter.Operation)
	}
	if filter.LocationID != nil {
		args = append(args, *filter.LocationID)
		conditions = append(conditions, fmt.Sprintf(
			"(source_location_id = $%d OR target_location_id = $%d)", len(args), len(args)))
	}
	if filter.DateFrom != nil {
		addCondition("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCondition("created_at <= $%d", *filter.DateTo)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	var movements []*models.MaterialMovement
	for rows.Next() {
		var mv models.MaterialMovement
		err := rows.Scan(&mv.ID, &mv.MaterialID, &mv.SourceLocationID, &mv.TargetLocationID,
			&mv.Quantity, &mv.Operation, &mv.UserID, &mv.Notes, &mv.ControlID, &mv.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, &mv)
	}
	return movements, rows.Err()
}

// GetTrayPath resuelve la ruta completa de una balda; nil si no existe
func (q *queries) GetTrayPath(ctx context.Context, trayID int) (*models.TrayPath, error) {
	var p models.TrayPath
	err := q.db.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.code, s.name, s.code, d.name, d.code, w.name, w.code
		FROM trays t
		JOIN shelves s ON s.id = t.shelf_id
		JOIN departments d ON d.id = s.department_id
		JOIN warehouses w ON w.id = d.warehouse_id
		WHERE t.id = $1`, trayID,
	).Scan(&p.TrayID, &p.TrayName, &p.TrayCode, &p.ShelfName, &p.ShelfCode,
		&p.DepartmentName, &p.DepartmentCode, &p.WarehouseName, &p.WarehouseCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tray path: %w", err)
	}
	return &p, nil
}
