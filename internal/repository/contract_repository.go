package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zonelan-service/internal/models"
)

// ContractQueries define las consultas sobre contratos, mantenimientos y reportes de contrato
type ContractQueries interface {
	GetContract(ctx context.Context, id int) (*models.Contract, error)
	ListContracts(ctx context.Context, customerID *int, includeDeleted bool) ([]*models.Contract, error)
	CreateContract(ctx context.Context, c *models.Contract) error
	UpdateContract(ctx context.Context, c *models.Contract) error
	SoftDeleteContract(ctx context.Context, id int) error
	GetContractDashboard(ctx context.Context) (*models.ContractDashboard, error)
	ListPendingMaintenances(ctx context.Context, until time.Time) ([]*models.Contract, error)
	ListExpiringContracts(ctx context.Context, until time.Time) ([]*models.Contract, error)

	GetMaintenanceRecord(ctx context.Context, id int) (*models.MaintenanceRecord, error)
	ListMaintenanceRecords(ctx context.Context, contractID int) ([]*models.MaintenanceRecord, error)
	CreateMaintenanceRecord(ctx context.Context, r *models.MaintenanceRecord) error
	UpdateMaintenanceRecord(ctx context.Context, r *models.MaintenanceRecord) error
	UpdateNextMaintenanceDate(ctx context.Context, contractID int, next *time.Time) error

	GetContractReport(ctx context.Context, id int) (*models.ContractReport, error)
	ListContractReports(ctx context.Context, contractID int) ([]*models.ContractReport, error)
	CreateContractReport(ctx context.Context, r *models.ContractReport) error
	UpdateContractReport(ctx context.Context, r *models.ContractReport) error
	SoftDeleteContractReport(ctx context.Context, id int) error

	ListContractReportMaterials(ctx context.Context, contractReportID int) ([]*models.ContractReportMaterial, error)
	CreateContractReportMaterial(ctx context.Context, m *models.ContractReportMaterial) error
	DeleteContractReportMaterials(ctx context.Context, contractReportID int) error
}

const contractColumns = `id, customer_id, title, description, status, start_date, end_date,
	requires_maintenance, maintenance_frequency, next_maintenance_date, observations,
	created_by, is_deleted, deleted_at, created_at, updated_at`

func scanContract(row interface{ Scan(...interface{}) error }) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.CustomerID, &c.Title, &c.Description, &c.Status,
		&c.StartDate, &c.EndDate, &c.RequiresMaintenance, &c.MaintenanceFrequency,
		&c.NextMaintenanceDate, &c.Observations, &c.CreatedBy,
		&c.IsDeleted, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *queries) GetContract(ctx context.Context, id int) (*models.Contract, error) {
	c, err := scanContract(q.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 AND is_deleted = FALSE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return c, nil
}

func (q *queries) ListContracts(ctx context.Context, customerID *int, includeDeleted bool) ([]*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts`
	var conditions []string
	var args []interface{}
	if !includeDeleted {
		conditions = append(conditions, "is_deleted = FALSE")
	}
	if customerID != nil {
		args = append(args, *customerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY start_date DESC, id DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (q *queries) listContractRows(ctx context.Context, query string, args ...interface{}) ([]*models.Contract, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// ListPendingMaintenances devuelve los contratos con mantenimiento vencido o que vence
// antes de la fecha indicada
func (q *queries) ListPendingMaintenances(ctx context.Context, until time.Time) ([]*models.Contract, error) {
	return q.listContractRows(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE is_deleted = FALSE
		  AND requires_maintenance = TRUE
		  AND next_maintenance_date IS NOT NULL
		  AND next_maintenance_date <= $1
		ORDER BY next_maintenance_date`, until)
}

// ListExpiringContracts devuelve los contratos vigentes cuya fecha de fin cae antes
// de la fecha indicada
func (q *queries) ListExpiringContracts(ctx context.Context, until time.Time) ([]*models.Contract, error) {
	return q.listContractRows(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE is_deleted = FALSE
		  AND end_date IS NOT NULL
		  AND end_date >= CURRENT_DATE
		  AND end_date <= $1
		ORDER BY end_date`, until)
}

func (q *queries) CreateContract(ctx context.Context, c *models.Contract) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO contracts
			(customer_id, title, description, status, start_date, end_date,
			 requires_maintenance, maintenance_frequency, next_maintenance_date,
			 observations, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		c.CustomerID, c.Title, c.Description, c.Status, c.StartDate, c.EndDate,
		c.RequiresMaintenance, c.MaintenanceFrequency, c.NextMaintenanceDate,
		c.Observations, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

func (q *queries) UpdateContract(ctx context.Context, c *models.Contract) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE contracts
		SET title = $1, description = $2, status = $3, start_date = $4, end_date = $5,
		    requires_maintenance = $6, maintenance_frequency = $7, next_maintenance_date = $8,
		    observations = $9, updated_at = NOW()
		WHERE id = $10 AND is_deleted = FALSE`,
		c.Title, c.Description, c.Status, c.StartDate, c.EndDate,
		c.RequiresMaintenance, c.MaintenanceFrequency, c.NextMaintenanceDate,
		c.Observations, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	return requireRowsAffected(result, "contract", c.ID)
}

// SoftDeleteContract marca el contrato como borrado; la fila se conserva
func (q *queries) SoftDeleteContract(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE contracts SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	return requireRowsAffected(result, "contract", id)
}

// GetContractDashboard contadores agregados para el panel de contratos
func (q *queries) GetContractDashboard(ctx context.Context) (*models.ContractDashboard, error) {
	var d models.ContractDashboard
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		       COUNT(*) FILTER (WHERE requires_maintenance AND next_maintenance_date <= NOW()),
		       COUNT(*) FILTER (WHERE end_date IS NOT NULL AND end_date BETWEEN NOW() AND NOW() + INTERVAL '30 days')
		FROM contracts WHERE is_deleted = FALSE`,
	).Scan(&d.TotalContracts, &d.ActiveContracts, &d.PendingMaintenance, &d.ExpiringSoon)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract dashboard: %w", err)
	}
	return &d, nil
}

const maintenanceColumns = `id, contract_id, date, maintenance_type, technician,
	performed_by, status, observations, created_at, updated_at`

func scanMaintenance(row interface{ Scan(...interface{}) error }) (*models.MaintenanceRecord, error) {
	var r models.MaintenanceRecord
	err := row.Scan(&r.ID, &r.ContractID, &r.Date, &r.MaintenanceType, &r.Technician,
		&r.PerformedBy, &r.Status, &r.Observations, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (q *queries) GetMaintenanceRecord(ctx context.Context, id int) (*models.MaintenanceRecord, error) {
	r, err := scanMaintenance(q.db.QueryRowContext(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance record: %w", err)
	}
	return r, nil
}

func (q *queries) ListMaintenanceRecords(ctx context.Context, contractID int) ([]*models.MaintenanceRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE contract_id = $1 ORDER BY date DESC, id DESC`,
		contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}
	defer rows.Close()

	var records []*models.MaintenanceRecord
	for rows.Next() {
		r, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (q *queries) CreateMaintenanceRecord(ctx context.Context, r *models.MaintenanceRecord) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO maintenance_records
			(contract_id, date, maintenance_type, technician, performed_by, status, observations)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		r.ContractID, r.Date, r.MaintenanceType, r.Technician, r.PerformedBy, r.Status, r.Observations,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create maintenance record: %w", err)
	}
	return nil
}

func (q *queries) UpdateMaintenanceRecord(ctx context.Context, r *models.MaintenanceRecord) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE maintenance_records
		SET date = $1, maintenance_type = $2, technician = $3, performed_by = $4,
		    status = $5, observations = $6, updated_at = NOW()
		WHERE id = $7`,
		r.Date, r.MaintenanceType, r.Technician, r.PerformedBy, r.Status, r.Observations, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update maintenance record: %w", err)
	}
	return requireRowsAffected(result, "maintenance record", r.ID)
}

func (q *queries) UpdateNextMaintenanceDate(ctx context.Context, contractID int, next *time.Time) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE contracts SET next_maintenance_date = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE`,
		next, contractID)
	if err != nil {
		return fmt.Errorf("failed to update next maintenance date: %w", err)
	}
	return requireRowsAffected(result, "contract", contractID)
}

const contractReportColumns = `id, contract_id, title, description, date, hours_worked,
	performed_by, status, is_deleted, deleted_at, created_at, updated_at`

func scanContractReport(row interface{ Scan(...interface{}) error }) (*models.ContractReport, error) {
	var r models.ContractReport
	err := row.Scan(&r.ID, &r.ContractID, &r.Title, &r.Description, &r.Date, &r.HoursWorked,
		&r.PerformedBy, &r.Status, &r.IsDeleted, &r.DeletedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (q *queries) GetContractReport(ctx context.Context, id int) (*models.ContractReport, error) {
	r, err := scanContractReport(q.db.QueryRowContext(ctx,
		`SELECT `+contractReportColumns+` FROM contract_reports WHERE id = $1 AND is_deleted = FALSE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract report: %w", err)
	}
	return r, nil
}

func (q *queries) ListContractReports(ctx context.Context, contractID int) ([]*models.ContractReport, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contractReportColumns+` FROM contract_reports
		 WHERE contract_id = $1 AND is_deleted = FALSE ORDER BY date DESC, id DESC`,
		contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.ContractReport
	for rows.Next() {
		r, err := scanContractReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (q *queries) CreateContractReport(ctx context.Context, r *models.ContractReport) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO contract_reports
			(contract_id, title, description, date, hours_worked, performed_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		r.ContractID, r.Title, r.Description, r.Date, r.HoursWorked, r.PerformedBy, r.Status,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract report: %w", err)
	}
	return nil
}

func (q *queries) UpdateContractReport(ctx context.Context, r *models.ContractReport) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE contract_reports
		SET title = $1, description = $2, date = $3, hours_worked = $4,
		    performed_by = $5, status = $6, updated_at = NOW()
		WHERE id = $7 AND is_deleted = FALSE`,
		r.Title, r.Description, r.Date, r.HoursWorked, r.PerformedBy, r.Status, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract report: %w", err)
	}
	return requireRowsAffected(result, "contract report", r.ID)
}

func (q *queries) SoftDeleteContractReport(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE contract_reports SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract report: %w", err)
	}
	return requireRowsAffected(result, "contract report", id)
}

func (q *queries) ListContractReportMaterials(ctx context.Context, contractReportID int) ([]*models.ContractReportMaterial, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, contract_report_id, material_id, quantity
		FROM contract_report_materials WHERE contract_report_id = $1 ORDER BY id`,
		contractReportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract report materials: %w", err)
	}
	defer rows.Close()

	var lines []*models.ContractReportMaterial
	for rows.Next() {
		var m models.ContractReportMaterial
		if err := rows.Scan(&m.ID, &m.ContractReportID, &m.MaterialID, &m.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan contract report material: %w", err)
		}
		lines = append(lines, &m)
	}
	return lines, rows.Err()
}

func (q *queries) CreateContractReportMaterial(ctx context.Context, m *models.ContractReportMaterial) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO contract_report_materials (contract_report_id, material_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`,
		m.ContractReportID, m.MaterialID, m.Quantity,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create contract report material: %w", err)
	}
	return nil
}

func (q *queries) DeleteContractReportMaterials(ctx context.Context, contractReportID int) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM contract_report_materials WHERE contract_report_id = $1`, contractReportID)
	if err != nil {
		return fmt.Errorf("failed to delete contract report materials: %w", err)
	}
	return nil
}
