package repository

import (
	"context"
	"database/sql"
	"fmt"

	"zonelan-service/internal/models"
)

// ReportQueries define las consultas sobre partes de trabajo y sus líneas de material
type ReportQueries interface {
	GetReport(ctx context.Context, id int) (*models.WorkReport, error)
	ListReports(ctx context.Context, incidentID *int) ([]*models.WorkReport, error)
	CreateReport(ctx context.Context, r *models.WorkReport) error
	UpdateReport(ctx context.Context, r *models.WorkReport) error
	DeleteReport(ctx context.Context, id int) error

	ListMaterialsUsed(ctx context.Context, reportID int) ([]*models.MaterialUsedWithDetails, error)
	CreateMaterialUsed(ctx context.Context, mu *models.MaterialUsed) error
	DeleteMaterialsUsed(ctx context.Context, reportID int) error
}

func (q *queries) GetReport(ctx context.Context, id int) (*models.WorkReport, error) {
	var r models.WorkReport
	err := q.db.QueryRowContext(ctx, `
		SELECT id, incident_id, date, description, hours_worked, status, created_at, updated_at
		FROM work_reports WHERE id = $1`, id,
	).Scan(&r.ID, &r.IncidentID, &r.Date, &r.Description, &r.HoursWorked, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &r, nil
}

func (q *queries) ListReports(ctx context.Context, incidentID *int) ([]*models.WorkReport, error) {
	query := `
		SELECT id, incident_id, date, description, hours_worked, status, created_at, updated_at
		FROM work_reports`
	var args []interface{}
	if incidentID != nil {
		query += ` WHERE incident_id = $1`
		args = append(args, *incidentID)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.WorkReport
	for rows.Next() {
		var r models.WorkReport
		err := rows.Scan(&r.ID, &r.IncidentID, &r.Date, &r.Description, &r.HoursWorked,
			&r.Status, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

func (q *queries) CreateReport(ctx context.Context, r *models.WorkReport) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO work_reports (incident_id, date, description, hours_worked, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		r.IncidentID, r.Date, r.Description, r.HoursWorked, r.Status,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (q *queries) UpdateReport(ctx context.Context, r *models.WorkReport) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE work_reports
		SET date = $1, description = $2, hours_worked = $3, status = $4, updated_at = NOW()
		WHERE id = $5`,
		r.Date, r.Description, r.HoursWorked, r.Status, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return requireRowsAffected(result, "report", r.ID)
}

func (q *queries) DeleteReport(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM work_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return requireRowsAffected(result, "report", id)
}

// ListMaterialsUsed devuelve las líneas de material de un parte con nombre y stock actual
func (q *queries) ListMaterialsUsed(ctx context.Context, reportID int) ([]*models.MaterialUsedWithDetails, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT mu.id, mu.report_id, mu.material_id, mu.quantity, m.name, m.quantity
		FROM materials_used mu
		JOIN materials m ON m.id = mu.material_id
		WHERE mu.report_id = $1
		ORDER BY mu.id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials used: %w", err)
	}
	defer rows.Close()

	var lines []*models.MaterialUsedWithDetails
	for rows.Next() {
		var mu models.MaterialUsedWithDetails
		err := rows.Scan(&mu.ID, &mu.ReportID, &mu.MaterialID, &mu.Quantity,
			&mu.MaterialName, &mu.AvailableStock)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material used: %w", err)
		}
		lines = append(lines, &mu)
	}
	return lines, rows.Err()
}

func (q *queries) CreateMaterialUsed(ctx context.Context, mu *models.MaterialUsed) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO materials_used (report_id, material_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`,
		mu.ReportID, mu.MaterialID, mu.Quantity,
	).Scan(&mu.ID)
	if err != nil {
		return fmt.Errorf("failed to create material used: %w", err)
	}
	return nil
}

// DeleteMaterialsUsed borra todas las líneas de un parte; el histórico ya
// registró los consumos, las líneas solo reflejan el estado vigente
func (q *queries) DeleteMaterialsUsed(ctx context.Context, reportID int) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM materials_used WHERE report_id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete materials used: %w", err)
	}
	return nil
}
