package models

import "time"

// ReportStatus estado de un parte de trabajo
type ReportStatus string

const (
	ReportDraft     ReportStatus = "DRAFT"
	ReportCompleted ReportStatus = "COMPLETED"
)

func (s ReportStatus) Valid() bool {
	return s == ReportDraft || s == ReportCompleted
}

// WorkReport parte de trabajo asociado a una incidencia
type WorkReport struct {
	ID          int          `json:"id" db:"id"`
	IncidentID  int          `json:"incident" db:"incident_id"`
	Date        time.Time    `json:"date" db:"date"`
	Description string       `json:"description" db:"description"`
	HoursWorked *float64     `json:"hours_worked,omitempty" db:"hours_worked"`
	Status      ReportStatus `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// MaterialUsed línea de material consumido por un parte de trabajo
type MaterialUsed struct {
	ID         int `json:"id" db:"id"`
	ReportID   int `json:"report" db:"report_id"`
	MaterialID int `json:"material" db:"material_id"`
	Quantity   int `json:"quantity" db:"quantity"`
}

// MaterialUsedWithDetails incluye nombre y stock disponible del material
type MaterialUsedWithDetails struct {
	MaterialUsed
	MaterialName   string `json:"material_name,omitempty"`
	AvailableStock int    `json:"available_stock"`
}
