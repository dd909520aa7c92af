package models

import "time"

// ContractStatus estado de un contrato
type ContractStatus string

const (
	ContractActive   ContractStatus = "ACTIVE"
	ContractInactive ContractStatus = "INACTIVE"
	ContractExpired  ContractStatus = "EXPIRED"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractActive, ContractInactive, ContractExpired:
		return true
	}
	return false
}

// MaintenanceFrequency periodicidad del mantenimiento programado
type MaintenanceFrequency string

const (
	FrequencyWeekly     MaintenanceFrequency = "WEEKLY"
	FrequencyBiweekly   MaintenanceFrequency = "BIWEEKLY"
	FrequencyMonthly    MaintenanceFrequency = "MONTHLY"
	FrequencyQuarterly  MaintenanceFrequency = "QUARTERLY"
	FrequencySemiannual MaintenanceFrequency = "SEMIANNUAL"
	FrequencyAnnual     MaintenanceFrequency = "ANNUAL"
)

func (f MaintenanceFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual:
		return true
	}
	return false
}

// Days devuelve el intervalo en días de la frecuencia (0 si no es válida)
func (f MaintenanceFrequency) Days() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 15
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 90
	case FrequencySemiannual:
		return 180
	case FrequencyAnnual:
		return 365
	}
	return 0
}

// Contract contrato de mantenimiento con un cliente
type Contract struct {
	ID                   int                   `json:"id" db:"id"`
	CustomerID           int                   `json:"customer" db:"customer_id"`
	Title                string                `json:"title" db:"title"`
	Description          *string               `json:"description,omitempty" db:"description"`
	Status               ContractStatus        `json:"status" db:"status"`
	StartDate            time.Time             `json:"start_date" db:"start_date"`
	EndDate              *time.Time            `json:"end_date,omitempty" db:"end_date"`
	RequiresMaintenance  bool                  `json:"requires_maintenance" db:"requires_maintenance"`
	MaintenanceFrequency *MaintenanceFrequency `json:"maintenance_frequency,omitempty" db:"maintenance_frequency"`
	NextMaintenanceDate  *time.Time            `json:"next_maintenance_date,omitempty" db:"next_maintenance_date"`
	Observations         *string               `json:"observations,omitempty" db:"observations"`
	CreatedBy            *int                  `json:"created_by,omitempty" db:"created_by"`
	IsDeleted            bool                  `json:"is_deleted" db:"is_deleted"`
	DeletedAt            *time.Time            `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt            time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at" db:"updated_at"`
}

// MaintenanceStatus estado de un registro de mantenimiento
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "PENDING"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceCancelled  MaintenanceStatus = "CANCELLED"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return true
	}
	return false
}

// MaintenanceRecord mantenimiento realizado (o programado) sobre un contrato
type MaintenanceRecord struct {
	ID              int               `json:"id" db:"id"`
	ContractID      int               `json:"contract" db:"contract_id"`
	Date            time.Time         `json:"date" db:"date"`
	MaintenanceType string            `json:"maintenance_type" db:"maintenance_type"`
	Technician      *string           `json:"technician,omitempty" db:"technician"`
	PerformedBy     *int              `json:"performed_by,omitempty" db:"performed_by"`
	Status          MaintenanceStatus `json:"status" db:"status"`
	Observations    *string           `json:"observations,omitempty" db:"observations"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// ContractReport reporte de trabajo sobre un contrato
type ContractReport struct {
	ID          int          `json:"id" db:"id"`
	ContractID  int          `json:"contract" db:"contract_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Date        time.Time    `json:"date" db:"date"`
	HoursWorked *float64     `json:"hours_worked,omitempty" db:"hours_worked"`
	PerformedBy *int         `json:"performed_by,omitempty" db:"performed_by"`
	Status      ReportStatus `json:"status" db:"status"`
	IsDeleted   bool         `json:"is_deleted" db:"is_deleted"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// ContractReportMaterial línea de material consumido por un reporte de contrato
type ContractReportMaterial struct {
	ID               int `json:"id" db:"id"`
	ContractReportID int `json:"contract_report" db:"contract_report_id"`
	MaterialID       int `json:"material" db:"material_id"`
	Quantity         int `json:"quantity" db:"quantity"`
}

// ContractDashboard contadores para el panel de contratos
type ContractDashboard struct {
	TotalContracts     int `json:"total_contracts"`
	ActiveContracts    int `json:"active_contracts"`
	PendingMaintenance int `json:"pending_maintenance"`
	ExpiringSoon       int `json:"expiring_soon"`
}
