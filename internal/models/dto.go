package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ===== REQUEST DTOs =====

// MaterialCreateRequest alta de material; la cantidad inicial genera un control COMPRA
type MaterialCreateRequest struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price"`
}

// MaterialUpdateRequest edición de material; un cambio de cantidad genera el control implícito
type MaterialUpdateRequest struct {
	Name     *string          `json:"name,omitempty"`
	Quantity *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// MaterialOperationRequest operación directa de stock contra un material
type MaterialOperationRequest struct {
	Operation      Operation `json:"operation" validate:"required,oneof=ADD REMOVE"`
	QuantityChange int       `json:"quantity_change" validate:"required,gt=0"`
	Reason         Reason    `json:"reason" validate:"required"`
	LocationID     *int      `json:"location_id,omitempty"`
	InvoiceImage   *string   `json:"invoice_image,omitempty"`
	UserID         int       `json:"-"`
}

// AdjustStockRequest cuadre: fija el stock de una ubicación o del pool sin ubicar
type AdjustStockRequest struct {
	TargetStock int    `json:"target_stock" validate:"gte=0"`
	Source      string `json:"source" validate:"required,oneof=location unallocated"`
	LocationID  *int   `json:"location_id,omitempty"`
	UserID      int    `json:"-"`
}

// MovementRequest entrada, salida o traslado entre ubicaciones
type MovementRequest struct {
	MaterialID       int       `json:"material" validate:"required,gt=0"`
	Operation        Operation `json:"operation" validate:"required,oneof=ADD REMOVE TRANSFER"`
	Quantity         int       `json:"quantity" validate:"required,gt=0"`
	SourceLocationID *int      `json:"source_location,omitempty"`
	TargetLocationID *int      `json:"target_location,omitempty"`
	TargetTrayID     *int      `json:"target_tray,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	UserID           int       `json:"-"`
}

// StorageNodeRequest alta/edición de almacén, dependencia, estantería o balda.
// Code vacío dispara la generación automática.
type StorageNodeRequest struct {
	ParentID    int     `json:"parent,omitempty"`
	Name        string  `json:"name" validate:"required"`
	Code        string  `json:"code,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// LocationCreateRequest alta manual de una ubicación de material
type LocationCreateRequest struct {
	MaterialID      int     `json:"material" validate:"required,gt=0"`
	TrayID          int     `json:"tray" validate:"required,gt=0"`
	Quantity        int     `json:"quantity" validate:"gte=0"`
	MinimumQuantity int     `json:"minimum_quantity" validate:"gte=0"`
	Notes           *string `json:"notes,omitempty"`
	UserID          int     `json:"-"`
}

// LocationUpdateRequest edición de umbral mínimo y notas (la cantidad se mueve por el ledger)
type LocationUpdateRequest struct {
	MinimumQuantity *int    `json:"minimum_quantity,omitempty" validate:"omitempty,gte=0"`
	Notes           *string `json:"notes,omitempty"`
}

// MaterialLine línea material+cantidad usada por partes, reportes y tickets
type MaterialLine struct {
	MaterialID int `json:"material" validate:"required,gt=0"`
	Quantity   int `json:"quantity" validate:"required,gt=0"`
}

// WorkReportRequest alta/edición de un parte de trabajo con sus materiales
type WorkReportRequest struct {
	IncidentID    int            `json:"incident" validate:"required,gt=0"`
	Date          time.Time      `json:"date" validate:"required"`
	Description   string         `json:"description" validate:"required"`
	HoursWorked   *float64       `json:"hours_worked,omitempty" validate:"omitempty,gt=0"`
	Status        ReportStatus   `json:"status" validate:"required,oneof=DRAFT COMPLETED"`
	MaterialsUsed []MaterialLine `json:"materials_used" validate:"dive"`
	UserID        int            `json:"-"`
}

// ContractRequest alta/edición de contrato
type ContractRequest struct {
	CustomerID           int                   `json:"customer" validate:"required,gt=0"`
	Title                string                `json:"title" validate:"required"`
	Description          *string               `json:"description,omitempty"`
	Status               ContractStatus        `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE EXPIRED"`
	StartDate            time.Time             `json:"start_date" validate:"required"`
	EndDate              *time.Time            `json:"end_date,omitempty"`
	RequiresMaintenance  bool                  `json:"requires_maintenance"`
	MaintenanceFrequency *MaintenanceFrequency `json:"maintenance_frequency,omitempty"`
	Observations         *string               `json:"observations,omitempty"`
	UserID               int                   `json:"-"`
}

// MaintenanceRecordRequest registro de mantenimiento sobre un contrato
type MaintenanceRecordRequest struct {
	Date            time.Time         `json:"date" validate:"required"`
	MaintenanceType string            `json:"maintenance_type" validate:"required,oneof=PREVENTIVE CORRECTIVE EMERGENCY INSPECTION"`
	Technician      *string           `json:"technician,omitempty"`
	Status          MaintenanceStatus `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	Observations    *string           `json:"observations,omitempty"`
	UserID          int               `json:"-"`
}

// ContractReportRequest alta/edición de reporte de contrato con materiales
type ContractReportRequest struct {
	ContractID  int            `json:"contract" validate:"required,gt=0"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Date        time.Time      `json:"date" validate:"required"`
	HoursWorked *float64       `json:"hours_worked,omitempty" validate:"omitempty,gt=0"`
	Status      ReportStatus   `json:"status" validate:"required,oneof=DRAFT COMPLETED"`
	Materials   []MaterialLine `json:"materials" validate:"dive"`
	UserID      int            `json:"-"`
}

// TicketItemRequest línea de un ticket en alta/edición
type TicketItemRequest struct {
	MaterialID         int              `json:"material" validate:"required,gt=0"`
	Quantity           int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice          *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	LocationSource     *string          `json:"location_source,omitempty"`
}

// TicketCreateRequest alta de ticket con sus líneas
type TicketCreateRequest struct {
	CustomerID    *int                `json:"customer,omitempty"`
	PaymentMethod PaymentMethod       `json:"payment_method" validate:"omitempty,oneof=CASH CARD TRANSFER OTHER"`
	Notes         *string             `json:"notes,omitempty"`
	Items         []TicketItemRequest `json:"items" validate:"dive"`
	UserID        int                 `json:"-"`
}

// TicketItemUpdateRequest edición de una línea de ticket pendiente
type TicketItemUpdateRequest struct {
	Quantity           *int             `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	UnitPrice          *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	UserID             int              `json:"-"`
}

// CustomerRequest alta/edición de cliente
type CustomerRequest struct {
	Name    string  `json:"name" validate:"required"`
	TaxID   *string `json:"tax_id,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
}

// IncidentRequest alta/edición de incidencia
type IncidentRequest struct {
	CustomerID  int            `json:"customer" validate:"required,gt=0"`
	Title       string         `json:"title" validate:"required"`
	Description *string        `json:"description,omitempty"`
	Status      IncidentStatus `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS RESOLVED CLOSED"`
	Priority    int            `json:"priority" validate:"gte=0,lte=3"`
}

// ===== RESPONSE DTOs =====

// LocationStock desglose por ubicación en la comprobación de inventario
type LocationStock struct {
	LocationID int    `json:"location_id"`
	TrayID     int    `json:"tray_id"`
	FullPath   string `json:"full_path"`
	FullCode   string `json:"full_code"`
	Quantity   int    `json:"quantity"`
}

// InventoryCheckResponse resumen de stock total, ubicado y sin ubicar de un material
type InventoryCheckResponse struct {
	MaterialID     int               `json:"material_id"`
	MaterialName   string            `json:"material_name"`
	TotalQuantity  int               `json:"total_quantity"`
	LocatedStock   int               `json:"located_stock"`
	Unallocated    int               `json:"unallocated"`
	Locations      []LocationStock   `json:"locations"`
	RecentControls []MaterialControl `json:"recent_controls"`
	Timestamp      string            `json:"timestamp"`
}

// OperationResult resultado de una operación de stock aplicada
type OperationResult struct {
	Material  *Material         `json:"material"`
	Location  *MaterialLocation `json:"location,omitempty"`
	Control   *MaterialControl  `json:"control"`
	Movement  *MaterialMovement `json:"movement,omitempty"`
	Timestamp string            `json:"timestamp"`
}
