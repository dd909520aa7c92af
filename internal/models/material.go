package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un artículo almacenable con su stock total
type Material struct {
	ID        int             `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Operation clasifica el sentido de un cambio de stock
type Operation string

const (
	OperationAdd      Operation = "ADD"
	OperationRemove   Operation = "REMOVE"
	OperationTransfer Operation = "TRANSFER"
)

// Valid indica si el valor corresponde a una operación conocida
func (o Operation) Valid() bool {
	switch o {
	case OperationAdd, OperationRemove, OperationTransfer:
		return true
	}
	return false
}

// Reason clasifica el motivo de negocio de un cambio de stock
type Reason string

const (
	ReasonCompra            Reason = "COMPRA"
	ReasonVenta             Reason = "VENTA"
	ReasonRetirada          Reason = "RETIRADA"
	ReasonUso               Reason = "USO"
	ReasonDevolucion        Reason = "DEVOLUCION"
	ReasonTraslado          Reason = "TRASLADO"
	ReasonCuadre            Reason = "CUADRE"
	ReasonEliminacionTicket Reason = "ELIMINACION_TICKET"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonCompra, ReasonVenta, ReasonRetirada, ReasonUso,
		ReasonDevolucion, ReasonTraslado, ReasonCuadre, ReasonEliminacionTicket:
		return true
	}
	return false
}

// MaterialControl es una fila inmutable del histórico de cambios de stock.
// Exactamente una fila por cambio atómico; nunca se actualiza ni se borra.
type MaterialControl struct {
	ID                int       `json:"id" db:"id"`
	UserID            int       `json:"user" db:"user_id"`
	MaterialID        int       `json:"material" db:"material_id"`
	Quantity          int       `json:"quantity" db:"quantity"`
	Operation         Operation `json:"operation" db:"operation"`
	Reason            Reason    `json:"reason" db:"reason"`
	ReportID          *int      `json:"report,omitempty" db:"report_id"`
	ContractReportID  *int      `json:"contract_report,omitempty" db:"contract_report_id"`
	TicketID          *int      `json:"ticket,omitempty" db:"ticket_id"`
	MovementID        *int      `json:"movement,omitempty" db:"movement_id"`
	LocationReference *string   `json:"location_reference,omitempty" db:"location_reference"`
	InvoiceImage      *string   `json:"invoice_image,omitempty" db:"invoice_image"`
	CreatedAt         time.Time `json:"date" db:"created_at"`
}

// ControlFilter filtros para consultas del histórico
type ControlFilter struct {
	MaterialID *int       `json:"material,omitempty"`
	Operation  *Operation `json:"operation,omitempty"`
	Reason     *Reason    `json:"reason,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

// MaterialControlWithDetails incluye información adicional para listados
type MaterialControlWithDetails struct {
	MaterialControl
	MaterialName string `json:"material_name,omitempty"`
	Username     string `json:"username,omitempty"`
}
