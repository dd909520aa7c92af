package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus estado de un ticket de venta
type TicketStatus string

const (
	TicketPending  TicketStatus = "PENDING"
	TicketPaid     TicketStatus = "PAID"
	TicketCanceled TicketStatus = "CANCELED"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketPending, TicketPaid, TicketCanceled:
		return true
	}
	return false
}

// PaymentMethod forma de pago de un ticket
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentOther    PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// Ticket ticket de venta directa de material
type Ticket struct {
	ID            int             `json:"id" db:"id"`
	TicketNumber  string          `json:"ticket_number" db:"ticket_number"`
	CustomerID    *int            `json:"customer,omitempty" db:"customer_id"`
	CreatedBy     int             `json:"created_by" db:"created_by"`
	Status        TicketStatus    `json:"status" db:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	PaidAt        *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CanceledAt    *time.Time      `json:"canceled_at,omitempty" db:"canceled_at"`
	IsDeleted     bool            `json:"is_deleted" db:"is_deleted"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// TicketItem línea de un ticket
type TicketItem struct {
	ID                 int             `json:"id" db:"id"`
	TicketID           int             `json:"ticket" db:"ticket_id"`
	MaterialID         int             `json:"material" db:"material_id"`
	Quantity           int             `json:"quantity" db:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`
	Notes              *string         `json:"notes,omitempty" db:"notes"`
	LocationSource     *string         `json:"location_source,omitempty" db:"location_source"`
}

// TotalPrice precio de la línea con el descuento aplicado
func (i TicketItem) TotalPrice() decimal.Decimal {
	price := i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	if i.DiscountPercentage.IsPositive() {
		discount := price.Mul(i.DiscountPercentage).Div(decimal.NewFromInt(100))
		price = price.Sub(discount)
	}
	return price
}

// TicketWithItems ticket con sus líneas, para respuestas de detalle
type TicketWithItems struct {
	Ticket
	Items []TicketItem `json:"items"`
}

// TicketFilter filtros para listados de tickets
type TicketFilter struct {
	CustomerID *int          `json:"customer,omitempty"`
	Status     *TicketStatus `json:"status,omitempty"`
	DateFrom   *time.Time    `json:"date_from,omitempty"`
	DateTo     *time.Time    `json:"date_to,omitempty"`
	Limit      int           `json:"limit,omitempty"`
	Offset     int           `json:"offset,omitempty"`
}
