package models

import "time"

// Customer cliente de la empresa de mantenimiento
type Customer struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TaxID     *string   `json:"tax_id,omitempty" db:"tax_id"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IncidentStatus estado de una incidencia
type IncidentStatus string

const (
	IncidentPending    IncidentStatus = "PENDING"
	IncidentInProgress IncidentStatus = "IN_PROGRESS"
	IncidentResolved   IncidentStatus = "RESOLVED"
	IncidentClosed     IncidentStatus = "CLOSED"
)

func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentPending, IncidentInProgress, IncidentResolved, IncidentClosed:
		return true
	}
	return false
}

// Incident incidencia reportada por un cliente; los partes de trabajo cuelgan de ella
type Incident struct {
	ID          int            `json:"id" db:"id"`
	CustomerID  int            `json:"customer" db:"customer_id"`
	Title       string         `json:"title" db:"title"`
	Description *string        `json:"description,omitempty" db:"description"`
	Status      IncidentStatus `json:"status" db:"status"`
	Priority    int            `json:"priority" db:"priority"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
