package models

import (
	"fmt"
	"time"
)

// Warehouse es el nivel más alto de la jerarquía de almacenamiento
type Warehouse struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Location    *string   `json:"location,omitempty" db:"location"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Department es una dependencia dentro de un almacén
type Department struct {
	ID          int       `json:"id" db:"id"`
	WarehouseID int       `json:"warehouse" db:"warehouse_id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Shelf es una estantería dentro de una dependencia
type Shelf struct {
	ID           int       `json:"id" db:"id"`
	DepartmentID int       `json:"department" db:"department_id"`
	Name         string    `json:"name" db:"name"`
	Code         string    `json:"code" db:"code"`
	Description  *string   `json:"description,omitempty" db:"description"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Tray es una balda dentro de una estantería; el nodo donde se ubica material
type Tray struct {
	ID          int       `json:"id" db:"id"`
	ShelfID     int       `json:"shelf" db:"shelf_id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TrayPath ruta completa de una balda, resuelta con un join de los cuatro niveles
type TrayPath struct {
	TrayID         int    `json:"tray_id"`
	TrayName       string `json:"tray_name"`
	TrayCode       string `json:"tray_code"`
	ShelfName      string `json:"shelf_name"`
	ShelfCode      string `json:"shelf_code"`
	DepartmentName string `json:"department_name"`
	DepartmentCode string `json:"department_code"`
	WarehouseName  string `json:"warehouse_name"`
	WarehouseCode  string `json:"warehouse_code"`
}

// FullCode devuelve el código jerárquico completo, p.ej. ALM-001-DEP-001-EST-001-BAL-001
func (p TrayPath) FullCode() string {
	return fmt.Sprintf("%s-%s-%s-%s", p.WarehouseCode, p.DepartmentCode, p.ShelfCode, p.TrayCode)
}

// FullPath devuelve la ruta legible, p.ej. Almacén Central > Eléctrico > E1 > Balda 2
func (p TrayPath) FullPath() string {
	return fmt.Sprintf("%s > %s > %s > %s", p.WarehouseName, p.DepartmentName, p.ShelfName, p.TrayName)
}

// MaterialLocation cantidad de un material ubicada en una balda concreta.
// El par (material, tray) es único.
type MaterialLocation struct {
	ID              int       `json:"id" db:"id"`
	MaterialID      int       `json:"material" db:"material_id"`
	TrayID          int       `json:"tray" db:"tray_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	MinimumQuantity int       `json:"minimum_quantity" db:"minimum_quantity"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// MaterialLocationWithDetails incluye nombre de material y ruta de la balda
type MaterialLocationWithDetails struct {
	MaterialLocation
	MaterialName string `json:"material_name,omitempty"`
	FullPath     string `json:"full_path,omitempty"`
	FullCode     string `json:"full_code,omitempty"`
}

// MaterialMovement registra una entrada, salida o traslado entre ubicaciones
type MaterialMovement struct {
	ID               int       `json:"id" db:"id"`
	MaterialID       int       `json:"material" db:"material_id"`
	SourceLocationID *int      `json:"source_location,omitempty" db:"source_location_id"`
	TargetLocationID *int      `json:"target_location,omitempty" db:"target_location_id"`
	Quantity         int       `json:"quantity" db:"quantity"`
	Operation        Operation `json:"operation" db:"operation"`
	UserID           int       `json:"user" db:"user_id"`
	Notes            *string   `json:"notes,omitempty" db:"notes"`
	ControlID        *int      `json:"material_control,omitempty" db:"control_id"`
	CreatedAt        time.Time `json:"timestamp" db:"created_at"`
}

// MovementFilter filtros para consultas de movimientos
type MovementFilter struct {
	MaterialID *int       `json:"material,omitempty"`
	Operation  *Operation `json:"operation,omitempty"`
	LocationID *int       `json:"location,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
