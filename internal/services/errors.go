package services

import "errors"

// Errores de negocio; los handlers los traducen a códigos HTTP 4xx
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNoChange          = errors.New("la cantidad objetivo coincide con la actual")
	ErrInvalidOperation  = errors.New("operación no válida")
	ErrInvalidReason     = errors.New("motivo no válido")
	ErrLocationMismatch  = errors.New("la ubicación no corresponde al material")
	ErrSameLocation      = errors.New("origen y destino son la misma ubicación")
	ErrTicketNotPending  = errors.New("el ticket no está pendiente")
	ErrTicketPaid        = errors.New("no se puede eliminar un ticket pagado, anúlelo primero")
	ErrTrayNotEmpty      = errors.New("la balda tiene material ubicado")
	ErrDuplicateLocation = errors.New("el material ya está ubicado en esa balda")
	ErrInactiveNode      = errors.New("el nodo de almacenamiento está inactivo")
)
