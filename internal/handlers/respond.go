package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"zonelan-service/internal/services"

	"github.com/gin-gonic/gin"
)

// currentUserID extrae el usuario de la cabecera X-User-ID.
// TODO: sustituir por el middleware de autenticación cuando el servicio
// de usuarios esté desplegado; mientras tanto opera con el usuario 1.
func currentUserID(c *gin.Context) int {
	if raw := c.GetHeader("X-User-ID"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			return id
		}
	}
	return 1
}

// pathID convierte el parámetro de ruta en un id numérico
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Identificador inválido",
			"error":   "el parámetro " + name + " debe ser un entero positivo",
		})
		return 0, false
	}
	return id, true
}

// queryIntPtr lee un parámetro de query numérico opcional
func queryIntPtr(c *gin.Context, name string) *int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return &v
		}
	}
	return nil
}

// statusForError traduce errores de negocio a códigos HTTP
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrNoChange),
		errors.Is(err, services.ErrTicketNotPending),
		errors.Is(err, services.ErrTicketPaid),
		errors.Is(err, services.ErrTrayNotEmpty),
		errors.Is(err, services.ErrDuplicateLocation),
		errors.Is(err, services.ErrSameLocation),
		errors.Is(err, services.ErrInactiveNode):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidOperation),
		errors.Is(err, services.ErrInvalidReason),
		errors.Is(err, services.ErrLocationMismatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError emite el sobre de error estándar
func respondError(c *gin.Context, err error, message string) {
	c.JSON(statusForError(err), gin.H{
		"success": false,
		"message": "❌ " + message,
		"error":   err.Error(),
	})
}
