package handlers

import (
	"net/http"

	"zonelan-service/internal/models"
	"zonelan-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// TicketHandler maneja las peticiones HTTP de tickets de venta
type TicketHandler struct {
	ticketService services.TicketService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewTicketHandler crea una nueva instancia del handler
func NewTicketHandler(ticketService services.TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		validator:     validator.New(),
		logger:        logger,
	}
}

func (h *TicketHandler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Error("❌ Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return false
	}
	return true
}

// CreateTicket maneja POST /tickets: numera el ticket y descuenta el
// stock de cada línea en la misma transacción
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req models.TicketCreateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	ticket, err := h.ticketService.CreateTicket(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Error creando ticket")
		return
	}

	h.logger.Info("✅ Ticket creado",
		zap.Int("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Ticket creado correctamente",
		"data":    ticket,
	})
}

// ListTickets maneja GET /tickets
func (h *TicketHandler) ListTickets(c *gin.Context) {
	filter := models.TicketFilter{
		CustomerID: queryIntPtr(c, "customer"),
		Limit:      100,
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TicketStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "❌ Estado de filtro inválido",
				"error":   "status debe ser PENDING, PAID o CANCELED",
			})
			return
		}
		filter.Status = &status
	}
	if limit := queryIntPtr(c, "limit"); limit != nil && *limit > 0 {
		filter.Limit = *limit
	}
	if offset := queryIntPtr(c, "offset"); offset != nil && *offset > 0 {
		filter.Offset = *offset
	}

	tickets, err := h.ticketService.ListTickets(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error obteniendo tickets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tickets, "total": len(tickets)})
}

// GetTicket maneja GET /tickets/:id: incluye las líneas
func (h *TicketHandler) GetTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.ticketService.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo ticket")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ticket})
}

// AddItem maneja POST /tickets/:id/items
func (h *TicketHandler) AddItem(c *gin.Context) {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.TicketItemRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	item, err := h.ticketService.AddItem(c.Request.Context(), ticketID, &req, currentUserID(c))
	if err != nil {
		respondError(c, err, "Error añadiendo línea al ticket")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Línea añadida correctamente",
		"data":    item,
	})
}

// UpdateItem maneja PUT /ticket_items/:id
func (h *TicketHandler) UpdateItem(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.TicketItemUpdateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	item, err := h.ticketService.UpdateItem(c.Request.Context(), itemID, &req)
	if err != nil {
		respondError(c, err, "Error actualizando línea del ticket")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Línea actualizada correctamente",
		"data":    item,
	})
}

// RemoveItem maneja DELETE /ticket_items/:id: devuelve el stock de la línea
func (h *TicketHandler) RemoveItem(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ticketService.RemoveItem(c.Request.Context(), itemID, currentUserID(c)); err != nil {
		respondError(c, err, "Error eliminando línea del ticket")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Línea eliminada y stock devuelto"})
}

// MarkPaid maneja POST /tickets/:id/pay
func (h *TicketHandler) MarkPaid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.ticketService.MarkPaid(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondError(c, err, "Error cobrando ticket")
		return
	}
	h.logger.Info("✅ Ticket cobrado", zap.String("ticket_number", ticket.TicketNumber))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Ticket cobrado correctamente",
		"data":    ticket,
	})
}

// CancelTicket maneja POST /tickets/:id/cancel: devuelve el stock
// de todas las líneas
func (h *TicketHandler) CancelTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.ticketService.CancelTicket(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondError(c, err, "Error anulando ticket")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Ticket anulado y stock devuelto",
		"data":    ticket,
	})
}

// DeleteTicket maneja DELETE /tickets/:id: borrado lógico
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ticketService.DeleteTicket(c.Request.Context(), id, currentUserID(c)); err != nil {
		respondError(c, err, "Error eliminando ticket")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Ticket eliminado correctamente"})
}
