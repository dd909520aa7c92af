package handlers

import (
	"net/http"

	"zonelan-service/internal/models"
	"zonelan-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CustomerHandler maneja clientes e incidencias
type CustomerHandler struct {
	customerService services.CustomerService
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewCustomerHandler crea una nueva instancia del handler
func NewCustomerHandler(customerService services.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		validator:       validator.New(),
		logger:          logger,
	}
}

func (h *CustomerHandler) bindAndValidate(c *gin.Context, req interface{}) bool {
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

// CreateCustomer maneja POST /customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Error creando cliente")
		return
	}
	h.logger.Info("✅ Cliente creado", zap.Int("customer_id", customer.ID))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Cliente creado correctamente",
		"data":    customer,
	})
}

// ListCustomers maneja GET /customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customerService.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error obteniendo clientes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": customers, "total": len(customers)})
}

// GetCustomer maneja GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo cliente")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": customer})
}

// UpdateCustomer maneja PUT /customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CustomerRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Error actualizando cliente")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Cliente actualizado correctamente",
		"data":    customer,
	})
}

// DeleteCustomer maneja DELETE /customers/:id
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando cliente")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Cliente eliminado correctamente"})
}

// CreateIncident maneja POST /incidents
func (h *CustomerHandler) CreateIncident(c *gin.Context) {
	var req models.IncidentRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	incident, err := h.customerService.CreateIncident(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Error creando incidencia")
		return
	}
	h.logger.Info("✅ Incidencia creada",
		zap.Int("incident_id", incident.ID),
		zap.Int("customer_id", incident.CustomerID))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Incidencia creada correctamente",
		"data":    incident,
	})
}

// ListIncidents maneja GET /incidents?customer=N
func (h *CustomerHandler) ListIncidents(c *gin.Context) {
	incidents, err := h.customerService.ListIncidents(c.Request.Context(), queryIntPtr(c, "customer"))
	if err != nil {
		respondError(c, err, "Error obteniendo incidencias")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": incidents, "total": len(incidents)})
}

// GetIncident maneja GET /incidents/:id
func (h *CustomerHandler) GetIncident(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	incident, err := h.customerService.GetIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo incidencia")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": incident})
}

// UpdateIncident maneja PUT /incidents/:id
func (h *CustomerHandler) UpdateIncident(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.IncidentRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	incident, err := h.customerService.UpdateIncident(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Error actualizando incidencia")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Incidencia actualizada correctamente",
		"data":    incident,
	})
}

// DeleteIncident maneja DELETE /incidents/:id
func (h *CustomerHandler) DeleteIncident(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.DeleteIncident(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando incidencia")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Incidencia eliminada correctamente"})
}
