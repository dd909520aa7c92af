package handlers

import (
	"net/http"
	"time"

	"zonelan-service/internal/models"
	"zonelan-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MaterialHandler maneja las peticiones HTTP de materiales y del libro de stock
type MaterialHandler struct {
	materialService services.MaterialService
	ledgerService   services.LedgerService
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewMaterialHandler crea una nueva instancia del handler
func NewMaterialHandler(materialService services.MaterialService, ledgerService services.LedgerService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		ledgerService:   ledgerService,
		validator:       validator.New(),
		logger:          logger,
	}
}

// logDebug logs solo en modo debug
func (h *MaterialHandler) logDebug(msg string, fields ...zap.Field) {
	h.logger.Debug("🔍 [DEBUG] "+msg, fields...)
}

// logError logs errores en todos los modos
func (h *MaterialHandler) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

// logSuccess logs de éxito en todos los modos
func (h *MaterialHandler) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

// CreateMaterial maneja POST /materials
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req models.MaterialCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logError("Validation error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}

	material, err := h.materialService.CreateMaterial(c.Request.Context(), &req, currentUserID(c))
	if err != nil {
		respondError(c, err, "Error creando material")
		return
	}

	h.logSuccess("Material creado", zap.Int("material_id", material.ID))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Material creado correctamente",
		"data":    material,
	})
}

// ListMaterials maneja GET /materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	materials, err := h.materialService.ListMaterials(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error obteniendo materiales")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    materials,
		"total":   len(materials),
	})
}

// GetMaterial maneja GET /materials/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	material, err := h.materialService.GetMaterial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo material")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": material})
}

// UpdateMaterial maneja PUT /materials/:id
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.MaterialUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}

	material, err := h.materialService.UpdateMaterial(c.Request.Context(), id, &req, currentUserID(c))
	if err != nil {
		respondError(c, err, "Error actualizando material")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Material actualizado correctamente",
		"data":    material,
	})
}

// ApplyOperation maneja POST /materials/:id/operation: entrada o salida
// directa contra el material, opcionalmente sobre una ubicación
func (h *MaterialHandler) ApplyOperation(c *gin.Context) {
	start := time.Now()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.MaterialOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logError("Validation error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}
	req.UserID = currentUserID(c)

	h.logDebug("Aplicando operación de stock",
		zap.Int("material_id", id),
		zap.String("operation", string(req.Operation)),
		zap.Int("quantity_change", req.QuantityChange))

	result, err := h.ledgerService.ApplyOperation(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Operación de stock rechazada")
		return
	}

	h.logSuccess("Operación de stock aplicada",
		zap.Int("material_id", id),
		zap.Duration("latency", time.Since(start)))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Operación de stock registrada correctamente",
		"data":    result,
	})
}

// AdjustStock maneja POST /materials/:id/adjust_stock: cuadre contra el
// recuento físico de una ubicación o del stock sin ubicar
func (h *MaterialHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}
	req.UserID = currentUserID(c)

	result, err := h.ledgerService.AdjustStock(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Cuadre de stock rechazado")
		return
	}

	h.logSuccess("Cuadre de stock aplicado", zap.Int("material_id", id))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Cuadre de stock registrado correctamente",
		"data":    result,
	})
}

// InventoryCheck maneja GET /materials/:id/inventory_check
func (h *MaterialHandler) InventoryCheck(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.ledgerService.InventoryCheck(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error comprobando inventario")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

// ListControls maneja GET /control: histórico del libro de stock
func (h *MaterialHandler) ListControls(c *gin.Context) {
	filter := models.ControlFilter{
		MaterialID: queryIntPtr(c, "material"),
		Limit:      100,
	}
	if raw := c.Query("operation"); raw != "" {
		op := models.Operation(raw)
		if !op.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "❌ Operación de filtro inválida",
				"error":   "operation debe ser ADD, REMOVE o TRANSFER",
			})
			return
		}
		filter.Operation = &op
	}
	if raw := c.Query("reason"); raw != "" {
		reason := models.Reason(raw)
		if !reason.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "❌ Motivo de filtro inválido",
				"error":   "reason no reconocido",
			})
			return
		}
		filter.Reason = &reason
	}
	if limit := queryIntPtr(c, "limit"); limit != nil && *limit > 0 {
		filter.Limit = *limit
	}
	if offset := queryIntPtr(c, "offset"); offset != nil && *offset > 0 {
		filter.Offset = *offset
	}

	controls, err := h.ledgerService.ListControls(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error obteniendo histórico")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    controls,
		"total":   len(controls),
	})
}

// CreateLocation maneja POST /locations
func (h *MaterialHandler) CreateLocation(c *gin.Context) {
	var req models.LocationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}
	req.UserID = currentUserID(c)

	location, err := h.materialService.CreateLocation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Error creando ubicación")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Ubicación creada correctamente",
		"data":    location,
	})
}

// GetLocation maneja GET /locations/:id
func (h *MaterialHandler) GetLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	location, err := h.materialService.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo ubicación")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": location})
}

// UpdateLocation maneja PUT /locations/:id
func (h *MaterialHandler) UpdateLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}
	location, err := h.materialService.UpdateLocation(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Error actualizando ubicación")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Ubicación actualizada correctamente",
		"data":    location,
	})
}

// DeleteLocation maneja DELETE /locations/:id
func (h *MaterialHandler) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.materialService.DeleteLocation(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando ubicación")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Ubicación eliminada correctamente",
	})
}

// ListTrayLocations maneja GET /storage/trays/:id/locations
func (h *MaterialHandler) ListTrayLocations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	locations, err := h.materialService.ListLocationsByTray(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo ubicaciones de la balda")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    locations,
		"total":   len(locations),
	})
}

// ListMaterialLocations maneja GET /materials/:id/locations
func (h *MaterialHandler) ListMaterialLocations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	locations, err := h.materialService.ListLocationsByMaterial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo ubicaciones")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    locations,
		"total":   len(locations),
	})
}

// ListLowStock maneja GET /locations/low_stock
func (h *MaterialHandler) ListLowStock(c *gin.Context) {
	locations, err := h.materialService.ListLowStockLocations(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error obteniendo ubicaciones bajo mínimo")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    locations,
		"total":   len(locations),
	})
}
