package handlers

import (
	"net/http"

	"zonelan-service/internal/models"
	"zonelan-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// StorageHandler maneja la jerarquía de almacenamiento y los movimientos
type StorageHandler struct {
	storageService services.StorageService
	ledgerService  services.LedgerService
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewStorageHandler crea una nueva instancia del handler
func NewStorageHandler(storageService services.StorageService, ledgerService services.LedgerService, logger *zap.Logger) *StorageHandler {
	return &StorageHandler{
		storageService: storageService,
		ledgerService:  ledgerService,
		validator:      validator.New(),
		logger:         logger,
	}
}

func (h *StorageHandler) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

func (h *StorageHandler) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

// bindNode deserializa y valida un StorageNodeRequest
func (h *StorageHandler) bindNode(c *gin.Context) (*models.StorageNodeRequest, bool) {
	var req models.StorageNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return nil, false
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return nil, false
	}
	return &req, true
}

// CreateWarehouse maneja POST /storage/warehouses
func (h *StorageHandler) CreateWarehouse(c *gin.Context) {
	req, ok := h.bindNode(c)
	if !ok {
		return
	}
	warehouse, err := h.storageService.CreateWarehouse(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creando almacén")
		return
	}
	h.logSuccess("Almacén creado", zap.String("code", warehouse.Code))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Almacén creado correctamente",
		"data":    warehouse,
	})
}

// ListWarehouses maneja GET /storage/warehouses
func (h *StorageHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.storageService.ListWarehouses(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error obteniendo almacenes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": warehouses, "total": len(warehouses)})
}

// GetWarehouse maneja GET /storage/warehouses/:id
func (h *StorageHandler) GetWarehouse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	warehouse, err := h.storageService.GetWarehouse(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo almacén")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": warehouse})
}

// UpdateWarehouse maneja PUT /storage/warehouses/:id
func (h *StorageHandler) UpdateWarehouse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, bound := h.bindNode(c)
	if !bound {
		return
	}
	warehouse, err := h.storageService.UpdateWarehouse(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error actualizando almacén")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Almacén actualizado correctamente",
		"data":    warehouse,
	})
}

// DeleteWarehouse maneja DELETE /storage/warehouses/:id
func (h *StorageHandler) DeleteWarehouse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.storageService.DeleteWarehouse(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando almacén")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Almacén eliminado correctamente"})
}

// CreateDepartment maneja POST /storage/departments
func (h *StorageHandler) CreateDepartment(c *gin.Context) {
	req, ok := h.bindNode(c)
	if !ok {
		return
	}
	department, err := h.storageService.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creando dependencia")
		return
	}
	h.logSuccess("Dependencia creada", zap.String("code", department.Code))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Dependencia creada correctamente",
		"data":    department,
	})
}

// ListDepartments maneja GET /storage/departments?warehouse=N
func (h *StorageHandler) ListDepartments(c *gin.Context) {
	warehouseID := queryIntPtr(c, "warehouse")
	if warehouseID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Parámetro warehouse requerido",
			"error":   "warehouse debe ser un ID numérico",
		})
		return
	}
	departments, err := h.storageService.ListDepartments(c.Request.Context(), *warehouseID)
	if err != nil {
		respondError(c, err, "Error obteniendo dependencias")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": departments, "total": len(departments)})
}

// GetDepartment maneja GET /storage/departments/:id
func (h *StorageHandler) GetDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	department, err := h.storageService.GetDepartment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo dependencia")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": department})
}

// UpdateDepartment maneja PUT /storage/departments/:id
func (h *StorageHandler) UpdateDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, bound := h.bindNode(c)
	if !bound {
		return
	}
	department, err := h.storageService.UpdateDepartment(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error actualizando dependencia")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Dependencia actualizada correctamente",
		"data":    department,
	})
}

// DeleteDepartment maneja DELETE /storage/departments/:id
func (h *StorageHandler) DeleteDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.storageService.DeleteDepartment(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando dependencia")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Dependencia eliminada correctamente"})
}

// CreateShelf maneja POST /storage/shelves
func (h *StorageHandler) CreateShelf(c *gin.Context) {
	req, ok := h.bindNode(c)
	if !ok {
		return
	}
	shelf, err := h.storageService.CreateShelf(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creando estantería")
		return
	}
	h.logSuccess("Estantería creada", zap.String("code", shelf.Code))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Estantería creada correctamente",
		"data":    shelf,
	})
}

// ListShelves maneja GET /storage/shelves?department=N
func (h *StorageHandler) ListShelves(c *gin.Context) {
	departmentID := queryIntPtr(c, "department")
	if departmentID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Parámetro department requerido",
			"error":   "department debe ser un ID numérico",
		})
		return
	}
	shelves, err := h.storageService.ListShelves(c.Request.Context(), *departmentID)
	if err != nil {
		respondError(c, err, "Error obteniendo estanterías")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": shelves, "total": len(shelves)})
}

// GetShelf maneja GET /storage/shelves/:id
func (h *StorageHandler) GetShelf(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	shelf, err := h.storageService.GetShelf(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo estantería")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": shelf})
}

// UpdateShelf maneja PUT /storage/shelves/:id
func (h *StorageHandler) UpdateShelf(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, bound := h.bindNode(c)
	if !bound {
		return
	}
	shelf, err := h.storageService.UpdateShelf(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error actualizando estantería")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Estantería actualizada correctamente",
		"data":    shelf,
	})
}

// DeleteShelf maneja DELETE /storage/shelves/:id
func (h *StorageHandler) DeleteShelf(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.storageService.DeleteShelf(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando estantería")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Estantería eliminada correctamente"})
}

// CreateTray maneja POST /storage/trays
func (h *StorageHandler) CreateTray(c *gin.Context) {
	req, ok := h.bindNode(c)
	if !ok {
		return
	}
	tray, err := h.storageService.CreateTray(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creando balda")
		return
	}
	h.logSuccess("Balda creada", zap.String("code", tray.Code))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Balda creada correctamente",
		"data":    tray,
	})
}

// ListTrays maneja GET /storage/trays?shelf=N
func (h *StorageHandler) ListTrays(c *gin.Context) {
	shelfID := queryIntPtr(c, "shelf")
	if shelfID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Parámetro shelf requerido",
			"error":   "shelf debe ser un ID numérico",
		})
		return
	}
	trays, err := h.storageService.ListTrays(c.Request.Context(), *shelfID)
	if err != nil {
		respondError(c, err, "Error obteniendo baldas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": trays, "total": len(trays)})
}

// GetTray maneja GET /storage/trays/:id
func (h *StorageHandler) GetTray(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tray, err := h.storageService.GetTray(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo balda")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tray})
}

// UpdateTray maneja PUT /storage/trays/:id
func (h *StorageHandler) UpdateTray(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, bound := h.bindNode(c)
	if !bound {
		return
	}
	tray, err := h.storageService.UpdateTray(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error actualizando balda")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Balda actualizada correctamente",
		"data":    tray,
	})
}

// DeleteTray maneja DELETE /storage/trays/:id
func (h *StorageHandler) DeleteTray(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.storageService.DeleteTray(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando balda")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Balda eliminada correctamente"})
}

// GetTrayPath maneja GET /storage/trays/:id/path
func (h *StorageHandler) GetTrayPath(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	path, err := h.storageService.GetTrayPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo ruta de la balda")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": path})
}

// GetWarehouseDetails maneja GET /storage/warehouses/:id/details
func (h *StorageHandler) GetWarehouseDetails(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	warehouse, departments, err := h.storageService.GetWarehouseDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo detalles del almacén")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"warehouse":        warehouse,
			"departments":      departments,
			"department_count": len(departments),
		},
	})
}

// GetDepartmentDetails maneja GET /storage/departments/:id/details
func (h *StorageHandler) GetDepartmentDetails(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	department, shelves, err := h.storageService.GetDepartmentDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo detalles de la dependencia")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"department":  department,
			"shelves":     shelves,
			"shelf_count": len(shelves),
		},
	})
}

// GetShelfDetails maneja GET /storage/shelves/:id/details
func (h *StorageHandler) GetShelfDetails(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	shelf, trays, err := h.storageService.GetShelfDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo detalles de la estantería")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"shelf":      shelf,
			"trays":      trays,
			"tray_count": len(trays),
		},
	})
}

// GetTrayDetails maneja GET /storage/trays/:id/details
func (h *StorageHandler) GetTrayDetails(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tray, path, locations, err := h.storageService.GetTrayDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo detalles de la balda")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"tray":      tray,
			"full_code": path.FullCode(),
			"path":      path,
			"locations": locations,
		},
	})
}

// CreateMovement maneja POST /storage/movements: entradas, salidas y
// traslados entre baldas
func (h *StorageHandler) CreateMovement(c *gin.Context) {
	var req models.MovementRequest
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

	result, err := h.ledgerService.Move(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Movimiento rechazado")
		return
	}

	h.logSuccess("Movimiento registrado",
		zap.Int("material_id", req.MaterialID),
		zap.String("operation", string(req.Operation)))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Movimiento registrado correctamente",
		"data":    result,
	})
}

// ListMovements maneja GET /storage/movements
func (h *StorageHandler) ListMovements(c *gin.Context) {
	filter := models.MovementFilter{
		MaterialID: queryIntPtr(c, "material"),
		LocationID: queryIntPtr(c, "location"),
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
	if limit := queryIntPtr(c, "limit"); limit != nil && *limit > 0 {
		filter.Limit = *limit
	}
	if offset := queryIntPtr(c, "offset"); offset != nil && *offset > 0 {
		filter.Offset = *offset
	}

	movements, err := h.ledgerService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error obteniendo movimientos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": movements, "total": len(movements)})
}
