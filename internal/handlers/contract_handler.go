package handlers

import (
	"net/http"
	"strconv"

	"zonelan-service/internal/models"
	"zonelan-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ContractHandler maneja contratos, mantenimientos y reportes de contrato
type ContractHandler struct {
	contractService services.ContractService
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewContractHandler crea una nueva instancia del handler
func NewContractHandler(contractService services.ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		validator:       validator.New(),
		logger:          logger,
	}
}

func (h *ContractHandler) bindAndValidate(c *gin.Context, req interface{}) bool {
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

// CreateContract maneja POST /contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req models.ContractRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	contract, err := h.contractService.CreateContract(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Error creando contrato")
		return
	}

	h.logger.Info("✅ Contrato creado",
		zap.Int("contract_id", contract.ID),
		zap.Int("customer_id", contract.CustomerID))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Contrato creado correctamente",
		"data":    contract,
	})
}

// ListContracts maneja GET /contracts?customer=N
func (h *ContractHandler) ListContracts(c *gin.Context) {
	contracts, err := h.contractService.ListContracts(c.Request.Context(), queryIntPtr(c, "customer"))
	if err != nil {
		respondError(c, err, "Error obteniendo contratos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": contracts, "total": len(contracts)})
}

// GetContract maneja GET /contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo contrato")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": contract})
}

// UpdateContract maneja PUT /contracts/:id
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ContractRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	contract, err := h.contractService.UpdateContract(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Error actualizando contrato")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Contrato actualizado correctamente",
		"data":    contract,
	})
}

// DeleteContract maneja DELETE /contracts/:id: borrado lógico
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.contractService.DeleteContract(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error eliminando contrato")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "✅ Contrato eliminado correctamente"})
}

// GetDashboard maneja GET /contracts/dashboard
func (h *ContractHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.contractService.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error obteniendo resumen de contratos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dashboard})
}

// GetPendingMaintenances maneja GET /contracts/pending_maintenances
func (h *ContractHandler) GetPendingMaintenances(c *gin.Context) {
	contracts, err := h.contractService.ListPendingMaintenances(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error obteniendo mantenimientos pendientes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": contracts, "total": len(contracts)})
}

// GetExpiringSoon maneja GET /contracts/expiring_soon?days=30
func (h *ContractHandler) GetExpiringSoon(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ El parámetro days debe ser un entero positivo",
		})
		return
	}
	contracts, err := h.contractService.ListExpiringSoon(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, "Error obteniendo contratos próximos a vencer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": contracts, "total": len(contracts)})
}

// CreateMaintenanceRecord maneja POST /contracts/:id/maintenance
func (h *ContractHandler) CreateMaintenanceRecord(c *gin.Context) {
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.MaintenanceRecordRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	record, err := h.contractService.CreateMaintenanceRecord(c.Request.Context(), contractID, &req)
	if err != nil {
		respondError(c, err, "Error registrando mantenimiento")
		return
	}

	h.logger.Info("✅ Mantenimiento registrado",
		zap.Int("contract_id", contractID),
		zap.String("status", string(record.Status)))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Mantenimiento registrado correctamente",
		"data":    record,
	})
}

// ListMaintenanceRecords maneja GET /contracts/:id/maintenance
func (h *ContractHandler) ListMaintenanceRecords(c *gin.Context) {
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	records, err := h.contractService.ListMaintenanceRecords(c.Request.Context(), contractID)
	if err != nil {
		respondError(c, err, "Error obteniendo mantenimientos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "total": len(records)})
}

// UpdateMaintenanceRecord maneja PUT /maintenance/:id
func (h *ContractHandler) UpdateMaintenanceRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.MaintenanceRecordRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	record, err := h.contractService.UpdateMaintenanceRecord(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Error actualizando mantenimiento")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Mantenimiento actualizado correctamente",
		"data":    record,
	})
}

// CreateContractReport maneja POST /contract_reports
func (h *ContractHandler) CreateContractReport(c *gin.Context) {
	var req models.ContractReportRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	report, err := h.contractService.CreateContractReport(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Error creando reporte de contrato")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Reporte de contrato creado correctamente",
		"data":    report,
	})
}

// ListContractReports maneja GET /contracts/:id/reports
func (h *ContractHandler) ListContractReports(c *gin.Context) {
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reports, err := h.contractService.ListContractReports(c.Request.Context(), contractID)
	if err != nil {
		respondError(c, err, "Error obteniendo reportes de contrato")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reports, "total": len(reports)})
}

// GetContractReport maneja GET /contract_reports/:id
func (h *ContractHandler) GetContractReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, materials, err := h.contractService.GetContractReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo reporte de contrato")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"report":    report,
			"materials": materials,
		},
	})
}

// UpdateContractReport maneja PUT /contract_reports/:id
func (h *ContractHandler) UpdateContractReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ContractReportRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	req.UserID = currentUserID(c)

	report, err := h.contractService.UpdateContractReport(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Error actualizando reporte de contrato")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Reporte de contrato actualizado correctamente",
		"data":    report,
	})
}

// DeleteContractReport maneja DELETE /contract_reports/:id?return_materials=true
func (h *ContractHandler) DeleteContractReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	returnMaterials, _ := strconv.ParseBool(c.DefaultQuery("return_materials", "false"))

	if err := h.contractService.DeleteContractReport(c.Request.Context(), id, returnMaterials, currentUserID(c)); err != nil {
		respondError(c, err, "Error eliminando reporte de contrato")
		return
	}

	message := "✅ Reporte de contrato eliminado correctamente"
	if returnMaterials {
		message = "✅ Reporte eliminado y materiales devueltos al stock"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
