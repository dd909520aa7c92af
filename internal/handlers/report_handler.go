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

// ReportHandler maneja las peticiones HTTP de partes de trabajo
type ReportHandler struct {
	reportService services.ReportService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewReportHandler crea una nueva instancia del handler
func NewReportHandler(reportService services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		validator:     validator.New(),
		logger:        logger,
	}
}

func (h *ReportHandler) bindReport(c *gin.Context) (*models.WorkReportRequest, bool) {
	var req models.WorkReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ Error binding JSON", zap.Error(err))
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

// CreateReport maneja POST /reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	req, ok := h.bindReport(c)
	if !ok {
		return
	}
	req.UserID = currentUserID(c)

	report, err := h.reportService.CreateReport(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error creando parte de trabajo")
		return
	}

	h.logger.Info("✅ Parte de trabajo creado",
		zap.Int("report_id", report.ID),
		zap.Int("incident_id", report.IncidentID))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Parte de trabajo creado correctamente",
		"data":    report,
	})
}

// ListReports maneja GET /reports?incident=N
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.ListReports(c.Request.Context(), queryIntPtr(c, "incident"))
	if err != nil {
		respondError(c, err, "Error obteniendo partes de trabajo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reports, "total": len(reports)})
}

// GetReport maneja GET /reports/:id: incluye las líneas de material
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, materials, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error obteniendo parte de trabajo")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"report":         report,
			"materials_used": materials,
		},
	})
}

// UpdateReport maneja PUT /reports/:id: recalcula el consumo de material
// contra las líneas anteriores
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, bound := h.bindReport(c)
	if !bound {
		return
	}
	req.UserID = currentUserID(c)

	report, err := h.reportService.UpdateReport(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error actualizando parte de trabajo")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Parte de trabajo actualizado correctamente",
		"data":    report,
	})
}

// DeleteReport maneja DELETE /reports/:id?return_materials=true
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	returnMaterials, _ := strconv.ParseBool(c.DefaultQuery("return_materials", "false"))

	if err := h.reportService.DeleteReport(c.Request.Context(), id, returnMaterials, currentUserID(c)); err != nil {
		respondError(c, err, "Error eliminando parte de trabajo")
		return
	}

	message := "✅ Parte de trabajo eliminado correctamente"
	if returnMaterials {
		message = "✅ Parte de trabajo eliminado y materiales devueltos al stock"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
