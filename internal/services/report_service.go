package services

import (
	"context"
	"fmt"
	"sort"

	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"go.uber.org/zap"
)

// LineDelta cambio neto de un material al editar las líneas de un documento
type LineDelta struct {
	MaterialID int
	Delta      int
}

// ComputeLineDeltas calcula la diferencia entre las líneas vigentes y las
// deseadas. El resultado se aplica contra el stock ANTES de reemplazar las
// líneas: solo se mueve el cambio neto, nunca el total de cada línea.
func ComputeLineDeltas(current map[int]int, desired []models.MaterialLine) []LineDelta {
	target := make(map[int]int, len(desired))
	for _, line := range desired {
		target[line.MaterialID] += line.Quantity
	}

	seen := make(map[int]bool, len(current)+len(target))
	var deltas []LineDelta
	for materialID, quantity := range target {
		seen[materialID] = true
		if diff := quantity - current[materialID]; diff != 0 {
			deltas = append(deltas, LineDelta{MaterialID: materialID, Delta: diff})
		}
	}
	for materialID, quantity := range current {
		if !seen[materialID] && quantity != 0 {
			deltas = append(deltas, LineDelta{MaterialID: materialID, Delta: -quantity})
		}
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].MaterialID < deltas[j].MaterialID })
	return deltas
}

// applyLineDeltasTx aplica cada cambio neto como consumo o devolución dentro
// de la transacción del documento que lo origina
func applyLineDeltasTx(ctx context.Context, q repository.Queries, userID int,
	deltas []LineDelta, consumeReason, returnReason models.Reason, ref ControlRef) error {
	for _, delta := range deltas {
		op := models.OperationRemove
		reason := consumeReason
		quantity := delta.Delta
		if delta.Delta < 0 {
			op = models.OperationAdd
			reason = returnReason
			quantity = -delta.Delta
		}
		if _, err := ApplyStockChangeTx(ctx, q, userID, delta.MaterialID, op, quantity, reason, nil, ref); err != nil {
			return err
		}
	}
	return nil
}

// ReportService define las operaciones sobre partes de trabajo
type ReportService interface {
	CreateReport(ctx context.Context, req *models.WorkReportRequest) (*models.WorkReport, error)
	GetReport(ctx context.Context, id int) (*models.WorkReport, []*models.MaterialUsedWithDetails, error)
	ListReports(ctx context.Context, incidentID *int) ([]*models.WorkReport, error)
	UpdateReport(ctx context.Context, id int, req *models.WorkReportRequest) (*models.WorkReport, error)
	DeleteReport(ctx context.Context, id int, returnMaterials bool, userID int) error
}

// reportService implementa ReportService
type reportService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewReportService crea una nueva instancia del servicio
func NewReportService(store repository.Store, logger *zap.Logger) ReportService {
	return &reportService{store: store, logger: logger}
}

// CreateReport crea un parte de trabajo y consume sus materiales en la misma transacción
func (s *reportService) CreateReport(ctx context.Context, req *models.WorkReportRequest) (*models.WorkReport, error) {
	logger := s.logger.With(
		zap.String("operation", "create_report"),
		zap.Int("incident_id", req.IncidentID),
		zap.Int("materials", len(req.MaterialsUsed)),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Creando parte de trabajo")

	report := &models.WorkReport{
		IncidentID:  req.IncidentID,
		Date:        req.Date,
		Description: req.Description,
		HoursWorked: req.HoursWorked,
		Status:      req.Status,
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		incident, err := q.GetIncident(ctx, req.IncidentID)
		if err != nil {
			return err
		}
		if incident == nil {
			return fmt.Errorf("%w: incidencia %d", ErrNotFound, req.IncidentID)
		}

		if err := q.CreateReport(ctx, report); err != nil {
			return err
		}

		deltas := ComputeLineDeltas(nil, req.MaterialsUsed)
		ref := ControlRef{ReportID: &report.ID}
		if err := applyLineDeltasTx(ctx, q, req.UserID, deltas,
			models.ReasonUso, models.ReasonDevolucion, ref); err != nil {
			return err
		}

		return s.insertLines(ctx, q, report.ID, req.MaterialsUsed)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error creando parte", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Parte creado", zap.Int("report_id", report.ID))
	return report, nil
}

// GetReport obtiene un parte con sus líneas de material
func (s *reportService) GetReport(ctx context.Context, id int) (*models.WorkReport, []*models.MaterialUsedWithDetails, error) {
	q := s.store.Queries()
	report, err := q.GetReport(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if report == nil {
		return nil, nil, fmt.Errorf("%w: parte %d", ErrNotFound, id)
	}
	lines, err := q.ListMaterialsUsed(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return report, lines, nil
}

// ListReports lista partes, opcionalmente filtrados por incidencia
func (s *reportService) ListReports(ctx context.Context, incidentID *int) ([]*models.WorkReport, error) {
	return s.store.Queries().ListReports(ctx, incidentID)
}

// UpdateReport edita un parte. El stock solo se mueve por la diferencia entre
// las líneas vigentes y las nuevas, calculada antes de reemplazarlas.
func (s *reportService) UpdateReport(ctx context.Context, id int, req *models.WorkReportRequest) (*models.WorkReport, error) {
	logger := s.logger.With(
		zap.String("operation", "update_report"),
		zap.Int("report_id", id),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Actualizando parte de trabajo")

	var report *models.WorkReport
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		report, err = q.GetReport(ctx, id)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("%w: parte %d", ErrNotFound, id)
		}

		currentLines, err := q.ListMaterialsUsed(ctx, id)
		if err != nil {
			return err
		}
		current := make(map[int]int, len(currentLines))
		for _, line := range currentLines {
			current[line.MaterialID] += line.Quantity
		}

		deltas := ComputeLineDeltas(current, req.MaterialsUsed)
		logger.Info("🔍 [DEBUG] Diferencias de material calculadas", zap.Int("cambios", len(deltas)))

		ref := ControlRef{ReportID: &report.ID}
		if err := applyLineDeltasTx(ctx, q, req.UserID, deltas,
			models.ReasonUso, models.ReasonDevolucion, ref); err != nil {
			return err
		}

		if err := q.DeleteMaterialsUsed(ctx, id); err != nil {
			return err
		}
		if err := s.insertLines(ctx, q, id, req.MaterialsUsed); err != nil {
			return err
		}

		report.Date = req.Date
		report.Description = req.Description
		report.HoursWorked = req.HoursWorked
		report.Status = req.Status
		return q.UpdateReport(ctx, report)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error actualizando parte", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Parte actualizado")
	return report, nil
}

// DeleteReport elimina un parte; con returnMaterials el stock consumido
// vuelve al total como devolución
func (s *reportService) DeleteReport(ctx context.Context, id int, returnMaterials bool, userID int) error {
	logger := s.logger.With(
		zap.String("operation", "delete_report"),
		zap.Int("report_id", id),
		zap.Bool("return_materials", returnMaterials),
		zap.Int("user_id", userID),
	)

	logger.Info("🔍 [DEBUG] Eliminando parte de trabajo")

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		report, err := q.GetReport(ctx, id)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("%w: parte %d", ErrNotFound, id)
		}

		if returnMaterials {
			lines, err := q.ListMaterialsUsed(ctx, id)
			if err != nil {
				return err
			}
			ref := ControlRef{ReportID: &report.ID}
			for _, line := range lines {
				if _, err := ApplyStockChangeTx(ctx, q, userID, line.MaterialID,
					models.OperationAdd, line.Quantity, models.ReasonDevolucion, nil, ref); err != nil {
					return err
				}
			}
		}

		if err := q.DeleteMaterialsUsed(ctx, id); err != nil {
			return err
		}
		return q.DeleteReport(ctx, id)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error eliminando parte", zap.Error(err))
		return err
	}

	logger.Info("✅ [DEBUG] Parte eliminado")
	return nil
}

func (s *reportService) insertLines(ctx context.Context, q repository.Queries, reportID int, lines []models.MaterialLine) error {
	for _, line := range lines {
		mu := &models.MaterialUsed{
			ReportID:   reportID,
			MaterialID: line.MaterialID,
			Quantity:   line.Quantity,
		}
		if err := q.CreateMaterialUsed(ctx, mu); err != nil {
			return err
		}
	}
	return nil
}
