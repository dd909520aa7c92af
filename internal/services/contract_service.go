package services

import (
	"context"
	"fmt"
	"time"

	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"go.uber.org/zap"
)

// ContractService define las operaciones sobre contratos, mantenimientos
// y reportes de contrato
type ContractService interface {
	CreateContract(ctx context.Context, req *models.ContractRequest) (*models.Contract, error)
	GetContract(ctx context.Context, id int) (*models.Contract, error)
	ListContracts(ctx context.Context, customerID *int) ([]*models.Contract, error)
	UpdateContract(ctx context.Context, id int, req *models.ContractRequest) (*models.Contract, error)
	DeleteContract(ctx context.Context, id int) error
	GetDashboard(ctx context.Context) (*models.ContractDashboard, error)
	ListPendingMaintenances(ctx context.Context) ([]*models.Contract, error)
	ListExpiringSoon(ctx context.Context, days int) ([]*models.Contract, error)

	CreateMaintenanceRecord(ctx context.Context, contractID int, req *models.MaintenanceRecordRequest) (*models.MaintenanceRecord, error)
	ListMaintenanceRecords(ctx context.Context, contractID int) ([]*models.MaintenanceRecord, error)
	UpdateMaintenanceRecord(ctx context.Context, id int, req *models.MaintenanceRecordRequest) (*models.MaintenanceRecord, error)

	CreateContractReport(ctx context.Context, req *models.ContractReportRequest) (*models.ContractReport, error)
	GetContractReport(ctx context.Context, id int) (*models.ContractReport, []*models.ContractReportMaterial, error)
	ListContractReports(ctx context.Context, contractID int) ([]*models.ContractReport, error)
	UpdateContractReport(ctx context.Context, id int, req *models.ContractReportRequest) (*models.ContractReport, error)
	DeleteContractReport(ctx context.Context, id int, returnMaterials bool, userID int) error
}

// contractService implementa ContractService
type contractService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewContractService crea una nueva instancia del servicio
func NewContractService(store repository.Store, logger *zap.Logger) ContractService {
	return &contractService{store: store, logger: logger}
}

// nextMaintenanceDate calcula la próxima fecha de mantenimiento a partir
// de la última realizada y la frecuencia del contrato
func nextMaintenanceDate(from time.Time, frequency models.MaintenanceFrequency) *time.Time {
	days := frequency.Days()
	if days == 0 {
		return nil
	}
	next := from.AddDate(0, 0, days)
	return &next
}

// CreateContract da de alta un contrato; si requiere mantenimiento se
// programa la primera fecha desde el inicio del contrato
func (s *contractService) CreateContract(ctx context.Context, req *models.ContractRequest) (*models.Contract, error) {
	logger := s.logger.With(
		zap.String("operation", "create_contract"),
		zap.Int("customer_id", req.CustomerID),
		zap.String("title", req.Title),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Creando contrato")

	status := req.Status
	if status == "" {
		status = models.ContractActive
	}

	contract := &models.Contract{
		CustomerID:           req.CustomerID,
		Title:                req.Title,
		Description:          req.Description,
		Status:               status,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		RequiresMaintenance:  req.RequiresMaintenance,
		MaintenanceFrequency: req.MaintenanceFrequency,
		Observations:         req.Observations,
		CreatedBy:            &req.UserID,
	}
	if req.RequiresMaintenance && req.MaintenanceFrequency != nil {
		contract.NextMaintenanceDate = nextMaintenanceDate(req.StartDate, *req.MaintenanceFrequency)
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		customer, err := q.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return fmt.Errorf("%w: cliente %d", ErrNotFound, req.CustomerID)
		}
		return q.CreateContract(ctx, contract)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error creando contrato", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Contrato creado", zap.Int("contract_id", contract.ID))
	return contract, nil
}

func (s *contractService) GetContract(ctx context.Context, id int) (*models.Contract, error) {
	contract, err := s.store.Queries().GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: contrato %d", ErrNotFound, id)
	}
	return contract, nil
}

func (s *contractService) ListContracts(ctx context.Context, customerID *int) ([]*models.Contract, error) {
	return s.store.Queries().ListContracts(ctx, customerID, false)
}

func (s *contractService) UpdateContract(ctx context.Context, id int, req *models.ContractRequest) (*models.Contract, error) {
	contract, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}

	contract.Title = req.Title
	contract.Description = req.Description
	if req.Status != "" {
		contract.Status = req.Status
	}
	contract.StartDate = req.StartDate
	contract.EndDate = req.EndDate
	contract.RequiresMaintenance = req.RequiresMaintenance
	contract.MaintenanceFrequency = req.MaintenanceFrequency
	contract.Observations = req.Observations
	if !req.RequiresMaintenance {
		contract.NextMaintenanceDate = nil
	} else if contract.NextMaintenanceDate == nil && req.MaintenanceFrequency != nil {
		contract.NextMaintenanceDate = nextMaintenanceDate(req.StartDate, *req.MaintenanceFrequency)
	}

	if err := s.store.Queries().UpdateContract(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// DeleteContract borrado lógico; el contrato deja de aparecer en listados
func (s *contractService) DeleteContract(ctx context.Context, id int) error {
	return s.store.Queries().SoftDeleteContract(ctx, id)
}

func (s *contractService) GetDashboard(ctx context.Context) (*models.ContractDashboard, error) {
	return s.store.Queries().GetContractDashboard(ctx)
}

// ListPendingMaintenances devuelve los contratos con mantenimiento ya vencido
func (s *contractService) ListPendingMaintenances(ctx context.Context) ([]*models.Contract, error) {
	return s.store.Queries().ListPendingMaintenances(ctx, time.Now())
}

// ListExpiringSoon devuelve los contratos vigentes que terminan dentro del
// número de días indicado
func (s *contractService) ListExpiringSoon(ctx context.Context, days int) ([]*models.Contract, error) {
	return s.store.Queries().ListExpiringContracts(ctx, time.Now().AddDate(0, 0, days))
}

// CreateMaintenanceRecord registra un mantenimiento; al completarse se
// reprograma la próxima fecha del contrato
func (s *contractService) CreateMaintenanceRecord(ctx context.Context, contractID int, req *models.MaintenanceRecordRequest) (*models.MaintenanceRecord, error) {
	logger := s.logger.With(
		zap.String("operation", "create_maintenance_record"),
		zap.Int("contract_id", contractID),
		zap.String("type", req.MaintenanceType),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Registrando mantenimiento")

	record := &models.MaintenanceRecord{
		ContractID:      contractID,
		Date:            req.Date,
		MaintenanceType: req.MaintenanceType,
		Technician:      req.Technician,
		PerformedBy:     &req.UserID,
		Status:          req.Status,
		Observations:    req.Observations,
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		contract, err := q.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if contract == nil {
			return fmt.Errorf("%w: contrato %d", ErrNotFound, contractID)
		}

		if err := q.CreateMaintenanceRecord(ctx, record); err != nil {
			return err
		}

		if record.Status == models.MaintenanceCompleted &&
			contract.RequiresMaintenance && contract.MaintenanceFrequency != nil {
			next := nextMaintenanceDate(record.Date, *contract.MaintenanceFrequency)
			if err := q.UpdateNextMaintenanceDate(ctx, contractID, next); err != nil {
				return err
			}
			logger.Info("🔍 [DEBUG] Próximo mantenimiento reprogramado",
				zap.Timep("next", next))
		}
		return nil
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error registrando mantenimiento", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Mantenimiento registrado", zap.Int("record_id", record.ID))
	return record, nil
}

func (s *contractService) ListMaintenanceRecords(ctx context.Context, contractID int) ([]*models.MaintenanceRecord, error) {
	return s.store.Queries().ListMaintenanceRecords(ctx, contractID)
}

func (s *contractService) UpdateMaintenanceRecord(ctx context.Context, id int, req *models.MaintenanceRecordRequest) (*models.MaintenanceRecord, error) {
	var record *models.MaintenanceRecord
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		record, err = q.GetMaintenanceRecord(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("%w: mantenimiento %d", ErrNotFound, id)
		}

		previousStatus := record.Status
		record.Date = req.Date
		record.MaintenanceType = req.MaintenanceType
		record.Technician = req.Technician
		record.Status = req.Status
		record.Observations = req.Observations
		if err := q.UpdateMaintenanceRecord(ctx, record); err != nil {
			return err
		}

		// Al pasar a completado se reprograma el contrato
		if previousStatus != models.MaintenanceCompleted && record.Status == models.MaintenanceCompleted {
			contract, err := q.GetContract(ctx, record.ContractID)
			if err != nil {
				return err
			}
			if contract != nil && contract.RequiresMaintenance && contract.MaintenanceFrequency != nil {
				next := nextMaintenanceDate(record.Date, *contract.MaintenanceFrequency)
				return q.UpdateNextMaintenanceDate(ctx, record.ContractID, next)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CreateContractReport crea un reporte de contrato y consume sus materiales
// en la misma transacción
func (s *contractService) CreateContractReport(ctx context.Context, req *models.ContractReportRequest) (*models.ContractReport, error) {
	logger := s.logger.With(
		zap.String("operation", "create_contract_report"),
		zap.Int("contract_id", req.ContractID),
		zap.Int("materials", len(req.Materials)),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Creando reporte de contrato")

	report := &models.ContractReport{
		ContractID:  req.ContractID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		HoursWorked: req.HoursWorked,
		PerformedBy: &req.UserID,
		Status:      req.Status,
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		contract, err := q.GetContract(ctx, req.ContractID)
		if err != nil {
			return err
		}
		if contract == nil {
			return fmt.Errorf("%w: contrato %d", ErrNotFound, req.ContractID)
		}

		if err := q.CreateContractReport(ctx, report); err != nil {
			return err
		}

		deltas := ComputeLineDeltas(nil, req.Materials)
		ref := ControlRef{ContractReportID: &report.ID}
		if err := applyLineDeltasTx(ctx, q, req.UserID, deltas,
			models.ReasonUso, models.ReasonDevolucion, ref); err != nil {
			return err
		}

		return s.insertMaterials(ctx, q, report.ID, req.Materials)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error creando reporte de contrato", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Reporte de contrato creado", zap.Int("report_id", report.ID))
	return report, nil
}

func (s *contractService) GetContractReport(ctx context.Context, id int) (*models.ContractReport, []*models.ContractReportMaterial, error) {
	q := s.store.Queries()
	report, err := q.GetContractReport(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if report == nil {
		return nil, nil, fmt.Errorf("%w: reporte %d", ErrNotFound, id)
	}
	materials, err := q.ListContractReportMaterials(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return report, materials, nil
}

func (s *contractService) ListContractReports(ctx context.Context, contractID int) ([]*models.ContractReport, error) {
	return s.store.Queries().ListContractReports(ctx, contractID)
}

// UpdateContractReport edita un reporte moviendo solo la diferencia neta de
// material, calculada antes de reemplazar las líneas
func (s *contractService) UpdateContractReport(ctx context.Context, id int, req *models.ContractReportRequest) (*models.ContractReport, error) {
	logger := s.logger.With(
		zap.String("operation", "update_contract_report"),
		zap.Int("report_id", id),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Actualizando reporte de contrato")

	var report *models.ContractReport
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		report, err = q.GetContractReport(ctx, id)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("%w: reporte %d", ErrNotFound, id)
		}

		currentLines, err := q.ListContractReportMaterials(ctx, id)
		if err != nil {
			return err
		}
		current := make(map[int]int, len(currentLines))
		for _, line := range currentLines {
			current[line.MaterialID] += line.Quantity
		}

		deltas := ComputeLineDeltas(current, req.Materials)
		logger.Info("🔍 [DEBUG] Diferencias de material calculadas", zap.Int("cambios", len(deltas)))

		ref := ControlRef{ContractReportID: &report.ID}
		if err := applyLineDeltasTx(ctx, q, req.UserID, deltas,
			models.ReasonUso, models.ReasonDevolucion, ref); err != nil {
			return err
		}

		if err := q.DeleteContractReportMaterials(ctx, id); err != nil {
			return err
		}
		if err := s.insertMaterials(ctx, q, id, req.Materials); err != nil {
			return err
		}

		report.Title = req.Title
		report.Description = req.Description
		report.Date = req.Date
		report.HoursWorked = req.HoursWorked
		report.Status = req.Status
		return q.UpdateContractReport(ctx, report)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error actualizando reporte de contrato", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Reporte de contrato actualizado")
	return report, nil
}

// DeleteContractReport borrado lógico; con returnMaterials el material
// consumido vuelve al stock como devolución
func (s *contractService) DeleteContractReport(ctx context.Context, id int, returnMaterials bool, userID int) error {
	logger := s.logger.With(
		zap.String("operation", "delete_contract_report"),
		zap.Int("report_id", id),
		zap.Bool("return_materials", returnMaterials),
		zap.Int("user_id", userID),
	)

	logger.Info("🔍 [DEBUG] Eliminando reporte de contrato")

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		report, err := q.GetContractReport(ctx, id)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("%w: reporte %d", ErrNotFound, id)
		}

		if returnMaterials {
			lines, err := q.ListContractReportMaterials(ctx, id)
			if err != nil {
				return err
			}
			ref := ControlRef{ContractReportID: &report.ID}
			for _, line := range lines {
				if _, err := ApplyStockChangeTx(ctx, q, userID, line.MaterialID,
					models.OperationAdd, line.Quantity, models.ReasonDevolucion, nil, ref); err != nil {
					return err
				}
			}
		}

		return q.SoftDeleteContractReport(ctx, id)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error eliminando reporte de contrato", zap.Error(err))
		return err
	}

	logger.Info("✅ [DEBUG] Reporte de contrato eliminado")
	return nil
}

func (s *contractService) insertMaterials(ctx context.Context, q repository.Queries, reportID int, lines []models.MaterialLine) error {
	for _, line := range lines {
		m := &models.ContractReportMaterial{
			ContractReportID: reportID,
			MaterialID:       line.MaterialID,
			Quantity:         line.Quantity,
		}
		if err := q.CreateContractReportMaterial(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
