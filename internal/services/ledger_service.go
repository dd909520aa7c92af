package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zonelan-service/internal/cache"
	"zonelan-service/internal/metrics"
	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"go.uber.org/zap"
)

// LedgerService define las operaciones del libro de stock
type LedgerService interface {
	// Operaciones de stock
	ApplyOperation(ctx context.Context, materialID int, req *models.MaterialOperationRequest) (*models.OperationResult, error)
	Move(ctx context.Context, req *models.MovementRequest) (*models.OperationResult, error)
	AdjustStock(ctx context.Context, materialID int, req *models.AdjustStockRequest) (*models.OperationResult, error)

	// Consultas
	InventoryCheck(ctx context.Context, materialID int) (*models.InventoryCheckResponse, error)
	ListControls(ctx context.Context, filter models.ControlFilter) ([]*models.MaterialControlWithDetails, error)
	ListMovements(ctx context.Context, filter models.MovementFilter) ([]*models.MaterialMovement, error)
}

// ControlRef referencias opcionales que un consumo imprime en su fila de histórico
type ControlRef struct {
	ReportID         *int
	ContractReportID *int
	TicketID         *int
	InvoiceImage     *string
}

// ledgerService implementa LedgerService
type ledgerService struct {
	store  repository.Store
	cache  *cache.MaterialCache
	logger *zap.Logger
}

// NewLedgerService crea una nueva instancia del servicio
func NewLedgerService(store repository.Store, materialCache *cache.MaterialCache, logger *zap.Logger) LedgerService {
	return &ledgerService{
		store:  store,
		cache:  materialCache,
		logger: logger,
	}
}

// ApplyStockChangeTx aplica un cambio de stock dentro de una transacción ya abierta.
// Bloquea la fila del material, ajusta el total y la ubicación si procede, y deja
// exactamente una fila de histórico. Otros servicios la reutilizan para que el
// consumo de material y su documento viajen en la misma transacción.
func ApplyStockChangeTx(ctx context.Context, q repository.Queries, userID, materialID int,
	op models.Operation, quantity int, reason models.Reason, locationID *int, ref ControlRef) (*models.OperationResult, error) {

	if quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", ErrInvalidOperation)
	}
	if op != models.OperationAdd && op != models.OperationRemove {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReason, reason)
	}

	material, err := q.GetMaterialForUpdate(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %d", ErrNotFound, materialID)
	}

	delta := quantity
	if op == models.OperationRemove {
		delta = -quantity
	}

	var location *models.MaterialLocation
	var locationRef *string
	if locationID != nil {
		location, err = q.GetLocationForUpdate(ctx, *locationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, fmt.Errorf("%w: ubicación %d", ErrNotFound, *locationID)
		}
		if location.MaterialID != materialID {
			return nil, ErrLocationMismatch
		}
		if location.Quantity+delta < 0 {
			return nil, fmt.Errorf("%w: disponible %d en la ubicación, solicitado %d",
				ErrInsufficientStock, location.Quantity, quantity)
		}
		if path, err := q.GetTrayPath(ctx, location.TrayID); err == nil && path != nil {
			code := path.FullCode()
			locationRef = &code
		}
	}

	if material.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: disponible %d, solicitado %d",
			ErrInsufficientStock, material.Quantity, quantity)
	}

	// El total y la ubicación se mueven juntos: el stock ubicado es un
	// desglose del total, nunca una cantidad aparte
	material.Quantity += delta
	if err := q.UpdateMaterialQuantity(ctx, material.ID, material.Quantity); err != nil {
		return nil, err
	}
	if location != nil {
		location.Quantity += delta
		if err := q.UpdateLocationQuantity(ctx, location.ID, location.Quantity); err != nil {
			return nil, err
		}
	}

	control := &models.MaterialControl{
		UserID:            userID,
		MaterialID:        materialID,
		Quantity:          quantity,
		Operation:         op,
		Reason:            reason,
		ReportID:          ref.ReportID,
		ContractReportID:  ref.ContractReportID,
		TicketID:          ref.TicketID,
		LocationReference: locationRef,
		InvoiceImage:      ref.InvoiceImage,
	}
	if err := q.CreateControl(ctx, control); err != nil {
		return nil, err
	}

	var movement *models.MaterialMovement
	if location != nil {
		movement = &models.MaterialMovement{
			MaterialID: materialID,
			Quantity:   quantity,
			Operation:  op,
			UserID:     userID,
			ControlID:  &control.ID,
		}
		if op == models.OperationAdd {
			movement.TargetLocationID = &location.ID
		} else {
			movement.SourceLocationID = &location.ID
		}
		if err := q.CreateMovement(ctx, movement); err != nil {
			return nil, err
		}
		if err := q.SetControlMovement(ctx, control.ID, movement.ID); err != nil {
			return nil, err
		}
		control.MovementID = &movement.ID
	}

	return &models.OperationResult{
		Material:  material,
		Location:  location,
		Control:   control,
		Movement:  movement,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// ApplyOperation aplica una entrada o salida directa de stock
func (s *ledgerService) ApplyOperation(ctx context.Context, materialID int, req *models.MaterialOperationRequest) (*models.OperationResult, error) {
	logger := s.logger.With(
		zap.String("operation", "apply_operation"),
		zap.Int("material_id", materialID),
		zap.String("op", string(req.Operation)),
		zap.String("reason", string(req.Reason)),
		zap.Int("quantity", req.QuantityChange),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Aplicando operación de stock")

	var result *models.OperationResult
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		result, err = ApplyStockChangeTx(ctx, q, req.UserID, materialID,
			req.Operation, req.QuantityChange, req.Reason, req.LocationID,
			ControlRef{InvoiceImage: req.InvoiceImage})
		return err
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Operación de stock rechazada", zap.Error(err))
		metrics.StockOperationErrors.WithLabelValues(string(req.Operation), errorLabel(err)).Inc()
		return nil, err
	}

	metrics.StockOperations.WithLabelValues(string(req.Operation), string(req.Reason)).Inc()
	s.cache.InvalidateMaterial(ctx, materialID)

	logger.Info("✅ [DEBUG] Operación de stock aplicada",
		zap.Int("cantidad_nueva", result.Material.Quantity))
	return result, nil
}

// Move procesa una entrada, salida o traslado de material entre ubicaciones
func (s *ledgerService) Move(ctx context.Context, req *models.MovementRequest) (*models.OperationResult, error) {
	logger := s.logger.With(
		zap.String("operation", "move"),
		zap.Int("material_id", req.MaterialID),
		zap.String("op", string(req.Operation)),
		zap.Int("quantity", req.Quantity),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Iniciando movimiento de material")

	if req.Operation != models.OperationTransfer {
		// Entradas y salidas sobre una ubicación concreta van por la vía común
		locationID := req.TargetLocationID
		reason := models.ReasonCompra
		if req.Operation == models.OperationRemove {
			locationID = req.SourceLocationID
			reason = models.ReasonRetirada
		}
		if locationID == nil {
			return nil, fmt.Errorf("%w: el movimiento requiere una ubicación", ErrInvalidOperation)
		}
		opReq := &models.MaterialOperationRequest{
			Operation:      req.Operation,
			QuantityChange: req.Quantity,
			Reason:         reason,
			LocationID:     locationID,
			UserID:         req.UserID,
		}
		return s.ApplyOperation(ctx, req.MaterialID, opReq)
	}

	var result *models.OperationResult
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		result, err = s.transferTx(ctx, q, req)
		return err
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Traslado rechazado", zap.Error(err))
		metrics.StockOperationErrors.WithLabelValues(string(models.OperationTransfer), errorLabel(err)).Inc()
		return nil, err
	}

	metrics.StockOperations.WithLabelValues(string(models.OperationTransfer), string(models.ReasonTraslado)).Inc()
	s.cache.InvalidateMaterial(ctx, req.MaterialID)

	logger.Info("✅ [DEBUG] Traslado completado")
	return result, nil
}

// transferTx mueve stock entre dos ubicaciones sin alterar el total del material
func (s *ledgerService) transferTx(ctx context.Context, q repository.Queries, req *models.MovementRequest) (*models.OperationResult, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", ErrInvalidOperation)
	}
	if req.SourceLocationID == nil {
		return nil, fmt.Errorf("%w: el traslado requiere ubicación de origen", ErrInvalidOperation)
	}

	material, err := q.GetMaterialForUpdate(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %d", ErrNotFound, req.MaterialID)
	}

	source, err := q.GetLocationForUpdate(ctx, *req.SourceLocationID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: ubicación %d", ErrNotFound, *req.SourceLocationID)
	}
	if source.MaterialID != req.MaterialID {
		return nil, ErrLocationMismatch
	}
	if source.Quantity < req.Quantity {
		return nil, fmt.Errorf("%w: disponible %d en origen, solicitado %d",
			ErrInsufficientStock, source.Quantity, req.Quantity)
	}

	target, err := s.resolveTarget(ctx, q, req)
	if err != nil {
		return nil, err
	}
	if target.ID == source.ID {
		return nil, ErrSameLocation
	}

	source.Quantity -= req.Quantity
	if err := q.UpdateLocationQuantity(ctx, source.ID, source.Quantity); err != nil {
		return nil, err
	}
	target.Quantity += req.Quantity
	if err := q.UpdateLocationQuantity(ctx, target.ID, target.Quantity); err != nil {
		return nil, err
	}

	locationRef := transferReference(ctx, q, source.TrayID, target.TrayID)
	control := &models.MaterialControl{
		UserID:            req.UserID,
		MaterialID:        req.MaterialID,
		Quantity:          req.Quantity,
		Operation:         models.OperationTransfer,
		Reason:            models.ReasonTraslado,
		LocationReference: locationRef,
	}
	if err := q.CreateControl(ctx, control); err != nil {
		return nil, err
	}

	movement := &models.MaterialMovement{
		MaterialID:       req.MaterialID,
		SourceLocationID: &source.ID,
		TargetLocationID: &target.ID,
		Quantity:         req.Quantity,
		Operation:        models.OperationTransfer,
		UserID:           req.UserID,
		Notes:            req.Notes,
		ControlID:        &control.ID,
	}
	if err := q.CreateMovement(ctx, movement); err != nil {
		return nil, err
	}
	if err := q.SetControlMovement(ctx, control.ID, movement.ID); err != nil {
		return nil, err
	}
	control.MovementID = &movement.ID

	return &models.OperationResult{
		Material:  material,
		Location:  target,
		Control:   control,
		Movement:  movement,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// resolveTarget localiza o crea la ubicación destino de un traslado
func (s *ledgerService) resolveTarget(ctx context.Context, q repository.Queries, req *models.MovementRequest) (*models.MaterialLocation, error) {
	if req.TargetLocationID != nil {
		target, err := q.GetLocationForUpdate(ctx, *req.TargetLocationID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, fmt.Errorf("%w: ubicación %d", ErrNotFound, *req.TargetLocationID)
		}
		if target.MaterialID != req.MaterialID {
			return nil, ErrLocationMismatch
		}
		return target, nil
	}
	if req.TargetTrayID == nil {
		return nil, fmt.Errorf("%w: el traslado requiere ubicación o balda destino", ErrInvalidOperation)
	}

	tray, err := q.GetTray(ctx, *req.TargetTrayID)
	if err != nil {
		return nil, err
	}
	if tray == nil {
		return nil, fmt.Errorf("%w: balda %d", ErrNotFound, *req.TargetTrayID)
	}
	if !tray.IsActive {
		return nil, ErrInactiveNode
	}

	target, err := q.GetLocationByMaterialTray(ctx, req.MaterialID, tray.ID)
	if err != nil {
		return nil, err
	}
	if target != nil {
		return q.GetLocationForUpdate(ctx, target.ID)
	}

	target = &models.MaterialLocation{MaterialID: req.MaterialID, TrayID: tray.ID}
	if err := q.CreateLocation(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// AdjustStock cuadra el stock de una ubicación o del material sin ubicar
// contra la cantidad contada físicamente
func (s *ledgerService) AdjustStock(ctx context.Context, materialID int, req *models.AdjustStockRequest) (*models.OperationResult, error) {
	logger := s.logger.With(
		zap.String("operation", "adjust_stock"),
		zap.Int("material_id", materialID),
		zap.String("source", req.Source),
		zap.Int("target_stock", req.TargetStock),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Iniciando cuadre de stock")

	if req.TargetStock < 0 {
		return nil, fmt.Errorf("%w: la cantidad objetivo no puede ser negativa", ErrInvalidOperation)
	}

	var result *models.OperationResult
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		result, err = s.adjustTx(ctx, q, materialID, req)
		return err
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Cuadre rechazado", zap.Error(err))
		metrics.StockOperationErrors.WithLabelValues("ADJUST", errorLabel(err)).Inc()
		return nil, err
	}

	metrics.StockOperations.WithLabelValues(string(result.Control.Operation), string(models.ReasonCuadre)).Inc()
	s.cache.InvalidateMaterial(ctx, materialID)

	logger.Info("✅ [DEBUG] Cuadre completado",
		zap.Int("cantidad_nueva", result.Material.Quantity))
	return result, nil
}

func (s *ledgerService) adjustTx(ctx context.Context, q repository.Queries, materialID int, req *models.AdjustStockRequest) (*models.OperationResult, error) {
	material, err := q.GetMaterialForUpdate(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %d", ErrNotFound, materialID)
	}

	var location *models.MaterialLocation
	var locationRef *string
	var current int

	switch req.Source {
	case "location":
		if req.LocationID == nil {
			return nil, fmt.Errorf("%w: el cuadre por ubicación requiere location_id", ErrInvalidOperation)
		}
		location, err = q.GetLocationForUpdate(ctx, *req.LocationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, fmt.Errorf("%w: ubicación %d", ErrNotFound, *req.LocationID)
		}
		if location.MaterialID != materialID {
			return nil, ErrLocationMismatch
		}
		current = location.Quantity
		if path, err := q.GetTrayPath(ctx, location.TrayID); err == nil && path != nil {
			code := path.FullCode()
			locationRef = &code
		}
	case "unallocated":
		located, err := q.SumLocationQuantities(ctx, materialID)
		if err != nil {
			return nil, err
		}
		current = material.Quantity - located
	default:
		return nil, fmt.Errorf("%w: origen de cuadre %q", ErrInvalidOperation, req.Source)
	}

	delta := req.TargetStock - current
	if delta == 0 {
		return nil, ErrNoChange
	}

	op := models.OperationAdd
	quantity := delta
	if delta < 0 {
		op = models.OperationRemove
		quantity = -delta
	}

	if material.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: el cuadre dejaría el total en negativo", ErrInsufficientStock)
	}

	material.Quantity += delta
	if err := q.UpdateMaterialQuantity(ctx, material.ID, material.Quantity); err != nil {
		return nil, err
	}
	if location != nil {
		location.Quantity = req.TargetStock
		if err := q.UpdateLocationQuantity(ctx, location.ID, location.Quantity); err != nil {
			return nil, err
		}
	}

	control := &models.MaterialControl{
		UserID:            req.UserID,
		MaterialID:        materialID,
		Quantity:          quantity,
		Operation:         op,
		Reason:            models.ReasonCuadre,
		LocationReference: locationRef,
	}
	if err := q.CreateControl(ctx, control); err != nil {
		return nil, err
	}

	var movement *models.MaterialMovement
	if location != nil {
		movement = &models.MaterialMovement{
			MaterialID: materialID,
			Quantity:   quantity,
			Operation:  op,
			UserID:     req.UserID,
			ControlID:  &control.ID,
		}
		if op == models.OperationAdd {
			movement.TargetLocationID = &location.ID
		} else {
			movement.SourceLocationID = &location.ID
		}
		if err := q.CreateMovement(ctx, movement); err != nil {
			return nil, err
		}
		if err := q.SetControlMovement(ctx, control.ID, movement.ID); err != nil {
			return nil, err
		}
		control.MovementID = &movement.ID
	}

	return &models.OperationResult{
		Material:  material,
		Location:  location,
		Control:   control,
		Movement:  movement,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// InventoryCheck desglosa el stock de un material: total, ubicado y sin ubicar
func (s *ledgerService) InventoryCheck(ctx context.Context, materialID int) (*models.InventoryCheckResponse, error) {
	logger := s.logger.With(
		zap.String("operation", "inventory_check"),
		zap.Int("material_id", materialID),
	)

	q := s.store.Queries()
	material, err := q.GetMaterial(ctx, materialID)
	if err != nil {
		logger.Error("Error obteniendo material", zap.Error(err))
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %d", ErrNotFound, materialID)
	}

	locations, err := q.ListLocationsByMaterial(ctx, materialID)
	if err != nil {
		logger.Error("Error obteniendo ubicaciones", zap.Error(err))
		return nil, err
	}

	located := 0
	locationStocks := make([]models.LocationStock, 0, len(locations))
	for _, loc := range locations {
		located += loc.Quantity
		locationStocks = append(locationStocks, models.LocationStock{
			LocationID: loc.ID,
			TrayID:     loc.TrayID,
			FullPath:   loc.FullPath,
			FullCode:   loc.FullCode,
			Quantity:   loc.Quantity,
		})
	}

	controls, err := q.ListControls(ctx, models.ControlFilter{MaterialID: &materialID, Limit: 10})
	if err != nil {
		logger.Error("Error obteniendo histórico", zap.Error(err))
		return nil, err
	}
	recent := make([]models.MaterialControl, 0, len(controls))
	for _, c := range controls {
		recent = append(recent, c.MaterialControl)
	}

	return &models.InventoryCheckResponse{
		MaterialID:     material.ID,
		MaterialName:   material.Name,
		TotalQuantity:  material.Quantity,
		LocatedStock:   located,
		Unallocated:    material.Quantity - located,
		Locations:      locationStocks,
		RecentControls: recent,
		Timestamp:      time.Now().Format(time.RFC3339),
	}, nil
}

// ListControls consulta el histórico de cambios de stock
func (s *ledgerService) ListControls(ctx context.Context, filter models.ControlFilter) ([]*models.MaterialControlWithDetails, error) {
	return s.store.Queries().ListControls(ctx, filter)
}

// ListMovements consulta los movimientos entre ubicaciones
func (s *ledgerService) ListMovements(ctx context.Context, filter models.MovementFilter) ([]*models.MaterialMovement, error) {
	return s.store.Queries().ListMovements(ctx, filter)
}

// transferReference compone la referencia origen -> destino de un traslado
func transferReference(ctx context.Context, q repository.Queries, sourceTrayID, targetTrayID int) *string {
	sourcePath, err := q.GetTrayPath(ctx, sourceTrayID)
	if err != nil || sourcePath == nil {
		return nil
	}
	targetPath, err := q.GetTrayPath(ctx, targetTrayID)
	if err != nil || targetPath == nil {
		return nil
	}
	ref := fmt.Sprintf("%s -> %s", sourcePath.FullCode(), targetPath.FullCode())
	return &ref
}

// errorLabel reduce un error a una etiqueta estable para métricas
func errorLabel(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoChange):
		return "no_change"
	case errors.Is(err, ErrLocationMismatch):
		return "location_mismatch"
	case errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrInvalidReason):
		return "invalid_request"
	}
	return "internal"
}
