package services

import (
	"context"
	"fmt"

	"zonelan-service/internal/cache"
	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"go.uber.org/zap"
)

// MaterialService define las operaciones sobre materiales y sus ubicaciones
type MaterialService interface {
	CreateMaterial(ctx context.Context, req *models.MaterialCreateRequest, userID int) (*models.Material, error)
	GetMaterial(ctx context.Context, id int) (*models.Material, error)
	ListMaterials(ctx context.Context) ([]*models.Material, error)
	UpdateMaterial(ctx context.Context, id int, req *models.MaterialUpdateRequest, userID int) (*models.Material, error)

	CreateLocation(ctx context.Context, req *models.LocationCreateRequest) (*models.MaterialLocation, error)
	GetLocation(ctx context.Context, id int) (*models.MaterialLocation, error)
	UpdateLocation(ctx context.Context, id int, req *models.LocationUpdateRequest) (*models.MaterialLocation, error)
	DeleteLocation(ctx context.Context, id int) error
	ListLocationsByMaterial(ctx context.Context, materialID int) ([]*models.MaterialLocationWithDetails, error)
	ListLocationsByTray(ctx context.Context, trayID int) ([]*models.MaterialLocationWithDetails, error)
	ListLowStockLocations(ctx context.Context) ([]*models.MaterialLocationWithDetails, error)
}

// materialService implementa MaterialService
type materialService struct {
	store  repository.Store
	cache  *cache.MaterialCache
	logger *zap.Logger
}

// NewMaterialService crea una nueva instancia del servicio
func NewMaterialService(store repository.Store, materialCache *cache.MaterialCache, logger *zap.Logger) MaterialService {
	return &materialService{
		store:  store,
		cache:  materialCache,
		logger: logger,
	}
}

// CreateMaterial da de alta un material. Una cantidad inicial positiva deja
// su fila de histórico como una compra del usuario que lo crea.
func (s *materialService) CreateMaterial(ctx context.Context, req *models.MaterialCreateRequest, userID int) (*models.Material, error) {
	logger := s.logger.With(
		zap.String("operation", "create_material"),
		zap.String("name", req.Name),
		zap.Int("quantity", req.Quantity),
		zap.Int("user_id", userID),
	)

	logger.Info("🔍 [DEBUG] Creando material")

	material := &models.Material{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		if err := q.CreateMaterial(ctx, material); err != nil {
			return err
		}
		if req.Quantity > 0 {
			control := &models.MaterialControl{
				UserID:     userID,
				MaterialID: material.ID,
				Quantity:   req.Quantity,
				Operation:  models.OperationAdd,
				Reason:     models.ReasonCompra,
			}
			return q.CreateControl(ctx, control)
		}
		return nil
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error creando material", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Material creado", zap.Int("material_id", material.ID))
	return material, nil
}

// GetMaterial obtiene un material, pasando por el caché multi-nivel
func (s *materialService) GetMaterial(ctx context.Context, id int) (*models.Material, error) {
	if material := s.cache.GetMaterial(ctx, id); material != nil {
		return material, nil
	}

	material, err := s.store.Queries().GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %d", ErrNotFound, id)
	}

	s.cache.SetMaterial(ctx, material)
	return material, nil
}

// ListMaterials lista todos los materiales
func (s *materialService) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	return s.store.Queries().ListMaterials(ctx)
}

// UpdateMaterial edita un material. Un cambio de cantidad por esta vía se
// audita como compra o retirada según el sentido del cambio.
func (s *materialService) UpdateMaterial(ctx context.Context, id int, req *models.MaterialUpdateRequest, userID int) (*models.Material, error) {
	logger := s.logger.With(
		zap.String("operation", "update_material"),
		zap.Int("material_id", id),
		zap.Int("user_id", userID),
	)

	logger.Info("🔍 [DEBUG] Actualizando material")

	var material *models.Material
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		material, err = q.GetMaterialForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: material %d", ErrNotFound, id)
		}

		previousQuantity := material.Quantity
		if req.Name != nil {
			material.Name = *req.Name
		}
		if req.Price != nil {
			material.Price = *req.Price
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return fmt.Errorf("%w: la cantidad no puede ser negativa", ErrInvalidOperation)
			}
			material.Quantity = *req.Quantity
		}

		if err := q.UpdateMaterial(ctx, material); err != nil {
			return err
		}

		delta := material.Quantity - previousQuantity
		if delta != 0 {
			op := models.OperationAdd
			reason := models.ReasonCompra
			quantity := delta
			if delta < 0 {
				op = models.OperationRemove
				reason = models.ReasonRetirada
				quantity = -delta
			}
			control := &models.MaterialControl{
				UserID:     userID,
				MaterialID: material.ID,
				Quantity:   quantity,
				Operation:  op,
				Reason:     reason,
			}
			if err := q.CreateControl(ctx, control); err != nil {
				return err
			}
			logger.Info("🔍 [DEBUG] Cambio de cantidad auditado",
				zap.Int("anterior", previousQuantity),
				zap.Int("nueva", material.Quantity))
		}
		return nil
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error actualizando material", zap.Error(err))
		return nil, err
	}

	s.cache.InvalidateMaterial(ctx, id)
	logger.Info("✅ [DEBUG] Material actualizado")
	return material, nil
}

// CreateLocation ubica material en una balda tomando del stock sin ubicar.
// El total del material no cambia: es un reparto del stock existente.
func (s *materialService) CreateLocation(ctx context.Context, req *models.LocationCreateRequest) (*models.MaterialLocation, error) {
	logger := s.logger.With(
		zap.String("operation", "create_location"),
		zap.Int("material_id", req.MaterialID),
		zap.Int("tray_id", req.TrayID),
		zap.Int("quantity", req.Quantity),
	)

	logger.Info("🔍 [DEBUG] Creando ubicación de material")

	location := &models.MaterialLocation{
		MaterialID:      req.MaterialID,
		TrayID:          req.TrayID,
		Quantity:        req.Quantity,
		MinimumQuantity: req.MinimumQuantity,
		Notes:           req.Notes,
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		material, err := q.GetMaterialForUpdate(ctx, req.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: material %d", ErrNotFound, req.MaterialID)
		}

		tray, err := q.GetTray(ctx, req.TrayID)
		if err != nil {
			return err
		}
		if tray == nil {
			return fmt.Errorf("%w: balda %d", ErrNotFound, req.TrayID)
		}
		if !tray.IsActive {
			return ErrInactiveNode
		}

		existing, err := q.GetLocationByMaterialTray(ctx, req.MaterialID, req.TrayID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateLocation
		}

		if req.Quantity > 0 {
			located, err := q.SumLocationQuantities(ctx, req.MaterialID)
			if err != nil {
				return err
			}
			unallocated := material.Quantity - located
			if req.Quantity > unallocated {
				return fmt.Errorf("%w: sin ubicar %d, solicitado %d",
					ErrInsufficientStock, unallocated, req.Quantity)
			}
		}

		if err := q.CreateLocation(ctx, location); err != nil {
			return err
		}

		// La primera asignación de stock a la balda queda en el histórico
		// como traslado desde el pool sin ubicar
		if req.Quantity > 0 {
			var locationRef *string
			if path, err := q.GetTrayPath(ctx, req.TrayID); err == nil && path != nil {
				code := path.FullCode()
				locationRef = &code
			}
			control := &models.MaterialControl{
				UserID:            req.UserID,
				MaterialID:        req.MaterialID,
				Quantity:          req.Quantity,
				Operation:         models.OperationTransfer,
				Reason:            models.ReasonTraslado,
				LocationReference: locationRef,
			}
			if err := q.CreateControl(ctx, control); err != nil {
				return err
			}
			movement := &models.MaterialMovement{
				MaterialID:       req.MaterialID,
				TargetLocationID: &location.ID,
				Quantity:         req.Quantity,
				Operation:        models.OperationTransfer,
				UserID:           req.UserID,
				ControlID:        &control.ID,
			}
			if err := q.CreateMovement(ctx, movement); err != nil {
				return err
			}
			if err := q.SetControlMovement(ctx, control.ID, movement.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error creando ubicación", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Ubicación creada", zap.Int("location_id", location.ID))
	return location, nil
}

// GetLocation obtiene una ubicación por id
func (s *materialService) GetLocation(ctx context.Context, id int) (*models.MaterialLocation, error) {
	location, err := s.store.Queries().GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %d", ErrNotFound, id)
	}
	return location, nil
}

// UpdateLocation edita umbral mínimo y notas; la cantidad solo se mueve por el libro de stock
func (s *materialService) UpdateLocation(ctx context.Context, id int, req *models.LocationUpdateRequest) (*models.MaterialLocation, error) {
	var location *models.MaterialLocation
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		location, err = q.GetLocationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("%w: ubicación %d", ErrNotFound, id)
		}
		if req.MinimumQuantity != nil {
			location.MinimumQuantity = *req.MinimumQuantity
		}
		if req.Notes != nil {
			location.Notes = req.Notes
		}
		return q.UpdateLocation(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	return location, nil
}

// DeleteLocation elimina una ubicación vacía
func (s *materialService) DeleteLocation(ctx context.Context, id int) error {
	return s.store.InTx(ctx, func(q repository.Queries) error {
		location, err := q.GetLocationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("%w: ubicación %d", ErrNotFound, id)
		}
		if location.Quantity > 0 {
			return fmt.Errorf("%w: la ubicación aún tiene %d unidades", ErrInvalidOperation, location.Quantity)
		}
		return q.DeleteLocation(ctx, id)
	})
}

// ListLocationsByMaterial lista las ubicaciones de un material con su ruta completa
func (s *materialService) ListLocationsByMaterial(ctx context.Context, materialID int) ([]*models.MaterialLocationWithDetails, error) {
	return s.store.Queries().ListLocationsByMaterial(ctx, materialID)
}

// ListLocationsByTray lista el material ubicado en una balda
func (s *materialService) ListLocationsByTray(ctx context.Context, trayID int) ([]*models.MaterialLocationWithDetails, error) {
	return s.store.Queries().ListLocationsByTray(ctx, trayID)
}

// ListLowStockLocations lista las ubicaciones cuyo stock no llega al mínimo configurado
func (s *materialService) ListLowStockLocations(ctx context.Context) ([]*models.MaterialLocationWithDetails, error) {
	return s.store.Queries().ListLowStockLocations(ctx)
}
