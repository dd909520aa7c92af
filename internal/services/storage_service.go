package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"go.uber.org/zap"
)

// Prefijos de código por nivel de la jerarquía
const (
	WarehousePrefix  = "ALM"
	DepartmentPrefix = "DEP"
	ShelfPrefix      = "EST"
	TrayPrefix       = "BAL"
)

// StorageService define las operaciones sobre la jerarquía de almacenamiento
type StorageService interface {
	CreateWarehouse(ctx context.Context, req *models.StorageNodeRequest) (*models.Warehouse, error)
	GetWarehouse(ctx context.Context, id int) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]*models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id int) error

	CreateDepartment(ctx context.Context, req *models.StorageNodeRequest) (*models.Department, error)
	GetDepartment(ctx context.Context, id int) (*models.Department, error)
	ListDepartments(ctx context.Context, warehouseID int) ([]*models.Department, error)
	UpdateDepartment(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id int) error

	CreateShelf(ctx context.Context, req *models.StorageNodeRequest) (*models.Shelf, error)
	GetShelf(ctx context.Context, id int) (*models.Shelf, error)
	ListShelves(ctx context.Context, departmentID int) ([]*models.Shelf, error)
	UpdateShelf(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Shelf, error)
	DeleteShelf(ctx context.Context, id int) error

	CreateTray(ctx context.Context, req *models.StorageNodeRequest) (*models.Tray, error)
	GetTray(ctx context.Context, id int) (*models.Tray, error)
	ListTrays(ctx context.Context, shelfID int) ([]*models.Tray, error)
	UpdateTray(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Tray, error)
	DeleteTray(ctx context.Context, id int) error

	GetTrayPath(ctx context.Context, trayID int) (*models.TrayPath, error)

	GetWarehouseDetails(ctx context.Context, id int) (*models.Warehouse, []*models.Department, error)
	GetDepartmentDetails(ctx context.Context, id int) (*models.Department, []*models.Shelf, error)
	GetShelfDetails(ctx context.Context, id int) (*models.Shelf, []*models.Tray, error)
	GetTrayDetails(ctx context.Context, id int) (*models.Tray, *models.TrayPath, []*models.MaterialLocationWithDetails, error)
}

// storageService implementa StorageService
type storageService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewStorageService crea una nueva instancia del servicio
func NewStorageService(store repository.Store, logger *zap.Logger) StorageService {
	return &storageService{store: store, logger: logger}
}

// NextCode genera el siguiente código de un nivel a partir del último emitido.
// "ALM-001" tras "" es el primero; tras "ALM-007" devuelve "ALM-008".
func NextCode(prefix, lastCode string) string {
	next := 1
	if lastCode != "" {
		if idx := strings.LastIndex(lastCode, "-"); idx >= 0 {
			if n, err := strconv.Atoi(lastCode[idx+1:]); err == nil {
				next = n + 1
			}
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, next)
}

func isActive(req *models.StorageNodeRequest) bool {
	if req.IsActive != nil {
		return *req.IsActive
	}
	return true
}

// CreateWarehouse da de alta un almacén, generando el código si no viene informado
func (s *storageService) CreateWarehouse(ctx context.Context, req *models.StorageNodeRequest) (*models.Warehouse, error) {
	logger := s.logger.With(
		zap.String("operation", "create_warehouse"),
		zap.String("name", req.Name),
	)

	warehouse := &models.Warehouse{
		Name:        req.Name,
		Code:        req.Code,
		Location:    req.Location,
		Description: req.Description,
		IsActive:    isActive(req),
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		if warehouse.Code == "" {
			last, err := q.LastWarehouseCode(ctx)
			if err != nil {
				return err
			}
			warehouse.Code = NextCode(WarehousePrefix, last)
		}
		return q.CreateWarehouse(ctx, warehouse)
	})
	if err != nil {
		logger.Error("Error creando almacén", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ Almacén creado", zap.String("code", warehouse.Code))
	return warehouse, nil
}

func (s *storageService) GetWarehouse(ctx context.Context, id int) (*models.Warehouse, error) {
	w, err := s.store.Queries().GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: almacén %d", ErrNotFound, id)
	}
	return w, nil
}

func (s *storageService) ListWarehouses(ctx context.Context) ([]*models.Warehouse, error) {
	return s.store.Queries().ListWarehouses(ctx)
}

func (s *storageService) UpdateWarehouse(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Warehouse, error) {
	warehouse, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	warehouse.Name = req.Name
	warehouse.Location = req.Location
	warehouse.Description = req.Description
	if req.IsActive != nil {
		warehouse.IsActive = *req.IsActive
	}
	if err := s.store.Queries().UpdateWarehouse(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (s *storageService) DeleteWarehouse(ctx context.Context, id int) error {
	return s.store.Queries().DeleteWarehouse(ctx, id)
}

// CreateDepartment da de alta una dependencia; el código se numera dentro de su almacén
func (s *storageService) CreateDepartment(ctx context.Context, req *models.StorageNodeRequest) (*models.Department, error) {
	logger := s.logger.With(
		zap.String("operation", "create_department"),
		zap.Int("warehouse_id", req.ParentID),
		zap.String("name", req.Name),
	)

	department := &models.Department{
		WarehouseID: req.ParentID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		IsActive:    isActive(req),
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		parent, err := q.GetWarehouse(ctx, req.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("%w: almacén %d", ErrNotFound, req.ParentID)
		}
		if department.Code == "" {
			last, err := q.LastDepartmentCode(ctx, req.ParentID)
			if err != nil {
				return err
			}
			department.Code = NextCode(DepartmentPrefix, last)
		}
		return q.CreateDepartment(ctx, department)
	})
	if err != nil {
		logger.Error("Error creando dependencia", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ Dependencia creada", zap.String("code", department.Code))
	return department, nil
}

func (s *storageService) GetDepartment(ctx context.Context, id int) (*models.Department, error) {
	d, err := s.store.Queries().GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: dependencia %d", ErrNotFound, id)
	}
	return d, nil
}

func (s *storageService) ListDepartments(ctx context.Context, warehouseID int) ([]*models.Department, error) {
	return s.store.Queries().ListDepartments(ctx, warehouseID)
}

func (s *storageService) UpdateDepartment(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Department, error) {
	department, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	department.Name = req.Name
	department.Description = req.Description
	if req.IsActive != nil {
		department.IsActive = *req.IsActive
	}
	if err := s.store.Queries().UpdateDepartment(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (s *storageService) DeleteDepartment(ctx context.Context, id int) error {
	return s.store.Queries().DeleteDepartment(ctx, id)
}

// CreateShelf da de alta una estantería; el código se numera dentro de su dependencia
func (s *storageService) CreateShelf(ctx context.Context, req *models.StorageNodeRequest) (*models.Shelf, error) {
	logger := s.logger.With(
		zap.String("operation", "create_shelf"),
		zap.Int("department_id", req.ParentID),
		zap.String("name", req.Name),
	)

	shelf := &models.Shelf{
		DepartmentID: req.ParentID,
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		IsActive:     isActive(req),
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		parent, err := q.GetDepartment(ctx, req.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("%w: dependencia %d", ErrNotFound, req.ParentID)
		}
		if shelf.Code == "" {
			last, err := q.LastShelfCode(ctx, req.ParentID)
			if err != nil {
				return err
			}
			shelf.Code = NextCode(ShelfPrefix, last)
		}
		return q.CreateShelf(ctx, shelf)
	})
	if err != nil {
		logger.Error("Error creando estantería", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ Estantería creada", zap.String("code", shelf.Code))
	return shelf, nil
}

func (s *storageService) GetShelf(ctx context.Context, id int) (*models.Shelf, error) {
	sh, err := s.store.Queries().GetShelf(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, fmt.Errorf("%w: estantería %d", ErrNotFound, id)
	}
	return sh, nil
}

func (s *storageService) ListShelves(ctx context.Context, departmentID int) ([]*models.Shelf, error) {
	return s.store.Queries().ListShelves(ctx, departmentID)
}

func (s *storageService) UpdateShelf(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Shelf, error) {
	shelf, err := s.GetShelf(ctx, id)
	if err != nil {
		return nil, err
	}
	shelf.Name = req.Name
	shelf.Description = req.Description
	if req.IsActive != nil {
		shelf.IsActive = *req.IsActive
	}
	if err := s.store.Queries().UpdateShelf(ctx, shelf); err != nil {
		return nil, err
	}
	return shelf, nil
}

func (s *storageService) DeleteShelf(ctx context.Context, id int) error {
	return s.store.Queries().DeleteShelf(ctx, id)
}

// CreateTray da de alta una balda; el código se numera dentro de su estantería
func (s *storageService) CreateTray(ctx context.Context, req *models.StorageNodeRequest) (*models.Tray, error) {
	logger := s.logger.With(
		zap.String("operation", "create_tray"),
		zap.Int("shelf_id", req.ParentID),
		zap.String("name", req.Name),
	)

	tray := &models.Tray{
		ShelfID:     req.ParentID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		IsActive:    isActive(req),
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		parent, err := q.GetShelf(ctx, req.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("%w: estantería %d", ErrNotFound, req.ParentID)
		}
		if tray.Code == "" {
			last, err := q.LastTrayCode(ctx, req.ParentID)
			if err != nil {
				return err
			}
			tray.Code = NextCode(TrayPrefix, last)
		}
		return q.CreateTray(ctx, tray)
	})
	if err != nil {
		logger.Error("Error creando balda", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ Balda creada", zap.String("code", tray.Code))
	return tray, nil
}

func (s *storageService) GetTray(ctx context.Context, id int) (*models.Tray, error) {
	t, err := s.store.Queries().GetTray(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: balda %d", ErrNotFound, id)
	}
	return t, nil
}

func (s *storageService) ListTrays(ctx context.Context, shelfID int) ([]*models.Tray, error) {
	return s.store.Queries().ListTrays(ctx, shelfID)
}

func (s *storageService) UpdateTray(ctx context.Context, id int, req *models.StorageNodeRequest) (*models.Tray, error) {
	tray, err := s.GetTray(ctx, id)
	if err != nil {
		return nil, err
	}
	tray.Name = req.Name
	tray.Description = req.Description
	if req.IsActive != nil {
		tray.IsActive = *req.IsActive
	}
	if err := s.store.Queries().UpdateTray(ctx, tray); err != nil {
		return nil, err
	}
	return tray, nil
}

// DeleteTray elimina una balda sin material ubicado
func (s *storageService) DeleteTray(ctx context.Context, id int) error {
	return s.store.InTx(ctx, func(q repository.Queries) error {
		count, err := q.CountTrayLocations(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrTrayNotEmpty
		}
		return q.DeleteTray(ctx, id)
	})
}

// GetTrayPath resuelve la ruta completa de una balda
func (s *storageService) GetTrayPath(ctx context.Context, trayID int) (*models.TrayPath, error) {
	path, err := s.store.Queries().GetTrayPath(ctx, trayID)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, fmt.Errorf("%w: balda %d", ErrNotFound, trayID)
	}
	return path, nil
}

// GetWarehouseDetails devuelve el almacén junto con sus dependencias
func (s *storageService) GetWarehouseDetails(ctx context.Context, id int) (*models.Warehouse, []*models.Department, error) {
	warehouse, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	departments, err := s.store.Queries().ListDepartments(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return warehouse, departments, nil
}

// GetDepartmentDetails devuelve la dependencia junto con sus estanterías
func (s *storageService) GetDepartmentDetails(ctx context.Context, id int) (*models.Department, []*models.Shelf, error) {
	department, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	shelves, err := s.store.Queries().ListShelves(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return department, shelves, nil
}

// GetShelfDetails devuelve la estantería junto con sus baldas
func (s *storageService) GetShelfDetails(ctx context.Context, id int) (*models.Shelf, []*models.Tray, error) {
	shelf, err := s.GetShelf(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	trays, err := s.store.Queries().ListTrays(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return shelf, trays, nil
}

// GetTrayDetails devuelve la balda, su ruta completa y el material ubicado en ella
func (s *storageService) GetTrayDetails(ctx context.Context, id int) (*models.Tray, *models.TrayPath, []*models.MaterialLocationWithDetails, error) {
	tray, err := s.GetTray(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	path, err := s.GetTrayPath(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	locations, err := s.store.Queries().ListLocationsByTray(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return tray, path, locations, nil
}
