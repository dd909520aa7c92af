package services

import (
	"context"
	"errors"
	"testing"

	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"go.uber.org/zap"
)

// fakeQueries implementa en memoria las consultas que usa el ledger.
// Los métodos no implementados provocan panic vía la interfaz embebida nula.
type fakeQueries struct {
	repository.Queries

	materials map[int]*models.Material
	locations map[int]*models.MaterialLocation
	trays     map[int]*models.Tray

	controls  []*models.MaterialControl
	movements []*models.MaterialMovement

	tickets map[int]*models.Ticket
	items   map[int]*models.TicketItem

	ticketNumbers  []string
	nextLocationID int
	nextItemID     int
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{
		materials:      make(map[int]*models.Material),
		locations:      make(map[int]*models.MaterialLocation),
		trays:          make(map[int]*models.Tray),
		tickets:        make(map[int]*models.Ticket),
		items:          make(map[int]*models.TicketItem),
		nextLocationID: 100,
		nextItemID:     1,
	}
}

func (f *fakeQueries) addMaterial(id int, name string, quantity int) *models.Material {
	m := &models.Material{ID: id, Name: name, Quantity: quantity}
	f.materials[id] = m
	return m
}

func (f *fakeQueries) addLocation(id, materialID, trayID, quantity int) *models.MaterialLocation {
	loc := &models.MaterialLocation{ID: id, MaterialID: materialID, TrayID: trayID, Quantity: quantity}
	f.locations[id] = loc
	return loc
}

func (f *fakeQueries) addTray(id int, code string, active bool) *models.Tray {
	t := &models.Tray{ID: id, Code: code, IsActive: active}
	f.trays[id] = t
	return t
}

func (f *fakeQueries) GetMaterialForUpdate(ctx context.Context, id int) (*models.Material, error) {
	return f.materials[id], nil
}

func (f *fakeQueries) UpdateMaterialQuantity(ctx context.Context, id, quantity int) error {
	f.materials[id].Quantity = quantity
	return nil
}

func (f *fakeQueries) GetLocationForUpdate(ctx context.Context, id int) (*models.MaterialLocation, error) {
	return f.locations[id], nil
}

func (f *fakeQueries) GetLocationByMaterialTray(ctx context.Context, materialID, trayID int) (*models.MaterialLocation, error) {
	for _, loc := range f.locations {
		if loc.MaterialID == materialID && loc.TrayID == trayID {
			return loc, nil
		}
	}
	return nil, nil
}

func (f *fakeQueries) CreateLocation(ctx context.Context, loc *models.MaterialLocation) error {
	loc.ID = f.nextLocationID
	f.nextLocationID++
	f.locations[loc.ID] = loc
	return nil
}

func (f *fakeQueries) UpdateLocationQuantity(ctx context.Context, id, quantity int) error {
	f.locations[id].Quantity = quantity
	return nil
}

func (f *fakeQueries) SumLocationQuantities(ctx context.Context, materialID int) (int, error) {
	total := 0
	for _, loc := range f.locations {
		if loc.MaterialID == materialID {
			total += loc.Quantity
		}
	}
	return total, nil
}

func (f *fakeQueries) CreateControl(ctx context.Context, c *models.MaterialControl) error {
	c.ID = len(f.controls) + 1
	f.controls = append(f.controls, c)
	return nil
}

func (f *fakeQueries) SetControlMovement(ctx context.Context, controlID, movementID int) error {
	for _, c := range f.controls {
		if c.ID == controlID {
			c.MovementID = &movementID
			return nil
		}
	}
	return errors.New("control not found")
}

func (f *fakeQueries) CreateMovement(ctx context.Context, mv *models.MaterialMovement) error {
	mv.ID = len(f.movements) + 1
	f.movements = append(f.movements, mv)
	return nil
}

func (f *fakeQueries) GetTray(ctx context.Context, id int) (*models.Tray, error) {
	return f.trays[id], nil
}

func (f *fakeQueries) GetTrayPath(ctx context.Context, trayID int) (*models.TrayPath, error) {
	tray := f.trays[trayID]
	if tray == nil {
		return nil, nil
	}
	return &models.TrayPath{
		TrayID:         trayID,
		TrayCode:       tray.Code,
		ShelfCode:      "EST-001",
		DepartmentCode: "DEP-001",
		WarehouseCode:  "ALM-001",
	}, nil
}

func intPtr(v int) *int { return &v }

func TestApplyStockChangeTotalOnly(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)

	result, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationRemove, 30, models.ReasonUso, nil, ControlRef{ReportID: intPtr(7)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Material.Quantity != 70 {
		t.Errorf("total = %d, want 70", result.Material.Quantity)
	}
	if len(q.controls) != 1 {
		t.Fatalf("controls = %d, want 1", len(q.controls))
	}
	control := q.controls[0]
	if control.Operation != models.OperationRemove || control.Reason != models.ReasonUso {
		t.Errorf("control = %s/%s, want REMOVE/USO", control.Operation, control.Reason)
	}
	if control.ReportID == nil || *control.ReportID != 7 {
		t.Errorf("control.ReportID = %v, want 7", control.ReportID)
	}
	if len(q.movements) != 0 {
		t.Errorf("movements = %d, want 0 sin ubicación", len(q.movements))
	}
}

func TestApplyStockChangeMovesLocationAndTotalTogether(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 1, 5, 40)

	result, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationRemove, 25, models.ReasonVenta, intPtr(10), ControlRef{TicketID: intPtr(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Material.Quantity != 75 {
		t.Errorf("total = %d, want 75", result.Material.Quantity)
	}
	if result.Location.Quantity != 15 {
		t.Errorf("location = %d, want 15", result.Location.Quantity)
	}
	if len(q.controls) != 1 {
		t.Fatalf("controls = %d, want 1", len(q.controls))
	}
	if q.controls[0].LocationReference == nil || *q.controls[0].LocationReference != "ALM-001-DEP-001-EST-001-BAL-001" {
		t.Errorf("location reference = %v", q.controls[0].LocationReference)
	}
	if len(q.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(q.movements))
	}
	mv := q.movements[0]
	if mv.SourceLocationID == nil || *mv.SourceLocationID != 10 {
		t.Errorf("movement source = %v, want 10", mv.SourceLocationID)
	}
	if q.controls[0].MovementID == nil || *q.controls[0].MovementID != mv.ID {
		t.Errorf("control no enlaza al movimiento: %v", q.controls[0].MovementID)
	}
}

func TestApplyStockChangeInsufficientTotal(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 10)

	_, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationRemove, 11, models.ReasonUso, nil, ControlRef{})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if q.materials[1].Quantity != 10 {
		t.Errorf("total modificado tras rechazo: %d", q.materials[1].Quantity)
	}
	if len(q.controls) != 0 {
		t.Errorf("controls = %d, want 0 tras rechazo", len(q.controls))
	}
}

func TestApplyStockChangeInsufficientAtLocation(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 1, 5, 3)

	_, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationRemove, 4, models.ReasonUso, intPtr(10), ControlRef{})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if q.locations[10].Quantity != 3 || q.materials[1].Quantity != 100 {
		t.Errorf("estado modificado tras rechazo")
	}
}

func TestApplyStockChangeLocationMismatch(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addMaterial(2, "Tubo PVC", 50)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 2, 5, 20)

	_, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationAdd, 5, models.ReasonCompra, intPtr(10), ControlRef{})
	if !errors.Is(err, ErrLocationMismatch) {
		t.Fatalf("err = %v, want ErrLocationMismatch", err)
	}
}

func TestApplyStockChangeValidation(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)

	tests := []struct {
		name     string
		op       models.Operation
		quantity int
		reason   models.Reason
		wantErr  error
	}{
		{"cantidad cero", models.OperationAdd, 0, models.ReasonCompra, ErrInvalidOperation},
		{"transfer directo", models.OperationTransfer, 5, models.ReasonTraslado, ErrInvalidOperation},
		{"motivo desconocido", models.OperationAdd, 5, models.Reason("REGALO"), ErrInvalidReason},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyStockChangeTx(context.Background(), q, 1, 1, tt.op, tt.quantity, tt.reason, nil, ControlRef{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransferConservesTotal(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTray(5, "BAL-001", true)
	q.addTray(6, "BAL-002", true)
	q.addLocation(10, 1, 5, 40)
	q.addLocation(11, 1, 6, 10)

	s := &ledgerService{logger: zap.NewNop()}
	result, err := s.transferTx(context.Background(), q, &models.MovementRequest{
		MaterialID:       1,
		Operation:        models.OperationTransfer,
		Quantity:         15,
		SourceLocationID: intPtr(10),
		TargetLocationID: intPtr(11),
		UserID:           1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.materials[1].Quantity != 100 {
		t.Errorf("el traslado alteró el total: %d", q.materials[1].Quantity)
	}
	if q.locations[10].Quantity != 25 || q.locations[11].Quantity != 25 {
		t.Errorf("ubicaciones = %d/%d, want 25/25", q.locations[10].Quantity, q.locations[11].Quantity)
	}
	if result.Control.Reason != models.ReasonTraslado {
		t.Errorf("reason = %s, want TRASLADO", result.Control.Reason)
	}
	if len(q.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(q.movements))
	}
	mv := q.movements[0]
	if mv.SourceLocationID == nil || *mv.SourceLocationID != 10 || mv.TargetLocationID == nil || *mv.TargetLocationID != 11 {
		t.Errorf("movimiento no cruza origen y destino: %v -> %v", mv.SourceLocationID, mv.TargetLocationID)
	}
}

func TestTransferCreatesTargetOnTray(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 50)
	q.addTray(5, "BAL-001", true)
	q.addTray(6, "BAL-002", true)
	q.addLocation(10, 1, 5, 50)

	s := &ledgerService{logger: zap.NewNop()}
	result, err := s.transferTx(context.Background(), q, &models.MovementRequest{
		MaterialID:       1,
		Operation:        models.OperationTransfer,
		Quantity:         20,
		SourceLocationID: intPtr(10),
		TargetTrayID:     intPtr(6),
		UserID:           1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Location.TrayID != 6 || result.Location.Quantity != 20 {
		t.Errorf("destino = balda %d con %d, want balda 6 con 20", result.Location.TrayID, result.Location.Quantity)
	}
}

func TestTransferRejectsInactiveTray(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 50)
	q.addTray(5, "BAL-001", true)
	q.addTray(6, "BAL-002", false)
	q.addLocation(10, 1, 5, 50)

	s := &ledgerService{logger: zap.NewNop()}
	_, err := s.transferTx(context.Background(), q, &models.MovementRequest{
		MaterialID:       1,
		Operation:        models.OperationTransfer,
		Quantity:         5,
		SourceLocationID: intPtr(10),
		TargetTrayID:     intPtr(6),
		UserID:           1,
	})
	if !errors.Is(err, ErrInactiveNode) {
		t.Fatalf("err = %v, want ErrInactiveNode", err)
	}
}

func TestTransferRejectsSameLocation(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 50)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 1, 5, 50)

	s := &ledgerService{logger: zap.NewNop()}
	_, err := s.transferTx(context.Background(), q, &models.MovementRequest{
		MaterialID:       1,
		Operation:        models.OperationTransfer,
		Quantity:         5,
		SourceLocationID: intPtr(10),
		TargetLocationID: intPtr(10),
		UserID:           1,
	})
	if !errors.Is(err, ErrSameLocation) {
		t.Fatalf("err = %v, want ErrSameLocation", err)
	}
}

func TestAdjustLocationToCount(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 1, 5, 40)

	s := &ledgerService{logger: zap.NewNop()}
	result, err := s.adjustTx(context.Background(), q, 1, &models.AdjustStockRequest{
		Source:      "location",
		LocationID:  intPtr(10),
		TargetStock: 33,
		UserID:      1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// El recuento físico manda: la ubicación queda en 33 y el total baja 7
	if q.locations[10].Quantity != 33 {
		t.Errorf("location = %d, want 33", q.locations[10].Quantity)
	}
	if q.materials[1].Quantity != 93 {
		t.Errorf("total = %d, want 93", q.materials[1].Quantity)
	}
	if result.Control.Operation != models.OperationRemove || result.Control.Quantity != 7 {
		t.Errorf("control = %s/%d, want REMOVE/7", result.Control.Operation, result.Control.Quantity)
	}
	if result.Control.Reason != models.ReasonCuadre {
		t.Errorf("reason = %s, want CUADRE", result.Control.Reason)
	}
}

func TestAdjustUnallocatedPool(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 1, 5, 60)
	// Sin ubicar: 100 - 60 = 40

	s := &ledgerService{logger: zap.NewNop()}
	result, err := s.adjustTx(context.Background(), q, 1, &models.AdjustStockRequest{
		Source:      "unallocated",
		TargetStock: 45,
		UserID:      1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.materials[1].Quantity != 105 {
		t.Errorf("total = %d, want 105", q.materials[1].Quantity)
	}
	if q.locations[10].Quantity != 60 {
		t.Errorf("el cuadre sin ubicar tocó una ubicación: %d", q.locations[10].Quantity)
	}
	if result.Control.Operation != models.OperationAdd || result.Control.Quantity != 5 {
		t.Errorf("control = %s/%d, want ADD/5", result.Control.Operation, result.Control.Quantity)
	}
}

func TestAdjustNoChangeRejected(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 1, 5, 40)

	s := &ledgerService{logger: zap.NewNop()}
	_, err := s.adjustTx(context.Background(), q, 1, &models.AdjustStockRequest{
		Source:      "location",
		LocationID:  intPtr(10),
		TargetStock: 40,
		UserID:      1,
	})
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("err = %v, want ErrNoChange", err)
	}
	if len(q.controls) != 0 {
		t.Errorf("un cuadre sin diferencia no debe dejar histórico")
	}
}

func TestConsumeThenReturnRestoresStock(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTray(5, "BAL-001", true)
	q.addLocation(10, 1, 5, 40)

	if _, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationRemove, 12, models.ReasonUso, intPtr(10), ControlRef{ReportID: intPtr(7)}); err != nil {
		t.Fatalf("consumo: %v", err)
	}
	if _, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationAdd, 12, models.ReasonDevolucion, intPtr(10), ControlRef{ReportID: intPtr(7)}); err != nil {
		t.Fatalf("devolución: %v", err)
	}

	if q.materials[1].Quantity != 100 {
		t.Errorf("total = %d, want 100 tras ida y vuelta", q.materials[1].Quantity)
	}
	if q.locations[10].Quantity != 40 {
		t.Errorf("ubicación = %d, want 40 tras ida y vuelta", q.locations[10].Quantity)
	}
	if len(q.controls) != 2 {
		t.Fatalf("controls = %d, want 2", len(q.controls))
	}
	if q.controls[0].Operation != models.OperationRemove || q.controls[1].Operation != models.OperationAdd {
		t.Errorf("operaciones = %s, %s", q.controls[0].Operation, q.controls[1].Operation)
	}
}

func TestReportUsageLifecycle(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	reportID := intPtr(7)

	// Alta del parte: consume 10
	if _, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationRemove, 10, models.ReasonUso, nil, ControlRef{ReportID: reportID}); err != nil {
		t.Fatalf("alta: %v", err)
	}
	if q.materials[1].Quantity != 90 {
		t.Fatalf("total tras alta = %d, want 90", q.materials[1].Quantity)
	}

	// Edición de 10 a 15: solo se consume la diferencia
	if _, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationRemove, 5, models.ReasonUso, nil, ControlRef{ReportID: reportID}); err != nil {
		t.Fatalf("edición: %v", err)
	}
	if q.materials[1].Quantity != 85 {
		t.Fatalf("total tras edición = %d, want 85", q.materials[1].Quantity)
	}

	// Borrado con devolución de material
	if _, err := ApplyStockChangeTx(context.Background(), q, 1, 1,
		models.OperationAdd, 15, models.ReasonDevolucion, nil, ControlRef{ReportID: reportID}); err != nil {
		t.Fatalf("borrado: %v", err)
	}
	if q.materials[1].Quantity != 100 {
		t.Errorf("total tras borrado = %d, want 100", q.materials[1].Quantity)
	}

	if len(q.controls) != 3 {
		t.Fatalf("controls = %d, want 3", len(q.controls))
	}
	wantQty := []int{10, 5, 15}
	for i, c := range q.controls {
		if c.Quantity != wantQty[i] {
			t.Errorf("control %d: quantity = %d, want %d", i, c.Quantity, wantQty[i])
		}
		if c.ReportID == nil || *c.ReportID != 7 {
			t.Errorf("control %d sin referencia al parte", i)
		}
	}
}
