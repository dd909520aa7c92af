package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeStore ejecuta las unidades de trabajo directamente sobre fakeQueries
type fakeStore struct {
	q *fakeQueries
}

func (s *fakeStore) Queries() repository.Queries { return s.q }

func (s *fakeStore) InTx(ctx context.Context, fn func(q repository.Queries) error) error {
	return fn(s.q)
}

func (f *fakeQueries) CountTicketsForDay(ctx context.Context, prefix string) (int, error) {
	count := 0
	for _, number := range f.ticketNumbers {
		if strings.HasPrefix(number, prefix) {
			count++
		}
	}
	return count, nil
}

func (f *fakeQueries) addTicket(id int, status models.TicketStatus) *models.Ticket {
	t := &models.Ticket{ID: id, TicketNumber: "TK-20250314-0001", Status: status, CreatedBy: 1}
	f.tickets[id] = t
	return t
}

func (f *fakeQueries) addTicketItem(ticketID, materialID, quantity int, unitPrice decimal.Decimal) *models.TicketItem {
	item := &models.TicketItem{
		ID:         f.nextItemID,
		TicketID:   ticketID,
		MaterialID: materialID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
	f.nextItemID++
	f.items[item.ID] = item
	return item
}

func (f *fakeQueries) GetMaterial(ctx context.Context, id int) (*models.Material, error) {
	return f.materials[id], nil
}

func (f *fakeQueries) GetTicket(ctx context.Context, id int) (*models.Ticket, error) {
	return f.tickets[id], nil
}

func (f *fakeQueries) GetTicketForUpdate(ctx context.Context, id int) (*models.Ticket, error) {
	return f.tickets[id], nil
}

func (f *fakeQueries) UpdateTicketStatus(ctx context.Context, t *models.Ticket) error {
	f.tickets[t.ID] = t
	return nil
}

func (f *fakeQueries) UpdateTicketTotal(ctx context.Context, id int, total decimal.Decimal) error {
	f.tickets[id].TotalAmount = total
	return nil
}

func (f *fakeQueries) SoftDeleteTicket(ctx context.Context, id int) error {
	now := time.Now()
	f.tickets[id].IsDeleted = true
	f.tickets[id].DeletedAt = &now
	return nil
}

func (f *fakeQueries) GetTicketItem(ctx context.Context, id int) (*models.TicketItem, error) {
	return f.items[id], nil
}

func (f *fakeQueries) ListTicketItems(ctx context.Context, ticketID int) ([]models.TicketItem, error) {
	var items []models.TicketItem
	for _, item := range f.items {
		if item.TicketID == ticketID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (f *fakeQueries) CreateTicketItem(ctx context.Context, item *models.TicketItem) error {
	item.ID = f.nextItemID
	f.nextItemID++
	f.items[item.ID] = item
	return nil
}

func (f *fakeQueries) UpdateTicketItem(ctx context.Context, item *models.TicketItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeQueries) DeleteTicketItem(ctx context.Context, id int) error {
	delete(f.items, id)
	return nil
}

func newTicketService(q *fakeQueries) *ticketService {
	return &ticketService{store: &fakeStore{q: q}, logger: zap.NewNop()}
}

func TestNextTicketNumber(t *testing.T) {
	q := newFakeQueries()
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	number, err := nextTicketNumber(context.Background(), q, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "TK-20250314-0001" {
		t.Errorf("number = %q, want TK-20250314-0001", number)
	}

	// Los tickets ya emitidos ese día avanzan el contador, incluidos
	// los borrados: un número nunca se reutiliza
	q.ticketNumbers = []string{"TK-20250314-0001", "TK-20250314-0002", "TK-20250313-0005"}
	number, err = nextTicketNumber(context.Background(), q, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "TK-20250314-0003" {
		t.Errorf("number = %q, want TK-20250314-0003", number)
	}
}

func TestDeleteTicketPaidRejected(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 90)
	q.addTicket(5, models.TicketPaid)
	q.addTicketItem(5, 1, 10, decimal.NewFromInt(3))

	s := newTicketService(q)
	err := s.DeleteTicket(context.Background(), 5, 1)
	if !errors.Is(err, ErrTicketPaid) {
		t.Fatalf("err = %v, want ErrTicketPaid", err)
	}

	// La mercancía vendida ya salió del almacén: nada debe moverse
	if q.materials[1].Quantity != 90 {
		t.Errorf("total = %d, want 90 tras el rechazo", q.materials[1].Quantity)
	}
	if len(q.controls) != 0 {
		t.Errorf("controls = %d, want 0 tras el rechazo", len(q.controls))
	}
	if q.tickets[5].IsDeleted {
		t.Errorf("el ticket pagado no debe quedar borrado")
	}
}

func TestDeleteTicketPendingReturnsStock(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 90)
	q.addTicket(5, models.TicketPending)
	q.addTicketItem(5, 1, 10, decimal.NewFromInt(3))

	s := newTicketService(q)
	if err := s.DeleteTicket(context.Background(), 5, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.materials[1].Quantity != 100 {
		t.Errorf("total = %d, want 100 tras devolver la línea", q.materials[1].Quantity)
	}
	if len(q.controls) != 1 {
		t.Fatalf("controls = %d, want 1", len(q.controls))
	}
	c := q.controls[0]
	if c.Operation != models.OperationAdd || c.Reason != models.ReasonEliminacionTicket || c.Quantity != 10 {
		t.Errorf("control = %s/%s/%d, want ADD/ELIMINACION_TICKET/10", c.Operation, c.Reason, c.Quantity)
	}
	if !q.tickets[5].IsDeleted {
		t.Errorf("el ticket debe quedar borrado lógicamente")
	}
}

func TestDeleteTicketCanceledKeepsStock(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTicket(5, models.TicketCanceled)
	q.addTicketItem(5, 1, 10, decimal.NewFromInt(3))

	s := newTicketService(q)
	if err := s.DeleteTicket(context.Background(), 5, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// La anulación ya devolvió el stock; el borrado no lo devuelve otra vez
	if q.materials[1].Quantity != 100 {
		t.Errorf("total = %d, want 100", q.materials[1].Quantity)
	}
	if len(q.controls) != 0 {
		t.Errorf("controls = %d, want 0", len(q.controls))
	}
	if !q.tickets[5].IsDeleted {
		t.Errorf("el ticket anulado sí se puede borrar")
	}
}

func TestAddItemRequiresPendingTicket(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 100)
	q.addTicket(5, models.TicketPaid)

	s := newTicketService(q)
	_, err := s.AddItem(context.Background(), 5, &models.TicketItemRequest{MaterialID: 1, Quantity: 2}, 1)
	if !errors.Is(err, ErrTicketNotPending) {
		t.Fatalf("err = %v, want ErrTicketNotPending", err)
	}
	if q.materials[1].Quantity != 100 || len(q.controls) != 0 {
		t.Errorf("un ticket pagado no debe consumir stock")
	}
}

func TestUpdateItemQuantityMovesOnlyDelta(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 97)
	q.addTicket(5, models.TicketPending)
	item := q.addTicketItem(5, 1, 3, decimal.NewFromInt(10))

	s := newTicketService(q)
	updated, err := s.UpdateItem(context.Background(), item.ID,
		&models.TicketItemUpdateRequest{Quantity: intPtr(5), UserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", updated.Quantity)
	}
	if q.materials[1].Quantity != 95 {
		t.Errorf("total = %d, want 95: solo sale la diferencia", q.materials[1].Quantity)
	}
	if len(q.controls) != 1 {
		t.Fatalf("controls = %d, want 1", len(q.controls))
	}
	c := q.controls[0]
	if c.Operation != models.OperationRemove || c.Reason != models.ReasonVenta || c.Quantity != 2 {
		t.Errorf("control = %s/%s/%d, want REMOVE/VENTA/2", c.Operation, c.Reason, c.Quantity)
	}
	if !q.tickets[5].TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("total del ticket = %s, want 50", q.tickets[5].TotalAmount)
	}
}

func TestCancelTicketReturnsAllItems(t *testing.T) {
	q := newFakeQueries()
	q.addMaterial(1, "Cable 2.5mm", 96)
	q.addMaterial(2, "Tubo 20mm", 94)
	q.addTicket(5, models.TicketPending)
	q.addTicketItem(5, 1, 4, decimal.NewFromInt(10))
	q.addTicketItem(5, 2, 6, decimal.NewFromInt(2))

	s := newTicketService(q)
	ticket, err := s.CancelTicket(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ticket.Status != models.TicketCanceled || ticket.CanceledAt == nil {
		t.Errorf("status = %s, canceled_at = %v", ticket.Status, ticket.CanceledAt)
	}
	if q.materials[1].Quantity != 100 || q.materials[2].Quantity != 100 {
		t.Errorf("totales = %d/%d, want 100/100", q.materials[1].Quantity, q.materials[2].Quantity)
	}
	if len(q.controls) != 2 {
		t.Fatalf("controls = %d, want 2", len(q.controls))
	}
	for i, c := range q.controls {
		if c.Operation != models.OperationAdd || c.Reason != models.ReasonDevolucion {
			t.Errorf("control %d = %s/%s, want ADD/DEVOLUCION", i, c.Operation, c.Reason)
		}
		if c.TicketID == nil || *c.TicketID != 5 {
			t.Errorf("control %d sin referencia al ticket", i)
		}
	}
}
