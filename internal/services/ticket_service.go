package services

import (
	"context"
	"fmt"
	"time"

	"zonelan-service/internal/metrics"
	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TicketService define las operaciones sobre tickets de venta
type TicketService interface {
	CreateTicket(ctx context.Context, req *models.TicketCreateRequest) (*models.TicketWithItems, error)
	GetTicket(ctx context.Context, id int) (*models.TicketWithItems, error)
	ListTickets(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error)

	AddItem(ctx context.Context, ticketID int, req *models.TicketItemRequest, userID int) (*models.TicketItem, error)
	UpdateItem(ctx context.Context, itemID int, req *models.TicketItemUpdateRequest) (*models.TicketItem, error)
	RemoveItem(ctx context.Context, itemID int, userID int) error

	MarkPaid(ctx context.Context, id int, userID int) (*models.Ticket, error)
	CancelTicket(ctx context.Context, id int, userID int) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id int, userID int) error
}

// ticketService implementa TicketService
type ticketService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewTicketService crea una nueva instancia del servicio
func NewTicketService(store repository.Store, logger *zap.Logger) TicketService {
	return &ticketService{store: store, logger: logger}
}

// nextTicketNumber numera el ticket dentro del día: TK-YYYYMMDD-0001, -0002...
func nextTicketNumber(ctx context.Context, q repository.Queries, now time.Time) (string, error) {
	prefix := fmt.Sprintf("TK-%s", now.Format("20060102"))
	count, err := q.CountTicketsForDay(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

// CreateTicket emite un ticket con sus líneas, consumiendo stock por cada una
// en la misma transacción
func (s *ticketService) CreateTicket(ctx context.Context, req *models.TicketCreateRequest) (*models.TicketWithItems, error) {
	logger := s.logger.With(
		zap.String("operation", "create_ticket"),
		zap.Int("items", len(req.Items)),
		zap.Int("user_id", req.UserID),
	)

	logger.Info("🔍 [DEBUG] Creando ticket de venta")

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCash
	}

	ticket := &models.Ticket{
		CustomerID:    req.CustomerID,
		CreatedBy:     req.UserID,
		Status:        models.TicketPending,
		PaymentMethod: paymentMethod,
		TotalAmount:   decimal.Zero,
		Notes:         req.Notes,
	}
	var items []models.TicketItem

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		number, err := nextTicketNumber(ctx, q, time.Now())
		if err != nil {
			return err
		}
		ticket.TicketNumber = number

		if err := q.CreateTicket(ctx, ticket); err != nil {
			return err
		}

		total := decimal.Zero
		for _, itemReq := range req.Items {
			item, err := s.addItemTx(ctx, q, ticket, &itemReq, req.UserID)
			if err != nil {
				return err
			}
			items = append(items, *item)
			total = total.Add(item.TotalPrice())
		}

		ticket.TotalAmount = total
		return q.UpdateTicketTotal(ctx, ticket.ID, total)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error creando ticket", zap.Error(err))
		return nil, err
	}

	metrics.TicketsCreated.Inc()
	logger.Info("✅ [DEBUG] Ticket creado",
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("total", ticket.TotalAmount.String()))
	return &models.TicketWithItems{Ticket: *ticket, Items: items}, nil
}

// addItemTx añade una línea a un ticket pendiente y consume su stock
func (s *ticketService) addItemTx(ctx context.Context, q repository.Queries,
	ticket *models.Ticket, req *models.TicketItemRequest, userID int) (*models.TicketItem, error) {

	material, err := q.GetMaterial(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %d", ErrNotFound, req.MaterialID)
	}

	unitPrice := material.Price
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}
	discount := decimal.Zero
	if req.DiscountPercentage != nil {
		discount = *req.DiscountPercentage
	}

	ref := ControlRef{TicketID: &ticket.ID}
	if _, err := ApplyStockChangeTx(ctx, q, userID, req.MaterialID,
		models.OperationRemove, req.Quantity, models.ReasonVenta, nil, ref); err != nil {
		return nil, err
	}

	item := &models.TicketItem{
		TicketID:           ticket.ID,
		MaterialID:         req.MaterialID,
		Quantity:           req.Quantity,
		UnitPrice:          unitPrice,
		DiscountPercentage: discount,
		Notes:              req.Notes,
		LocationSource:     req.LocationSource,
	}
	if err := q.CreateTicketItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetTicket obtiene un ticket con sus líneas
func (s *ticketService) GetTicket(ctx context.Context, id int) (*models.TicketWithItems, error) {
	q := s.store.Queries()
	ticket, err := q.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, id)
	}
	items, err := q.ListTicketItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.TicketWithItems{Ticket: *ticket, Items: items}, nil
}

// ListTickets lista tickets con filtros
func (s *ticketService) ListTickets(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error) {
	return s.store.Queries().ListTickets(ctx, filter)
}

// AddItem añade una línea a un ticket pendiente
func (s *ticketService) AddItem(ctx context.Context, ticketID int, req *models.TicketItemRequest, userID int) (*models.TicketItem, error) {
	var item *models.TicketItem
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		ticket, err := q.GetTicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", ErrNotFound, ticketID)
		}
		if ticket.Status != models.TicketPending {
			return ErrTicketNotPending
		}

		item, err = s.addItemTx(ctx, q, ticket, req, userID)
		if err != nil {
			return err
		}
		return s.recalculateTotalTx(ctx, q, ticketID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem edita una línea de un ticket pendiente; un cambio de cantidad
// mueve solo la diferencia contra el stock
func (s *ticketService) UpdateItem(ctx context.Context, itemID int, req *models.TicketItemUpdateRequest) (*models.TicketItem, error) {
	logger := s.logger.With(
		zap.String("operation", "update_ticket_item"),
		zap.Int("item_id", itemID),
		zap.Int("user_id", req.UserID),
	)

	var item *models.TicketItem
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		item, err = q.GetTicketItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: línea %d", ErrNotFound, itemID)
		}

		ticket, err := q.GetTicketForUpdate(ctx, item.TicketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", ErrNotFound, item.TicketID)
		}
		if ticket.Status != models.TicketPending {
			return ErrTicketNotPending
		}

		if req.Quantity != nil && *req.Quantity != item.Quantity {
			delta := *req.Quantity - item.Quantity
			ref := ControlRef{TicketID: &ticket.ID}
			if delta > 0 {
				_, err = ApplyStockChangeTx(ctx, q, req.UserID, item.MaterialID,
					models.OperationRemove, delta, models.ReasonVenta, nil, ref)
			} else {
				_, err = ApplyStockChangeTx(ctx, q, req.UserID, item.MaterialID,
					models.OperationAdd, -delta, models.ReasonDevolucion, nil, ref)
			}
			if err != nil {
				return err
			}
			item.Quantity = *req.Quantity
			logger.Info("🔍 [DEBUG] Cantidad de línea ajustada", zap.Int("delta", delta))
		}
		if req.UnitPrice != nil {
			item.UnitPrice = *req.UnitPrice
		}
		if req.DiscountPercentage != nil {
			item.DiscountPercentage = *req.DiscountPercentage
		}
		if req.Notes != nil {
			item.Notes = req.Notes
		}

		if err := q.UpdateTicketItem(ctx, item); err != nil {
			return err
		}
		return s.recalculateTotalTx(ctx, q, item.TicketID)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error actualizando línea", zap.Error(err))
		return nil, err
	}
	return item, nil
}

// RemoveItem elimina una línea de un ticket pendiente devolviendo su stock
func (s *ticketService) RemoveItem(ctx context.Context, itemID int, userID int) error {
	return s.store.InTx(ctx, func(q repository.Queries) error {
		item, err := q.GetTicketItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: línea %d", ErrNotFound, itemID)
		}

		ticket, err := q.GetTicketForUpdate(ctx, item.TicketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", ErrNotFound, item.TicketID)
		}
		if ticket.Status != models.TicketPending {
			return ErrTicketNotPending
		}

		ref := ControlRef{TicketID: &ticket.ID}
		if _, err := ApplyStockChangeTx(ctx, q, userID, item.MaterialID,
			models.OperationAdd, item.Quantity, models.ReasonDevolucion, nil, ref); err != nil {
			return err
		}
		if err := q.DeleteTicketItem(ctx, itemID); err != nil {
			return err
		}
		return s.recalculateTotalTx(ctx, q, item.TicketID)
	})
}

// MarkPaid marca un ticket pendiente como pagado
func (s *ticketService) MarkPaid(ctx context.Context, id int, userID int) (*models.Ticket, error) {
	logger := s.logger.With(
		zap.String("operation", "mark_paid"),
		zap.Int("ticket_id", id),
		zap.Int("user_id", userID),
	)

	var ticket *models.Ticket
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		ticket, err = q.GetTicketForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", ErrNotFound, id)
		}
		if ticket.Status != models.TicketPending {
			return ErrTicketNotPending
		}
		now := time.Now()
		ticket.Status = models.TicketPaid
		ticket.PaidAt = &now
		return q.UpdateTicketStatus(ctx, ticket)
	})
	if err != nil {
		logger.Error("Error marcando ticket como pagado", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ Ticket pagado", zap.String("ticket_number", ticket.TicketNumber))
	return ticket, nil
}

// CancelTicket anula un ticket pendiente devolviendo el stock de todas sus líneas
func (s *ticketService) CancelTicket(ctx context.Context, id int, userID int) (*models.Ticket, error) {
	logger := s.logger.With(
		zap.String("operation", "cancel_ticket"),
		zap.Int("ticket_id", id),
		zap.Int("user_id", userID),
	)

	logger.Info("🔍 [DEBUG] Anulando ticket")

	var ticket *models.Ticket
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		ticket, err = q.GetTicketForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", ErrNotFound, id)
		}
		if ticket.Status != models.TicketPending {
			return ErrTicketNotPending
		}

		if err := s.returnItemsTx(ctx, q, ticket, models.ReasonDevolucion, userID); err != nil {
			return err
		}

		now := time.Now()
		ticket.Status = models.TicketCanceled
		ticket.CanceledAt = &now
		return q.UpdateTicketStatus(ctx, ticket)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error anulando ticket", zap.Error(err))
		return nil, err
	}

	logger.Info("✅ [DEBUG] Ticket anulado")
	return ticket, nil
}

// DeleteTicket borrado lógico. Un ticket pagado no se puede eliminar, hay que
// anularlo primero. Si estaba pendiente su stock vuelve con el motivo
// específico de eliminación para distinguirlo de una devolución ordinaria.
func (s *ticketService) DeleteTicket(ctx context.Context, id int, userID int) error {
	logger := s.logger.With(
		zap.String("operation", "delete_ticket"),
		zap.Int("ticket_id", id),
		zap.Int("user_id", userID),
	)

	logger.Info("🔍 [DEBUG] Eliminando ticket")

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		ticket, err := q.GetTicketForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("%w: ticket %d", ErrNotFound, id)
		}

		if ticket.Status == models.TicketPaid {
			return ErrTicketPaid
		}
		if ticket.Status == models.TicketPending {
			if err := s.returnItemsTx(ctx, q, ticket, models.ReasonEliminacionTicket, userID); err != nil {
				return err
			}
		}
		return q.SoftDeleteTicket(ctx, id)
	})
	if err != nil {
		logger.Error("❌ [DEBUG] Error eliminando ticket", zap.Error(err))
		return err
	}

	logger.Info("✅ [DEBUG] Ticket eliminado")
	return nil
}

// returnItemsTx devuelve al stock todas las líneas de un ticket
func (s *ticketService) returnItemsTx(ctx context.Context, q repository.Queries,
	ticket *models.Ticket, reason models.Reason, userID int) error {
	items, err := q.ListTicketItems(ctx, ticket.ID)
	if err != nil {
		return err
	}
	ref := ControlRef{TicketID: &ticket.ID}
	for _, item := range items {
		if _, err := ApplyStockChangeTx(ctx, q, userID, item.MaterialID,
			models.OperationAdd, item.Quantity, reason, nil, ref); err != nil {
			return err
		}
	}
	return nil
}

// recalculateTotalTx recalcula el importe total a partir de las líneas vigentes
func (s *ticketService) recalculateTotalTx(ctx context.Context, q repository.Queries, ticketID int) error {
	items, err := q.ListTicketItems(ctx, ticketID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice())
	}
	return q.UpdateTicketTotal(ctx, ticketID, total)
}
