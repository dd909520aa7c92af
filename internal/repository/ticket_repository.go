package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"zonelan-service/internal/models"
)

// TicketQueries define las consultas sobre tickets de venta y sus líneas
type TicketQueries interface {
	GetTicket(ctx context.Context, id int) (*models.Ticket, error)
	GetTicketForUpdate(ctx context.Context, id int) (*models.Ticket, error)
	ListTickets(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error)
	CreateTicket(ctx context.Context, t *models.Ticket) error
	UpdateTicketStatus(ctx context.Context, t *models.Ticket) error
	UpdateTicketTotal(ctx context.Context, id int, total decimal.Decimal) error
	SoftDeleteTicket(ctx context.Context, id int) error
	CountTicketsForDay(ctx context.Context, prefix string) (int, error)

	GetTicketItem(ctx context.Context, id int) (*models.TicketItem, error)
	ListTicketItems(ctx context.Context, ticketID int) ([]models.TicketItem, error)
	CreateTicketItem(ctx context.Context, item *models.TicketItem) error
	UpdateTicketItem(ctx context.Context, item *models.TicketItem) error
	DeleteTicketItem(ctx context.Context, id int) error
}

const ticketColumns = `id, ticket_number, customer_id, created_by, status, payment_method,
	total_amount, notes, paid_at, canceled_at, is_deleted, deleted_at, created_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.TicketNumber, &t.CustomerID, &t.CreatedBy, &t.Status,
		&t.PaymentMethod, &t.TotalAmount, &t.Notes, &t.PaidAt, &t.CanceledAt,
		&t.IsDeleted, &t.DeletedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (q *queries) GetTicket(ctx context.Context, id int) (*models.Ticket, error) {
	t, err := scanTicket(q.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND is_deleted = FALSE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

func (q *queries) GetTicketForUpdate(ctx context.Context, id int) (*models.Ticket, error) {
	t, err := scanTicket(q.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND is_deleted = FALSE FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}
	return t, nil
}

func (q *queries) ListTickets(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	conditions := []string{"is_deleted = FALSE"}
	var args []interface{}
	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.CustomerID != nil {
		addCondition("customer_id = $%d", *filter.CustomerID)
	}
	if filter.Status != nil {
		addCondition("status = $%d", *filter.Status)
	}
	if filter.DateFrom != nil {
		addCondition("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCondition("created_at <= $%d", *filter.DateTo)
	}
	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (q *queries) CreateTicket(ctx context.Context, t *models.Ticket) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO tickets
			(ticket_number, customer_id, created_by, status, payment_method, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		t.TicketNumber, t.CustomerID, t.CreatedBy, t.Status, t.PaymentMethod, t.TotalAmount, t.Notes,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (q *queries) UpdateTicketStatus(ctx context.Context, t *models.Ticket) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE tickets SET status = $1, paid_at = $2, canceled_at = $3
		WHERE id = $4 AND is_deleted = FALSE`,
		t.Status, t.PaidAt, t.CanceledAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	return requireRowsAffected(result, "ticket", t.ID)
}

func (q *queries) UpdateTicketTotal(ctx context.Context, id int, total decimal.Decimal) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE tickets SET total_amount = $1 WHERE id = $2 AND is_deleted = FALSE`,
		total, id)
	if err != nil {
		return fmt.Errorf("failed to update ticket total: %w", err)
	}
	return requireRowsAffected(result, "ticket", id)
}

func (q *queries) SoftDeleteTicket(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE tickets SET is_deleted = TRUE, deleted_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return requireRowsAffected(result, "ticket", id)
}

// CountTicketsForDay cuenta los tickets cuya numeración empieza por el prefijo
// del día, incluyendo los borrados para no reutilizar números
func (q *queries) CountTicketsForDay(ctx context.Context, prefix string) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE ticket_number LIKE $1 || '%'`,
		prefix,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets for day: %w", err)
	}
	return count, nil
}

const ticketItemColumns = `id, ticket_id, material_id, quantity, unit_price,
	discount_percentage, notes, location_source`

func scanTicketItem(row interface{ Scan(...interface{}) error }) (*models.TicketItem, error) {
	var item models.TicketItem
	err := row.Scan(&item.ID, &item.TicketID, &item.MaterialID, &item.Quantity,
		&item.UnitPrice, &item.DiscountPercentage, &item.Notes, &item.LocationSource)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (q *queries) GetTicketItem(ctx context.Context, id int) (*models.TicketItem, error) {
	item, err := scanTicketItem(q.db.QueryRowContext(ctx,
		`SELECT `+ticketItemColumns+` FROM ticket_items WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket item: %w", err)
	}
	return item, nil
}

func (q *queries) ListTicketItems(ctx context.Context, ticketID int) ([]models.TicketItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+ticketItemColumns+` FROM ticket_items WHERE ticket_id = $1 ORDER BY id`,
		ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket items: %w", err)
	}
	defer rows.Close()

	var items []models.TicketItem
	for rows.Next() {
		item, err := scanTicketItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (q *queries) CreateTicketItem(ctx context.Context, item *models.TicketItem) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO ticket_items
			(ticket_id, material_id, quantity, unit_price, discount_percentage, notes, location_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		item.TicketID, item.MaterialID, item.Quantity, item.UnitPrice,
		item.DiscountPercentage, item.Notes, item.LocationSource,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create ticket item: %w", err)
	}
	return nil
}

func (q *queries) UpdateTicketItem(ctx context.Context, item *models.TicketItem) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE ticket_items
		SET quantity = $1, unit_price = $2, discount_percentage = $3, notes = $4
		WHERE id = $5`,
		item.Quantity, item.UnitPrice, item.DiscountPercentage, item.Notes, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket item: %w", err)
	}
	return requireRowsAffected(result, "ticket item", item.ID)
}

func (q *queries) DeleteTicketItem(ctx context.Context, id int) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM ticket_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket item: %w", err)
	}
	return requireRowsAffected(result, "ticket item", id)
}
