package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrTrackerNotFound = errors.New("food tracker not found")
)

type Repository interface {
	// CreateOrder persists the order, its items and trackers, and bumps
	// each menu item's queue count, all in one transaction.
	CreateOrder(ctx context.Context, o *Order, trackers []FoodTracker) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListStallOrders(ctx context.Context, stallID uuid.UUID) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error

	GetTrackerByID(ctx context.Context, id uuid.UUID) (*FoodTracker, error)
	GetTrackersByOrderID(ctx context.Context, orderID uuid.UUID) ([]FoodTracker, error)
	ListStallTrackers(ctx context.Context, stallID uuid.UUID, status TrackerStatus) ([]FoodTracker, error)
	ListActiveTrackers(ctx context.Context) ([]FoodTracker, error)
	UpdateTracker(ctx context.Context, t *FoodTracker) error
	AdjustMenuItemQueue(ctx context.Context, menuItemID uuid.UUID, delta int) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateOrder(ctx context.Context, o *Order, trackers []FoodTracker) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (id, user_id, order_number, status, payment_method, subtotal, service_fee,
			total_amount, estimated_completion_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID, o.UserID, o.OrderNumber, string(o.Status), string(o.PaymentMethod),
		o.Subtotal, o.ServiceFee, o.TotalAmount, o.EstimatedCompletionTime, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, menu_item_id, stall_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range o.Items {
		item := &o.Items[i]
		_, err = tx.Exec(ctx, queryItem,
			item.ID, o.ID, item.MenuItemID, item.StallID, item.Quantity, item.UnitPrice, item.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE menu_items SET current_queue_count = current_queue_count + $1 WHERE id = $2`,
			item.Quantity, item.MenuItemID,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to bump queue count for menu item %s: %w", item.MenuItemID, err)
		}
	}

	queryTracker := `
		INSERT INTO food_trackers (id, order_id, order_item_id, menu_item_id, stall_id, item_number,
			status, queue_position, prep_duration_minutes, estimated_ready_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for i := range trackers {
		t := &trackers[i]
		t.CreatedAt = now
		t.UpdatedAt = now
		_, err = tx.Exec(ctx, queryTracker,
			t.ID, o.ID, t.OrderItemID, t.MenuItemID, t.StallID, t.ItemNumber,
			string(t.Status), t.QueuePosition, t.PrepDurationMinutes, t.EstimatedReadyTime,
			t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert food tracker for order %s: %w", o.ID, err)
		}
	}

	return nil
}

const orderColumns = `o.id, o.user_id, o.order_number, o.status, o.payment_method, o.subtotal,
	o.service_fee, o.total_amount, o.estimated_completion_time, o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.Status,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.ServiceFee,
		&o.TotalAmount,
		&o.EstimatedCompletionTime,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const orderItemQuery = `
	SELECT oi.id, oi.order_id, oi.menu_item_id, oi.stall_id, m.name, s.name, oi.quantity, oi.unit_price, oi.total_price
	FROM order_items oi
	JOIN menu_items m ON m.id = oi.menu_item_id
	JOIN stalls s ON s.id = oi.stall_id
`

func scanOrderItem(row pgx.Row) (*OrderItem, error) {
	var item OrderItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.MenuItemID,
		&item.StallID,
		&item.MenuItemName,
		&item.StallName,
		&item.Quantity,
		&item.UnitPrice,
		&item.TotalPrice,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, orderItemQuery+` WHERE oi.order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", id, err)
	}
	defer rows.Close()

	o.Items = make([]OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", id, err)
		}
		o.Items = append(o.Items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", id, err)
	}

	return o, nil
}

func (r *postgresRepository) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *postgresRepository) ListStallOrders(ctx context.Context, stallID uuid.UUID) ([]Order, error) {
	return r.listOrders(ctx, `
		SELECT DISTINCT `+orderColumns+`
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.stall_id = $1
		ORDER BY o.created_at DESC`, stallID)
}

func (r *postgresRepository) listOrders(ctx context.Context, query string, arg any) ([]Order, error) {
	orderRows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		o, err := scanOrder(orderRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderItem, 0)
		ordersMap[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
	}
	if err = orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemRows, err := r.db.Query(ctx, orderItemQuery+` WHERE oi.order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, *item)
		}
	}
	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}
	return result, nil
}

func (r *postgresRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), orderID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status for %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

const trackerQuery = `
	SELECT t.id, t.order_id, t.order_item_id, t.menu_item_id, t.stall_id, m.name, t.item_number,
		t.status, t.queue_position, t.prep_duration_minutes, t.prep_start_time, t.estimated_ready_time,
		t.actual_ready_time, t.created_at, t.updated_at
	FROM food_trackers t
	JOIN menu_items m ON m.id = t.menu_item_id
`

func scanTracker(row pgx.Row) (*FoodTracker, error) {
	var t FoodTracker
	err := row.Scan(
		&t.ID,
		&t.OrderID,
		&t.OrderItemID,
		&t.MenuItemID,
		&t.StallID,
		&t.MenuItemName,
		&t.ItemNumber,
		&t.Status,
		&t.QueuePosition,
		&t.PrepDurationMinutes,
		&t.PrepStartTime,
		&t.EstimatedReadyTime,
		&t.ActualReadyTime,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresRepository) GetTrackerByID(ctx context.Context, id uuid.UUID) (*FoodTracker, error) {
	t, err := scanTracker(r.db.QueryRow(ctx, trackerQuery+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrackerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select food tracker by id %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresRepository) GetTrackersByOrderID(ctx context.Context, orderID uuid.UUID) ([]FoodTracker, error) {
	return r.listTrackers(ctx, trackerQuery+` WHERE t.order_id = $1 ORDER BY t.estimated_ready_time`, orderID)
}

func (r *postgresRepository) ListStallTrackers(ctx context.Context, stallID uuid.UUID, status TrackerStatus) ([]FoodTracker, error) {
	if status != "" {
		return r.listTrackers(ctx,
			trackerQuery+` WHERE t.stall_id = $1 AND t.status = $2 ORDER BY t.estimated_ready_time`,
			stallID, string(status))
	}
	return r.listTrackers(ctx,
		trackerQuery+` WHERE t.stall_id = $1 ORDER BY t.estimated_ready_time`, stallID)
}

// ListActiveTrackers returns every tracker still moving through the
// kitchen, for the background ticker.
func (r *postgresRepository) ListActiveTrackers(ctx context.Context) ([]FoodTracker, error) {
	return r.listTrackers(ctx,
		trackerQuery+` WHERE t.status IN ('Queued', 'Preparing') ORDER BY t.created_at`)
}

func (r *postgresRepository) listTrackers(ctx context.Context, query string, args ...any) ([]FoodTracker, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query food trackers: %w", err)
	}
	defer rows.Close()

	trackers := make([]FoodTracker, 0)
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan food tracker: %w", err)
		}
		trackers = append(trackers, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating food trackers: %w", err)
	}
	return trackers, nil
}

func (r *postgresRepository) UpdateTracker(ctx context.Context, t *FoodTracker) error {
	t.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE food_trackers
		SET status = $1, prep_start_time = $2, estimated_ready_time = $3, actual_ready_time = $4, updated_at = $5
		WHERE id = $6`,
		string(t.Status), t.PrepStartTime, t.EstimatedReadyTime, t.ActualReadyTime, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update food tracker %s: %w", t.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrTrackerNotFound
	}
	return nil
}

func (r *postgresRepository) AdjustMenuItemQueue(ctx context.Context, menuItemID uuid.UUID, delta int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE menu_items SET current_queue_count = GREATEST(0, current_queue_count + $1) WHERE id = $2`,
		delta, menuItemID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to adjust queue count for menu item %s: %w", menuItemID, err)
	}
	return nil
}
