package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/models"
	"github.com/rakapradana/mebelio/internal/utils"
)

type OrderRepository interface {
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GetOrderForUpdateTx(ctx context.Context, tx *sql.Tx, orderNumber string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	ListOrders(ctx context.Context, status *models.OrderStatus, page, size int) ([]models.Order, int, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status models.OrderStatus) error
	UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status models.PaymentStatus) error
	MarkShippedTx(ctx context.Context, tx *sql.Tx, orderID int64, trackingNumber *string) error
	MarkDeliveredTx(ctx context.Context, tx *sql.Tx, orderID int64) error
	CancelOrderTx(ctx context.Context, tx *sql.Tx, orderID int64, reason string) error
	ApplyPaymentTx(ctx context.Context, tx *sql.Tx, orderID int64, paymentStatus models.PaymentStatus, orderStatus models.OrderStatus, markPaid bool) (bool, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `id, order_number, user_id, status, payment_status,
		subtotal, discount_amount, shipping_cost, tax_amount, total,
		recipient_name, phone, address_line, city, province, postal_code,
		destination_id, courier, service, tracking_number, cancel_reason,
		paid_at, shipped_at, delivered_at, cancelled_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	order := &models.Order{}

	var status, paymentStatus string

	err := row.Scan(&order.ID, &order.OrderNumber, &order.UserID, &status, &paymentStatus,
		&order.Subtotal, &order.DiscountAmount, &order.ShippingCost, &order.TaxAmount, &order.Total,
		&order.Shipping.RecipientName, &order.Shipping.Phone, &order.Shipping.AddressLine,
		&order.Shipping.City, &order.Shipping.Province, &order.Shipping.PostalCode,
		&order.Shipping.DestinationID, &order.Shipping.Courier, &order.Shipping.Service,
		&order.TrackingNumber, &order.CancelReason,
		&order.PaidAt, &order.ShippedAt, &order.DeliveredAt, &order.CancelledAt,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatus(status)
	order.PaymentStatus = models.PaymentStatus(paymentStatus)

	return order, nil
}

// CreateOrderTx inserts the immutable order header and its line snapshots
// inside the caller's transaction. The unique index on order_number is the
// structural backstop against number collisions.
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO orders (order_number, user_id, status, payment_status,
			subtotal, discount_amount, shipping_cost, tax_amount, total,
			recipient_name, phone, address_line, city, province, postal_code,
			destination_id, courier, service, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRowContext(dbCtx, query,
		order.OrderNumber, order.UserID, order.Status, order.PaymentStatus,
		order.Subtotal, order.DiscountAmount, order.ShippingCost, order.TaxAmount, order.Total,
		order.Shipping.RecipientName, order.Shipping.Phone, order.Shipping.AddressLine,
		order.Shipping.City, order.Shipping.Province, order.Shipping.PostalCode,
		order.Shipping.DestinationID, order.Shipping.Courier, order.Shipping.Service).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, product_sku,
			quantity, unit_price, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err := tx.QueryRowContext(dbCtx, itemQuery,
			order.ID, item.ProductID, item.ProductName, item.ProductSKU,
			item.Quantity, item.UnitPrice, item.Subtotal).
			Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, orderID int64) ([]models.OrderItem, error) {

	query := `
		SELECT id, order_id, product_id, product_name, product_sku,
			quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem

		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_number = $1
	`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, orderNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.loadItems(dbCtx, r.DB, order.ID)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

// GetOrderForUpdateTx locks the order row for the rest of the transaction.
// Cancellation and webhook handling go through here so that concurrent
// status writes serialize on the row.
func (r *orderRepository) GetOrderForUpdateTx(ctx context.Context, tx *sql.Tx, orderNumber string) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_number = $1
		FOR UPDATE
	`

	order, err := scanOrder(tx.QueryRowContext(dbCtx, query, orderNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	items, err := r.loadItems(dbCtx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

func (r *orderRepository) listOrders(ctx context.Context, where string, countArgs, listArgs []any) ([]models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM orders ` + where
	if err := r.DB.QueryRowContext(dbCtx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, len(countArgs)+1, len(countArgs)+2)

	rows, err := r.DB.QueryContext(dbCtx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.loadItems(dbCtx, r.DB, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}

		orders[i].Items = items
	}

	return orders, total, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {
	offset := (page - 1) * size

	return r.listOrders(ctx, `WHERE user_id = $1`,
		[]any{userID}, []any{userID, size, offset})
}

func (r *orderRepository) ListOrders(ctx context.Context, status *models.OrderStatus, page, size int) ([]models.Order, int, error) {
	offset := (page - 1) * size

	if status != nil {
		return r.listOrders(ctx, `WHERE status = $1`,
			[]any{*status}, []any{*status, size, offset})
	}

	return r.listOrders(ctx, ``, nil, []any{size, offset})
}

func (r *orderRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status models.OrderStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	return execExpectingRow(dbCtx, tx, query, orderID, status)
}

func (r *orderRepository) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status models.PaymentStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
	`

	return execExpectingRow(dbCtx, tx, query, orderID, status)
}

func (r *orderRepository) MarkShippedTx(ctx context.Context, tx *sql.Tx, orderID int64, trackingNumber *string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = $2, tracking_number = COALESCE($3, tracking_number),
			shipped_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	return execExpectingRow(dbCtx, tx, query, orderID, models.OrderStatusShipped, trackingNumber)
}

func (r *orderRepository) MarkDeliveredTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = $2, delivered_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	return execExpectingRow(dbCtx, tx, query, orderID, models.OrderStatusDelivered)
}

func (r *orderRepository) CancelOrderTx(ctx context.Context, tx *sql.Tx, orderID int64, reason string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = $2, cancel_reason = $3, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.ExecContext(dbCtx, query, orderID, models.OrderStatusCancelled, reason)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ApplyPaymentTx writes both status axes in one statement. The guard on the
// current payment_status makes webhook replays match zero rows, so a
// duplicate notification never double-applies side effects, and the status
// guard keeps an order that already left the pending lane from being moved
// back into fulfilment. The returned bool reports whether the transition
// was applied.
func (r *orderRepository) ApplyPaymentTx(ctx context.Context, tx *sql.Tx, orderID int64, paymentStatus models.PaymentStatus, orderStatus models.OrderStatus, markPaid bool) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET payment_status = $2, status = $3,
			paid_at = CASE WHEN $4 THEN NOW() ELSE paid_at END,
			updated_at = NOW()
		WHERE id = $1 AND payment_status = 'pending'
			AND status IN ('pending', 'confirmed')
	`

	result, err := tx.ExecContext(dbCtx, query, orderID, paymentStatus, orderStatus, markPaid)
	if err != nil {
		return false, fmt.Errorf("failed to apply payment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}
