package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	appErrors "github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/metrics"
	"github.com/rakapradana/mebelio/internal/models"
	repository "github.com/rakapradana/mebelio/internal/repositories"
	"github.com/rakapradana/mebelio/pkg/gateway"
)

type OrderService struct {
	db          *sql.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	gateway     gateway.Client
}

func NewOrderService(db *sql.DB, orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, gw gateway.Client) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		gateway:     gw,
	}
}

// generateOrderNumber builds a date-prefixed number with random suffix
// entropy. The unique index on orders.order_number catches the rare
// collision; CreateOrder retries once with a fresh number.
func generateOrderNumber(now time.Time) string {
	id := uuid.New()

	return fmt.Sprintf("MB-%s-%X", now.Format("20060102"), id[:3])
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateOrder converts the user's cart into an immutable order in one
// transaction: the order header and line snapshots are written, tracked
// stock is debited, and the cart's active lines are deleted. Any failure
// rolls the whole conversion back so the cart is intact for a retry.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, email string, req *models.CreateOrderRequest) (*models.OrderResponse, error) {

	var order *models.Order

	// one retry for the structurally-unlikely order number collision
	for attempt := range 2 {
		var err error

		order, err = s.createOrderTx(ctx, userID, req)
		if err == nil {
			break
		}

		if isUniqueViolation(err) && attempt == 0 {
			continue
		}

		return nil, err
	}

	metrics.OrdersCreated.Inc()

	response := &models.OrderResponse{Order: order}

	// The gateway call stays outside the transaction: a gateway outage must
	// not roll back a created order. Payment can be re-initiated later.
	session, err := s.gateway.CreateTransaction(order.OrderNumber, order.Total, req.Shipping.RecipientName, email)
	if err != nil {
		slog.Error("Failed to initiate gateway transaction",
			slog.String("orderNumber", order.OrderNumber),
			slog.String("error", err.Error()))

		return response, nil
	}

	response.Payment = &models.CheckoutPayment{
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
	}

	return response, nil
}

func (s *OrderService) createOrderTx(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {

	var order *models.Order

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		cart, err := s.cartRepo.GetOrCreateCartTx(ctx, tx, models.OwnerForUser(userID))
		if err != nil {
			return appErrors.DatabaseError("Failed to resolve cart").WithError(err)
		}

		lines, err := s.cartRepo.GetCheckoutLines(ctx, tx, cart.ID)
		if err != nil {
			return appErrors.DatabaseError("Failed to load cart lines").WithError(err)
		}

		if len(lines) == 0 {
			return appErrors.BadRequestError("Cannot create order with empty cart")
		}

		// subtotal uses the prices snapshotted on the lines, never the
		// current product price
		var subtotal int64

		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			lineSubtotal := line.UnitPrice * int64(line.Quantity)
			subtotal += lineSubtotal

			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				ProductSKU:  line.ProductSKU,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Subtotal:    lineSubtotal,
			})
		}

		if req.DiscountAmount > subtotal {
			return appErrors.ValidationError("Discount cannot exceed the order subtotal")
		}

		var taxAmount int64 // tax is not levied in this store

		order = &models.Order{
			OrderNumber:    generateOrderNumber(time.Now()),
			UserID:         userID,
			Status:         models.OrderStatusPending,
			PaymentStatus:  models.PaymentStatusPending,
			Subtotal:       subtotal,
			DiscountAmount: req.DiscountAmount,
			ShippingCost:   req.ShippingCost,
			TaxAmount:      taxAmount,
			Total:          subtotal - req.DiscountAmount + req.ShippingCost + taxAmount,
			Shipping:       req.Shipping,
			Items:          items,
		}

		if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
			return err
		}

		for _, line := range lines {
			if !line.TrackStock {
				continue
			}

			if err := s.productRepo.ReduceStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return appErrors.InsufficientStockError(
						fmt.Sprintf("Insufficient stock for %s", line.ProductName)).WithError(err)
				}

				return appErrors.DatabaseError("Failed to reduce stock").WithError(err)
			}
		}

		if err := s.cartRepo.DeleteItemsTx(ctx, tx, cart.ID); err != nil {
			return appErrors.DatabaseError("Failed to empty cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); ok {
			return nil, err
		}

		if isUniqueViolation(err) {
			return nil, err
		}

		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load order").WithError(err)
	}

	if order.UserID != userID {
		return nil, appErrors.ForbiddenError("Order belongs to another customer")
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) (*models.OrderHistoryResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 50 {
		size = 10
	}

	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return &models.OrderHistoryResponse{Orders: orders, Total: total, Page: page, Size: size}, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, statusFilter string, page, size int) (*models.OrderHistoryResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	var status *models.OrderStatus

	if statusFilter != "" {
		parsed, err := models.ParseOrderStatus(statusFilter)
		if err != nil {
			return nil, appErrors.ValidationError("Unknown order status filter").WithError(err)
		}

		status = &parsed
	}

	orders, total, err := s.orderRepo.ListOrders(ctx, status, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return &models.OrderHistoryResponse{Orders: orders, Total: total, Page: page, Size: size}, nil
}

// CancelOrder cancels a customer-owned order if its status still allows it,
// restoring tracked stock in the same transaction.
func (s *OrderService) CancelOrder(ctx context.Context, userID uuid.UUID, orderNumber, reason string) (*models.Order, error) {
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.orderRepo.GetOrderForUpdateTx(ctx, tx, orderNumber)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFoundError("Order not found").WithError(err)
			}

			return appErrors.DatabaseError("Failed to load order").WithError(err)
		}

		if order.UserID != userID {
			return appErrors.ForbiddenError("Order belongs to another customer")
		}

		return s.cancelLockedOrder(ctx, tx, order, reason)
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); ok {
			return nil, err
		}

		return nil, appErrors.DatabaseError("Failed to cancel order").WithError(err)
	}

	return s.orderRepo.GetOrderByNumber(ctx, orderNumber)
}

// cancelLockedOrder performs the cancellation side effects for an order row
// already locked in tx. Every tracked line's stock is credited back before
// the status flips, all inside the same transaction.
func (s *OrderService) cancelLockedOrder(ctx context.Context, tx *sql.Tx, order *models.Order, reason string) error {
	if !order.Status.IsCancellable() {
		return appErrors.BusinessRuleError(
			fmt.Sprintf("Order in status %q can no longer be cancelled", order.Status))
	}

	for _, item := range order.Items {
		if err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return appErrors.DatabaseError("Failed to restore stock").WithError(err)
		}
	}

	if err := s.orderRepo.CancelOrderTx(ctx, tx, order.ID, reason); err != nil {
		return appErrors.DatabaseError("Failed to cancel order").WithError(err)
	}

	metrics.OrdersCancelled.Inc()

	return nil
}

// UpdateOrderStatus is the admin surface. Cancellation is routed through
// the cancel path so stock restitution can never be skipped by a raw
// status write; other transitions are validated against the forward-only
// state machine under a row lock, and the optional payment status rides
// in the same transaction so the update lands whole or not at all.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderNumber string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	target, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, appErrors.ValidationError("Unknown order status").WithError(err)
	}

	var paymentStatus *models.PaymentStatus

	if req.PaymentStatus != nil {
		parsed, err := models.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, appErrors.ValidationError("Unknown payment status").WithError(err)
		}

		paymentStatus = &parsed
	}

	if target == models.OrderStatusCancelled {
		reason := "Cancelled by store admin"
		if req.Reason != nil && *req.Reason != "" {
			reason = *req.Reason
		}

		return s.adminCancel(ctx, orderNumber, reason)
	}

	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.orderRepo.GetOrderForUpdateTx(ctx, tx, orderNumber)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFoundError("Order not found").WithError(err)
			}

			return appErrors.DatabaseError("Failed to load order").WithError(err)
		}

		if !order.Status.CanTransitionTo(target) {
			return appErrors.BusinessRuleError(
				fmt.Sprintf("Cannot move order from %q to %q", order.Status, target))
		}

		switch target {
		case models.OrderStatusShipped:
			err = s.orderRepo.MarkShippedTx(ctx, tx, order.ID, req.TrackingNumber)
		case models.OrderStatusDelivered:
			err = s.orderRepo.MarkDeliveredTx(ctx, tx, order.ID)
		default:
			err = s.orderRepo.UpdateStatusTx(ctx, tx, order.ID, target)
		}

		if err != nil {
			return appErrors.DatabaseError("Failed to update order status").WithError(err)
		}

		if paymentStatus != nil {
			if err := s.orderRepo.UpdatePaymentStatusTx(ctx, tx, order.ID, *paymentStatus); err != nil {
				return appErrors.DatabaseError("Failed to update payment status").WithError(err)
			}
		}

		return nil
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); ok {
			return nil, err
		}

		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return s.orderRepo.GetOrderByNumber(ctx, orderNumber)
}

func (s *OrderService) adminCancel(ctx context.Context, orderNumber, reason string) (*models.Order, error) {
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.orderRepo.GetOrderForUpdateTx(ctx, tx, orderNumber)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFoundError("Order not found").WithError(err)
			}

			return appErrors.DatabaseError("Failed to load order").WithError(err)
		}

		return s.cancelLockedOrder(ctx, tx, order, reason)
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); ok {
			return nil, err
		}

		return nil, appErrors.DatabaseError("Failed to cancel order").WithError(err)
	}

	return s.orderRepo.GetOrderByNumber(ctx, orderNumber)
}
