package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	appErrors "github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/metrics"
	"github.com/rakapradana/mebelio/internal/models"
	repository "github.com/rakapradana/mebelio/internal/repositories"
	"github.com/rakapradana/mebelio/pkg/gateway"
)

type PaymentService struct {
	db          *sql.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     gateway.Client
}

func NewPaymentService(db *sql.DB, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, gw gateway.Client) *PaymentService {
	return &PaymentService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gw,
	}
}

// HandleNotification applies a gateway webhook to the order it names. The
// signature is verified before anything is touched, the order row is locked
// for the duration, and a replayed notification for an already-settled
// payment is acknowledged without side effects.
func (s *PaymentService) HandleNotification(ctx context.Context, notification *models.GatewayNotification) error {
	if !s.gateway.VerifySignature(notification.OrderID, notification.StatusCode, notification.GrossAmount, notification.SignatureKey) {
		return appErrors.UnauthorizedError("Invalid notification signature")
	}

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.orderRepo.GetOrderForUpdateTx(ctx, tx, notification.OrderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFoundError("Order not found for notification").WithError(err)
			}

			return appErrors.DatabaseError("Failed to load order").WithError(err)
		}

		if order.PaymentStatus != models.PaymentStatusPending {
			slog.Info("Ignoring notification for settled payment",
				slog.String("orderNumber", order.OrderNumber),
				slog.String("paymentStatus", string(order.PaymentStatus)),
				slog.String("transactionStatus", notification.TransactionStatus))

			return nil
		}

		return s.applyTransactionStatus(ctx, tx, order, notification)
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); ok {
			return err
		}

		return appErrors.DatabaseError("Failed to process notification").WithError(err)
	}

	metrics.PaymentNotifications.WithLabelValues(notification.TransactionStatus).Inc()

	return nil
}

func (s *PaymentService) applyTransactionStatus(ctx context.Context, tx *sql.Tx, order *models.Order, notification *models.GatewayNotification) error {
	switch notification.TransactionStatus {
	case "capture":
		switch notification.FraudStatus {
		case "accept":
			return s.markPaid(ctx, tx, order)
		case "challenge":
			// held for manual review, payment stays pending
			return nil
		default:
			return s.markFailed(ctx, tx, order,
				fmt.Sprintf("Payment capture flagged as %s", notification.FraudStatus))
		}
	case "settlement":
		return s.markPaid(ctx, tx, order)
	case "pending":
		return nil
	case "deny", "cancel":
		return s.markFailed(ctx, tx, order, "Payment was denied by the gateway")
	case "expire":
		return s.markExpired(ctx, tx, order)
	default:
		return appErrors.BadRequestError(
			fmt.Sprintf("Unknown transaction status %q", notification.TransactionStatus))
	}
}

// markPaid records the settled payment. The order only moves to processing
// when its current status still allows that transition; a cancelled order
// keeps its status and the settled funds are flagged for manual follow-up.
func (s *PaymentService) markPaid(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	if !order.Status.CanTransitionTo(models.OrderStatusProcessing) {
		if err := s.orderRepo.UpdatePaymentStatusTx(ctx, tx, order.ID, models.PaymentStatusPaid); err != nil {
			return appErrors.DatabaseError("Failed to record payment").WithError(err)
		}

		slog.Warn("Payment settled for an order no longer awaiting fulfilment, refund required",
			slog.String("orderNumber", order.OrderNumber),
			slog.String("orderStatus", string(order.Status)))

		return nil
	}

	applied, err := s.orderRepo.ApplyPaymentTx(ctx, tx, order.ID, models.PaymentStatusPaid, models.OrderStatusProcessing, true)
	if err != nil {
		return appErrors.DatabaseError("Failed to record payment").WithError(err)
	}

	if !applied {
		slog.Warn("Payment already applied, skipping", slog.String("orderNumber", order.OrderNumber))
	}

	return nil
}

func (s *PaymentService) markFailed(ctx context.Context, tx *sql.Tx, order *models.Order, reason string) error {
	return s.failPayment(ctx, tx, order, models.PaymentStatusFailed, reason)
}

func (s *PaymentService) markExpired(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	return s.failPayment(ctx, tx, order, models.PaymentStatusExpired, "Payment window expired")
}

// failPayment records the terminal payment status and, when the order has
// not advanced past a cancellable state, cancels it and credits tracked
// stock back in the same transaction.
func (s *PaymentService) failPayment(ctx context.Context, tx *sql.Tx, order *models.Order, status models.PaymentStatus, reason string) error {
	if err := s.orderRepo.UpdatePaymentStatusTx(ctx, tx, order.ID, status); err != nil {
		return appErrors.DatabaseError("Failed to update payment status").WithError(err)
	}

	if !order.Status.IsCancellable() {
		return nil
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
