package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/models"
	repository "github.com/rakapradana/mebelio/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderColumns = []string{
	"id", "order_number", "user_id", "status", "payment_status",
	"subtotal", "discount_amount", "shipping_cost", "tax_amount", "total",
	"recipient_name", "phone", "address_line", "city", "province", "postal_code",
	"destination_id", "courier", "service", "tracking_number", "cancel_reason",
	"paid_at", "shipped_at", "delivered_at", "cancelled_at", "created_at", "updated_at",
}

func orderRow(id int64, orderNumber string, userID uuid.UUID, status, paymentStatus string) *sqlmock.Rows {
	now := time.Now()

	return sqlmock.NewRows(orderColumns).
		AddRow(id, orderNumber, userID, status, paymentStatus,
			int64(4_500_000), int64(100_000), int64(150_000), int64(0), int64(4_550_000),
			"Dewi Lestari", "+628123456789", "Jl. Kemang Raya 12", "Jakarta Selatan",
			"DKI Jakarta", "12730", "3171", "jne", "REG", nil, nil,
			nil, nil, nil, nil, now, now)
}

func emptyItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_id", "product_id", "product_name", "product_sku",
		"quantity", "unit_price", "subtotal", "created_at",
	})
}

func TestOrderRepositoryCreateOrderTx(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewOrderRepo(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success - Header And Lines Inserted", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		now := time.Now()
		order := &models.Order{
			OrderNumber:   "MB-20260315-A1B2C3",
			UserID:        userID,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			Subtotal:      4_500_000,
			ShippingCost:  150_000,
			Total:         4_650_000,
			Shipping: models.ShippingInfo{
				RecipientName: "Dewi Lestari",
				Phone:         "+628123456789",
				AddressLine:   "Jl. Kemang Raya 12",
				City:          "Jakarta Selatan",
				Province:      "DKI Jakarta",
				PostalCode:    "12730",
				DestinationID: "3171",
				Courier:       "jne",
				Service:       "REG",
			},
			Items: []models.OrderItem{
				{ProductID: 10, ProductName: "Teak Dining Table", ProductSKU: "TBL-TEAK-01", Quantity: 1, UnitPrice: 4_000_000, Subtotal: 4_000_000},
				{ProductID: 11, ProductName: "Custom Upholstery Service", ProductSKU: "SVC-UPH-01", Quantity: 2, UnitPrice: 250_000, Subtotal: 500_000},
			},
		}

		mock.ExpectQuery(`(?s)INSERT INTO orders .+RETURNING id, created_at, updated_at`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1001, now, now))
		mock.ExpectQuery(`(?s)INSERT INTO order_items .+RETURNING id, created_at`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))
		mock.ExpectQuery(`(?s)INSERT INTO order_items .+RETURNING id, created_at`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, now))
		mock.ExpectCommit()

		// Act
		err = repo.CreateOrderTx(ctx, tx, order)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(1001), order.ID)
		assert.Equal(t, int64(1001), order.Items[0].OrderID)
		assert.Equal(t, int64(1), order.Items[0].ID)
		assert.Equal(t, int64(2), order.Items[1].ID)
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Duplicate Order Number", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		dbError := errors.New("duplicate key value violates unique constraint")
		mock.ExpectQuery(`(?s)INSERT INTO orders `).WillReturnError(dbError)
		mock.ExpectRollback()

		// Act
		err = repo.CreateOrderTx(ctx, tx, &models.Order{OrderNumber: "MB-20260315-A1B2C3", UserID: userID})

		// Assert
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, tx.Rollback())
	})
}

func TestOrderRepositoryGetOrderByNumber(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewOrderRepo(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		now := time.Now()
		mock.ExpectQuery(`(?s)SELECT .+ FROM orders\s+WHERE order_number = \$1`).
			WithArgs("MB-20260315-A1B2C3").
			WillReturnRows(orderRow(1001, "MB-20260315-A1B2C3", userID, "pending", "pending"))
		mock.ExpectQuery(`(?s)SELECT .+ FROM order_items\s+WHERE order_id = \$1`).
			WithArgs(int64(1001)).
			WillReturnRows(emptyItemRows().
				AddRow(1, 1001, 10, "Teak Dining Table", "TBL-TEAK-01", 1, int64(4_000_000), int64(4_000_000), now))

		// Act
		order, err := repo.GetOrderByNumber(ctx, "MB-20260315-A1B2C3")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
		assert.Equal(t, "Dewi Lestari", order.Shipping.RecipientName)
		require.Len(t, order.Items, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`(?s)SELECT .+ FROM orders\s+WHERE order_number = \$1`).
			WithArgs("MB-20260315-FFFFFF").
			WillReturnError(sql.ErrNoRows)

		// Act
		order, err := repo.GetOrderByNumber(ctx, "MB-20260315-FFFFFF")

		// Assert
		assert.Nil(t, order)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestOrderRepositoryStatusUpdates(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	t.Run("UpdateStatusTx Success", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`(?s)UPDATE orders\s+SET status = \$2`).
			WithArgs(int64(1001), models.OrderStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act / Assert
		assert.NoError(t, repo.UpdateStatusTx(ctx, tx, 1001, models.OrderStatusConfirmed))
		require.NoError(t, tx.Commit())
	})

	t.Run("MarkShippedTx Records Tracking Number", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		tracking := "JNE123456789"
		mock.ExpectExec(`(?s)UPDATE orders\s+SET status = \$2, tracking_number = COALESCE\(\$3, tracking_number\)`).
			WithArgs(int64(1001), models.OrderStatusShipped, &tracking).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act / Assert
		assert.NoError(t, repo.MarkShippedTx(ctx, tx, 1001, &tracking))
		require.NoError(t, tx.Commit())
	})

	t.Run("MarkDeliveredTx Success", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`(?s)UPDATE orders\s+SET status = \$2, delivered_at = NOW\(\)`).
			WithArgs(int64(1001), models.OrderStatusDelivered).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act / Assert
		assert.NoError(t, repo.MarkDeliveredTx(ctx, tx, 1001))
		require.NoError(t, tx.Commit())
	})

	t.Run("UpdateStatusTx Missing Order", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`(?s)UPDATE orders\s+SET status = \$2`).
			WithArgs(int64(9999), models.OrderStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		// Act / Assert
		assert.ErrorIs(t, repo.UpdateStatusTx(ctx, tx, 9999, models.OrderStatusConfirmed), sql.ErrNoRows)
		require.NoError(t, tx.Rollback())
	})
}

func TestOrderRepositoryApplyPaymentTx(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	t.Run("Applied On Pending Payment", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`(?s)UPDATE orders\s+SET payment_status = \$2, status = \$3,.+WHERE id = \$1 AND payment_status = 'pending'`).
			WithArgs(int64(1001), models.PaymentStatusPaid, models.OrderStatusProcessing, true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		applied, err := repo.ApplyPaymentTx(ctx, tx, 1001, models.PaymentStatusPaid, models.OrderStatusProcessing, true)

		// Assert
		require.NoError(t, err)
		assert.True(t, applied)
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Replay Matches Zero Rows", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`(?s)UPDATE orders\s+SET payment_status = \$2, status = \$3,.+WHERE id = \$1 AND payment_status = 'pending'`).
			WithArgs(int64(1001), models.PaymentStatusPaid, models.OrderStatusProcessing, true).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		// Act
		applied, err := repo.ApplyPaymentTx(ctx, tx, 1001, models.PaymentStatusPaid, models.OrderStatusProcessing, true)

		// Assert
		require.NoError(t, err)
		assert.False(t, applied)
		require.NoError(t, tx.Rollback())
	})

	t.Run("Order Past Pending Lane Matches Zero Rows", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		// a cancelled order fails the status guard even though its
		// payment_status is still pending
		mock.ExpectExec(`(?s)UPDATE orders\s+SET payment_status = \$2, status = \$3,.+WHERE id = \$1 AND payment_status = 'pending'\s+AND status IN \('pending', 'confirmed'\)`).
			WithArgs(int64(1001), models.PaymentStatusPaid, models.OrderStatusProcessing, true).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		// Act
		applied, err := repo.ApplyPaymentTx(ctx, tx, 1001, models.PaymentStatusPaid, models.OrderStatusProcessing, true)

		// Assert
		require.NoError(t, err)
		assert.False(t, applied)
		require.NoError(t, tx.Rollback())
	})
}

func TestOrderRepositoryCancelOrderTx(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`(?s)UPDATE orders\s+SET status = \$2, cancel_reason = \$3, cancelled_at = NOW\(\)`).
			WithArgs(int64(1001), models.OrderStatusCancelled, "changed my mind").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act / Assert
		require.NoError(t, repo.CancelOrderTx(ctx, tx, 1001, "changed my mind"))
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepositoryListOrdersByUser(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewOrderRepo(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`(?s)SELECT .+ FROM orders\s+WHERE user_id = \$1\s+ORDER BY created_at DESC`).
			WithArgs(userID, 10, 0).
			WillReturnRows(orderRow(1001, "MB-20260315-A1B2C3", userID, "delivered", "paid"))
		mock.ExpectQuery(`(?s)SELECT .+ FROM order_items\s+WHERE order_id = \$1`).
			WithArgs(int64(1001)).
			WillReturnRows(emptyItemRows())

		// Act
		orders, total, err := repo.ListOrdersByUser(ctx, userID, 1, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, orders, 1)
		assert.Equal(t, models.OrderStatusDelivered, orders[0].Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
