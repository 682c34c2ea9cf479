package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/models"
	repository "github.com/rakapradana/mebelio/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartRow(id int64, userID *uuid.UUID, sessionID *string) *sqlmock.Rows {
	now := time.Now()

	return sqlmock.NewRows([]string{"id", "user_id", "session_id", "created_at", "updated_at"}).
		AddRow(id, userID, sessionID, now, now)
}

func TestCartRepositoryGetOrCreateCart(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewCartRepo(db)
	ctx := context.Background()

	t.Run("User Cart Upserted", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		mock.ExpectQuery(`(?s)INSERT INTO carts \(user_id, .+ON CONFLICT \(user_id\)`).
			WithArgs(userID).
			WillReturnRows(cartRow(42, &userID, nil))

		// Act
		cart, err := repo.GetOrCreateCart(ctx, models.OwnerForUser(userID))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(42), cart.ID)
		require.NotNil(t, cart.UserID)
		assert.Equal(t, userID, *cart.UserID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Guest Cart Upserted", func(t *testing.T) {
		// Arrange
		sessionID := "guest-session-1"
		mock.ExpectQuery(`(?s)INSERT INTO carts \(session_id, .+ON CONFLICT \(session_id\)`).
			WithArgs(sessionID).
			WillReturnRows(cartRow(43, nil, &sessionID))

		// Act
		cart, err := repo.GetOrCreateCart(ctx, models.OwnerForSession(sessionID))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(43), cart.ID)
		assert.Nil(t, cart.UserID)
		require.NotNil(t, cart.SessionID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepositoryGetCartWithItems(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewCartRepo(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		now := time.Now()
		mock.ExpectQuery(`(?s)INSERT INTO carts \(user_id, .+ON CONFLICT \(user_id\)`).
			WithArgs(userID).
			WillReturnRows(cartRow(42, &userID, nil))
		mock.ExpectQuery(`(?s)SELECT ci\.id, .+ FROM cart_items ci\s+JOIN products p`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "cart_id", "product_id", "name", "sku", "quantity",
				"unit_price", "saved_for_later", "created_at", "updated_at",
			}).
				AddRow(1, 42, 10, "Teak Dining Table", "TBL-TEAK-01", 2, int64(4_000_000), false, now, now).
				AddRow(2, 42, 11, "Rattan Lounge Chair", "CHR-RTN-02", 1, int64(1_500_000), true, now, now))

		// Act
		cart, err := repo.GetCartWithItems(ctx, models.OwnerForUser(userID))

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)
		assert.Equal(t, "Teak Dining Table", cart.Items[0].ProductName)
		assert.True(t, cart.Items[1].SavedForLater)
		assert.Equal(t, int64(8_000_000), cart.Subtotal())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepositoryUpsertItem(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewCartRepo(db)
	ctx := context.Background()

	t.Run("New Line Inserted", func(t *testing.T) {
		// Arrange
		now := time.Now()
		mock.ExpectQuery(`(?s)INSERT INTO cart_items .+ON CONFLICT \(cart_id, product_id\) DO UPDATE`).
			WithArgs(int64(42), int64(10), 2, int64(4_000_000)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "cart_id", "product_id", "quantity", "unit_price", "saved_for_later", "created_at", "updated_at",
			}).AddRow(1, 42, 10, 2, int64(4_000_000), false, now, now))

		// Act
		item, err := repo.UpsertItem(ctx, 42, 10, 2, 4_000_000)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, int64(4_000_000), item.UnitPrice)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Existing Line Accumulates Quantity And Keeps Price", func(t *testing.T) {
		// Arrange
		now := time.Now()
		// line already held 1 unit at an older snapshot price
		mock.ExpectQuery(`(?s)INSERT INTO cart_items .+ON CONFLICT \(cart_id, product_id\) DO UPDATE`).
			WithArgs(int64(42), int64(10), 2, int64(4_500_000)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "cart_id", "product_id", "quantity", "unit_price", "saved_for_later", "created_at", "updated_at",
			}).AddRow(1, 42, 10, 3, int64(4_000_000), false, now, now))

		// Act
		item, err := repo.UpsertItem(ctx, 42, 10, 2, 4_500_000)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, int64(4_000_000), item.UnitPrice)
	})
}

func TestCartRepositoryItemMutations(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewCartRepo(db)
	ctx := context.Background()

	t.Run("UpdateItemQuantity Success", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`(?s)UPDATE cart_items\s+SET quantity = \$2`).
			WithArgs(int64(7), 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act / Assert
		assert.NoError(t, repo.UpdateItemQuantity(ctx, 7, 5))
	})

	t.Run("UpdateItemQuantity Missing Line", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`(?s)UPDATE cart_items\s+SET quantity = \$2`).
			WithArgs(int64(99), 5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act / Assert
		assert.ErrorIs(t, repo.UpdateItemQuantity(ctx, 99, 5), sql.ErrNoRows)
	})

	t.Run("SetItemSaved Success", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`(?s)UPDATE cart_items\s+SET saved_for_later = \$2`).
			WithArgs(int64(7), true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act / Assert
		assert.NoError(t, repo.SetItemSaved(ctx, 7, true))
	})

	t.Run("DeleteItem Success", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`DELETE FROM cart_items WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act / Assert
		assert.NoError(t, repo.DeleteItem(ctx, 7))
	})

	t.Run("ClearItems Success", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`DELETE FROM cart_items WHERE cart_id = \$1`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 3))

		// Act / Assert
		assert.NoError(t, repo.ClearItems(ctx, 42))
	})
}

func TestCartRepositoryMerge(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	defer db.Close()

	repo := repository.NewCartRepo(db)
	ctx := context.Background()

	t.Run("FindGuestCart Locks Unclaimed Cart", func(t *testing.T) {
		// Arrange
		sessionID := "guest-session-1"
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectQuery(`(?s)SELECT id, user_id, session_id, .+WHERE session_id = \$1 AND user_id IS NULL\s+FOR UPDATE`).
			WithArgs(sessionID).
			WillReturnRows(cartRow(43, nil, &sessionID))
		mock.ExpectRollback()

		// Act
		cart, err := repo.FindGuestCart(ctx, tx, sessionID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(43), cart.ID)
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MergeGuestItemsTx Accumulates Into User Cart", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`(?s)INSERT INTO cart_items .+SELECT \$1, product_id, .+WHERE cart_id = \$2\s+ON CONFLICT`).
			WithArgs(int64(42), int64(43)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM carts WHERE id = \$1`).
			WithArgs(int64(43)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		require.NoError(t, repo.MergeGuestItemsTx(ctx, tx, 42, 43))
		require.NoError(t, repo.DeleteCartTx(ctx, tx, 43))

		// Assert
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetCheckoutLines Excludes Saved Lines", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectQuery(`(?s)SELECT ci\.id, .+WHERE ci\.cart_id = \$1 AND ci\.saved_for_later = FALSE`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "cart_id", "product_id", "name", "sku", "quantity", "unit_price", "track_stock",
			}).AddRow(1, 42, 10, "Teak Dining Table", "TBL-TEAK-01", 2, int64(4_000_000), true))
		mock.ExpectRollback()

		// Act
		lines, err := repo.GetCheckoutLines(ctx, tx, 42)

		// Assert
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.True(t, lines[0].TrackStock)
		require.NoError(t, tx.Rollback())
	})

	t.Run("DeleteItemsTx Leaves Saved Lines", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()

		tx, err := db.Begin()
		require.NoError(t, err)

		mock.ExpectExec(`DELETE FROM cart_items WHERE cart_id = \$1 AND saved_for_later = FALSE`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act / Assert
		require.NoError(t, repo.DeleteItemsTx(ctx, tx, 42))
		require.NoError(t, tx.Commit())
	})
}
