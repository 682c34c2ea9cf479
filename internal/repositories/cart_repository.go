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

// OwnedCartItem is a cart line joined with its cart's owner columns, so the
// service can check the caller really owns the line before mutating it.
type OwnedCartItem struct {
	models.CartItem
	UserID    *uuid.UUID
	SessionID *string
}

// CheckoutLine is an active cart line joined with the stock-relevant product
// fields the order factory needs.
type CheckoutLine struct {
	models.CartItem
	TrackStock bool
}

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	GetOrCreateCartTx(ctx context.Context, tx *sql.Tx, owner models.CartOwner) (*models.Cart, error)
	GetCartWithItems(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	FindGuestCart(ctx context.Context, tx *sql.Tx, sessionID string) (*models.Cart, error)
	UpsertItem(ctx context.Context, cartID, productID int64, quantity int, unitPrice int64) (*models.CartItem, error)
	GetItem(ctx context.Context, itemID int64) (*OwnedCartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	SetItemSaved(ctx context.Context, itemID int64, saved bool) error
	DeleteItem(ctx context.Context, itemID int64) error
	ClearItems(ctx context.Context, cartID int64) error
	CountItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) (int, error)
	GetCheckoutLines(ctx context.Context, tx *sql.Tx, cartID int64) ([]CheckoutLine, error)
	DeleteItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) error
	MergeGuestItemsTx(ctx context.Context, tx *sql.Tx, userCartID, guestCartID int64) error
	DeleteCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

// Carts are created lazily on first use. The ON CONFLICT arm makes the
// resolve-or-create race-free under concurrent requests for the same owner.
const upsertUserCartSQL = `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, user_id, session_id, created_at, updated_at
	`

const upsertSessionCartSQL = `
		INSERT INTO carts (session_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, user_id, session_id, created_at, updated_at
	`

func scanCart(row *sql.Row) (*models.Cart, error) {
	cart := &models.Cart{}

	err := row.Scan(&cart.ID, &cart.UserID, &cart.SessionID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *cartRepository) GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if owner.IsUser() {
		return scanCart(r.DB.QueryRowContext(dbCtx, upsertUserCartSQL, owner.UserID))
	}

	return scanCart(r.DB.QueryRowContext(dbCtx, upsertSessionCartSQL, owner.SessionID))
}

func (r *cartRepository) GetOrCreateCartTx(ctx context.Context, tx *sql.Tx, owner models.CartOwner) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if owner.IsUser() {
		return scanCart(tx.QueryRowContext(dbCtx, upsertUserCartSQL, owner.UserID))
	}

	return scanCart(tx.QueryRowContext(dbCtx, upsertSessionCartSQL, owner.SessionID))
}

func (r *cartRepository) GetCartWithItems(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	cart, err := r.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, p.sku, ci.quantity,
			ci.unit_price, ci.saved_for_later, ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`

	rows, err := r.DB.QueryContext(dbCtx, query, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	defer rows.Close()

	items := []models.CartItem{}

	for rows.Next() {
		var item models.CartItem

		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.Quantity, &item.UnitPrice, &item.SavedForLater,
			&item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	cart.Items = items

	return cart, nil
}

// FindGuestCart locates an unclaimed guest cart by its session token. The
// row is locked so a replayed merge cannot see it twice.
func (r *cartRepository) FindGuestCart(ctx context.Context, tx *sql.Tx, sessionID string) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, session_id, created_at, updated_at
		FROM carts
		WHERE session_id = $1 AND user_id IS NULL
		FOR UPDATE
	`

	return scanCart(tx.QueryRowContext(dbCtx, query, sessionID))
}

// UpsertItem adds a line or accumulates quantity on the existing line for
// the same product. An existing line keeps its snapshotted unit price; only
// a brand-new line stores the price passed in.
func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID int64, quantity int, unitPrice int64) (*models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, cart_id, product_id, quantity, unit_price, saved_for_later, created_at, updated_at
	`

	item := &models.CartItem{}

	err := r.DB.QueryRowContext(dbCtx, query, cartID, productID, quantity, unitPrice).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.SavedForLater, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return item, nil
}

func (r *cartRepository) GetItem(ctx context.Context, itemID int64) (*OwnedCartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price,
			ci.saved_for_later, ci.created_at, ci.updated_at, c.user_id, c.session_id
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE ci.id = $1
	`

	item := &OwnedCartItem{}

	err := r.DB.QueryRowContext(dbCtx, query, itemID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.SavedForLater, &item.CreatedAt, &item.UpdatedAt,
			&item.UserID, &item.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	return item, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE cart_items
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1
	`

	return execExpectingRow(dbCtx, r.DB, query, itemID, quantity)
}

func (r *cartRepository) SetItemSaved(ctx context.Context, itemID int64, saved bool) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE cart_items
		SET saved_for_later = $2, updated_at = NOW()
		WHERE id = $1
	`

	return execExpectingRow(dbCtx, r.DB, query, itemID, saved)
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `DELETE FROM cart_items WHERE id = $1`

	return execExpectingRow(dbCtx, r.DB, query, itemID)
}

// ClearItems empties the cart. The cart row itself stays for reuse.
func (r *cartRepository) ClearItems(ctx context.Context, cartID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `DELETE FROM cart_items WHERE cart_id = $1`

	if _, err := r.DB.ExecContext(dbCtx, query, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

func (r *cartRepository) CountItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`

	var count int

	if err := tx.QueryRowContext(dbCtx, query, cartID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	return count, nil
}

// GetCheckoutLines loads the active (not saved-for-later) lines together
// with the product snapshot fields the order factory copies.
func (r *cartRepository) GetCheckoutLines(ctx context.Context, tx *sql.Tx, cartID int64) ([]CheckoutLine, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, p.sku, ci.quantity,
			ci.unit_price, p.track_stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1 AND ci.saved_for_later = FALSE
		ORDER BY ci.id
	`

	rows, err := tx.QueryContext(dbCtx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout lines: %w", err)
	}

	defer rows.Close()

	var lines []CheckoutLine

	for rows.Next() {
		var line CheckoutLine

		err := rows.Scan(&line.ID, &line.CartID, &line.ProductID, &line.ProductName,
			&line.ProductSKU, &line.Quantity, &line.UnitPrice, &line.TrackStock)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkout line: %w", err)
		}

		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *cartRepository) DeleteItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `DELETE FROM cart_items WHERE cart_id = $1 AND saved_for_later = FALSE`

	if _, err := tx.ExecContext(dbCtx, query, cartID); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	return nil
}

// MergeGuestItemsTx folds every guest line into the user cart with the same
// exists-then-accumulate rule as UpsertItem: existing user lines only gain
// quantity and keep their own price and saved flag, new lines carry the
// guest line's snapshot over.
func (r *cartRepository) MergeGuestItemsTx(ctx context.Context, tx *sql.Tx, userCartID, guestCartID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, saved_for_later, created_at, updated_at)
		SELECT $1, product_id, quantity, unit_price, saved_for_later, NOW(), NOW()
		FROM cart_items
		WHERE cart_id = $2
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	`

	if _, err := tx.ExecContext(dbCtx, query, userCartID, guestCartID); err != nil {
		return fmt.Errorf("failed to merge guest items: %w", err)
	}

	return nil
}

// DeleteCartTx removes the cart row itself; cart_items cascade.
func (r *cartRepository) DeleteCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `DELETE FROM carts WHERE id = $1`

	if _, err := tx.ExecContext(dbCtx, query, cartID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

func execExpectingRow(ctx context.Context, db interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, query string, args ...any) error {

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec failed: %w", err)
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
