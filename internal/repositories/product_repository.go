package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rakapradana/mebelio/internal/models"
	"github.com/rakapradana/mebelio/internal/utils"
)

// ErrInsufficientStock is returned when a stock decrement would push a
// tracked product below zero and backorders are disabled.
var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepository interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, page, size int) ([]models.Product, int, error)
	ReduceStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error
	RestoreStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, category_id, name, sku, description, price,
		discount_percentage, discount_starts_at, discount_ends_at,
		stock_quantity, track_stock, allow_backorder, weight_grams, status,
		created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{}

	err := row.Scan(&product.ID, &product.CategoryID, &product.Name, &product.SKU,
		&product.Description, &product.Price, &product.DiscountPercentage,
		&product.DiscountStartsAt, &product.DiscountEndsAt, &product.StockQuantity,
		&product.TrackStock, &product.AllowBackorder, &product.WeightGrams,
		&product.Status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

func (r *productRepository) ListProducts(ctx context.Context, page, size int) ([]models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM products WHERE status = 'active'`
	if err := r.DB.QueryRowContext(dbCtx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	var products []models.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ReduceStock decrements a tracked product's stock inside the caller's
// transaction. The conditional WHERE makes two concurrent decrements on
// scarce stock mutually exclusive: the loser matches zero rows and the
// checkout fails instead of overselling. Untracked products are a no-op.
func (r *productRepository) ReduceStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var trackStock bool

	lockQuery := `
		SELECT track_stock
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	if err := tx.QueryRowContext(dbCtx, lockQuery, productID).Scan(&trackStock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}

		return fmt.Errorf("failed to lock product row: %w", err)
	}

	if !trackStock {
		return nil
	}

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1
		  AND (allow_backorder = TRUE OR stock_quantity >= $2)
	`

	result, err := tx.ExecContext(dbCtx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to reduce stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// RestoreStock increments a tracked product's stock. Restoring is always
// safe, so there is no conditional guard.
func (r *productRepository) RestoreStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1
		  AND track_stock = TRUE
	`

	if _, err := tx.ExecContext(dbCtx, query, productID, quantity); err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	return nil
}
