package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rakapradana/mebelio/internal/cache"
	appErrors "github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/models"
	repository "github.com/rakapradana/mebelio/internal/repositories"
)

type ProductService struct {
	productRepo repository.ProductRepository
	cache       cache.Cache
	cacheTTL    time.Duration
}

func NewProductService(productRepo repository.ProductRepository, c cache.Cache, cacheTTL time.Duration) *ProductService {
	return &ProductService{productRepo: productRepo, cache: c, cacheTTL: cacheTTL}
}

// GetProduct returns the catalog row together with the price currently in
// effect. The effective price is computed on read, never cached, so a
// discount window opening or closing is visible immediately.
func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*models.ProductResponse, error) {
	cacheKey := cache.Key(cache.ProductKeyPrefix, fmt.Sprintf("%d", productID))

	var product models.Product

	found, err := s.cache.Get(ctx, cacheKey, &product)
	if err != nil {
		slog.Warn("Product cache lookup failed", slog.String("error", err.Error()))
	}

	if !found {
		fetched, err := s.productRepo.GetProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.NotFoundError("Product not found").WithError(err)
			}

			return nil, appErrors.DatabaseError("Failed to load product").WithError(err)
		}

		product = *fetched

		if err := s.cache.Set(ctx, cacheKey, product, s.cacheTTL); err != nil {
			slog.Warn("Failed to cache product", slog.String("error", err.Error()))
		}
	}

	return &models.ProductResponse{
		Product:        &product,
		EffectivePrice: EffectivePrice(&product, time.Now()),
	}, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, size int) (*models.ListProductsResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	products, total, err := s.productRepo.ListProducts(ctx, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list products").WithError(err)
	}

	now := time.Now()
	responses := make([]models.ProductResponse, 0, len(products))

	for i := range products {
		responses = append(responses, models.ProductResponse{
			Product:        &products[i],
			EffectivePrice: EffectivePrice(&products[i], now),
		})
	}

	return &models.ListProductsResponse{
		Products: responses,
		Total:    total,
		Page:     page,
		Size:     size,
	}, nil
}
