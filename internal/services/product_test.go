package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	appErrors "github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/models"
	service "github.com/rakapradana/mebelio/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testProductTTL = 5 * time.Minute

func TestProductGet(t *testing.T) {
	ctx := context.Background()
	pct := 25
	product := &models.Product{
		ID:                 10,
		Name:               "Rattan Lounge Chair",
		SKU:                "CHR-RTN-02",
		Price:              2_000_000,
		DiscountPercentage: &pct,
	}

	t.Run("Success - Cache Miss Loads And Caches", func(t *testing.T) {
		// Arrange
		mockProductRepo := NewMockProductRepository()
		mockCache := NewMockCache()
		productService := service.NewProductService(mockProductRepo, mockCache, testProductTTL)

		mockCache.On("Get", ctx, "product:10", mock.Anything).Return(false, nil).Once()
		mockProductRepo.On("GetProductByID", ctx, int64(10)).Return(product, nil).Once()
		mockCache.On("Set", ctx, "product:10", mock.Anything, testProductTTL).Return(nil).Once()

		// Act
		response, err := productService.GetProduct(ctx, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, product.Name, response.Product.Name)
		assert.Equal(t, int64(1_500_000), response.EffectivePrice)
		mockProductRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Hit Skips Repository", func(t *testing.T) {
		// Arrange
		mockProductRepo := NewMockProductRepository()
		mockCache := NewMockCache()
		productService := service.NewProductService(mockProductRepo, mockCache, testProductTTL)

		mockCache.On("Get", ctx, "product:10", mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(2).(*models.Product)
				*out = *product
			}).Return(true, nil).Once()

		// Act
		response, err := productService.GetProduct(ctx, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(1_500_000), response.EffectivePrice)
		mockProductRepo.AssertNotCalled(t, "GetProductByID")
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockProductRepo := NewMockProductRepository()
		mockCache := NewMockCache()
		productService := service.NewProductService(mockProductRepo, mockCache, testProductTTL)

		mockCache.On("Get", ctx, "product:99", mock.Anything).Return(false, nil).Once()
		mockProductRepo.On("GetProductByID", ctx, int64(99)).Return(nil, sql.ErrNoRows).Once()

		// Act
		response, err := productService.GetProduct(ctx, 99)

		// Assert
		assert.Nil(t, response)

		var appErr *appErrors.AppError

		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestProductList(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Effective Prices Resolved Per Product", func(t *testing.T) {
		// Arrange
		mockProductRepo := NewMockProductRepository()
		productService := service.NewProductService(mockProductRepo, NewMockCache(), testProductTTL)

		pct := 10
		products := []models.Product{
			{ID: 1, Name: "Oak Bookshelf", Price: 3_000_000, DiscountPercentage: &pct},
			{ID: 2, Name: "Pine Side Table", Price: 900_000},
		}

		mockProductRepo.On("ListProducts", ctx, 1, 20).Return(products, 2, nil).Once()

		// Act
		response, err := productService.ListProducts(ctx, 0, 0)

		// Assert
		require.NoError(t, err)
		require.Len(t, response.Products, 2)
		assert.Equal(t, int64(2_700_000), response.Products[0].EffectivePrice)
		assert.Equal(t, int64(900_000), response.Products[1].EffectivePrice)
		assert.Equal(t, 2, response.Total)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		mockProductRepo := NewMockProductRepository()
		productService := service.NewProductService(mockProductRepo, NewMockCache(), testProductTTL)

		mockProductRepo.On("ListProducts", ctx, 1, 20).Return(nil, 0, errors.New("broken pipe")).Once()

		// Act
		response, err := productService.ListProducts(ctx, 1, 20)

		// Assert
		assert.Nil(t, response)

		var appErr *appErrors.AppError

		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}
