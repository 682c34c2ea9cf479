package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/models"
	service "github.com/rakapradana/mebelio/internal/services"
)

// Handlers depend on these interfaces instead of the concrete services so
// tests can substitute mocks.

type CartService interface {
	GetCart(ctx context.Context, owner models.CartOwner) (*models.CartResponse, error)
	AddItem(ctx context.Context, owner models.CartOwner, req *models.AddItemRequest) (*models.CartResponse, error)
	UpdateQuantity(ctx context.Context, owner models.CartOwner, itemID int64, req *models.UpdateQuantityRequest) (*models.CartResponse, error)
	ToggleSavedForLater(ctx context.Context, owner models.CartOwner, itemID int64) (*models.CartResponse, error)
	RemoveItem(ctx context.Context, owner models.CartOwner, itemID int64) (*models.CartResponse, error)
	Clear(ctx context.Context, owner models.CartOwner) (*models.CartResponse, error)
	MergeGuestIntoUser(ctx context.Context, userID uuid.UUID, sessionID string) (*models.CartResponse, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, email string, req *models.CreateOrderRequest) (*models.OrderResponse, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, size int) (*models.OrderHistoryResponse, error)
	ListAllOrders(ctx context.Context, statusFilter string, page, size int) (*models.OrderHistoryResponse, error)
	CancelOrder(ctx context.Context, userID uuid.UUID, orderNumber, reason string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderNumber string, req *models.UpdateOrderStatusRequest) (*models.Order, error)
}

type PaymentService interface {
	HandleNotification(ctx context.Context, notification *models.GatewayNotification) error
}

type ShippingService interface {
	Quote(ctx context.Context, req *models.RateQuoteRequest) (*models.RateQuoteResponse, error)
	SearchDestination(ctx context.Context, query string) (*models.DestinationSearchResponse, error)
}

type ProductService interface {
	GetProduct(ctx context.Context, productID int64) (*models.ProductResponse, error)
	ListProducts(ctx context.Context, page, size int) (*models.ListProductsResponse, error)
}

var (
	_ CartService     = (*service.CartService)(nil)
	_ OrderService    = (*service.OrderService)(nil)
	_ PaymentService  = (*service.PaymentService)(nil)
	_ ShippingService = (*service.ShippingService)(nil)
	_ ProductService  = (*service.ProductService)(nil)
)
