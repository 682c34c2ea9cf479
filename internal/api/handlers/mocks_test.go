package handlers_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func NewMockCartService() *MockCartService {
	return &MockCartService{}
}

func (m *MockCartService) GetCart(ctx context.Context, owner models.CartOwner) (*models.CartResponse, error) {
	args := m.Called(ctx, owner)
	cart, _ := args.Get(0).(*models.CartResponse)

	return cart, args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, owner models.CartOwner, req *models.AddItemRequest) (*models.CartResponse, error) {
	args := m.Called(ctx, owner, req)
	cart, _ := args.Get(0).(*models.CartResponse)

	return cart, args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, owner models.CartOwner, itemID int64, req *models.UpdateQuantityRequest) (*models.CartResponse, error) {
	args := m.Called(ctx, owner, itemID, req)
	cart, _ := args.Get(0).(*models.CartResponse)

	return cart, args.Error(1)
}

func (m *MockCartService) ToggleSavedForLater(ctx context.Context, owner models.CartOwner, itemID int64) (*models.CartResponse, error) {
	args := m.Called(ctx, owner, itemID)
	cart, _ := args.Get(0).(*models.CartResponse)

	return cart, args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID int64) (*models.CartResponse, error) {
	args := m.Called(ctx, owner, itemID)
	cart, _ := args.Get(0).(*models.CartResponse)

	return cart, args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, owner models.CartOwner) (*models.CartResponse, error) {
	args := m.Called(ctx, owner)
	cart, _ := args.Get(0).(*models.CartResponse)

	return cart, args.Error(1)
}

func (m *MockCartService) MergeGuestIntoUser(ctx context.Context, userID uuid.UUID, sessionID string) (*models.CartResponse, error) {
	args := m.Called(ctx, userID, sessionID)
	cart, _ := args.Get(0).(*models.CartResponse)

	return cart, args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func NewMockOrderService() *MockOrderService {
	return &MockOrderService{}
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, email string, req *models.CreateOrderRequest) (*models.OrderResponse, error) {
	args := m.Called(ctx, userID, email, req)
	order, _ := args.Get(0).(*models.OrderResponse)

	return order, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error) {
	args := m.Called(ctx, userID, orderNumber)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) (*models.OrderHistoryResponse, error) {
	args := m.Called(ctx, userID, page, size)
	orders, _ := args.Get(0).(*models.OrderHistoryResponse)

	return orders, args.Error(1)
}

func (m *MockOrderService) ListAllOrders(ctx context.Context, statusFilter string, page, size int) (*models.OrderHistoryResponse, error) {
	args := m.Called(ctx, statusFilter, page, size)
	orders, _ := args.Get(0).(*models.OrderHistoryResponse)

	return orders, args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, userID uuid.UUID, orderNumber, reason string) (*models.Order, error) {
	args := m.Called(ctx, userID, orderNumber, reason)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderNumber string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	args := m.Called(ctx, orderNumber, req)
	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func NewMockPaymentService() *MockPaymentService {
	return &MockPaymentService{}
}

func (m *MockPaymentService) HandleNotification(ctx context.Context, notification *models.GatewayNotification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

type MockShippingService struct {
	mock.Mock
}

func NewMockShippingService() *MockShippingService {
	return &MockShippingService{}
}

func (m *MockShippingService) Quote(ctx context.Context, req *models.RateQuoteRequest) (*models.RateQuoteResponse, error) {
	args := m.Called(ctx, req)
	quote, _ := args.Get(0).(*models.RateQuoteResponse)

	return quote, args.Error(1)
}

func (m *MockShippingService) SearchDestination(ctx context.Context, query string) (*models.DestinationSearchResponse, error) {
	args := m.Called(ctx, query)
	matches, _ := args.Get(0).(*models.DestinationSearchResponse)

	return matches, args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func NewMockProductService() *MockProductService {
	return &MockProductService{}
}

func (m *MockProductService) GetProduct(ctx context.Context, productID int64) (*models.ProductResponse, error) {
	args := m.Called(ctx, productID)
	product, _ := args.Get(0).(*models.ProductResponse)

	return product, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, page, size int) (*models.ListProductsResponse, error) {
	args := m.Called(ctx, page, size)
	products, _ := args.Get(0).(*models.ListProductsResponse)

	return products, args.Error(1)
}
