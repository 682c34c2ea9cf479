package service_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rakapradana/mebelio/internal/models"
	repository "github.com/rakapradana/mebelio/internal/repositories"
	"github.com/rakapradana/mebelio/pkg/gateway"
	"github.com/rakapradana/mebelio/pkg/rajaongkir"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{}
}

func (m *MockCartRepository) GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, owner)

	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartRepository) GetOrCreateCartTx(ctx context.Context, tx *sql.Tx, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, tx, owner)

	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartRepository) GetCartWithItems(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, owner)

	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartRepository) FindGuestCart(ctx context.Context, tx *sql.Tx, sessionID string) (*models.Cart, error) {
	args := m.Called(ctx, tx, sessionID)

	cart, _ := args.Get(0).(*models.Cart)

	return cart, args.Error(1)
}

func (m *MockCartRepository) UpsertItem(ctx context.Context, cartID, productID int64, quantity int, unitPrice int64) (*models.CartItem, error) {
	args := m.Called(ctx, cartID, productID, quantity, unitPrice)

	item, _ := args.Get(0).(*models.CartItem)

	return item, args.Error(1)
}

func (m *MockCartRepository) GetItem(ctx context.Context, itemID int64) (*repository.OwnedCartItem, error) {
	args := m.Called(ctx, itemID)

	item, _ := args.Get(0).(*repository.OwnedCartItem)

	return item, args.Error(1)
}

func (m *MockCartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	return m.Called(ctx, itemID, quantity).Error(0)
}

func (m *MockCartRepository) SetItemSaved(ctx context.Context, itemID int64, saved bool) error {
	return m.Called(ctx, itemID, saved).Error(0)
}

func (m *MockCartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockCartRepository) ClearItems(ctx context.Context, cartID int64) error {
	return m.Called(ctx, cartID).Error(0)
}

func (m *MockCartRepository) CountItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) (int, error) {
	args := m.Called(ctx, tx, cartID)

	return args.Int(0), args.Error(1)
}

func (m *MockCartRepository) GetCheckoutLines(ctx context.Context, tx *sql.Tx, cartID int64) ([]repository.CheckoutLine, error) {
	args := m.Called(ctx, tx, cartID)

	lines, _ := args.Get(0).([]repository.CheckoutLine)

	return lines, args.Error(1)
}

func (m *MockCartRepository) DeleteItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	return m.Called(ctx, tx, cartID).Error(0)
}

func (m *MockCartRepository) MergeGuestItemsTx(ctx context.Context, tx *sql.Tx, userCartID, guestCartID int64) error {
	return m.Called(ctx, tx, userCartID, guestCartID).Error(0)
}

func (m *MockCartRepository) DeleteCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	return m.Called(ctx, tx, cartID).Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{}
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)

	product, _ := args.Get(0).(*models.Product)

	return product, args.Error(1)
}

func (m *MockProductRepository) ListProducts(ctx context.Context, page, size int) ([]models.Product, int, error) {
	args := m.Called(ctx, page, size)

	products, _ := args.Get(0).([]models.Product)

	return products, args.Int(1), args.Error(2)
}

func (m *MockProductRepository) ReduceStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	return m.Called(ctx, tx, productID, quantity).Error(0)
}

func (m *MockProductRepository) RestoreStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	return m.Called(ctx, tx, productID, quantity).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{}
}

func (m *MockOrderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

func (m *MockOrderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	args := m.Called(ctx, orderNumber)

	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *MockOrderRepository) GetOrderForUpdateTx(ctx context.Context, tx *sql.Tx, orderNumber string) (*models.Order, error) {
	args := m.Called(ctx, tx, orderNumber)

	order, _ := args.Get(0).(*models.Order)

	return order, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {
	args := m.Called(ctx, userID, page, size)

	orders, _ := args.Get(0).([]models.Order)

	return orders, args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, status *models.OrderStatus, page, size int) ([]models.Order, int, error) {
	args := m.Called(ctx, status, page, size)

	orders, _ := args.Get(0).([]models.Order)

	return orders, args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status models.OrderStatus) error {
	return m.Called(ctx, tx, orderID, status).Error(0)
}

func (m *MockOrderRepository) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status models.PaymentStatus) error {
	return m.Called(ctx, tx, orderID, status).Error(0)
}

func (m *MockOrderRepository) MarkShippedTx(ctx context.Context, tx *sql.Tx, orderID int64, trackingNumber *string) error {
	return m.Called(ctx, tx, orderID, trackingNumber).Error(0)
}

func (m *MockOrderRepository) MarkDeliveredTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	return m.Called(ctx, tx, orderID).Error(0)
}

func (m *MockOrderRepository) CancelOrderTx(ctx context.Context, tx *sql.Tx, orderID int64, reason string) error {
	return m.Called(ctx, tx, orderID, reason).Error(0)
}

func (m *MockOrderRepository) ApplyPaymentTx(ctx context.Context, tx *sql.Tx, orderID int64, paymentStatus models.PaymentStatus, orderStatus models.OrderStatus, markPaid bool) (bool, error) {
	args := m.Called(ctx, tx, orderID, paymentStatus, orderStatus, markPaid)

	return args.Bool(0), args.Error(1)
}

type MockGatewayClient struct {
	mock.Mock
}

func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{}
}

func (m *MockGatewayClient) CreateTransaction(orderNumber string, grossAmount int64, customerName, customerEmail string) (*gateway.SnapSession, error) {
	args := m.Called(orderNumber, grossAmount, customerName, customerEmail)

	session, _ := args.Get(0).(*gateway.SnapSession)

	return session, args.Error(1)
}

func (m *MockGatewayClient) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	return m.Called(orderID, statusCode, grossAmount, signatureKey).Bool(0)
}

type MockRateClient struct {
	mock.Mock
}

func NewMockRateClient() *MockRateClient {
	return &MockRateClient{}
}

func (m *MockRateClient) Cost(ctx context.Context, originID, destinationID string, weightGrams int, couriers string) ([]rajaongkir.Rate, error) {
	args := m.Called(ctx, originID, destinationID, weightGrams, couriers)

	rates, _ := args.Get(0).([]rajaongkir.Rate)

	return rates, args.Error(1)
}

func (m *MockRateClient) SearchDestination(ctx context.Context, query string) ([]rajaongkir.Destination, error) {
	args := m.Called(ctx, query)

	destinations, _ := args.Get(0).([]rajaongkir.Destination)

	return destinations, args.Error(1)
}

// MockCache lets tests hand back a cached value by running a setter against
// the caller's out parameter.
type MockCache struct {
	mock.Mock
}

func NewMockCache() *MockCache {
	return &MockCache{}
}

func (m *MockCache) Get(ctx context.Context, key string, value interface{}) (bool, error) {
	args := m.Called(ctx, key, value)

	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}
