package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusExpired  PaymentStatus = "expired"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// orderStatusRank orders the forward-only happy path. Terminal states carry
// no rank and are never reachable through a plain forward transition.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    1,
	OrderStatusConfirmed:  2,
	OrderStatusProcessing: 3,
	OrderStatusShipped:    4,
	OrderStatusDelivered:  5,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)

	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return status, nil
	}

	return "", fmt.Errorf("unknown order status %q", s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)

	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusExpired, PaymentStatusRefunded:
		return status, nil
	}

	return "", fmt.Errorf("unknown payment status %q", s)
}

// IsCancellable reports whether an order in this status may still move to
// cancelled. Once fulfilment starts the order can only go forward.
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// CanTransitionTo enforces the forward-only happy path. Cancellation is not
// a plain transition; it goes through the cancel path so that stock is
// restored. Refunded is reachable from cancelled only.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return s.IsCancellable()
	}

	if target == OrderStatusRefunded {
		return s == OrderStatusCancelled
	}

	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}

	to, ok := orderStatusRank[target]
	if !ok {
		return false
	}

	return to > from
}

// ShippingInfo is the contact/destination snapshot captured verbatim on the
// order at creation time. It is never re-read from the customer's address book.
type ShippingInfo struct {
	RecipientName string `json:"recipient_name" validate:"required,min=2,max=100"`
	Phone         string `json:"phone" validate:"required,min=8,max=20"`
	AddressLine   string `json:"address_line" validate:"required,min=5,max=255"`
	City          string `json:"city" validate:"required,max=100"`
	Province      string `json:"province" validate:"required,max=100"`
	PostalCode    string `json:"postal_code" validate:"required,max=10"`
	DestinationID string `json:"destination_id" validate:"required"`
	Courier       string `json:"courier" validate:"required,max=20"`
	Service       string `json:"service" validate:"required,max=50"`
}

// OrderItem is an immutable snapshot of a cart line at order creation.
type OrderItem struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	ProductSKU  string    `json:"product_sku"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Subtotal    int64     `json:"subtotal"`
	CreatedAt   time.Time `json:"created_at"`
}

type Order struct {
	ID             int64         `json:"id"`
	OrderNumber    string        `json:"order_number"`
	UserID         uuid.UUID     `json:"user_id"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	Subtotal       int64         `json:"subtotal"`
	DiscountAmount int64         `json:"discount_amount"`
	ShippingCost   int64         `json:"shipping_cost"`
	TaxAmount      int64         `json:"tax_amount"`
	Total          int64         `json:"total"`
	Shipping       ShippingInfo  `json:"shipping"`
	TrackingNumber *string       `json:"tracking_number,omitempty"`
	CancelReason   *string       `json:"cancel_reason,omitempty"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
	ShippedAt      *time.Time    `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time    `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
	Items          []OrderItem   `json:"items"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type CreateOrderRequest struct {
	Shipping       ShippingInfo `json:"shipping" validate:"required"`
	ShippingCost   int64        `json:"shipping_cost" validate:"gte=0"`
	DiscountAmount int64        `json:"discount_amount" validate:"gte=0"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

// UpdateOrderStatusRequest is the admin-only status update surface.
type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	PaymentStatus  *string `json:"payment_status,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
	Reason         *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
	// Payment is set when checkout initiated a gateway transaction.
	Payment *CheckoutPayment `json:"payment,omitempty"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
}
