package models

import (
	"time"

	"github.com/google/uuid"
)

// CartOwner identifies who a cart belongs to: an authenticated user or a
// guest session. Exactly one of the two is set for any persisted cart.
type CartOwner struct {
	UserID    uuid.UUID
	SessionID string
}

func OwnerForUser(userID uuid.UUID) CartOwner {
	return CartOwner{UserID: userID}
}

func OwnerForSession(sessionID string) CartOwner {
	return CartOwner{SessionID: sessionID}
}

func (o CartOwner) IsUser() bool {
	return o.UserID != uuid.Nil
}

type Cart struct {
	ID        int64      `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem holds the unit price snapshotted when the line was created.
// Quantity merges never rewrite the price.
type CartItem struct {
	ID            int64     `json:"id"`
	CartID        int64     `json:"cart_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	Quantity      int       `json:"quantity"`
	UnitPrice     int64     `json:"unit_price"`
	SavedForLater bool      `json:"saved_for_later"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (i CartItem) LineSubtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Subtotal sums the active (not saved-for-later) lines.
func (c *Cart) Subtotal() int64 {
	var subtotal int64

	for _, item := range c.Items {
		if item.SavedForLater {
			continue
		}

		subtotal += item.LineSubtotal()
	}

	return subtotal
}

// ActiveItems returns the lines that participate in checkout.
func (c *Cart) ActiveItems() []CartItem {
	items := make([]CartItem, 0, len(c.Items))

	for _, item := range c.Items {
		if !item.SavedForLater {
			items = append(items, item)
		}
	}

	return items
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"   validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type MergeCartRequest struct {
	SessionID string `json:"session_id" validate:"required,min=8,max=128"`
}

// CartResponse is the snapshot every cart boundary operation returns.
type CartResponse struct {
	Cart      *Cart `json:"cart"`
	ItemCount int   `json:"item_count"`
	Subtotal  int64 `json:"subtotal"`
}

func NewCartResponse(cart *Cart) *CartResponse {
	count := 0

	for _, item := range cart.Items {
		if !item.SavedForLater {
			count += item.Quantity
		}
	}

	return &CartResponse{
		Cart:      cart,
		ItemCount: count,
		Subtotal:  cart.Subtotal(),
	}
}
