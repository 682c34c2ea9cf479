package models

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product prices are whole rupiah, no fractional subunits.
type Product struct {
	ID                 int64      `json:"id"`
	CategoryID         int64      `json:"category_id"`
	Name               string     `json:"name"`
	SKU                string     `json:"sku"`
	Description        string     `json:"description"`
	Price              int64      `json:"price"`
	DiscountPercentage *int       `json:"discount_percentage,omitempty"`
	DiscountStartsAt   *time.Time `json:"discount_starts_at,omitempty"`
	DiscountEndsAt     *time.Time `json:"discount_ends_at,omitempty"`
	StockQuantity      int        `json:"stock_quantity"`
	TrackStock         bool       `json:"track_stock"`
	AllowBackorder     bool       `json:"allow_backorder"`
	WeightGrams        int        `json:"weight_grams"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Category           *Category  `json:"category,omitempty"`
}

// ProductResponse is the read model returned to the storefront, with the
// currently effective price resolved next to the base price.
type ProductResponse struct {
	Product        *Product `json:"product"`
	EffectivePrice int64    `json:"effective_price"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}
