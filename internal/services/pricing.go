package service

import (
	"time"

	"github.com/rakapradana/mebelio/internal/models"
)

// EffectivePrice resolves the price a product sells for at the given moment.
// A discount applies only when the percentage is set and now falls within
// the optional [starts_at, ends_at] window, bounds inclusive. Prices are
// whole currency units; the discounted amount rounds half up.
func EffectivePrice(product *models.Product, now time.Time) int64 {
	if product.DiscountPercentage == nil {
		return product.Price
	}

	pct := *product.DiscountPercentage
	if pct <= 0 || pct > 100 {
		return product.Price
	}

	if product.DiscountStartsAt != nil && now.Before(*product.DiscountStartsAt) {
		return product.Price
	}

	if product.DiscountEndsAt != nil && now.After(*product.DiscountEndsAt) {
		return product.Price
	}

	return (product.Price*int64(100-pct) + 50) / 100
}
