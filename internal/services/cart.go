package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/models"
	repository "github.com/rakapradana/mebelio/internal/repositories"
)

type CartService struct {
	db          *sql.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(db *sql.DB, cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{db: db, cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) GetCart(ctx context.Context, owner models.CartOwner) (*models.CartResponse, error) {
	cart, err := s.cartRepo.GetCartWithItems(ctx, owner)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	return models.NewCartResponse(cart), nil
}

// AddItem resolves or lazily creates the owner's cart and adds the product.
// An existing line for the product only accumulates quantity and keeps its
// snapshotted price; a new line snapshots the currently effective price.
func (s *CartService) AddItem(ctx context.Context, owner models.CartOwner, req *models.AddItemRequest) (*models.CartResponse, error) {
	if req.Quantity < 1 {
		return nil, appErrors.ValidationError("Quantity must be at least 1")
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load product").WithError(err)
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to resolve cart").WithError(err)
	}

	unitPrice := EffectivePrice(product, time.Now())

	if _, err := s.cartRepo.UpsertItem(ctx, cart.ID, product.ID, req.Quantity, unitPrice); err != nil {
		return nil, appErrors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	return s.GetCart(ctx, owner)
}

// UpdateQuantity sets the line quantity directly. Removal is a separate
// operation; an update below 1 is rejected, never treated as a delete.
func (s *CartService) UpdateQuantity(ctx context.Context, owner models.CartOwner, itemID int64, req *models.UpdateQuantityRequest) (*models.CartResponse, error) {
	if req.Quantity < 1 {
		return nil, appErrors.ValidationError("Quantity must be at least 1")
	}

	if err := s.authorizeItem(ctx, owner, itemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, req.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Cart item not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update quantity").WithError(err)
	}

	return s.GetCart(ctx, owner)
}

func (s *CartService) ToggleSavedForLater(ctx context.Context, owner models.CartOwner, itemID int64) (*models.CartResponse, error) {
	item, err := s.getAuthorizedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.SetItemSaved(ctx, itemID, !item.SavedForLater); err != nil {
		return nil, appErrors.DatabaseError("Failed to update item").WithError(err)
	}

	return s.GetCart(ctx, owner)
}

func (s *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID int64) (*models.CartResponse, error) {
	if err := s.authorizeItem(ctx, owner, itemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Cart item not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to remove item").WithError(err)
	}

	return s.GetCart(ctx, owner)
}

func (s *CartService) Clear(ctx context.Context, owner models.CartOwner) (*models.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to resolve cart").WithError(err)
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return nil, appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return s.GetCart(ctx, owner)
}

// MergeGuestIntoUser folds the guest session's cart into the user's cart and
// deletes the guest cart row. Replays are no-ops: once the guest cart is
// gone, there is nothing left to merge.
func (s *CartService) MergeGuestIntoUser(ctx context.Context, userID uuid.UUID, sessionID string) (*models.CartResponse, error) {
	owner := models.OwnerForUser(userID)

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		userCart, err := s.cartRepo.GetOrCreateCartTx(ctx, tx, owner)
		if err != nil {
			return appErrors.DatabaseError("Failed to resolve user cart").WithError(err)
		}

		guestCart, err := s.cartRepo.FindGuestCart(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// no guest cart, nothing to merge
				return nil
			}

			return appErrors.DatabaseError("Failed to find guest cart").WithError(err)
		}

		count, err := s.cartRepo.CountItemsTx(ctx, tx, guestCart.ID)
		if err != nil {
			return appErrors.DatabaseError("Failed to inspect guest cart").WithError(err)
		}

		if count == 0 {
			return nil
		}

		if err := s.cartRepo.MergeGuestItemsTx(ctx, tx, userCart.ID, guestCart.ID); err != nil {
			return appErrors.DatabaseError("Failed to merge carts").WithError(err)
		}

		if err := s.cartRepo.DeleteCartTx(ctx, tx, guestCart.ID); err != nil {
			return appErrors.DatabaseError("Failed to delete guest cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); ok {
			return nil, err
		}

		return nil, appErrors.DatabaseError("Cart merge failed").WithError(err)
	}

	return s.GetCart(ctx, owner)
}

func (s *CartService) authorizeItem(ctx context.Context, owner models.CartOwner, itemID int64) error {
	_, err := s.getAuthorizedItem(ctx, owner, itemID)

	return err
}

// getAuthorizedItem loads the line and verifies it belongs to the caller's
// cart, so one customer can never mutate another's line by guessing ids.
func (s *CartService) getAuthorizedItem(ctx context.Context, owner models.CartOwner, itemID int64) (*repository.OwnedCartItem, error) {
	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Cart item not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load cart item").WithError(err)
	}

	if owner.IsUser() {
		if item.UserID == nil || *item.UserID != owner.UserID {
			return nil, appErrors.ForbiddenError("Cart item belongs to another cart")
		}

		return item, nil
	}

	if item.SessionID == nil || *item.SessionID != owner.SessionID {
		return nil, appErrors.ForbiddenError("Cart item belongs to another cart")
	}

	return item, nil
}
