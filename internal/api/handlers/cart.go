package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rakapradana/mebelio/internal/api/middleware"
	"github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/models"
	"github.com/rakapradana/mebelio/internal/utils"
	"github.com/rakapradana/mebelio/internal/utils/response"
)

type CartHandler struct {
	cartService CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// GetCart godoc
//	@Summary		Get the current cart
//	@Description	Returns the caller's cart with line items, item count and subtotal. Works for authenticated users and guests with a session id.
//	@Tags			Carts
//	@Produce		json
//	@Success		200	{object}	models.CartResponse		"Current cart snapshot"
//	@Failure		401	{object}	response.ErrorResponse	"Missing credentials and session id"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/carts [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := middleware.CartOwnerFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Cart owner could not be resolved"))

			return
		}

		cart, err := h.cartService.GetCart(r.Context(), owner)
		if err != nil {
			logger.Error("Failed to load cart", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// AddItem godoc
//	@Summary		Add a product to the cart
//	@Description	Adds the product with the given quantity. Adding a product already in the cart accumulates quantity and keeps the original price snapshot.
//	@Tags			Carts
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Product and quantity"
//	@Success		200		{object}	models.CartResponse		"Updated cart snapshot"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Router			/carts/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := middleware.CartOwnerFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Cart owner could not be resolved"))

			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), owner, &req)
		if err != nil {
			logger.Error("Failed to add item to cart",
				slog.Int64("productId", req.ProductID),
				slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Item added to cart", slog.Int64("productId", req.ProductID), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, cart)
	}
}

// UpdateQuantity godoc
//	@Summary		Update a cart line's quantity
//	@Description	Sets the quantity of an existing line. Quantities below 1 are rejected; removal is a separate operation.
//	@Tags			Carts
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int								true	"Cart item id"
//	@Param			quantity	body		models.UpdateQuantityRequest	true	"New quantity"
//	@Success		200			{object}	models.CartResponse				"Updated cart snapshot"
//	@Failure		400			{object}	response.ErrorResponse			"Validation error"
//	@Failure		403			{object}	response.ErrorResponse			"Line belongs to another cart"
//	@Failure		404			{object}	response.ErrorResponse			"Line not found"
//	@Router			/carts/items/{id} [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := middleware.CartOwnerFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Cart owner could not be resolved"))

			return
		}

		itemID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateQuantity(r.Context(), owner, itemID, &req)
		if err != nil {
			logger.Error("Failed to update cart line", slog.Int64("itemId", itemID), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// SaveForLater godoc
//	@Summary		Toggle a line's saved-for-later flag
//	@Description	Saved lines stay in the cart but are excluded from the subtotal and from checkout.
//	@Tags			Carts
//	@Produce		json
//	@Param			id	path		int						true	"Cart item id"
//	@Success		200	{object}	models.CartResponse		"Updated cart snapshot"
//	@Failure		403	{object}	response.ErrorResponse	"Line belongs to another cart"
//	@Failure		404	{object}	response.ErrorResponse	"Line not found"
//	@Router			/carts/items/{id}/save [patch]
func (h *CartHandler) SaveForLater() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := middleware.CartOwnerFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Cart owner could not be resolved"))

			return
		}

		itemID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		cart, err := h.cartService.ToggleSavedForLater(r.Context(), owner, itemID)
		if err != nil {
			logger.Error("Failed to toggle saved-for-later", slog.Int64("itemId", itemID), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// RemoveItem godoc
//	@Summary		Remove a line from the cart
//	@Tags			Carts
//	@Produce		json
//	@Param			id	path		int						true	"Cart item id"
//	@Success		200	{object}	models.CartResponse		"Updated cart snapshot"
//	@Failure		403	{object}	response.ErrorResponse	"Line belongs to another cart"
//	@Failure		404	{object}	response.ErrorResponse	"Line not found"
//	@Router			/carts/items/{id} [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := middleware.CartOwnerFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Cart owner could not be resolved"))

			return
		}

		itemID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), owner, itemID)
		if err != nil {
			logger.Error("Failed to remove cart line", slog.Int64("itemId", itemID), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// ClearCart godoc
//	@Summary		Empty the cart
//	@Description	Deletes every line, saved-for-later lines included. The cart itself remains.
//	@Tags			Carts
//	@Produce		json
//	@Success		200	{object}	models.CartResponse		"Emptied cart snapshot"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/carts [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := middleware.CartOwnerFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Cart owner could not be resolved"))

			return
		}

		cart, err := h.cartService.Clear(r.Context(), owner)
		if err != nil {
			logger.Error("Failed to clear cart", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Cart cleared")
		response.Success(w, http.StatusOK, cart)
	}
}

// MergeCart godoc
//	@Summary		Merge a guest cart into the user's cart
//	@Description	Folds the guest session's cart lines into the authenticated user's cart and deletes the guest cart. Replaying the merge is a no-op.
//	@Tags			Carts
//	@Accept			json
//	@Produce		json
//	@Param			merge	body		models.MergeCartRequest	true	"Guest session id"
//	@Success		200		{object}	models.CartResponse		"Merged cart snapshot"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Security		BearerAuth
//	@Router			/carts/merge [post]
func (h *CartHandler) MergeCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.MergeCartRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.MergeGuestIntoUser(r.Context(), claims.UserID, req.SessionID)
		if err != nil {
			logger.Error("Failed to merge guest cart", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Guest cart merged")
		response.Success(w, http.StatusOK, cart)
	}
}
