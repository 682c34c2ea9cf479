package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rakapradana/mebelio/internal/api/middleware"
	"github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/models"
	"github.com/rakapradana/mebelio/internal/utils"
	"github.com/rakapradana/mebelio/internal/utils/response"
)

type OrderHandler struct {
	orderService OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

func paging(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))

	return page, size
}

// CreateOrder godoc
//	@Summary		Create an order from the current cart
//	@Description	Converts the user's active cart lines into an order, debits stock, empties the cart and initiates a gateway payment session. Requires authentication.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.CreateOrderRequest	true	"Shipping details and amounts"
//	@Success		201		{object}	models.OrderResponse		"Created order with optional payment session"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error or empty cart"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		409		{object}	response.ErrorResponse		"Insufficient stock"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized order creation attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create order input")

			return
		}

		order, err := h.orderService.CreateOrder(r.Context(), claims.UserID, claims.Email, &req)
		if err != nil {
			logger.Error("Failed to create order", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order created", slog.String("orderNumber", order.Order.OrderNumber))
		response.Success(w, http.StatusCreated, order)
	}
}

// GetOrder godoc
//	@Summary		Get an order
//	@Description	Retrieves one of the authenticated user's orders by order number.
//	@Tags			Orders
//	@Produce		json
//	@Param			number	path		string					true	"Order number"
//	@Success		200		{object}	models.Order			"Order with line items"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse	"Order belongs to another customer"
//	@Failure		404		{object}	response.ErrorResponse	"Order not found"
//	@Security		BearerAuth
//	@Router			/orders/{number} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		orderNumber := r.PathValue("number")
		if orderNumber == "" {
			response.Error(w, errors.BadRequestError("Order number is required"))

			return
		}

		order, err := h.orderService.GetOrder(r.Context(), claims.UserID, orderNumber)
		if err != nil {
			logger.Error("Failed to get order", slog.String("orderNumber", orderNumber), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListOrders godoc
//	@Summary		List the user's orders
//	@Tags			Orders
//	@Produce		json
//	@Param			page	query		int								false	"Page number"
//	@Param			size	query		int								false	"Page size"
//	@Success		200		{object}	models.OrderHistoryResponse		"Paginated order history"
//	@Failure		401		{object}	response.ErrorResponse			"Authentication required"
//	@Security		BearerAuth
//	@Router			/orders [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		page, size := paging(r)

		orders, err := h.orderService.ListOrders(r.Context(), claims.UserID, page, size)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

// CancelOrder godoc
//	@Summary		Cancel an order
//	@Description	Cancels one of the user's orders while it is still pending or confirmed. Tracked stock is credited back.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			number	path		string						true	"Order number"
//	@Param			cancel	body		models.CancelOrderRequest	true	"Cancellation reason"
//	@Success		200		{object}	models.Order				"Cancelled order"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse		"Order belongs to another customer"
//	@Failure		404		{object}	response.ErrorResponse		"Order not found"
//	@Failure		409		{object}	response.ErrorResponse		"Order can no longer be cancelled"
//	@Security		BearerAuth
//	@Router			/orders/{number}/cancel [post]
func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		orderNumber := r.PathValue("number")
		if orderNumber == "" {
			response.Error(w, errors.BadRequestError("Order number is required"))

			return
		}

		var req models.CancelOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.CancelOrder(r.Context(), claims.UserID, orderNumber, req.Reason)
		if err != nil {
			logger.Error("Failed to cancel order", slog.String("orderNumber", orderNumber), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order cancelled", slog.String("orderNumber", orderNumber))
		response.Success(w, http.StatusOK, order)
	}
}

// ListAllOrders godoc
//	@Summary		List all orders (admin)
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query		string							false	"Filter by order status"
//	@Param			page	query		int								false	"Page number"
//	@Param			size	query		int								false	"Page size"
//	@Success		200		{object}	models.OrderHistoryResponse		"Paginated orders across customers"
//	@Failure		403		{object}	response.ErrorResponse			"Admin access required"
//	@Security		BearerAuth
//	@Router			/admin/orders [get]
func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, size := paging(r)

		orders, err := h.orderService.ListAllOrders(r.Context(), r.URL.Query().Get("status"), page, size)
		if err != nil {
			logger.Error("Failed to list all orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

// UpdateOrderStatus godoc
//	@Summary		Update an order's status (admin)
//	@Description	Moves the order forward through its lifecycle. Cancellation routes through the cancel path so stock is restored; backward transitions are rejected.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			number	path		string							true	"Order number"
//	@Param			update	body		models.UpdateOrderStatusRequest	true	"Target status and optionals"
//	@Success		200		{object}	models.Order					"Updated order"
//	@Failure		400		{object}	response.ErrorResponse			"Unknown status"
//	@Failure		403		{object}	response.ErrorResponse			"Admin access required"
//	@Failure		404		{object}	response.ErrorResponse			"Order not found"
//	@Failure		409		{object}	response.ErrorResponse			"Transition not allowed"
//	@Security		BearerAuth
//	@Router			/admin/orders/{number}/status [patch]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		orderNumber := r.PathValue("number")
		if orderNumber == "" {
			response.Error(w, errors.BadRequestError("Order number is required"))

			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), orderNumber, &req)
		if err != nil {
			logger.Error("Failed to update order status",
				slog.String("orderNumber", orderNumber),
				slog.String("target", req.Status),
				slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order status updated",
			slog.String("orderNumber", orderNumber),
			slog.String("status", string(order.Status)))
		response.Success(w, http.StatusOK, order)
	}
}
