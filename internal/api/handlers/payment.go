package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rakapradana/mebelio/internal/api/middleware"
	"github.com/rakapradana/mebelio/internal/models"
	"github.com/rakapradana/mebelio/internal/utils"
	"github.com/rakapradana/mebelio/internal/utils/response"
)

type PaymentHandler struct {
	paymentService PaymentService
	validator      *validator.Validate
}

func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, validator: validator.New()}
}

// HandleNotification godoc
//	@Summary		Payment gateway notification webhook
//	@Description	Receives asynchronous transaction status updates from the payment gateway. The notification signature is verified before any state changes; replays of an already settled order are acknowledged without effect.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			notification	body		models.GatewayNotification	true	"Gateway notification payload"
//	@Success		200				{object}	response.APIResponse		"Notification processed"
//	@Failure		400				{object}	response.ErrorResponse		"Malformed payload or unknown transaction status"
//	@Failure		401				{object}	response.ErrorResponse		"Signature verification failed"
//	@Failure		404				{object}	response.ErrorResponse		"Order not found"
//	@Router			/payments/notification [post]
func (h *PaymentHandler) HandleNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var notification models.GatewayNotification
		if !utils.ParseAndValidate(r, w, &notification, h.validator) {
			logger.Warn("Malformed gateway notification")

			return
		}

		if err := h.paymentService.HandleNotification(r.Context(), &notification); err != nil {
			logger.Error("Failed to process gateway notification",
				slog.String("orderNumber", notification.OrderID),
				slog.String("transactionStatus", notification.TransactionStatus),
				slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Gateway notification processed",
			slog.String("orderNumber", notification.OrderID),
			slog.String("transactionStatus", notification.TransactionStatus))
		response.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
