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

type ShippingHandler struct {
	shippingService ShippingService
	validator       *validator.Validate
}

func NewShippingHandler(shippingService ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService, validator: validator.New()}
}

// Quote godoc
//	@Summary		Quote shipping rates
//	@Description	Returns courier service options for a destination and parcel weight, sorted by cost. If the rate provider is unreachable an empty option list is returned so checkout can fall back to manual shipping arrangements.
//	@Tags			Shipping
//	@Accept			json
//	@Produce		json
//	@Param			quote	body		models.RateQuoteRequest		true	"Destination and parcel weight"
//	@Success		200		{object}	models.RateQuoteResponse	"Available shipping options"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Router			/shipping/rates [post]
func (h *ShippingHandler) Quote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RateQuoteRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid shipping quote input")

			return
		}

		quote, err := h.shippingService.Quote(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to quote shipping rates",
				slog.String("destinationId", req.DestinationID),
				slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, quote)
	}
}

// SearchDestination godoc
//	@Summary		Search shipping destinations
//	@Description	Looks up destination areas by name so the storefront can resolve a customer's address to a rate provider destination id.
//	@Tags			Shipping
//	@Produce		json
//	@Param			q	query		string								true	"Search phrase"
//	@Success		200	{object}	models.DestinationSearchResponse	"Matching destinations"
//	@Failure		400	{object}	response.ErrorResponse				"Missing search phrase"
//	@Failure		502	{object}	response.ErrorResponse				"Rate provider unavailable"
//	@Router			/shipping/destinations [get]
func (h *ShippingHandler) SearchDestination() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		query := r.URL.Query().Get("q")

		matches, err := h.shippingService.SearchDestination(r.Context(), query)
		if err != nil {
			logger.Error("Failed to search destinations", slog.String("query", query), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, matches)
	}
}
