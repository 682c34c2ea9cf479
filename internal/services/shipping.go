package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rakapradana/mebelio/internal/cache"
	appErrors "github.com/rakapradana/mebelio/internal/errors"
	"github.com/rakapradana/mebelio/internal/models"
	"github.com/rakapradana/mebelio/pkg/rajaongkir"
)

type ShippingService struct {
	client          rajaongkir.Client
	cache           cache.Cache
	originID        string
	defaultCouriers string
	rateTTL         time.Duration
}

func NewShippingService(client rajaongkir.Client, c cache.Cache, originID, defaultCouriers string, rateTTL time.Duration) *ShippingService {
	return &ShippingService{
		client:          client,
		cache:           c,
		originID:        originID,
		defaultCouriers: defaultCouriers,
		rateTTL:         rateTTL,
	}
}

// Quote fetches courier rate options for a destination and parcel weight.
// An unreachable rate API degrades to an empty option list instead of
// failing checkout, so the storefront can fall back to manual follow-up.
func (s *ShippingService) Quote(ctx context.Context, req *models.RateQuoteRequest) (*models.RateQuoteResponse, error) {
	couriers := req.Couriers
	if couriers == "" {
		couriers = s.defaultCouriers
	}

	cacheKey := cache.Key(cache.ShippingRatePrefix,
		fmt.Sprintf("%s:%d:%s", req.DestinationID, req.WeightGrams, couriers))

	var cached models.RateQuoteResponse

	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		slog.Warn("Shipping rate cache lookup failed", slog.String("error", err.Error()))
	} else if found {
		return &cached, nil
	}

	rates, err := s.client.Cost(ctx, s.originID, req.DestinationID, req.WeightGrams, couriers)
	if err != nil {
		slog.Error("Rate API unavailable, returning no options",
			slog.String("destinationID", req.DestinationID),
			slog.String("error", err.Error()))

		return &models.RateQuoteResponse{Options: []models.ShippingOption{}}, nil
	}

	options := make([]models.ShippingOption, 0, len(rates))

	for _, rate := range rates {
		options = append(options, models.ShippingOption{
			CourierCode:  rate.CourierCode,
			CourierName:  rate.CourierName,
			Service:      rate.Service,
			Description:  rate.Description,
			Cost:         rate.Cost,
			EstimatedETA: rate.ETA,
		})
	}

	sort.Slice(options, func(i, j int) bool {
		if options[i].Cost != options[j].Cost {
			return options[i].Cost < options[j].Cost
		}

		if options[i].CourierName != options[j].CourierName {
			return options[i].CourierName < options[j].CourierName
		}

		return options[i].Service < options[j].Service
	})

	response := &models.RateQuoteResponse{Options: options}

	if err := s.cache.Set(ctx, cacheKey, response, s.rateTTL); err != nil {
		slog.Warn("Failed to cache shipping rates", slog.String("error", err.Error()))
	}

	return response, nil
}

// SearchDestination resolves free-text location input into the structured
// destination ids the rate API requires.
func (s *ShippingService) SearchDestination(ctx context.Context, query string) (*models.DestinationSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErrors.ValidationError("Search query is required")
	}

	cacheKey := cache.Key(cache.DestinationKeyPrefix, strings.ToLower(query))

	var cached models.DestinationSearchResponse

	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		slog.Warn("Destination cache lookup failed", slog.String("error", err.Error()))
	} else if found {
		return &cached, nil
	}

	destinations, err := s.client.SearchDestination(ctx, query)
	if err != nil {
		return nil, appErrors.UpstreamError("Destination search is unavailable").WithError(err)
	}

	matches := make([]models.LocationMatch, 0, len(destinations))

	for _, dest := range destinations {
		matches = append(matches, models.LocationMatch{
			ID:          strconv.FormatInt(dest.ID, 10),
			Label:       dest.Label,
			Subdistrict: dest.Subdistrict,
			City:        dest.City,
			Province:    dest.Province,
			PostalCode:  dest.PostalCode,
		})
	}

	response := &models.DestinationSearchResponse{Matches: matches}

	if err := s.cache.Set(ctx, cacheKey, response, s.rateTTL); err != nil {
		slog.Warn("Failed to cache destination matches", slog.String("error", err.Error()))
	}

	return response, nil
}
