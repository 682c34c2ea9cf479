package models

// ShippingOption is one courier service quoted for a destination and weight.
type ShippingOption struct {
	CourierCode  string `json:"courier_code"`
	CourierName  string `json:"courier_name"`
	Service      string `json:"service"`
	Description  string `json:"description"`
	Cost         int64  `json:"cost"`
	EstimatedETA string `json:"estimated_eta"`
}

// LocationMatch resolves free-text destination input into the structured id
// the rate API requires.
type LocationMatch struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Subdistrict string `json:"subdistrict"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code"`
}

type RateQuoteRequest struct {
	DestinationID string `json:"destination_id" validate:"required"`
	WeightGrams   int    `json:"weight_grams" validate:"required,min=1,max=500000"`
	Couriers      string `json:"couriers,omitempty" validate:"omitempty,max=100"`
}

type RateQuoteResponse struct {
	Options []ShippingOption `json:"options"`
}

type DestinationSearchResponse struct {
	Matches []LocationMatch `json:"matches"`
}
