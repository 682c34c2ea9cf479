package rajaongkir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Rate is one courier service option quoted by the rate API.
type Rate struct {
	CourierCode string `json:"code"`
	CourierName string `json:"name"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	ETA         string `json:"etd"`
}

// Destination is a structured location resolved from free-text search.
type Destination struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	Subdistrict string `json:"subdistrict_name"`
	City        string `json:"city_name"`
	Province    string `json:"province_name"`
	PostalCode  string `json:"zip_code"`
}

type Client interface {
	Cost(ctx context.Context, originID, destinationID string, weightGrams int, couriers string) ([]Rate, error)
	SearchDestination(ctx context.Context, query string) ([]Destination, error)
}

type apiEnvelope struct {
	Meta struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a rate-API client with an explicit timeout. A timed-out
// call is indistinguishable from any other upstream failure to callers.
func NewClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *client) do(req *http.Request, out *apiEnvelope) error {
	req.Header.Set("key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rate api request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("rate api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode rate api response: %w", err)
	}

	if out.Meta.Code != 0 && out.Meta.Code != http.StatusOK {
		return fmt.Errorf("rate api error: %s", out.Meta.Message)
	}

	return nil
}

func (c *client) Cost(ctx context.Context, originID, destinationID string, weightGrams int, couriers string) ([]Rate, error) {
	form := url.Values{}
	form.Set("origin", originID)
	form.Set("destination", destinationID)
	form.Set("weight", strconv.Itoa(weightGrams))
	form.Set("courier", couriers)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/calculate/domestic-cost", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var envelope apiEnvelope

	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}

	var rates []Rate

	if err := json.Unmarshal(envelope.Data, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}

	return rates, nil
}

func (c *client) SearchDestination(ctx context.Context, query string) ([]Destination, error) {
	endpoint := c.baseURL + "/destination/domestic-destination?search=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build destination request: %w", err)
	}

	var envelope apiEnvelope

	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}

	var destinations []Destination

	if err := json.Unmarshal(envelope.Data, &destinations); err != nil {
		return nil, fmt.Errorf("failed to decode destinations: %w", err)
	}

	return destinations, nil
}
