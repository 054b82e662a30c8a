package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reed-scraper/internal/models"
	"github.com/reed-scraper/internal/utils"
)

// ratesResponse is the part of the rate API payload we read.
type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

type ExchangeRateService struct {
	endpoint string
	client   *utils.HTTPClient
}

// NewExchangeRateService builds a client for an endpoint that takes the base
// currency code as its last path segment, e.g.
// https://api.exchangerate-api.com/v4/latest/.
func NewExchangeRateService(endpoint string, client *utils.HTTPClient) ExchangeRateService {
	return ExchangeRateService{
		endpoint: endpoint,
		client:   client,
	}
}

// FetchRates makes one request for the rates against base. Any transport,
// status or decoding problem is returned as an error and no table.
func (s *ExchangeRateService) FetchRates(ctx context.Context, base string) (models.RateTable, error) {
	url := s.endpoint + strings.ToUpper(base)

	body, err := s.client.GetBody(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("fetch exchange rates: %w", err)
	}

	var payload ratesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse exchange rates: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("exchange rate response for %s has no rates", base)
	}

	return models.RateTable(payload.Rates), nil
}
