package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"strings"
)

// Market is one record of the /coins/markets response.
type Market struct {
	ID           string
	Symbol       string
	Name         string
	CurrentPrice *float64
	Image        string
}

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return "rate limited"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "unauthorized"
	default:
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
}

// ErrDecode wraps every response body that cannot be parsed.
var ErrDecode = errors.New("decoding markets response")

// GetCoinsMarkets retrieves prices for every id in a single request.
func (c *Client) GetCoinsMarkets(ctx context.Context, vsCurrency string, ids []string, opts ...ClientOption) ([]Market, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)
	query.Set("vs_currency", vsCurrency)
	query.Set("ids", strings.Join(ids, ","))
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(len(ids)))
	query.Set("page", "1")
	query.Set("sparkline", "false")

	url := fmt.Sprintf("%s/coins/markets?%s", override.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header
	req.Header.Set("Accept", "application/json")

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(b)}
	}

	// [
	//   {
	//     "id": "bitcoin",
	//     "symbol": "btc",
	//     "name": "Bitcoin",
	//     "image": "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
	//     "current_price": 50000,
	//     ...
	//   }
	// ]
	var body []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var markets = make([]Market, 0, len(body))
	for i, record := range body {
		id, err := parseNullableValue[string](record, "id")
		if err != nil || id == nil {
			return nil, fmt.Errorf("%w: record %d: missing id", ErrDecode, i)
		}

		price, err := parseNullableValue[float64](record, "current_price")
		if err != nil {
			return nil, fmt.Errorf("%w: %s current_price: %w", ErrDecode, *id, err)
		}

		m := Market{ID: *id, CurrentPrice: price}
		if v, _ := parseNullableValue[string](record, "symbol"); v != nil {
			m.Symbol = *v
		}
		if v, _ := parseNullableValue[string](record, "name"); v != nil {
			m.Name = *v
		}
		if v, _ := parseNullableValue[string](record, "image"); v != nil {
			m.Image = *v
		}
		markets = append(markets, m)
	}

	return markets, nil
}

// parseNullableValue is a helper function to parse a nullable value.
func parseNullableValue[T any](data map[string]any, key string) (*T, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	if v, ok := v.(T); ok {
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected type: %T", v)
}
