package coingecko_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"cointether/internal/provider/coingecko"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGetCoinsMarkets(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller and http client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: exactly one batched request carries every id
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Contains(t, req.URL.Path, "/coins/markets")
			q := req.URL.Query()
			require.Equal(t, "usd", q.Get("vs_currency"))
			require.Equal(t, "bitcoin,ethereum", q.Get("ids"))
			require.Equal(t, "2", q.Get("per_page"))
			require.Equal(t, "1", q.Get("page"))
			require.Equal(t, "false", q.Get("sparkline"))
			return okResponse(t, mockMarketsResponse), nil
		}).
		Times(1)

	client, err := coingecko.NewClient("", coingecko.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetCoinsMarkets
	markets, err := client.GetCoinsMarkets(t.Context(), "usd", []string{"bitcoin", "ethereum"})
	require.NoError(t, err)

	// Assert: records are decoded in response order
	require.Len(t, markets, 3)
	require.Equal(t, "bitcoin", markets[0].ID)
	require.Equal(t, "btc", markets[0].Symbol)
	require.Equal(t, "Bitcoin", markets[0].Name)
	require.NotNil(t, markets[0].CurrentPrice)
	require.InEpsilon(t, 50000.0, *markets[0].CurrentPrice, 0.0001)
	require.Equal(t, "https://assets.example/btc.png", markets[0].Image)
	require.InEpsilon(t, 3000.5, *markets[1].CurrentPrice, 0.0001)

	// Assert: a null price stays nil
	require.Equal(t, "tether", markets[2].ID)
	require.Nil(t, markets[2].CurrentPrice)
}

func TestGetCoinsMarkets_ErrCreatingRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: no request is performed
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	client, err := coingecko.NewClient("", coingecko.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetCoinsMarkets with an invalid base url
	markets, err := client.GetCoinsMarkets(t.Context(), "usd", []string{"bitcoin"}, coingecko.WithBaseURL(string([]rune{0x7f})))
	require.Error(t, err)
	require.Nil(t, markets)
}

func TestGetCoinsMarkets_ErrPerformingRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("connection refused")
		}).
		Times(1)

	client, err := coingecko.NewClient("", coingecko.WithHTTPClient(httpClient))
	require.NoError(t, err)

	markets, err := client.GetCoinsMarkets(t.Context(), "usd", []string{"bitcoin"})
	require.ErrorContains(t, err, "performing request")
	require.Nil(t, markets)
}

func TestGetCoinsMarkets_ErrUnexpectedStatusCode(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		status int
		msg    string
	}{
		{http.StatusInternalServerError, "unexpected status code: 500"},
		{http.StatusTooManyRequests, "rate limited"},
		{http.StatusUnauthorized, "unauthorized"},
	} {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: tc.status,
						Body:       io.NopCloser(bytes.NewReader([]byte("nope"))),
					}, nil
				}).
				Times(1)

			client, err := coingecko.NewClient("", coingecko.WithHTTPClient(httpClient))
			require.NoError(t, err)

			markets, err := client.GetCoinsMarkets(t.Context(), "usd", []string{"bitcoin"})
			require.Nil(t, markets)

			var statusErr *coingecko.StatusError
			require.True(t, errors.As(err, &statusErr))
			require.Equal(t, tc.status, statusErr.StatusCode)
			require.Equal(t, "nope", statusErr.Body)
			require.EqualError(t, err, tc.msg)
		})
	}
}

func TestGetCoinsMarkets_ErrDecodingResponse(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"invalid json":     "invalid json",
		"object not array": `{"error":"x"}`,
		"missing id":       `[{"current_price": 1}]`,
		"string price":     `[{"id":"bitcoin","current_price":"1"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: http.StatusOK,
						Body:       io.NopCloser(bytes.NewBufferString(body)),
					}, nil
				}).
				Times(1)

			client, err := coingecko.NewClient("", coingecko.WithHTTPClient(httpClient))
			require.NoError(t, err)

			markets, err := client.GetCoinsMarkets(t.Context(), "usd", []string{"bitcoin"})
			require.ErrorIs(t, err, coingecko.ErrDecode)
			require.Nil(t, markets)
		})
	}
}

// mockMarketsResponse is a trimmed /coins/markets payload.
var mockMarketsResponse = []map[string]any{
	{
		"id":            "bitcoin",
		"symbol":        "btc",
		"name":          "Bitcoin",
		"image":         "https://assets.example/btc.png",
		"current_price": 50000,
		"market_cap":    1e12,
	},
	{
		"id":            "ethereum",
		"symbol":        "eth",
		"name":          "Ethereum",
		"image":         "https://assets.example/eth.png",
		"current_price": 3000.5,
	},
	{
		"id":            "tether",
		"symbol":        "usdt",
		"name":          "Tether",
		"current_price": nil,
	},
}
