package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cointether/internal/app"
	"cointether/internal/config"
	"cointether/internal/holdings"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fakeCoinGecko serves /coins/markets and coin images. When failing is set
// the markets endpoint answers 503.
type fakeCoinGecko struct {
	*httptest.Server
	failing atomic.Bool
	calls   atomic.Int32
}

func newFakeCoinGecko(t *testing.T) *fakeCoinGecko {
	t.Helper()
	f := &fakeCoinGecko{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/markets":
			f.calls.Add(1)
			if f.failing.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `[
				{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"%[1]s/img/btc.png","current_price":50000},
				{"id":"ethereum","symbol":"eth","name":"Ethereum","image":"%[1]s/img/eth.png","current_price":3000}
			]`, f.URL)
		case "/img/btc.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func newTestServer(t *testing.T, cg *fakeCoinGecko) (*server, *app.App) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Provider.BaseURL = cg.URL
	cfg.Provider.MaxRequestsPerMinute = 0
	cfg.Storage.HoldingsDB = filepath.Join(dir, "users.db")
	cfg.Storage.CachePath = filepath.Join(dir, "price_cache.json")
	cfg.Storage.HistoryPath = filepath.Join(dir, "portfolio_history.json")

	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return newServer(a), a
}

func addHolding(t *testing.T, a *app.App, owner, name, sym, qty string) {
	t.Helper()
	_, err := a.Holdings.Insert(t.Context(), holdings.Holding{
		Owner: owner, CoinName: name, Symbol: sym, Quantity: decimal.RequireFromString(qty),
	})
	require.NoError(t, err)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func post(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
	return rr
}

func decodePortfolio(t *testing.T, rr *httptest.ResponseRecorder) portfolioResponse {
	t.Helper()
	var resp portfolioResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, newFakeCoinGecko(t))

	rr := get(t, s.routes(), "/healthz")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRefresh_FreshThenStale(t *testing.T) {
	// Arrange
	cg := newFakeCoinGecko(t)
	s, a := newTestServer(t, cg)
	h := s.routes()
	addHolding(t, a, "alice", "Bitcoin", "BTC", "2.0")
	addHolding(t, a, "alice", "Ethereum", "eth", "5.0")
	addHolding(t, a, "alice", "Mystery", "ZZZ", "1")

	// Act
	rr := post(t, h, "/api/portfolio/alice/refresh")

	// Assert
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	fresh := decodePortfolio(t, rr)
	assert.Equal(t, "provider", fresh.Source)
	assert.False(t, fresh.Stale)
	assert.Equal(t, "$115,000.00", fresh.TotalA)
	require.Len(t, fresh.Rows, 3)
	assert.True(t, fresh.Rows[0].Available)
	assert.True(t, decimal.RequireFromString("8300000").Equal(fresh.Rows[0].ValueB))
	assert.False(t, fresh.Rows[2].Available)
	assert.Contains(t, fresh.Rows[2].Error, "ZZZ")

	series, err := a.History.Series("alice")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, decimal.RequireFromString("115000").Equal(series[0].Value))

	// Provider outage: same totals from the cache, no new history sample.
	cg.failing.Store(true)
	rr = post(t, h, "/api/portfolio/alice/refresh")
	require.Equal(t, http.StatusOK, rr.Code)
	stale := decodePortfolio(t, rr)
	assert.Equal(t, "cache", stale.Source)
	assert.True(t, stale.Stale)
	assert.NotEmpty(t, stale.ProviderError)
	assert.Equal(t, fresh.TotalA, stale.TotalA)
	assert.Equal(t, fresh.TotalB, stale.TotalB)

	series, err = a.History.Series("alice")
	require.NoError(t, err)
	assert.Len(t, series, 1)
}

func TestRefresh_Filter(t *testing.T) {
	s, a := newTestServer(t, newFakeCoinGecko(t))
	addHolding(t, a, "bob", "Bitcoin", "BTC", "1")
	addHolding(t, a, "bob", "Ethereum", "ETH", "1")

	rr := post(t, s.routes(), "/api/portfolio/bob/refresh?q=ether")

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodePortfolio(t, rr)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "ETH", resp.Rows[0].Symbol)
	assert.Equal(t, "$53,000.00", resp.TotalA)
}

func TestRefresh_RejectsGet(t *testing.T) {
	cg := newFakeCoinGecko(t)
	s, a := newTestServer(t, cg)
	addHolding(t, a, "alice", "Bitcoin", "BTC", "1")

	rr := get(t, s.routes(), "/api/portfolio/alice/refresh")

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, int32(0), cg.calls.Load())
	series, err := a.History.Series("alice")
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestRefresh_NoHoldingsDoesNotFetch(t *testing.T) {
	cg := newFakeCoinGecko(t)
	s, _ := newTestServer(t, cg)

	rr := post(t, s.routes(), "/api/portfolio/nobody/refresh")

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodePortfolio(t, rr)
	assert.Equal(t, "none", resp.Source)
	assert.Empty(t, resp.Rows)
	assert.Equal(t, int32(0), cg.calls.Load())
}

func TestRefresh_OutageWithEmptyCache(t *testing.T) {
	cg := newFakeCoinGecko(t)
	cg.failing.Store(true)
	s, a := newTestServer(t, cg)
	addHolding(t, a, "carol", "Bitcoin", "BTC", "1")

	rr := post(t, s.routes(), "/api/portfolio/carol/refresh")

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodePortfolio(t, rr)
	assert.True(t, resp.NoPriceData)
	assert.True(t, resp.Stale)
}

func TestHistoryEndpoints(t *testing.T) {
	s, a := newTestServer(t, newFakeCoinGecko(t))
	h := s.routes()
	addHolding(t, a, "alice", "Bitcoin", "BTC", "1")

	rr := get(t, h, "/api/portfolio/alice/history.png")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	for range 2 {
		require.Equal(t, http.StatusOK, post(t, h, "/api/portfolio/alice/refresh").Code)
	}

	rr = get(t, h, "/api/owners")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"owners":["alice"]}`, rr.Body.String())

	rr = get(t, h, "/api/portfolio/alice/history")
	require.Equal(t, http.StatusOK, rr.Code)
	var hist historyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hist))
	assert.Equal(t, "USD", hist.Currency)
	require.Len(t, hist.Samples, 2)

	if hist.Samples[1].Timestamp.After(hist.Samples[0].Timestamp) {
		rr = get(t, h, "/api/portfolio/alice/history.png")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	}
}

func TestDistribution(t *testing.T) {
	s, a := newTestServer(t, newFakeCoinGecko(t))
	h := s.routes()
	addHolding(t, a, "alice", "Bitcoin", "BTC", "2.0")
	addHolding(t, a, "alice", "Ethereum", "ETH", "5.0")
	require.Equal(t, http.StatusOK, post(t, h, "/api/portfolio/alice/refresh").Code)

	rr := get(t, h, "/api/portfolio/alice/distribution")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Slices []struct {
			Symbol string          `json:"symbol"`
			Value  decimal.Decimal `json:"value"`
		} `json:"slices"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Slices, 2)
	assert.Equal(t, "BTC", body.Slices[0].Symbol)

	rr = get(t, h, "/api/portfolio/alice/distribution.png")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))
}

func TestLogo(t *testing.T) {
	s, a := newTestServer(t, newFakeCoinGecko(t))
	h := s.routes()

	rr := get(t, h, "/api/logo/btc")
	assert.Equal(t, http.StatusNotFound, rr.Code, "no cached quote yet")

	addHolding(t, a, "alice", "Bitcoin", "BTC", "1")
	addHolding(t, a, "alice", "Ethereum", "ETH", "1")
	require.Equal(t, http.StatusOK, post(t, h, "/api/portfolio/alice/refresh").Code)

	rr = get(t, h, "/api/logo/btc")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rr.Body.Bytes())

	rr = get(t, h, "/api/logo/eth")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"degraded":true`)

	rr = get(t, h, "/api/logo/zzz")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGzip(t *testing.T) {
	s, _ := newTestServer(t, newFakeCoinGecko(t))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/alice/history", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	s.routes().ServeHTTP(rr, req)

	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
}

func TestRecoverPanic(t *testing.T) {
	s, _ := newTestServer(t, newFakeCoinGecko(t))
	h := recoverPanic(s.logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rr := get(t, h, "/")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
