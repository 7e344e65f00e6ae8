// Package app wires configuration into the stores, price provider and
// valuation engine shared by cmd/server and cmd/cointether.
package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cointether/internal/config"
	"cointether/internal/history"
	"cointether/internal/holdings"
	"cointether/internal/httpx"
	"cointether/internal/logging"
	"cointether/internal/logo"
	"cointether/internal/provider"
	"cointether/internal/provider/cache"
	"cointether/internal/provider/coingecko"
	"cointether/internal/provider/coingeckoadapter"
	"cointether/internal/provider/ratelimit"
	"cointether/internal/valuation"
)

// App holds every initialized component.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Holdings  *holdings.SQLiteStore
	History   *history.FileRecorder
	Cache     *cache.FileCache
	Provider  provider.Provider
	Converter provider.Converter
	Engine    *valuation.Engine
	Logos     *logo.Fetcher
}

// New opens the stores named in cfg and builds the engine on top of them.
func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewSilent()
	}
	if dir := filepath.Dir(cfg.Storage.HoldingsDB); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	store, err := holdings.Open(cfg.Storage.HoldingsDB)
	if err != nil {
		return nil, err
	}

	httpClient := httpx.New(cfg.Provider.Timeout() + 5*time.Second)
	cg, err := coingecko.NewClient(cfg.Provider.APIKey,
		coingecko.WithBaseURL(cfg.Provider.BaseURL),
		coingecko.WithHTTPClient(httpClient),
		coingecko.WithHeader(http.Header{"Accept": []string{"application/json"}}),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("coingecko client: %w", err)
	}

	conv := provider.NewFixedRate(cfg.Conversion.SecondaryCurrency, cfg.Conversion.Rate)
	var p provider.Provider = coingeckoadapter.New(coingeckoadapter.Config{
		Currency: cfg.Provider.PrimaryCurrency,
		Timeout:  cfg.Provider.Timeout(),
	}, cg, conv, logger.Named("coingecko"))
	p = ratelimit.Wrap(p,
		cfg.Provider.MaxRequestsPerMinute,
		cfg.Provider.Burst,
		time.Duration(cfg.Provider.MinRequestIntervalSec)*time.Second,
	)

	c := cache.Open(cfg.Storage.CachePath, logger.Named("cache"))
	rec := history.NewFileRecorder(cfg.Storage.HistoryPath, cfg.History.MaxSamples, logger.Named("history"))
	engine := valuation.New(p, c, rec, logger.Named("valuation"), valuation.WithHoldings(store))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Holdings:  store,
		History:   rec,
		Cache:     c,
		Provider:  p,
		Converter: conv,
		Engine:    engine,
		Logos:     logo.NewFetcher(httpClient, logger.Named("logo")),
	}, nil
}

// PrimaryCurrency is the upper-case code of currency A.
func (a *App) PrimaryCurrency() string {
	return strings.ToUpper(a.Config.Provider.PrimaryCurrency)
}

// SecondaryCurrency is the upper-case code of currency B.
func (a *App) SecondaryCurrency() string {
	return strings.ToUpper(a.Converter.Currency())
}

func (a *App) Close() error {
	return a.Holdings.Close()
}
