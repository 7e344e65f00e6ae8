package coingeckoadapter

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"cointether/internal/logging"
	"cointether/internal/provider"
	"cointether/internal/provider/coingecko"
	"cointether/internal/symbols"
)

// MarketsClient is the part of the CoinGecko client the adapter needs.
type MarketsClient interface {
	GetCoinsMarkets(ctx context.Context, vsCurrency string, ids []string, opts ...coingecko.ClientOption) ([]coingecko.Market, error)
}

type Config struct {
	Name     string        // display name, default: CoinGecko
	Currency string        // primary vs_currency, default: usd
	Timeout  time.Duration // deadline for the single batched request, default: 10s
}

type Adapter struct {
	cfg       Config
	client    MarketsClient
	converter provider.Converter
	logger    *logging.Logger
	now       func() time.Time
}

func New(cfg Config, client MarketsClient, converter provider.Converter, logger *logging.Logger) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "CoinGecko"
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Adapter{cfg: cfg, client: client, converter: converter, logger: logger, now: time.Now}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Fetch prices every recognized ticker with one request. Either the whole
// request succeeds, yielding whatever the provider returned, or it fails.
func (a *Adapter) Fetch(ctx context.Context, tickers []string) (provider.Snapshot, error) {
	byID := symbols.Resolve(tickers)
	if len(byID) == 0 {
		return provider.Snapshot{}, a.fail(provider.KindNoSymbols, provider.ErrNoRecognizedSymbols)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	markets, err := a.client.GetCoinsMarkets(ctx, a.cfg.Currency, ids)
	if err != nil {
		return provider.Snapshot{}, a.classify(ctx, err)
	}

	quotes := make([]provider.Quote, 0, len(markets))
	for _, m := range markets {
		sym, ok := byID[m.ID]
		if !ok {
			continue
		}
		if m.CurrentPrice == nil || math.IsNaN(*m.CurrentPrice) || math.IsInf(*m.CurrentPrice, 0) {
			a.logger.Debug().Str("symbol", sym).Msg("provider returned no price")
			continue
		}
		priceA := decimal.NewFromFloat(*m.CurrentPrice)
		quotes = append(quotes, provider.Quote{
			Symbol: sym,
			PriceA: priceA,
			PriceB: a.converter.Convert(priceA),
			Image:  m.Image,
		})
	}

	a.logger.Debug().
		Int("requested", len(ids)).
		Int("priced", len(quotes)).
		Msg("fetched prices")
	return provider.NewSnapshot(a.now().UTC(), quotes...), nil
}

func (a *Adapter) classify(ctx context.Context, err error) error {
	var statusErr *coingecko.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return a.fail(provider.KindTimeout, err)
	case errors.As(err, &statusErr):
		return a.fail(provider.KindStatus, err)
	case errors.Is(err, coingecko.ErrDecode):
		return a.fail(provider.KindDecode, err)
	default:
		return a.fail(provider.KindTransport, err)
	}
}

func (a *Adapter) fail(kind provider.Kind, err error) error {
	return &provider.Error{Provider: a.cfg.Name, Kind: kind, Err: err}
}
