package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cointether/internal/aggregate"
	"cointether/internal/app"
	"cointether/internal/chart"
	"cointether/internal/history"
	"cointether/internal/logging"
	"cointether/internal/symbols"
	"cointether/internal/valuation"
)

type server struct {
	app            *app.App
	logger         *logging.Logger
	requestTimeout time.Duration
}

func newServer(a *app.App) *server {
	timeout := time.Duration(a.Config.Server.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &server{app: a, logger: a.Logger.Named("http"), requestTimeout: timeout}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/owners", s.handleOwners)
	mux.HandleFunc("POST /api/portfolio/{owner}/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/portfolio/{owner}/history", s.handleHistory)
	mux.HandleFunc("GET /api/portfolio/{owner}/history.png", s.handleHistoryChart)
	mux.HandleFunc("GET /api/portfolio/{owner}/distribution", s.handleDistribution)
	mux.HandleFunc("GET /api/portfolio/{owner}/distribution.png", s.handleDistributionChart)
	mux.HandleFunc("GET /api/logo/{symbol}", s.handleLogo)

	return withJSONHeaders(withGzip(recoverPanic(s.logger, withRequestLog(s.logger, mux))))
}

type rowView struct {
	ID        string          `json:"id"`
	CoinName  string          `json:"coin_name"`
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	PriceA    decimal.Decimal `json:"price_a"`
	PriceB    decimal.Decimal `json:"price_b"`
	ValueA    decimal.Decimal `json:"value_a"`
	ValueB    decimal.Decimal `json:"value_b"`
	Image     string          `json:"image,omitempty"`
	Available bool            `json:"available"`
	Error     string          `json:"error,omitempty"`
}

type portfolioResponse struct {
	Owner         string    `json:"owner"`
	CurrencyA     string    `json:"currency_a"`
	CurrencyB     string    `json:"currency_b"`
	Rows          []rowView `json:"rows"`
	TotalA        string    `json:"total_a"`
	TotalB        string    `json:"total_b"`
	Source        string    `json:"source"`
	Stale         bool      `json:"stale"`
	NoPriceData   bool      `json:"no_price_data"`
	CapturedAt    time.Time `json:"captured_at"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
	ProviderError string    `json:"provider_error,omitempty"`
	Warnings      []string  `json:"warnings,omitempty"`
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	// A joined refresh must not be cancelled by whichever client started it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.requestTimeout)
	defer cancel()

	res, err := s.app.Engine.Refresh(ctx, owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("refresh failed")
		writeError(w, http.StatusInternalServerError, "could not load holdings")
		return
	}

	resp := portfolioResponse{
		Owner:       res.Owner,
		CurrencyA:   s.app.PrimaryCurrency(),
		CurrencyB:   s.app.SecondaryCurrency(),
		Rows:        make([]rowView, 0, len(res.Rows)),
		TotalA:      aggregate.FormatMoney(res.Total.A, s.app.PrimaryCurrency()),
		TotalB:      aggregate.FormatMoney(res.Total.B, s.app.SecondaryCurrency()),
		Source:      string(res.Source),
		Stale:       res.Stale,
		NoPriceData: res.NoPriceData(),
		CapturedAt:  res.CapturedAt,
		EvaluatedAt: res.EvaluatedAt,
	}
	if res.ProviderErr != nil {
		resp.ProviderError = res.ProviderErr.Error()
	}
	for _, warn := range res.Warnings {
		resp.Warnings = append(resp.Warnings, warn.Error())
	}
	for _, row := range aggregate.Filter(res.Rows, r.URL.Query().Get("q")) {
		resp.Rows = append(resp.Rows, toRowView(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toRowView(row valuation.Row) rowView {
	v := rowView{
		ID:        row.Holding.ID.String(),
		CoinName:  row.Holding.CoinName,
		Symbol:    row.Holding.Symbol,
		Quantity:  row.Holding.Quantity,
		ValueA:    row.ValueA,
		ValueB:    row.ValueB,
		Available: row.Available,
	}
	if row.Quote != nil {
		v.PriceA = row.Quote.PriceA
		v.PriceB = row.Quote.PriceB
		v.Image = row.Quote.Image
	}
	switch {
	case row.Err != nil:
		v.Error = row.Err.Error()
	case !row.Available:
		v.Error = "price unavailable"
	}
	return v
}

// handleOwners lists every owner with recorded history.
func (s *server) handleOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := s.app.History.Owners()
	if err != nil {
		s.logger.Error().Err(err).Msg("history read failed")
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"owners": owners})
}

type historyResponse struct {
	Owner    string           `json:"owner"`
	Currency string           `json:"currency"`
	Samples  []history.Sample `json:"samples"`
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	samples, err := s.app.History.Series(owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("history read failed")
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Owner: owner, Currency: s.app.PrimaryCurrency(), Samples: samples})
}

func (s *server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	samples, err := s.app.History.Series(owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("history read failed")
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	png, err := chart.RenderHistory(samples, s.app.PrimaryCurrency())
	if err != nil {
		writeError(w, http.StatusNotFound, "not enough history to chart")
		return
	}
	writePNG(w, png)
}

// distribution reads holdings and values them against cached prices so that
// viewing the chart never hits the provider.
func (s *server) distribution(ctx context.Context, owner string) ([]aggregate.Slice, error) {
	hs, err := s.app.Holdings.ListHoldings(ctx, owner)
	if err != nil {
		return nil, err
	}
	return aggregate.Distribution(s.app.Engine.Revalue(owner, hs).Rows), nil
}

func (s *server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	slices, err := s.distribution(r.Context(), owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("distribution failed")
		writeError(w, http.StatusInternalServerError, "could not load holdings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"owner": owner, "currency": s.app.PrimaryCurrency(), "slices": slices})
}

func (s *server) handleDistributionChart(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	slices, err := s.distribution(r.Context(), owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("distribution failed")
		writeError(w, http.StatusInternalServerError, "could not load holdings")
		return
	}
	png, err := chart.RenderDistribution(slices)
	if err != nil {
		writeError(w, http.StatusNotFound, "no priced holdings to chart")
		return
	}
	writePNG(w, png)
}

func (s *server) handleLogo(w http.ResponseWriter, r *http.Request) {
	sym := symbols.Normalize(r.PathValue("symbol"))
	if err := symbols.Check(sym); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	q, ok := s.app.Cache.Load().Snapshot.Get(sym)
	if !ok || strings.TrimSpace(q.Image) == "" {
		writeError(w, http.StatusNotFound, "no logo known for "+sym)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	res := s.app.Logos.Fetch(ctx, q.Image)
	if res.Degraded {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "logo unavailable", "degraded": true})
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
