// Package api is the HTTP surface: routing, input validation, and the
// mapping from pipeline errors to response codes.
package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradedesk/ledger"
	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/portfolio"
)

// Stocks is the catalog as the API consumes it.
type Stocks interface {
	AllStocks(ctx context.Context) ([]market.Stock, error)
	StockBySymbol(ctx context.Context, symbol string) (market.Stock, error)
}

// Trader executes buys and exposes the ledger.
type Trader interface {
	Buy(ctx context.Context, userID, symbol string, price float64, quantity int) (ledger.Record, error)
	Transactions(f ledger.Filter) ([]ledger.Record, error)
}

// Portfolios values user holdings.
type Portfolios interface {
	Apply(rec ledger.Record)
	UserPortfolio(ctx context.Context, userID string) (portfolio.Portfolio, error)
}

// Server wires the services into an http.Handler.
type Server struct {
	stocks     Stocks
	trader     Trader
	portfolios Portfolios
	logger     *zap.Logger
	mux        *http.ServeMux
}

func NewServer(stocks Stocks, trader Trader, portfolios Portfolios, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		stocks:     stocks,
		trader:     trader,
		portfolios: portfolios,
		logger:     logger,
		mux:        http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/stocks", s.handleListStocks)
	s.mux.HandleFunc("GET /api/stocks/{symbol}", s.handleGetStock)
	s.mux.HandleFunc("POST /api/transactions/buy", s.handleBuy)
	s.mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	s.mux.HandleFunc("GET /api/portfolio/{userId}", s.handleGetPortfolio)

	return s
}

// ServeHTTP implements http.Handler with request logging around the mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	s.mux.ServeHTTP(rec, r)

	s.logger.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "UP",
		"service":   "tradedesk",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
