// Package portfolio folds successful transactions into per-user holdings and
// revalues them against the live catalog.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradedesk/ledger"
	"github.com/rustyeddy/tradedesk/market"
)

// Catalog is the price source used to value holdings.
type Catalog interface {
	AllStocks(ctx context.Context) ([]market.Stock, error)
}

// Holding is one position valued at the current catalog price.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	CurrentPrice float64 `json:"currentPrice"`
	TotalValue   float64 `json:"totalValue"`
	Currency     string  `json:"currency"`
}

// Portfolio is a user's holdings valued at the current catalog prices,
// sorted by value descending.
type Portfolio struct {
	UserID      string    `json:"userId"`
	Holdings    []Holding `json:"holdings"`
	TotalValue  float64   `json:"totalValue"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// TopHolding is one entry of a portfolio summary.
type TopHolding struct {
	Symbol     string  `json:"symbol"`
	Value      float64 `json:"value"`
	Percentage string  `json:"percentage"`
}

// Summary condenses a portfolio for reporting: counts, total, top five
// positions with their share of the total.
type Summary struct {
	UserID        string       `json:"userId"`
	TotalHoldings int          `json:"totalHoldings"`
	TotalValue    float64      `json:"totalValue"`
	TopHoldings   []TopHolding `json:"topHoldings"`
}

// Service keeps per-user running quantities. Like the ledger it is volatile:
// holdings are rebuilt from scratch on process restart.
type Service struct {
	mu       sync.RWMutex
	holdings map[string]map[string]int // userID -> symbol -> quantity

	catalog Catalog
	logger  *zap.Logger
}

func New(cat Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		holdings: make(map[string]map[string]int),
		catalog:  cat,
		logger:   logger,
	}
}

// Apply folds one transaction record into the holdings. Only SUCCESS records
// change anything; failed attempts are ignored.
func (s *Service) Apply(rec ledger.Record) {
	if rec.Status != ledger.StatusSuccess {
		return
	}

	s.mu.Lock()
	user := s.holdings[rec.UserID]
	if user == nil {
		user = make(map[string]int)
		s.holdings[rec.UserID] = user
	}
	user[rec.Symbol] += rec.Quantity
	total := user[rec.Symbol]
	s.mu.Unlock()

	s.logger.Info("holding updated",
		zap.String("user_id", rec.UserID),
		zap.String("symbol", rec.Symbol),
		zap.Int("quantity", total),
	)
}

// UserPortfolio values the user's holdings against the current catalog.
// Symbols that have dropped out of the catalog are skipped rather than
// valued at a stale price.
func (s *Service) UserPortfolio(ctx context.Context, userID string) (Portfolio, error) {
	s.mu.RLock()
	quantities := make(map[string]int, len(s.holdings[userID]))
	for symbol, qty := range s.holdings[userID] {
		quantities[symbol] = qty
	}
	s.mu.RUnlock()

	stocks, err := s.catalog.AllStocks(ctx)
	if err != nil {
		return Portfolio{}, fmt.Errorf("value portfolio for %s: %w", userID, err)
	}
	bySymbol := make(map[string]market.Stock, len(stocks))
	for _, st := range stocks {
		bySymbol[st.Symbol] = st
	}

	p := Portfolio{
		UserID:      userID,
		Holdings:    []Holding{},
		LastUpdated: time.Now(),
	}
	for symbol, qty := range quantities {
		st, ok := bySymbol[symbol]
		if !ok {
			continue
		}
		currency := st.Currency
		if currency == "" {
			currency = "USD"
		}
		h := Holding{
			Symbol:       symbol,
			Name:         st.Name,
			Quantity:     qty,
			CurrentPrice: st.Price,
			TotalValue:   float64(qty) * st.Price,
			Currency:     currency,
		}
		p.Holdings = append(p.Holdings, h)
		p.TotalValue += h.TotalValue
	}

	sort.Slice(p.Holdings, func(i, j int) bool {
		if p.Holdings[i].TotalValue != p.Holdings[j].TotalValue {
			return p.Holdings[i].TotalValue > p.Holdings[j].TotalValue
		}
		return p.Holdings[i].Symbol < p.Holdings[j].Symbol
	})

	return p, nil
}

// UserSummary returns the top-five view of a user's portfolio.
func (s *Service) UserSummary(ctx context.Context, userID string) (Summary, error) {
	p, err := s.UserPortfolio(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		UserID:        userID,
		TotalHoldings: len(p.Holdings),
		TotalValue:    p.TotalValue,
		TopHoldings:   []TopHolding{},
	}
	for i, h := range p.Holdings {
		if i == 5 {
			break
		}
		pct := 0.0
		if p.TotalValue > 0 {
			pct = h.TotalValue / p.TotalValue * 100
		}
		sum.TopHoldings = append(sum.TopHoldings, TopHolding{
			Symbol:     h.Symbol,
			Value:      h.TotalValue,
			Percentage: fmt.Sprintf("%.2f", pct),
		})
	}
	return sum, nil
}

// Clear drops all holdings. Test helper.
func (s *Service) Clear() {
	s.mu.Lock()
	s.holdings = make(map[string]map[string]int)
	s.mu.Unlock()
}
