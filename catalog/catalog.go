// Package catalog presents the vendor's paginated instrument list as a
// single cached snapshot.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/vendorapi"
)

// DefaultTTL is how long a catalog snapshot stays fresh.
const DefaultTTL = 300 * time.Second

// VendorClient is the slice of the vendor API the catalog needs.
type VendorClient interface {
	GetStocksPage(ctx context.Context, nextToken string) (vendorapi.StocksPage, error)
}

// Service pages the vendor's instrument list into a snapshot and serves it
// from the store until the TTL elapses.
type Service struct {
	vendor VendorClient
	store  *market.SnapshotStore
	ttl    time.Duration
	logger *zap.Logger
}

func New(vendor VendorClient, store *market.SnapshotStore, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{vendor: vendor, store: store, ttl: ttl, logger: logger}
}

// AllStocks returns the current catalog. A fresh snapshot is served without
// touching the vendor; otherwise every page is fetched following nextToken
// and the concatenation is cached before returning. A page without a usable
// items array ends pagination early: the items gathered so far are still
// cached and returned, a partial catalog beats no catalog.
func (s *Service) AllStocks(ctx context.Context) ([]market.Stock, error) {
	if stocks, ok := s.store.Catalog(); ok {
		s.logger.Debug("serving cached catalog", zap.Int("stocks", len(stocks)))
		return stocks, nil
	}

	var (
		all       []market.Stock
		nextToken string
		pages     int
	)
	for {
		s.logger.Debug("fetching stocks page", zap.Int("page", pages+1))

		page, err := s.vendor.GetStocksPage(ctx, nextToken)
		if err != nil {
			return nil, fmt.Errorf("fetch stocks page %d: %w", pages+1, err)
		}
		if !page.HasItems {
			s.logger.Warn("vendor page without items, truncating catalog",
				zap.Int("page", pages+1), zap.Int("stocks_so_far", len(all)))
			break
		}

		all = append(all, page.Items...)
		pages++

		nextToken = page.NextToken
		if nextToken == "" {
			break
		}
	}

	s.logger.Info("catalog refreshed", zap.Int("stocks", len(all)), zap.Int("pages", pages))
	s.store.SetCatalog(all, s.ttl)

	return all, nil
}

// StockBySymbol finds a stock by exact, case-sensitive symbol. Callers are
// responsible for uppercasing. Returns market.ErrNotFound for an unknown
// symbol.
func (s *Service) StockBySymbol(ctx context.Context, symbol string) (market.Stock, error) {
	stocks, err := s.AllStocks(ctx)
	if err != nil {
		return market.Stock{}, err
	}

	for _, st := range stocks {
		if st.Symbol == symbol {
			return st, nil
		}
	}
	return market.Stock{}, fmt.Errorf("stock %q: %w", symbol, market.ErrNotFound)
}
