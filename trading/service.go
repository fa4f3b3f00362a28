// Package trading runs the buy pipeline: price lookup, deviation guard,
// vendor order, ledger write.
package trading

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradedesk/ledger"
	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/pkg/id"
	"github.com/rustyeddy/tradedesk/risk"
)

// Catalog is the price-lookup side of the catalog service.
type Catalog interface {
	StockBySymbol(ctx context.Context, symbol string) (market.Stock, error)
}

// OrderPlacer is the order-execution side of the vendor client.
type OrderPlacer interface {
	BuyStock(ctx context.Context, symbol string, price float64, quantity int) (string, error)
}

// Service executes buy requests. Every attempt writes exactly one ledger
// record, success or failure, before the outcome is returned.
type Service struct {
	catalog Catalog
	vendor  OrderPlacer
	ledger  ledger.Ledger
	policy  risk.Policy
	logger  *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func New(cat Catalog, vendor OrderPlacer, led ledger.Ledger, policy risk.Policy, logger *zap.Logger) *Service {
	if policy.MaxDeviationPct <= 0 {
		policy = risk.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: cat,
		vendor:  vendor,
		ledger:  led,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// Buy validates and places a buy order. Symbol is expected uppercased and
// price/quantity positive; the HTTP layer enforces that before calling here.
//
// The deviation guard runs against the catalog price at request time and is
// not re-checked after the vendor fills: the price may move between the
// check and the fill, and that window is accepted behavior.
//
// The returned record is also the failure record when err != nil.
func (s *Service) Buy(ctx context.Context, userID, symbol string, price float64, quantity int) (ledger.Record, error) {
	stock, err := s.catalog.StockBySymbol(ctx, symbol)
	if err != nil {
		return s.recordFailure(userID, symbol, price, quantity, err), err
	}

	decision := risk.CheckDeviation(s.policy, price, stock.Price)
	s.logger.Debug("price deviation check",
		zap.String("symbol", symbol),
		zap.Float64("requested", price),
		zap.Float64("current", stock.Price),
		zap.String("deviation", decision.DeviationString()),
	)
	if !decision.Allowed {
		err := &DeviationError{
			Deviation:  decision.Deviation,
			MaxAllowed: decision.MaxAllowed,
			Requested:  price,
			Current:    stock.Price,
		}
		return s.recordFailure(userID, symbol, price, quantity, err), err
	}

	txID, err := s.vendor.BuyStock(ctx, symbol, price, quantity)
	if err != nil {
		return s.recordFailure(userID, symbol, price, quantity, err), err
	}
	if txID == "" {
		txID = id.New()
	}

	rec := ledger.Record{
		ID:             txID,
		UserID:         userID,
		Symbol:         symbol,
		Name:           stock.Name,
		Quantity:       quantity,
		RequestedPrice: price,
		CurrentPrice:   stock.Price,
		Deviation:      decision.Deviation,
		Status:         ledger.StatusSuccess,
		Timestamp:      s.now(),
	}
	s.record(rec)

	return rec, nil
}

// Transactions returns ledger records matching the filter, oldest first.
func (s *Service) Transactions(f ledger.Filter) ([]ledger.Record, error) {
	return s.ledger.Query(f)
}

func (s *Service) recordFailure(userID, symbol string, price float64, quantity int, cause error) ledger.Record {
	rec := ledger.Record{
		ID:             id.New(),
		UserID:         userID,
		Symbol:         symbol,
		Quantity:       quantity,
		RequestedPrice: price,
		Status:         ledger.StatusFailed,
		ErrorMessage:   cause.Error(),
		ErrorCode:      errorCode(cause),
		Timestamp:      s.now(),
	}
	s.record(rec)
	return rec
}

func (s *Service) record(rec ledger.Record) {
	if err := s.ledger.Record(rec); err != nil {
		// The outcome still stands; losing the record is a defect worth
		// shouting about but not worth failing the request over.
		s.logger.Error("ledger write failed",
			zap.String("transaction_id", rec.ID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("transaction recorded",
		zap.String("transaction_id", rec.ID),
		zap.String("user_id", rec.UserID),
		zap.String("symbol", rec.Symbol),
		zap.String("status", string(rec.Status)),
	)
}
