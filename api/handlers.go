package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradedesk/ledger"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
	maxUserIDLen     = 50
	maxSymbolLen     = 10
)

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.stocks.AllStocks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", defaultPageLimit)
	if page < 1 || limit < 1 || limit > maxPageLimit {
		writeValidationError(w, []fieldError{{Field: "page", Message: "page and limit must be positive, limit at most 100"}})
		return
	}

	start := (page - 1) * limit
	end := page * limit
	if start > len(stocks) {
		start = len(stocks)
	}
	if end > len(stocks) {
		end = len(stocks)
	}

	totalPages := 0
	if len(stocks) > 0 {
		totalPages = (len(stocks) + limit - 1) / limit
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": stocks[start:end],
		"pagination": map[string]any{
			"page":       page,
			"limit":      limit,
			"total":      len(stocks),
			"totalPages": totalPages,
			"hasNext":    end < len(stocks),
			"hasPrev":    page > 1,
		},
	})
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))

	stock, err := s.stocks.StockBySymbol(r.Context(), symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

type buyOrder struct {
	UserID   string  `json:"userId"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (o buyOrder) validate() []fieldError {
	var errs []fieldError
	if o.UserID == "" || len(o.UserID) > maxUserIDLen {
		errs = append(errs, fieldError{Field: "userId", Message: "userId must be 1-50 characters"})
	}
	if o.Symbol == "" || len(o.Symbol) > maxSymbolLen {
		errs = append(errs, fieldError{Field: "symbol", Message: "symbol must be 1-10 characters"})
	}
	if o.Price <= 0 || math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
		errs = append(errs, fieldError{Field: "price", Message: "price must be positive"})
	}
	if o.Quantity < 1 {
		errs = append(errs, fieldError{Field: "quantity", Message: "quantity must be a positive integer"})
	}
	return errs
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var order buyOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}
	if errs := order.validate(); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	symbol := strings.ToUpper(order.Symbol)
	// Prices arrive with two-decimal precision; normalize here so the
	// deviation check and the record agree with what was charged.
	price := math.Round(order.Price*100) / 100

	rec, err := s.trader.Buy(r.Context(), order.UserID, symbol, price, order.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	s.portfolios.Apply(rec)

	writeJSON(w, http.StatusCreated, map[string]any{
		"transactionId": rec.ID,
		"symbol":        rec.Symbol,
		"quantity":      rec.Quantity,
		"price":         rec.RequestedPrice,
		"total":         float64(rec.Quantity) * rec.RequestedPrice,
		"status":        rec.Status,
		"timestamp":     rec.Timestamp.Format(time.RFC3339),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f := ledger.Filter{
		UserID: r.URL.Query().Get("userId"),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		st := ledger.Status(strings.ToUpper(status))
		if st != ledger.StatusSuccess && st != ledger.StatusFailed {
			writeValidationError(w, []fieldError{{Field: "status", Message: "status must be SUCCESS or FAILED"}})
			return
		}
		f.Status = st
	}

	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			writeValidationError(w, []fieldError{{Field: "date", Message: "date must be YYYY-MM-DD"}})
			return
		}
		f.Date = day
	}

	records, err := s.trader.Transactions(f)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": records,
		"count": len(records),
	})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" || len(userID) > maxUserIDLen {
		writeValidationError(w, []fieldError{{Field: "userId", Message: "userId must be 1-50 characters"}})
		return
	}

	p, err := s.portfolios.UserPortfolio(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
