package market

import "errors"

// ErrNotFound is returned when a symbol is not present in the catalog.
var ErrNotFound = errors.New("stock not found")

// Stock is a tradable instrument as the vendor reports it. Price is the
// vendor's live price at catalog-refresh time; a record that needs the price
// at trade time must copy it rather than hold a reference.
type Stock struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}
