package model

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Article ids are opaque strings. Ids assigned here are UUIDs, but operations
// from other producers on the shared topic may carry any non-empty id.
type Article struct {
	ID    string          `json:"uuid" validate:"required"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Equal reports whether both articles hold the same state. Prices are
// compared numerically, so 9.9 and 9.90 are equal.
func (a Article) Equal(other Article) bool {
	return a.ID == other.ID && a.Name == other.Name && a.Price.Equal(other.Price)
}
