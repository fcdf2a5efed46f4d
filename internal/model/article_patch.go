package model

import (
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/article-catalogue/pkg/optional"
)

// ArticlePatch is a partial modification of an Article. Only price and name
// are recognised; any other key in the source document is ignored.
type ArticlePatch struct {
	Price optional.Value[decimal.Decimal] `json:"price,omitzero"`
	Name  optional.Value[string]          `json:"name,omitzero"`
}

// Apply merges the patch into a and returns the result. A field that is
// absent or explicitly null leaves the current value untouched.
func (p ArticlePatch) Apply(a Article) Article {
	if price, ok := p.Price.Get(); ok {
		a.Price = price
	}
	if name, ok := p.Name.Get(); ok {
		a.Name = name
	}
	return a
}
