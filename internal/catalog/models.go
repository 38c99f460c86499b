package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/ahinestrog/mybookstore-storefront/internal/money"
)

type Book struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Publisher   string          `json:"publisher,omitempty"`
	ISBN        string          `json:"isbn,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	ImageName   string          `json:"imageName,omitempty"`
}

func (b Book) UnitPrice() money.Money { return money.FromDecimal(b.Price) }

// ImageURL mirrors the backend's image route, with a placeholder fallback.
func (b Book) ImageURL() string {
	if b.ImageName == "" {
		return "/api/placeholder/200/300"
	}
	return "/api/books/image/" + b.ImageName
}

// SearchKind selects one of the backend's search endpoints.
type SearchKind string

const (
	SearchTitle     SearchKind = "title"
	SearchAuthor    SearchKind = "author"
	SearchPublisher SearchKind = "publisher"
	SearchISBN      SearchKind = "isbn"
	SearchPrice     SearchKind = "price"
	SearchInventory SearchKind = "inventory"
)

type Query struct {
	Kind SearchKind
	Term string
	// Min and Max bound price searches; Min alone bounds inventory searches.
	Min decimal.Decimal
	Max decimal.Decimal
}
