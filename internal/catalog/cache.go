package catalog

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Lookup is anything that can resolve a book by id.
type Lookup interface {
	GetBook(ctx context.Context, id string) (Book, error)
}

// Cache keeps recently fetched books for a short TTL. It serves price
// display only; inventory checks go to the live Lookup.
type Cache struct {
	next  Lookup
	books *expirable.LRU[string, Book]
}

func NewCache(next Lookup, size int, ttl time.Duration) *Cache {
	return &Cache{next: next, books: expirable.NewLRU[string, Book](size, nil, ttl)}
}

func (c *Cache) GetBook(ctx context.Context, id string) (Book, error) {
	if b, ok := c.books.Get(id); ok {
		return b, nil
	}
	b, err := c.next.GetBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	c.books.Add(id, b)
	return b, nil
}

func (c *Cache) Invalidate(id string) { c.books.Remove(id) }

func (c *Cache) Purge() { c.books.Purge() }
