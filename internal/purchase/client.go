package purchase

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/money"
	"github.com/ahinestrog/mybookstore-storefront/internal/rest"
)

// Item is one line of an order request, exactly as the backend expects it.
type Item struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

type HistoryItem struct {
	BookID        string          `json:"bookId"`
	Quantity      int             `json:"quantity"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	ISBN          string          `json:"isbn"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
}

// Timestamp accepts RFC 3339 as well as the zone-less form the backend
// emits for purchase dates ("2024-03-01T10:15:30.123").
type Timestamp struct{ time.Time }

const zonelessLayout = "2006-01-02T15:04:05.999999999"

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = v
		return nil
	}
	v, err := time.ParseInLocation(zonelessLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("purchase date %q: %w", s, err)
	}
	t.Time = v
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) { return t.Time.MarshalJSON() }

type Purchase struct {
	ID           int64         `json:"id"`
	PurchaseDate Timestamp     `json:"purchaseDate"`
	Items        []HistoryItem `json:"items"`
}

func (p Purchase) TotalItems() int {
	n := 0
	for _, it := range p.Items {
		n += it.Quantity
	}
	return n
}

func (p Purchase) TotalCost() money.Money {
	var total money.Money
	for _, it := range p.Items {
		total = total.Add(money.FromDecimal(it.PurchasePrice).Mul(it.Quantity))
	}
	return total
}

type Client struct {
	rest *rest.Client
}

func NewClient(rc *rest.Client) *Client { return &Client{rest: rc} }

// Checkout submits the whole order in one request. A rejection keeps the
// backend's message as the error text.
func (c *Client) Checkout(ctx context.Context, token string, items []Item) error {
	if len(items) == 0 {
		return fmt.Errorf("empty order")
	}
	return c.rest.Do(ctx, http.MethodPost, "/purchase/checkout", token, items, nil)
}

// History lists the user's purchases, newest first.
func (c *Client) History(ctx context.Context, token string) ([]Purchase, error) {
	var out []Purchase
	err := c.rest.Do(ctx, http.MethodGet, "/purchase/history", token, nil, &out)
	if rest.HasStatus(err, http.StatusForbidden) {
		return nil, fmt.Errorf("you do not have permission to view purchase history: %w", auth.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PurchaseDate.After(out[j].PurchaseDate.Time) })
	return out, nil
}
