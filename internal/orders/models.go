package orders

import (
	"time"

	"github.com/ahinestrog/mybookstore-storefront/internal/money"
)

// Order is the storefront's local record of a checkout the backend accepted.
type Order struct {
	ID          string `json:"id"`
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	TotalCents  int64  `json:"totalCents"`
	CreatedUnix int64  `json:"createdUnix"`
	Items       []Item `json:"items"`
}

type Item struct {
	BookID    string `json:"bookId"`
	Title     string `json:"title"`
	Qty       int    `json:"qty"`
	UnitCents int64  `json:"unitCents"`
	LineCents int64  `json:"lineCents"`
}

// NewOrder fills in line and order totals from the unit prices.
func NewOrder(userID int64, username string, items []Item, at time.Time) *Order {
	o := &Order{UserID: userID, Username: username, CreatedUnix: at.Unix()}
	var total money.Money
	for _, it := range items {
		line := money.Money{Cents: it.UnitCents}.Mul(it.Qty)
		it.LineCents = line.Cents
		total = total.Add(line)
		o.Items = append(o.Items, it)
	}
	o.TotalCents = total.Cents
	return o
}

func (o *Order) Total() money.Money { return money.Money{Cents: o.TotalCents} }

func (o *Order) CreatedAt() time.Time { return time.Unix(o.CreatedUnix, 0).UTC() }
