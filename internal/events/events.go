package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/ahinestrog/mybookstore-storefront/internal/cart"
)

// Routing keys published by the storefront.
const (
	RKCartPrefix    = "cart."
	RKOrderRecorded = "order.recorded"
)

func CartKey(k cart.EventKind) string { return RKCartPrefix + string(k) }

type CartEventPayload struct {
	SessionID string         `json:"session_id"`
	UserID    int64          `json:"user_id,omitempty"`
	Kind      cart.EventKind `json:"kind"`
	BookID    string         `json:"book_id,omitempty"`
	Quantity  int            `json:"quantity,omitempty"`
	Count     int            `json:"count"`
	Message   string         `json:"message,omitempty"`
	Lines     []cart.Line    `json:"lines,omitempty"`
	At        time.Time      `json:"at"`
}

type OrderRecordedPayload struct {
	OrderID    string         `json:"order_id"`
	UserID     int64          `json:"user_id"`
	Items      []OrderItemEvt `json:"items"`
	TotalCents int64          `json:"total_cents"`
}

type OrderItemEvt struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	Qty       int    `json:"qty"`
	UnitCents int64  `json:"unit_cents"`
	LineCents int64  `json:"line_cents"`
}

// Publisher is the part of Rabbit the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
}

// CartNotifier forwards one session's cart events to the exchange.
// Publishing errors are logged and never reach the cart.
type CartNotifier struct {
	pub       Publisher
	sessionID string
	userID    func() int64
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewCartNotifier(pub Publisher, sessionID string, userID func() int64, log zerolog.Logger) *CartNotifier {
	if userID == nil {
		userID = func() int64 { return 0 }
	}
	return &CartNotifier{
		pub:       pub,
		sessionID: sessionID,
		userID:    userID,
		timeout:   2 * time.Second,
		log:       log,
		now:       time.Now,
	}
}

func (n *CartNotifier) Notify(e cart.Event) {
	if n == nil || n.pub == nil {
		return
	}
	p := CartEventPayload{
		SessionID: n.sessionID,
		UserID:    n.userID(),
		Kind:      e.Kind,
		BookID:    e.BookID,
		Quantity:  e.Quantity,
		Count:     e.Count,
		Message:   e.Message,
		Lines:     e.Lines,
		At:        n.now().UTC(),
	}
	body, err := json.Marshal(p)
	if err != nil {
		n.log.Error().Err(err).Msg("marshal cart event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.pub.Publish(ctx, CartKey(e.Kind), body); err != nil {
		n.log.Warn().Err(err).Str("rk", CartKey(e.Kind)).Msg("publish cart event")
	}
}
