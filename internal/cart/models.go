package cart

import (
	"context"

	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
)

// Line is one distinct book in the cart. Quantity is always >= 1.
type Line struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

// Receipt is a completed checkout. Books[i] is the live record Lines[i]
// was validated against.
type Receipt struct {
	Lines []Line
	Books []catalog.Book
}

type EventKind string

const (
	EventCountChanged EventKind = "count_changed"
	EventLineChanged  EventKind = "line_changed"
	EventAdded        EventKind = "added"
	EventRemoved      EventKind = "removed"
	EventEmptied      EventKind = "emptied"
	EventNonEmpty     EventKind = "non_empty"
	EventNotice       EventKind = "notice"
	EventCheckedOut   EventKind = "checked_out"
	EventCleared      EventKind = "cleared"
)

// Event is what the display side gets told after a cart operation.
type Event struct {
	Kind     EventKind `json:"kind"`
	BookID   string    `json:"bookId,omitempty"`
	Quantity int       `json:"quantity,omitempty"`
	Count    int       `json:"count"`
	Message  string    `json:"message,omitempty"`
	Lines    []Line    `json:"lines,omitempty"`
}

type Notifier interface {
	Notify(Event)
}

type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// Fanout delivers each event to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(e Event) {
	for _, n := range f {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Gate decides whether the current user may touch the cart.
type Gate interface {
	Authorize() error
}

type GateFunc func() error

func (f GateFunc) Authorize() error { return f() }

type Catalog interface {
	GetBook(ctx context.Context, id string) (catalog.Book, error)
}

// Submitter sends the whole cart as one order.
type Submitter interface {
	SubmitOrder(ctx context.Context, lines []Line) error
}

type SubmitterFunc func(ctx context.Context, lines []Line) error

func (f SubmitterFunc) SubmitOrder(ctx context.Context, lines []Line) error { return f(ctx, lines) }

type invalidator interface {
	Invalidate(id string)
}
