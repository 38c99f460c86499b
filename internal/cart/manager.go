// Package cart holds the per-session shopping cart and its checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
	"github.com/ahinestrog/mybookstore-storefront/internal/money"
)

// Manager is one user's cart. Lines keep insertion order and at most one
// line exists per book.
//
// Mutations on the same book run one at a time, including the inventory
// fetch they wait on, and every delta is applied to the quantity held at
// that moment. While a checkout is in flight all mutations are refused.
type Manager struct {
	gate   Gate
	live   Catalog
	prices Catalog
	submit Submitter
	notify Notifier
	log    zerolog.Logger

	books *bookLocks
	busy  atomic.Bool

	mu    sync.Mutex
	lines []Line
}

type Option func(*Manager)

// WithPriceCatalog sets the lookup used by TotalCost. It may be cached;
// inventory checks always use the live catalog.
func WithPriceCatalog(c Catalog) Option { return func(m *Manager) { m.prices = c } }

func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notify = n } }

func WithLogger(l zerolog.Logger) Option { return func(m *Manager) { m.log = l } }

// New builds an empty cart. A nil gate lets every call through.
func New(gate Gate, live Catalog, submit Submitter, opts ...Option) *Manager {
	m := &Manager{
		gate:   gate,
		live:   live,
		prices: live,
		submit: submit,
		notify: Fanout(nil),
		log:    zerolog.Nop(),
		books:  newBookLocks(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Add puts one more copy of the book in the cart, provided the live
// inventory covers it.
func (m *Manager) Add(ctx context.Context, bookID string) error {
	if err := m.ready(); err != nil {
		return m.fail(err)
	}
	unlock := m.books.lock(bookID)
	defer unlock()

	book, err := m.live.GetBook(ctx, bookID)
	if err != nil {
		return m.fail(fmt.Errorf("add to cart: %w", err))
	}

	m.mu.Lock()
	if m.busy.Load() {
		m.mu.Unlock()
		return m.fail(ErrCheckoutInProgress)
	}
	i := m.index(bookID)
	current := 0
	if i >= 0 {
		current = m.lines[i].Quantity
	}
	if current+1 > book.Inventory {
		m.mu.Unlock()
		m.log.Debug().Str("book", bookID).Int("have", current).Int("inventory", book.Inventory).Msg("add refused")
		return m.fail(&InsufficientInventoryError{BookID: bookID, Title: book.Title, Available: book.Inventory, Requested: current + 1})
	}
	if i < 0 {
		m.lines = append(m.lines, Line{BookID: bookID, Quantity: 1})
		i = len(m.lines) - 1
	} else {
		m.lines[i].Quantity++
	}
	qty, count := m.lines[i].Quantity, m.countLocked()
	m.mu.Unlock()

	m.invalidate(bookID)
	m.emit(Event{Kind: EventLineChanged, BookID: bookID, Quantity: qty, Count: count})
	m.emit(Event{Kind: EventAdded, BookID: bookID, Quantity: qty, Count: count, Message: fmt.Sprintf("%s added to cart", titleOr(book))})
	m.emit(Event{Kind: EventCountChanged, Count: count})
	if count == 1 {
		m.emit(Event{Kind: EventNonEmpty, Count: count})
	}
	return nil
}

// SetQuantity sets the line to exactly newQuantity. Zero or less removes
// the line; anything above maxInventory is refused. Absent books are a
// no-op.
func (m *Manager) SetQuantity(bookID string, newQuantity, maxInventory int) error {
	if err := m.ready(); err != nil {
		return m.fail(err)
	}
	if newQuantity <= 0 {
		return m.Remove(bookID)
	}
	unlock := m.books.lock(bookID)
	defer unlock()
	return m.setQuantity(bookID, "", newQuantity, maxInventory)
}

// ChangeQuantity is SetQuantity with the ceiling read from the live
// catalog while the book's lock is held.
func (m *Manager) ChangeQuantity(ctx context.Context, bookID string, newQuantity int) error {
	if err := m.ready(); err != nil {
		return m.fail(err)
	}
	if newQuantity <= 0 {
		return m.Remove(bookID)
	}
	unlock := m.books.lock(bookID)
	defer unlock()

	if !m.contains(bookID) {
		return nil
	}
	book, err := m.live.GetBook(ctx, bookID)
	if err != nil {
		return m.fail(fmt.Errorf("update quantity: %w", err))
	}
	return m.setQuantity(bookID, book.Title, newQuantity, book.Inventory)
}

func (m *Manager) setQuantity(bookID, title string, n, ceiling int) error {
	if n > ceiling {
		err := &InsufficientInventoryError{BookID: bookID, Title: title, Available: ceiling, Requested: n}
		return m.failWith(err, fmt.Sprintf("Cannot set quantity above %d (available inventory)", ceiling))
	}

	m.mu.Lock()
	if m.busy.Load() {
		m.mu.Unlock()
		return m.fail(ErrCheckoutInProgress)
	}
	i := m.index(bookID)
	if i < 0 {
		m.mu.Unlock()
		return nil
	}
	changed := m.lines[i].Quantity != n
	m.lines[i].Quantity = n
	count := m.countLocked()
	m.mu.Unlock()

	if changed {
		m.invalidate(bookID)
		m.emit(Event{Kind: EventLineChanged, BookID: bookID, Quantity: n, Count: count})
		m.emit(Event{Kind: EventCountChanged, Count: count})
	}
	return nil
}

// Remove drops the book's line. Removing an absent book is not an error.
func (m *Manager) Remove(bookID string) error {
	if err := m.ready(); err != nil {
		return m.fail(err)
	}
	unlock := m.books.lock(bookID)
	defer unlock()

	m.mu.Lock()
	if m.busy.Load() {
		m.mu.Unlock()
		return m.fail(ErrCheckoutInProgress)
	}
	i := m.index(bookID)
	if i < 0 {
		m.mu.Unlock()
		return nil
	}
	m.lines = append(m.lines[:i], m.lines[i+1:]...)
	count := m.countLocked()
	m.mu.Unlock()

	m.invalidate(bookID)
	m.emit(Event{Kind: EventRemoved, BookID: bookID, Count: count})
	m.emit(Event{Kind: EventCountChanged, Count: count})
	if count == 0 {
		m.emit(Event{Kind: EventEmptied})
	}
	return nil
}

// TotalItems is the sum of all quantities. It never does I/O.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked()
}

// Lines returns a copy of the cart in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// TotalCost prices every line concurrently. A failed lookup fails the
// whole total.
func (m *Manager) TotalCost(ctx context.Context) (money.Money, error) {
	if err := m.authorize(); err != nil {
		return money.Money{}, m.fail(err)
	}
	lines := m.Lines()
	subtotals := make([]money.Money, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lines {
		g.Go(func() error {
			b, err := m.prices.GetBook(gctx, l.BookID)
			if err != nil {
				return fmt.Errorf("price of %s: %w", l.BookID, err)
			}
			subtotals[i] = b.UnitPrice().Mul(l.Quantity)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return money.Money{}, m.fail(err)
	}

	var total money.Money
	for _, s := range subtotals {
		total = total.Add(s)
	}
	return total, nil
}

// Checkout validates every line against live inventory and then submits
// the cart as a single order. Nothing is submitted unless every line
// passes. On success the cart is emptied and the receipt carries the
// submitted lines with the books they were validated against; on failure
// the cart is left as it was.
func (m *Manager) Checkout(ctx context.Context) (Receipt, error) {
	if err := m.authorize(); err != nil {
		return Receipt{}, m.fail(err)
	}
	if !m.busy.CompareAndSwap(false, true) {
		return Receipt{}, m.fail(ErrCheckoutInProgress)
	}
	defer m.busy.Store(false)

	lines := m.Lines()
	if len(lines) == 0 {
		return Receipt{}, m.fail(ErrEmptyCart)
	}

	books := make([]catalog.Book, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lines {
		g.Go(func() error {
			b, err := m.live.GetBook(gctx, l.BookID)
			if err != nil {
				return fmt.Errorf("checkout: %w", err)
			}
			books[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Receipt{}, m.fail(err)
	}
	for i, l := range lines {
		if l.Quantity > books[i].Inventory {
			m.log.Info().Str("book", l.BookID).Int("requested", l.Quantity).Int("available", books[i].Inventory).Msg("checkout aborted")
			return Receipt{}, m.fail(&InsufficientInventoryError{
				BookID: l.BookID, Title: books[i].Title, Available: books[i].Inventory, Requested: l.Quantity,
			})
		}
	}

	if err := m.submit.SubmitOrder(ctx, lines); err != nil {
		m.log.Warn().Err(err).Int("lines", len(lines)).Msg("order submission failed")
		return Receipt{}, m.fail(&SubmissionError{Err: err})
	}

	m.mu.Lock()
	m.lines = nil
	m.mu.Unlock()

	for _, l := range lines {
		m.invalidate(l.BookID)
	}
	m.log.Info().Int("lines", len(lines)).Msg("checkout complete")
	m.emit(Event{Kind: EventCheckedOut, Lines: lines, Message: "Purchase completed successfully"})
	m.emit(Event{Kind: EventCountChanged})
	m.emit(Event{Kind: EventEmptied})
	return Receipt{Lines: lines, Books: books}, nil
}

// Busy reports whether a checkout is in flight.
func (m *Manager) Busy() bool { return m.busy.Load() }

// Clear empties the cart without asking anyone, as on logout. It is
// refused while a checkout is in flight.
func (m *Manager) Clear() error {
	m.mu.Lock()
	if m.busy.Load() {
		m.mu.Unlock()
		return ErrCheckoutInProgress
	}
	had := len(m.lines) > 0
	m.lines = nil
	m.mu.Unlock()

	if had {
		m.emit(Event{Kind: EventCleared})
		m.emit(Event{Kind: EventCountChanged})
		m.emit(Event{Kind: EventEmptied})
	}
	return nil
}

func (m *Manager) authorize() error {
	if m.gate == nil {
		return nil
	}
	return m.gate.Authorize()
}

func (m *Manager) ready() error {
	if err := m.authorize(); err != nil {
		return err
	}
	if m.busy.Load() {
		return ErrCheckoutInProgress
	}
	return nil
}

func (m *Manager) index(bookID string) int {
	for i, l := range m.lines {
		if l.BookID == bookID {
			return i
		}
	}
	return -1
}

func (m *Manager) contains(bookID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index(bookID) >= 0
}

func (m *Manager) countLocked() int {
	n := 0
	for _, l := range m.lines {
		n += l.Quantity
	}
	return n
}

func (m *Manager) invalidate(bookID string) {
	if inv, ok := m.prices.(invalidator); ok {
		inv.Invalidate(bookID)
	}
}

func (m *Manager) emit(e Event) {
	if m.notify != nil {
		m.notify.Notify(e)
	}
}

// fail surfaces err as a notice and returns it.
func (m *Manager) fail(err error) error { return m.failWith(err, noticeFor(err)) }

func (m *Manager) failWith(err error, notice string) error {
	m.emit(Event{Kind: EventNotice, Message: notice, Count: m.TotalItems()})
	return err
}

func noticeFor(err error) string {
	var (
		ie *InsufficientInventoryError
		se *SubmissionError
	)
	switch {
	case errors.As(err, &ie):
		name := ie.Title
		if name == "" {
			name = ie.BookID
		}
		return fmt.Sprintf("Not enough inventory for %q. Available: %d, requested: %d", name, ie.Available, ie.Requested)
	case errors.As(err, &se):
		return se.Error()
	case errors.Is(err, catalog.ErrNotFound):
		return "Book not found"
	default:
		return capitalize(err.Error())
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func titleOr(b catalog.Book) string {
	if b.Title != "" {
		return b.Title
	}
	return "Book"
}
