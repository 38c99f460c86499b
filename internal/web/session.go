package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/cart"
)

const (
	maxSessions = 10000
	maxNotices  = 20
)

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// noticeBuffer collects the messages a page should show on its next render.
type noticeBuffer struct {
	mu    sync.Mutex
	items []Notice
}

func (b *noticeBuffer) push(level, msg string) {
	if msg == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, Notice{Level: level, Message: msg})
	if len(b.items) > maxNotices {
		b.items = b.items[len(b.items)-maxNotices:]
	}
}

func (b *noticeBuffer) Info(msg string)  { b.push("info", msg) }
func (b *noticeBuffer) Error(msg string) { b.push("error", msg) }

// Notify turns cart events into notices.
func (b *noticeBuffer) Notify(e cart.Event) {
	switch e.Kind {
	case cart.EventNotice:
		b.Error(e.Message)
	case cart.EventAdded, cart.EventCheckedOut:
		b.Info(e.Message)
	}
}

func (b *noticeBuffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Session is one browser: its login, its cart and its pending notices.
type Session struct {
	ID      string
	Cart    *cart.Manager
	Notices *noticeBuffer

	mu   sync.RWMutex
	auth *auth.Session
}

func (s *Session) Auth() *auth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Session) SetAuth(a *auth.Session) {
	s.mu.Lock()
	s.auth = a
	s.mu.Unlock()
}

func (s *Session) userID() int64 { return s.Auth().Claims().UserID }

// Logout empties the cart and drops the login. It is refused while a
// checkout is in flight so the order keeps the identity it started with.
func (s *Session) Logout() error {
	if err := s.Cart.Clear(); err != nil {
		return err
	}
	s.SetAuth(nil)
	return nil
}

type buyerKey struct{}

// withBuyer pins the login a checkout was started under.
func withBuyer(ctx context.Context, a *auth.Session) context.Context {
	return context.WithValue(ctx, buyerKey{}, a)
}

func buyerFrom(ctx context.Context) *auth.Session {
	a, _ := ctx.Value(buyerKey{}).(*auth.Session)
	return a
}

// Registry holds live sessions and forgets idle ones after the TTL.
type Registry struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
	build    func(*Session)
}

func NewRegistry(ttl time.Duration, build func(*Session)) *Registry {
	return &Registry{
		sessions: expirable.NewLRU[string, *Session](maxSessions, nil, ttl),
		build:    build,
	}
}

// Get returns the session for id, creating a fresh one when id is unknown.
// The bool is true when a new session was made.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		if s, ok := r.sessions.Get(id); ok {
			r.sessions.Add(id, s)
			return s, false
		}
	}
	s := &Session{ID: uuid.NewString(), Notices: &noticeBuffer{}}
	r.build(s)
	r.sessions.Add(s.ID, s)
	return s, true
}

func (r *Registry) Len() int { return r.sessions.Len() }
