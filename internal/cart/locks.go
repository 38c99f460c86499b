package cart

import "sync"

// bookLocks hands out one mutex per book id, dropping it once unused.
type bookLocks struct {
	mu    sync.Mutex
	locks map[string]*bookLock
}

type bookLock struct {
	sync.Mutex
	refs int
}

func newBookLocks() *bookLocks {
	return &bookLocks{locks: make(map[string]*bookLock)}
}

func (b *bookLocks) lock(id string) (unlock func()) {
	b.mu.Lock()
	l, ok := b.locks[id]
	if !ok {
		l = &bookLock{}
		b.locks[id] = l
	}
	l.refs++
	b.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		b.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.locks, id)
		}
		b.mu.Unlock()
	}
}

func (b *bookLocks) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.locks)
}
