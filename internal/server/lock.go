package server

import "sync"

// graphLocks serializes read-modify-write cycles on stored graphs of this
// process, one mutex per document id. Entries are dropped when unused.
type graphLocks struct {
	mu    sync.Mutex
	locks map[string]*graphLock
}

type graphLock struct {
	sync.Mutex
	refs int
}

// lock blocks until the caller holds id and returns the matching unlock.
func (g *graphLocks) lock(id string) (unlock func()) {
	g.mu.Lock()
	if g.locks == nil {
		g.locks = make(map[string]*graphLock)
	}
	l, ok := g.locks[id]
	if !ok {
		l = &graphLock{}
		g.locks[id] = l
	}
	l.refs++
	g.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		g.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(g.locks, id)
		}
		g.mu.Unlock()
	}
}
