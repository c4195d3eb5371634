package server

import "sync"

// registry tracks running sessions by ID so Stop can close them. It wraps a
// sync.Map so session goroutines add and remove themselves without sharing a
// lock with the accept path.
type registry struct {
	m sync.Map
}

func newRegistry() *registry {
	return &registry{}
}

// add stores sess under its ID, overwriting any previous entry.
func (r *registry) add(sess Session) {
	r.m.Store(sess.ID(), sess)
}

// remove drops the session with the given id. Unknown ids are a no-op.
func (r *registry) remove(id uint32) {
	r.m.Delete(id)
}

// get returns the session with the given id, if present.
func (r *registry) get(id uint32) (Session, bool) {
	v, found := r.m.Load(id)
	if !found {
		return nil, false
	}

	return v.(Session), true
}

// each calls f for every registered session.
func (r *registry) each(f func(Session)) {
	r.m.Range(func(_, v any) bool {
		f(v.(Session))
		return true
	})
}

// len counts registered sessions. It iterates, so use it for bookkeeping,
// not hot paths.
func (r *registry) len() int {
	count := 0
	r.m.Range(func(_, _ any) bool {
		count++
		return true
	})

	return count
}
