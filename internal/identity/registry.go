package identity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	ctx  *Context
	seen time.Time
}

// Registry keeps one Context per sign-in session id.
type Registry struct {
	profiles ProfileStore
	logger   *zap.Logger

	mu       sync.Mutex
	contexts map[string]*entry
}

func NewRegistry(profiles ProfileStore, logger *zap.Logger) *Registry {
	return &Registry{
		profiles: profiles,
		logger:   logger,
		contexts: make(map[string]*entry),
	}
}

// Open returns the Context for sid, starting a new one against auth when none
// exists yet.
func (r *Registry) Open(ctx context.Context, sid string, auth Authenticator) (*Context, error) {
	if c := r.Lookup(sid); c != nil {
		return c, nil
	}

	c := New(auth, r.profiles, r.logger.With(zap.String("sid", sid)))
	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.contexts[sid]; ok {
		// Lost a race with another request for the same session.
		c.Close()
		existing.seen = time.Now()
		return existing.ctx, nil
	}
	r.contexts[sid] = &entry{ctx: c, seen: time.Now()}
	return c, nil
}

// Lookup returns the Context for sid, or nil.
func (r *Registry) Lookup(sid string) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.contexts[sid]
	if !ok {
		return nil
	}
	e.seen = time.Now()
	return e.ctx
}

// Drop closes and forgets the Context for sid.
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	e, ok := r.contexts[sid]
	delete(r.contexts, sid)
	r.mu.Unlock()
	if ok {
		e.ctx.Close()
	}
}

// DropIdle forgets contexts not looked up for maxIdle and returns how many
// were dropped.
func (r *Registry) DropIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var stale []*Context
	r.mu.Lock()
	for sid, e := range r.contexts {
		if e.seen.Before(cutoff) {
			stale = append(stale, e.ctx)
			delete(r.contexts, sid)
		}
	}
	r.mu.Unlock()
	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}

// Close closes every Context.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.contexts
	r.contexts = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range all {
		e.ctx.Close()
	}
}
