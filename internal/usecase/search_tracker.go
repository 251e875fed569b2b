package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SearchTracker enforces last-search-wins per client session: beginning a
// search cancels the one still running for the same session, and only the
// newest search may publish its result.
type SearchTracker struct {
	mu     sync.Mutex
	active map[string]*SearchHandle
}

// SearchHandle identifies one tracked search
type SearchHandle struct {
	ID        string
	sessionID string
	tracker   *SearchTracker
	cancel    context.CancelFunc
}

// NewSearchTracker creates an empty tracker
func NewSearchTracker() *SearchTracker {
	return &SearchTracker{
		active: make(map[string]*SearchHandle),
	}
}

// Begin registers a new search for sessionID and returns a context that is
// cancelled when a newer search for the same session begins. An empty
// sessionID yields an untracked search that is always current.
func (t *SearchTracker) Begin(ctx context.Context, sessionID string) (context.Context, *SearchHandle) {
	ctx, cancel := context.WithCancel(ctx)
	handle := &SearchHandle{
		ID:        uuid.NewString(),
		sessionID: sessionID,
		tracker:   t,
		cancel:    cancel,
	}

	if sessionID == "" {
		return ctx, handle
	}

	t.mu.Lock()
	if prev, ok := t.active[sessionID]; ok {
		prev.cancel()
	}
	t.active[sessionID] = handle
	t.mu.Unlock()

	return ctx, handle
}

// Current reports whether h is still the newest search of its session
func (h *SearchHandle) Current() bool {
	if h.sessionID == "" {
		return true
	}
	h.tracker.mu.Lock()
	defer h.tracker.mu.Unlock()
	return h.tracker.active[h.sessionID] == h
}

// Finish releases the search's context and forgets it if it is still current
func (h *SearchHandle) Finish() {
	h.cancel()
	if h.sessionID == "" {
		return
	}
	h.tracker.mu.Lock()
	defer h.tracker.mu.Unlock()
	if h.tracker.active[h.sessionID] == h {
		delete(h.tracker.active, h.sessionID)
	}
}

// Active returns the number of sessions with a search in flight
func (t *SearchTracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
