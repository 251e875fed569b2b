package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestSearchTracker_NewerSearchCancelsOlder(t *testing.T) {
	tracker := NewSearchTracker()

	firstCtx, first := tracker.Begin(context.Background(), "s1")
	secondCtx, second := tracker.Begin(context.Background(), "s1")
	defer second.Finish()

	if !errors.Is(firstCtx.Err(), context.Canceled) {
		t.Errorf("first search ctx err = %v, want context.Canceled", firstCtx.Err())
	}
	if secondCtx.Err() != nil {
		t.Errorf("second search ctx err = %v, want nil", secondCtx.Err())
	}
	if first.Current() {
		t.Error("first search still current after a newer one began")
	}
	if !second.Current() {
		t.Error("second search not current")
	}
	if first.ID == second.ID {
		t.Errorf("search IDs collide: %s", first.ID)
	}

	// Finishing the stale search must not evict the newer one
	first.Finish()
	if !second.Current() {
		t.Error("second search evicted by stale Finish")
	}
	if tracker.Active() != 1 {
		t.Errorf("Active() = %d, want 1", tracker.Active())
	}
}

func TestSearchTracker_SessionsAreIsolated(t *testing.T) {
	tracker := NewSearchTracker()

	ctxA, a := tracker.Begin(context.Background(), "a")
	_, b := tracker.Begin(context.Background(), "b")

	if ctxA.Err() != nil {
		t.Errorf("session a cancelled by session b: %v", ctxA.Err())
	}
	if !a.Current() || !b.Current() {
		t.Error("both sessions should be current")
	}
	if tracker.Active() != 2 {
		t.Errorf("Active() = %d, want 2", tracker.Active())
	}

	a.Finish()
	b.Finish()

	if tracker.Active() != 0 {
		t.Errorf("Active() = %d after Finish, want 0", tracker.Active())
	}
}

func TestSearchTracker_UntrackedSession(t *testing.T) {
	tracker := NewSearchTracker()

	ctx1, h1 := tracker.Begin(context.Background(), "")
	ctx2, h2 := tracker.Begin(context.Background(), "")

	if ctx1.Err() != nil || ctx2.Err() != nil {
		t.Error("untracked searches must not cancel each other")
	}
	if !h1.Current() || !h2.Current() {
		t.Error("untracked searches are always current")
	}
	if tracker.Active() != 0 {
		t.Errorf("Active() = %d, want 0", tracker.Active())
	}

	h1.Finish()
	if !errors.Is(ctx1.Err(), context.Canceled) {
		t.Errorf("ctx err after Finish = %v, want context.Canceled", ctx1.Err())
	}
	h2.Finish()
}

func TestSearchTracker_ParentCancellation(t *testing.T) {
	tracker := NewSearchTracker()
	parent, cancel := context.WithCancel(context.Background())

	ctx, h := tracker.Begin(parent, "s1")
	defer h.Finish()

	cancel()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("ctx err = %v, want context.Canceled", ctx.Err())
	}
	if !h.Current() {
		t.Error("parent cancellation does not supersede the search")
	}
}
