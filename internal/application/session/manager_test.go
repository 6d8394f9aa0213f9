package session

import (
	"sync"
	"testing"
	"time"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager(30 * time.Minute)

	s, err := m.Create("0x1111111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID() == "" {
		t.Error("expected non-empty session id")
	}
	if s.Wallet() != "0x1111111111111111111111111111111111111111" {
		t.Errorf("unexpected wallet: %s", s.Wallet())
	}
	if s.Summary().Status != StatusNone {
		t.Errorf("expected initial status %q, got %q", StatusNone, s.Summary().Status)
	}

	got, ok := m.Get(s.ID())
	if !ok || got != s {
		t.Error("expected to retrieve the created session")
	}

	if _, ok := m.Get("missing"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestSession_SelectBumpsEpoch(t *testing.T) {
	m := NewManager(30 * time.Minute)
	s, _ := m.Create("0x1111111111111111111111111111111111111111")

	e1 := s.Select("ETH")
	e2 := s.Select("USDC")

	if e2 != e1+1 {
		t.Errorf("expected epoch to increment, got %d then %d", e1, e2)
	}
	if s.Symbol() != "USDC" {
		t.Errorf("expected selected symbol USDC, got %s", s.Symbol())
	}
	if sum := s.Summary(); sum.Status != StatusPending || sum.Epoch != e2 {
		t.Errorf("expected pending summary for epoch %d, got %+v", e2, sum)
	}
}

func TestSession_StaleResultsDiscarded(t *testing.T) {
	m := NewManager(30 * time.Minute)
	s, _ := m.Create("0x1111111111111111111111111111111111111111")

	staleEpoch := s.Select("ETH")
	currentEpoch := s.Select("USDC")

	// A slow response for the first selection resolves after the second
	// selection: it must be discarded, not overwrite newer state.
	if s.Publish(staleEpoch, "sell ETH on aurora") {
		t.Error("stale publish must be rejected")
	}
	if sum := s.Summary(); sum.Status != StatusPending || sum.Symbol != "USDC" {
		t.Errorf("stale publish corrupted session state: %+v", sum)
	}

	if !s.Publish(currentEpoch, "sell USDC on borealis") {
		t.Error("current publish must succeed")
	}
	if sum := s.Summary(); sum.Status != StatusReady || sum.Text != "sell USDC on borealis" {
		t.Errorf("unexpected summary after publish: %+v", sum)
	}

	// Stale failures are discarded the same way.
	if s.Fail(staleEpoch) {
		t.Error("stale failure must be rejected")
	}
	if sum := s.Summary(); sum.Status != StatusReady {
		t.Errorf("stale failure corrupted session state: %+v", sum)
	}
}

func TestSession_FailMarksUnavailable(t *testing.T) {
	m := NewManager(30 * time.Minute)
	s, _ := m.Create("0x1111111111111111111111111111111111111111")

	epoch := s.Select("ETH")
	if !s.Fail(epoch) {
		t.Fatal("expected failure for current epoch to register")
	}
	if sum := s.Summary(); sum.Status != StatusUnavailable {
		t.Errorf("expected unavailable status, got %+v", sum)
	}
}

func TestSession_ConcurrentSelects(t *testing.T) {
	m := NewManager(30 * time.Minute)
	s, _ := m.Create("0x1111111111111111111111111111111111111111")

	const selects = 50
	var wg sync.WaitGroup
	for i := 0; i < selects; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			epoch := s.Select("ETH")
			// Publishing under our own epoch either wins (we are the
			// latest selection) or is rejected; it can never publish
			// under someone else's epoch.
			if s.Publish(epoch, "summary") && s.Epoch() != epoch {
				t.Error("publish succeeded for a superseded epoch")
			}
		}()
	}
	wg.Wait()

	if s.Epoch() != selects {
		t.Errorf("expected final epoch %d, got %d", selects, s.Epoch())
	}
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(10 * time.Minute)
	m.now = func() time.Time { return now }

	stale, _ := m.Create("0x1111111111111111111111111111111111111111")
	_ = stale

	// Advance past the TTL; a fresh session created now must survive.
	now = now.Add(11 * time.Minute)
	fresh, _ := m.Create("0x2222222222222222222222222222222222222222")

	if removed := m.Sweep(); removed != 1 {
		t.Errorf("expected 1 swept session, got %d", removed)
	}
	if _, ok := m.Get(fresh.ID()); !ok {
		t.Error("fresh session must survive the sweep")
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 live session, got %d", m.Count())
	}
}

func TestManager_PollingKeepsSessionAlive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(10 * time.Minute)
	m.now = func() time.Time { return now }

	s, _ := m.Create("0x1111111111111111111111111111111111111111")

	// A client polling for its summary every few minutes stays within the
	// idle TTL even though total session age exceeds it.
	for i := 0; i < 4; i++ {
		now = now.Add(6 * time.Minute)
		if _, ok := m.Get(s.ID()); !ok {
			t.Fatalf("session lost after %d polls", i+1)
		}
		if removed := m.Sweep(); removed != 0 {
			t.Fatalf("sweep removed an actively polled session after %d polls", i+1)
		}
	}

	// Once the client stops polling, the idle TTL applies again.
	now = now.Add(11 * time.Minute)
	if removed := m.Sweep(); removed != 1 {
		t.Errorf("expected idle session to be swept, got %d removals", removed)
	}
}
