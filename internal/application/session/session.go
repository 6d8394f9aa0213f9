// Package session tracks dashboard sessions and serializes token selection
// through a per-session generation counter. Every selection bumps the
// counter; an asynchronous result may only be published under the epoch it
// was started with, so a slow response for a superseded selection can never
// overwrite newer state.
package session

import (
	"sync"
	"time"
)

// Status describes the summary slot of a session.
type Status string

const (
	// StatusNone means no token has been selected yet
	StatusNone Status = "none"
	// StatusPending means generation for the current epoch is in flight
	StatusPending Status = "pending"
	// StatusReady means the summary text is available
	StatusReady Status = "ready"
	// StatusUnavailable means generation failed for the current epoch
	StatusUnavailable Status = "unavailable"
)

// Summary is the summary slot of a session at one epoch.
type Summary struct {
	Epoch       uint64    `json:"epoch"`
	Symbol      string    `json:"symbol"`
	Status      Status    `json:"status"`
	Text        string    `json:"text,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}

// Session is one dashboard session for a wallet.
type Session struct {
	mu         sync.Mutex
	id         string
	wallet     string
	epoch      uint64
	symbol     string
	summary    Summary
	createdAt  time.Time
	lastActive time.Time
	now        func() time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Wallet returns the wallet address the session was created for.
func (s *Session) Wallet() string { return s.wallet }

// Select records a token selection. It bumps the generation counter and
// resets the summary slot to pending for the new epoch; results from all
// earlier epochs are thereby invalidated.
func (s *Session) Select(symbol string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.symbol = symbol
	s.summary = Summary{
		Epoch:  s.epoch,
		Symbol: symbol,
		Status: StatusPending,
	}
	s.lastActive = s.now()
	return s.epoch
}

// Current reports whether the given epoch is still the latest selection.
func (s *Session) Current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == epoch
}

// Publish stores summary text for the given epoch. It reports false and
// leaves the session untouched when the epoch has been superseded.
func (s *Session) Publish(epoch uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return false
	}
	s.summary.Status = StatusReady
	s.summary.Text = text
	s.summary.GeneratedAt = s.now()
	return true
}

// Fail marks generation for the given epoch as unavailable. Stale failures
// are discarded the same way stale successes are.
func (s *Session) Fail(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return false
	}
	s.summary.Status = StatusUnavailable
	s.summary.Text = ""
	s.summary.GeneratedAt = s.now()
	return true
}

// Summary returns a copy of the current summary slot.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Symbol returns the currently selected token symbol.
func (s *Session) Symbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

// Epoch returns the current generation counter.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive.Before(cutoff)
}
