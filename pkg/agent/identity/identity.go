// Package identity holds the per-call identification state machine. A call
// starts with no candidate; a directory lookup that found exactly one record
// parks it as the pending candidate; only an explicit caller confirmation
// promotes it to the confirmed context that gated tools are allowed to act on.
//
// The two optional fields mirror the data model: a pending candidate may be
// set while a confirmed context from earlier in the call still exists (the
// caller asked to identify someone else), but tools that require identity read
// the confirmed context only, never the pending candidate.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/artex-assurances/aria/pkg/agent/directory"
)

// State is the derived position of a session in the confirmation flow.
type State int

const (
	StateNoCandidate State = iota
	StatePendingConfirmation
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StatePendingConfirmation:
		return "pending_confirmation"
	case StateConfirmed:
		return "confirmed"
	default:
		return "no_candidate"
	}
}

// ErrNoPendingCandidate is returned by Confirm and Deny when no lookup has
// parked a candidate first.
var ErrNoPendingCandidate = errors.New("identity: no pending candidate")

// ErrNotConfirmed is returned by Refresh when there is no confirmed context to
// refresh.
var ErrNotConfirmed = errors.New("identity: no confirmed context")

// Session is the identity state for a single call. It is owned by that call's
// conversation loop; tool invocations within a call run sequentially, but the
// mutex keeps snapshots consistent if the bridge inspects state concurrently.
type Session struct {
	mu        sync.Mutex
	callID    string
	pending   *directory.Client
	confirmed *directory.Client
	store     Store
	logger    *slog.Logger
}

// NewSession creates an empty session for callID. store may be nil, in which
// case state lives only in memory for the duration of the call.
func NewSession(callID string, store Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{callID: callID, store: store, logger: logger}
}

// Resume rebuilds a session from a previously persisted snapshot, if any.
// Used when a worker restarts mid-call with a durable store configured.
func Resume(ctx context.Context, callID string, store Store, logger *slog.Logger) (*Session, error) {
	s := NewSession(callID, store, logger)
	if store == nil {
		return s, nil
	}
	snap, ok, err := store.Load(ctx, callID)
	if err != nil {
		return nil, err
	}
	if ok {
		s.pending = snap.Pending
		s.confirmed = snap.Confirmed
	}
	return s, nil
}

func (s *Session) CallID() string { return s.callID }

// State derives the current state: a confirmed context dominates.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.confirmed != nil:
		return StateConfirmed
	case s.pending != nil:
		return StatePendingConfirmation
	default:
		return StateNoCandidate
	}
}

// SetPending parks a single-match lookup result for confirmation, overwriting
// any previous candidate. The confirmed context is untouched.
func (s *Session) SetPending(ctx context.Context, c directory.Client) {
	s.mu.Lock()
	cc := c
	s.pending = &cc
	s.mu.Unlock()
	s.persist(ctx)
}

// ClearPending drops the pending candidate (lookup found nothing).
func (s *Session) ClearPending(ctx context.Context) {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	s.persist(ctx)
}

// Confirm promotes the pending candidate to the confirmed context and clears
// it. It fails with ErrNoPendingCandidate when no lookup preceded it.
func (s *Session) Confirm(ctx context.Context) (directory.Client, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return directory.Client{}, ErrNoPendingCandidate
	}
	c := *s.pending
	s.confirmed = s.pending
	s.pending = nil
	s.mu.Unlock()
	s.persist(ctx)
	return c, nil
}

// Deny discards the pending candidate without touching the confirmed context.
func (s *Session) Deny(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return ErrNoPendingCandidate
	}
	s.pending = nil
	s.mu.Unlock()
	s.persist(ctx)
	return nil
}

// Clear unconditionally resets both fields. Idempotent; used as security
// hygiene before a possible new caller shares the session.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.pending = nil
	s.confirmed = nil
	s.mu.Unlock()
	s.persist(ctx)
}

// Confirmed returns the confirmed client, if any. Gated tools must use this
// id and nothing else.
func (s *Session) Confirmed() (directory.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed == nil {
		return directory.Client{}, false
	}
	return *s.confirmed, true
}

// Pending returns the unconfirmed candidate, if any.
func (s *Session) Pending() (directory.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return directory.Client{}, false
	}
	return *s.pending, true
}

// Refresh replaces the confirmed context with a re-read record after a
// successful mutation, so later reads in the same call see fresh data.
func (s *Session) Refresh(ctx context.Context, c directory.Client) error {
	s.mu.Lock()
	if s.confirmed == nil {
		s.mu.Unlock()
		return ErrNotConfirmed
	}
	cc := c
	s.confirmed = &cc
	s.mu.Unlock()
	s.persist(ctx)
	return nil
}

// Discard removes any persisted snapshot at end of call.
func (s *Session) Discard(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, s.callID); err != nil {
		s.logger.Warn("identity snapshot delete failed", "call_id", s.callID, "error", err)
	}
}

// persist is best-effort: a store failure never rolls back a transition.
func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	snap := Snapshot{Pending: clone(s.pending), Confirmed: clone(s.confirmed)}
	s.mu.Unlock()
	if err := s.store.Save(ctx, s.callID, snap); err != nil {
		s.logger.Warn("identity snapshot save failed", "call_id", s.callID, "error", err)
	}
}

func clone(c *directory.Client) *directory.Client {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}
