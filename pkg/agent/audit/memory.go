package audit

import (
	"context"
	"sync"
)

// Memory is an in-process recorder used by tests and the local demo.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	calls   map[int64]*MemoryCall
	actions map[int64][]Action
}

type MemoryCall struct {
	RoomID       string
	CallerNumber string
	ClientID     int64
	Status       string
	Summary      string
	Transcript   string
	Feedback     *Feedback
	Evaluation   *Evaluation
}

type Feedback struct {
	Rating  int
	Comment string
}

func NewMemory() *Memory {
	return &Memory{
		nextID:  1,
		calls:   make(map[int64]*MemoryCall),
		actions: make(map[int64][]Action),
	}
}

var _ Recorder = (*Memory)(nil)

func (m *Memory) StartCall(_ context.Context, roomID, callerNumber string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.calls[id] = &MemoryCall{RoomID: roomID, CallerNumber: callerNumber, Status: StatusInProgress}
	return id, nil
}

func (m *Memory) SetClientContext(_ context.Context, callID, clientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.calls[callID]; ok {
		c.ClientID = clientID
	}
	return nil
}

func (m *Memory) RecordAction(_ context.Context, callID int64, action Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[callID] = append(m.actions[callID], action)
	return nil
}

func (m *Memory) RecordFeedback(_ context.Context, callID int64, rating int, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.calls[callID]; ok {
		c.Feedback = &Feedback{Rating: rating, Comment: comment}
	}
	return nil
}

func (m *Memory) RecordEvaluation(_ context.Context, callID int64, eval Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.calls[callID]; ok {
		e := eval
		c.Evaluation = &e
	}
	return nil
}

func (m *Memory) EndCall(_ context.Context, callID int64, end CallEnd) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.calls[callID]; ok {
		c.Status = end.Status
		if c.Status == "" {
			c.Status = StatusCompleted
		}
		c.Summary = end.Summary
		c.Transcript = end.Transcript
	}
	return nil
}

// Call returns a copy of the journal row for callID.
func (m *Memory) Call(callID int64) (MemoryCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[callID]
	if !ok {
		return MemoryCall{}, false
	}
	return *c, true
}

// Actions returns the recorded actions for callID in order.
func (m *Memory) Actions(callID int64) []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Action, len(m.actions[callID]))
	copy(out, m.actions[callID])
	return out
}
