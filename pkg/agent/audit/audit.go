// Package audit writes the call journal consumed by the analytics dashboard:
// one row per call plus an append-only stream of agent actions. The agent
// treats it as a fire-and-forget sink; a journaling failure is logged and
// never interrupts the conversation.
package audit

import (
	"context"
	"time"
)

// Action types recorded in the journal.
const (
	ActionToolCall   = "TOOL_CALL"
	ActionToolResult = "TOOL_RESULT"
	ActionSay        = "SAY"
	ActionEvent      = "EVENT"
)

// Call statuses.
const (
	StatusInProgress = "En cours"
	StatusCompleted  = "Terminé"
	StatusFailed     = "Échoué"
)

type Action struct {
	Type     string
	ToolName string
	Params   map[string]any
	Result   string
	Message  string
}

type CallEnd struct {
	Summary    string
	Transcript string
	Status     string
}

// Evaluation holds the post-call quality scores produced by the companion
// evaluation job.
type Evaluation struct {
	Summary    string
	Compliance string
	Resolution string
}

// Recorder is the audit sink. StartCall returns the journal id that keys every
// later write for the call.
type Recorder interface {
	StartCall(ctx context.Context, roomID, callerNumber string) (int64, error)
	SetClientContext(ctx context.Context, callID, clientID int64) error
	RecordAction(ctx context.Context, callID int64, action Action) error
	RecordFeedback(ctx context.Context, callID int64, rating int, comment string) error
	RecordEvaluation(ctx context.Context, callID int64, eval Evaluation) error
	EndCall(ctx context.Context, callID int64, end CallEnd) error
}

// Nop discards everything. Used in tests and when no database is configured.
type Nop struct{}

func (Nop) StartCall(context.Context, string, string) (int64, error)  { return 0, nil }
func (Nop) SetClientContext(context.Context, int64, int64) error      { return nil }
func (Nop) RecordAction(context.Context, int64, Action) error         { return nil }
func (Nop) RecordFeedback(context.Context, int64, int, string) error  { return nil }
func (Nop) RecordEvaluation(context.Context, int64, Evaluation) error { return nil }
func (Nop) EndCall(context.Context, int64, CallEnd) error             { return nil }

var _ Recorder = Nop{}

// now is split out for tests.
var now = time.Now
