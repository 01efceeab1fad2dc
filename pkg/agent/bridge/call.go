package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/artex-assurances/aria/pkg/agent/audit"
	"github.com/artex-assurances/aria/pkg/agent/identity"
	"github.com/artex-assurances/aria/pkg/agent/llm"
	"github.com/artex-assurances/aria/pkg/agent/tools"
)

// Turner runs one caller utterance against the model. Satisfied by
// *llm.Runner; tests use a scripted fake.
type Turner interface {
	Turn(ctx context.Context, call *tools.CallContext, conv *llm.Conversation, userText string) (string, error)
	Evaluate(ctx context.Context, transcript string) (llm.Evaluation, error)
}

// Call is the state of one phone call: journal id, identity session,
// model conversation and the transcript being accumulated.
type Call struct {
	mu     sync.Mutex
	ctx    *tools.CallContext
	conv   *llm.Conversation
	lines  []string
	failed bool
	ended  bool

	recorder audit.Recorder
	logger   *slog.Logger
}

// calls below this many transcript lines are not worth a model evaluation.
const evaluationThreshold = 2

// CallFactory wires new calls. Store may be nil (in-memory identity only).
type CallFactory struct {
	Recorder audit.Recorder
	Store    identity.Store
	Turner   Turner
	Logger   *slog.Logger
}

// Start opens the journal row and the identity session for a new call.
func (f *CallFactory) Start(ctx context.Context, roomID, callerNumber string) (*Call, error) {
	recorder := f.Recorder
	if recorder == nil {
		recorder = audit.Nop{}
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	callID, err := recorder.StartCall(ctx, roomID, callerNumber)
	if err != nil {
		// A journaling outage must not reject calls; run unjournaled.
		logger.Error("call journal open failed", "room_id", roomID, "error", err)
		callID = 0
	}
	session, err := identity.Resume(ctx, roomID, f.Store, logger)
	if err != nil {
		logger.Warn("identity resume failed, starting empty", "room_id", roomID, "error", err)
		session = identity.NewSession(roomID, f.Store, logger)
	}
	return &Call{
		ctx:      &tools.CallContext{CallID: callID, RoomID: roomID, Session: session},
		conv:     llm.NewConversation(),
		recorder: recorder,
		logger:   logger,
	}, nil
}

func (c *Call) CallID() int64 { return c.ctx.CallID }

// Greet returns the opening line, records it in the transcript and journals
// it as a spoken action.
func (c *Call) Greet(ctx context.Context) string {
	greeting := llm.Greeting()
	c.addLine("ARIA", greeting)
	c.say(ctx, greeting)
	return greeting
}

// HandleTranscript runs one final caller utterance and returns the reply to
// speak. Non-final (interim) transcripts must be filtered out by the caller.
func (c *Call) HandleTranscript(ctx context.Context, turner Turner, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	c.addLine("Appelant", text)

	reply, err := turner.Turn(ctx, c.ctx, c.conv, text)
	if err != nil {
		c.setFailed()
		return "", fmt.Errorf("turn for room %s: %w", c.ctx.RoomID, err)
	}
	c.addLine("ARIA", reply)
	c.say(ctx, reply)
	return reply, nil
}

// say journals one spoken agent line. Fire-and-forget like all journaling.
func (c *Call) say(ctx context.Context, text string) {
	if c.ctx.CallID == 0 {
		return
	}
	err := c.recorder.RecordAction(ctx, c.ctx.CallID, audit.Action{Type: audit.ActionSay, Message: text})
	if err != nil {
		c.logger.Warn("say journaling failed", "call_id", c.ctx.CallID, "error", err)
	}
}

// End closes the call: best-effort post-call evaluation, journal finalization,
// identity teardown. Safe to call once; later calls are no-ops.
func (c *Call) End(ctx context.Context, turner Turner) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return
	}
	c.ended = true
	transcript := strings.Join(c.lines, "\n")
	nLines := len(c.lines)
	failed := c.failed
	c.mu.Unlock()

	status := audit.StatusCompleted
	if failed {
		status = audit.StatusFailed
	}

	var eval llm.Evaluation
	if nLines > evaluationThreshold {
		ev, err := turner.Evaluate(ctx, transcript)
		if err != nil {
			c.logger.Warn("call evaluation failed", "call_id", c.ctx.CallID, "error", err)
		} else {
			eval = ev
		}
	}

	if c.ctx.CallID != 0 {
		err := c.recorder.EndCall(ctx, c.ctx.CallID, audit.CallEnd{
			Summary:    eval.Summary,
			Transcript: transcript,
			Status:     status,
		})
		if err != nil {
			c.logger.Error("call journal close failed", "call_id", c.ctx.CallID, "error", err)
		}
		if eval != (llm.Evaluation{}) {
			err := c.recorder.RecordEvaluation(ctx, c.ctx.CallID, audit.Evaluation{
				Summary:    eval.Summary,
				Compliance: eval.Compliance,
				Resolution: eval.Resolution,
			})
			if err != nil {
				c.logger.Warn("evaluation journaling failed", "call_id", c.ctx.CallID, "error", err)
			}
		}
	}

	c.ctx.Session.Clear(ctx)
	c.ctx.Session.Discard(ctx)
}

func (c *Call) addLine(speaker, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, speaker+" : "+text)
}

func (c *Call) setFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = true
}

// Transcript returns the accumulated transcript so far.
func (c *Call) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}
