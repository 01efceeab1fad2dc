// Package tools implements the agent's function-calling surface. Every tool
// call from the model flows through the Registry, which journals the call,
// enforces the identity gate for sensitive tools, and journals the result.
//
// Tools that read or mutate client data are gated: they require a confirmed
// identity on the call's session and fail closed with a fixed refusal before
// any directory access happens.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/agent/audit"
	"github.com/artex-assurances/aria/pkg/agent/identity"
)

// Refusal and guidance messages shared across tools.
const (
	msgIdentityRequired = "Aucun client n'est actuellement sélectionné et confirmé. Veuillez d'abord rechercher et confirmer l'identité d'un client."
	msgInternalError    = "Désolé, une erreur technique est survenue. Pouvez-vous reformuler votre demande ?"
)

// CallContext carries the per-call state a tool needs: the journal id for
// auditing and the identity session that gates sensitive tools.
type CallContext struct {
	CallID  int64
	RoomID  string
	Session *identity.Session
}

// Executor is one callable tool.
type Executor interface {
	Name() string
	Declaration() *genai.FunctionDeclaration
	RequiresIdentity() bool
	Execute(ctx context.Context, call *CallContext, args map[string]any) (string, error)
}

// tool is the concrete executor used by the toolset: a declaration, a gate
// flag and a run function.
type tool struct {
	name  string
	decl  *genai.FunctionDeclaration
	gated bool
	run   func(ctx context.Context, call *CallContext, args map[string]any) (string, error)
}

func (t *tool) Name() string                            { return t.name }
func (t *tool) Declaration() *genai.FunctionDeclaration { return t.decl }
func (t *tool) RequiresIdentity() bool                  { return t.gated }
func (t *tool) Execute(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
	return t.run(ctx, call, args)
}

// NewStaticTool builds a parameterless executor. Mainly useful in tests and
// in the local demo.
func NewStaticTool(name, desc string, gated bool, run func(ctx context.Context, call *CallContext, args map[string]any) (string, error)) Executor {
	return &tool{
		name:  name,
		decl:  declaration(name, desc, objectSchema(map[string]*genai.Schema{})),
		gated: gated,
		run:   run,
	}
}

// Registry dispatches tool calls by name. It owns the cross-cutting concerns
// so individual tools stay free of audit and gating boilerplate.
type Registry struct {
	byName   map[string]Executor
	ordered  []string
	recorder audit.Recorder
	logger   *slog.Logger
}

func NewRegistry(recorder audit.Recorder, logger *slog.Logger, executors ...Executor) *Registry {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		byName:   make(map[string]Executor, len(executors)),
		recorder: recorder,
		logger:   logger,
	}
	for _, ex := range executors {
		if ex == nil {
			continue
		}
		if _, dup := r.byName[ex.Name()]; !dup {
			r.ordered = append(r.ordered, ex.Name())
		}
		r.byName[ex.Name()] = ex
	}
	return r
}

func (r *Registry) Has(name string) bool {
	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Declarations returns the function declarations advertised to the model.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.ordered))
	for _, name := range r.ordered {
		decls = append(decls, r.byName[name].Declaration())
	}
	return decls
}

// Dispatch runs one tool call and always returns a speakable result string.
// The identity gate runs before the tool body, so a gated tool invoked
// without a confirmed context never reaches the directory.
func (r *Registry) Dispatch(ctx context.Context, call *CallContext, name string, args map[string]any) string {
	name = strings.TrimSpace(name)
	r.record(ctx, call, audit.Action{Type: audit.ActionToolCall, ToolName: name, Params: args})

	result := r.execute(ctx, call, name, args)

	r.record(ctx, call, audit.Action{Type: audit.ActionToolResult, ToolName: name, Result: result})
	return result
}

func (r *Registry) execute(ctx context.Context, call *CallContext, name string, args map[string]any) string {
	ex, ok := r.byName[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name, "call_id", call.CallID)
		return fmt.Sprintf("L'outil %q n'est pas disponible.", name)
	}

	if ex.RequiresIdentity() {
		if _, confirmed := call.Session.Confirmed(); !confirmed {
			r.logger.Info("gated tool refused", "tool", name, "call_id", call.CallID,
				"state", call.Session.State().String())
			return msgIdentityRequired
		}
	}

	result, err := ex.Execute(ctx, call, args)
	if err != nil {
		r.logger.Error("tool execution failed", "tool", name, "call_id", call.CallID, "error", err)
		return msgInternalError
	}
	return result
}

// record is fire-and-forget: journaling never interrupts the conversation.
func (r *Registry) record(ctx context.Context, call *CallContext, action audit.Action) {
	if call.CallID == 0 {
		return
	}
	if err := r.recorder.RecordAction(ctx, call.CallID, action); err != nil {
		r.logger.Warn("action journaling failed", "tool", action.ToolName, "call_id", call.CallID, "error", err)
	}
}

// --- argument helpers ---

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]any, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// optStringArg distinguishes "absent" from "present but empty".
func optStringArg(args map[string]any, key string) *string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func declaration(name, desc string, params *genai.Schema) *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{Name: name, Description: desc, Parameters: params}
}

func stringParam(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func objectSchema(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}
