// Package llm drives the model side of a call: it sends the conversation to
// Gemini, executes the function calls the model requests through the tool
// registry, and loops until the model produces a speakable reply.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/agent/tools"
)

// Generator is the slice of the Gemini client the runner needs. Satisfied by
// (*genai.Client).Models.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ErrNoReply is returned when the model keeps requesting tools past the step
// limit without ever producing text.
var ErrNoReply = errors.New("llm: model produced no reply within the step limit")

const defaultMaxSteps = 8

type Runner struct {
	gen      Generator
	model    string
	registry *tools.Registry
	logger   *slog.Logger
	maxSteps int
}

func NewRunner(gen Generator, model string, registry *tools.Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		gen:      gen,
		model:    model,
		registry: registry,
		logger:   logger,
		maxSteps: defaultMaxSteps,
	}
}

// Conversation is the model-visible history of one call.
type Conversation struct {
	contents []*genai.Content
}

func NewConversation() *Conversation { return &Conversation{} }

func (c *Conversation) append(content *genai.Content) {
	c.contents = append(c.contents, content)
}

// Len reports the number of turns, tool rounds included.
func (c *Conversation) Len() int { return len(c.contents) }

// Turn runs one caller utterance to completion: the model may request several
// rounds of tool calls before answering. The returned string is what the
// agent should say.
func (r *Runner) Turn(ctx context.Context, call *tools.CallContext, conv *Conversation, userText string) (string, error) {
	conv.append(genai.NewContentFromText(userText, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(), genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: r.registry.Declarations()},
		},
	}

	for step := 0; step < r.maxSteps; step++ {
		resp, err := r.gen.GenerateContent(ctx, r.model, conv.contents, config)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", errors.New("llm: empty response")
		}
		conv.append(resp.Candidates[0].Content)

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return resp.Text(), nil
		}

		parts := make([]*genai.Part, 0, len(calls))
		for _, fc := range calls {
			r.logger.Debug("tool requested", "tool", fc.Name, "call_id", call.CallID, "step", step)
			result := r.registry.Dispatch(ctx, call, fc.Name, fc.Args)
			parts = append(parts, genai.NewPartFromFunctionResponse(fc.Name, map[string]any{
				"result": result,
			}))
		}
		conv.append(genai.NewContentFromParts(parts, genai.RoleUser))
	}

	r.logger.Warn("step limit reached", "call_id", call.CallID, "max_steps", r.maxSteps)
	return "", ErrNoReply
}

// Evaluation is the post-call quality review stored in the call journal:
// a short summary plus the compliance and resolution scores.
type Evaluation struct {
	Summary    string `json:"summary"`
	Compliance string `json:"compliance"`
	Resolution string `json:"resolution"`
}

// Evaluate reviews a finished call in a single model round. The model is asked
// for JSON; a reply that does not parse is kept as a plain summary so the
// journal never loses the call.
func (r *Runner) Evaluate(ctx context.Context, transcript string) (Evaluation, error) {
	contents := []*genai.Content{genai.NewContentFromText(EvaluationPrompt(transcript), genai.RoleUser)}
	resp, err := r.gen.GenerateContent(ctx, r.model, contents, nil)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate call: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	var ev Evaluation
	if err := json.Unmarshal([]byte(stripFences(text)), &ev); err != nil || ev.Summary == "" {
		return Evaluation{Summary: text}, nil
	}
	return ev, nil
}

// stripFences removes the markdown code fences models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
