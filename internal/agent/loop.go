// Package agent implements the bounded tool-use conversation loop.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smartshopper/agent/internal/llm"
	"github.com/smartshopper/agent/internal/logging"
)

// defaultMaxRounds limits how many LLM round-trips one conversation may use.
const defaultMaxRounds = 5

// noTextPlaceholder is returned when a final response carries no text block.
const noTextPlaceholder = "(the model returned no text)"

// Config configures the agent loop.
type Config struct {
	Model       string
	MaxTokens   int
	MaxRounds   int
	ToolTimeout time.Duration
}

// Result is the outcome of running one conversation.
type Result struct {
	Answer     string        `json:"answer"`
	Incomplete bool          `json:"incomplete,omitempty"` // round bound hit before a final answer
	Rounds     int           `json:"rounds"`
	Usage      llm.Usage     `json:"usage"`
	Duration   time.Duration `json:"duration"`
}

// Event reports loop progress to an optional observer.
type Event struct {
	Type   string `json:"type"` // "tool_start", "tool_result", "done"
	Round  int    `json:"round"`
	Tool   string `json:"tool,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// EventCallback receives loop events. May be nil.
type EventCallback func(Event)

// Loop drives the bounded reason→act→observe cycle for one query at a time.
// A Loop is stateless across calls: each Run builds a fresh conversation and
// discards it on return, so a single Loop is safe for concurrent use as long
// as its client and tools are.
type Loop struct {
	cfg    Config
	client llm.Client
	tools  *ToolRegistry
	log    *logging.Logger
}

// New creates an agent loop over the given LLM client and tool registry.
func New(cfg Config, client llm.Client, tools *ToolRegistry, log *logging.Logger) *Loop {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaultMaxRounds
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 30 * time.Second
	}
	return &Loop{
		cfg:    cfg,
		client: client,
		tools:  tools,
		log:    log.Sub("agent"),
	}
}

// ToolNames returns the sorted names of the registered tools.
func (l *Loop) ToolNames() []string {
	return l.tools.Names()
}

// Run processes one query in native tool-use mode and returns the final
// answer. Tool failures are fed back into the conversation as text; only LLM
// call failures propagate as errors. When the round bound is reached without
// a final answer the result is marked incomplete rather than failing.
func (l *Loop) Run(ctx context.Context, query string) (*Result, error) {
	return l.RunWithEvents(ctx, query, nil)
}

// RunWithEvents is Run with an observer for tool dispatch and completion.
func (l *Loop) RunWithEvents(ctx context.Context, query string, cb EventCallback) (*Result, error) {
	start := time.Now()
	msgs := []llm.Message{llm.UserText(query)}
	system := BuildSystemPrompt(l.tools.Definitions())

	var usage llm.Usage
	var lastText string

	for round := 1; round <= l.cfg.MaxRounds; round++ {
		// Conversations are abortable between round-trips.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := l.client.Complete(ctx, llm.CompletionRequest{
			Model:     l.cfg.Model,
			System:    system,
			Messages:  msgs,
			Tools:     l.tools.Definitions(),
			MaxTokens: l.cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("llm completion: %w", err)
		}

		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

		if text, ok := resp.FirstText(); ok {
			lastText = text
		}

		if !resp.WantsTool() {
			answer, ok := resp.FirstText()
			if !ok {
				answer = noTextPlaceholder
			}
			l.emit(cb, Event{Type: "done", Round: round})
			l.log.Info().Int("rounds", round).Dur("duration", time.Since(start)).Msg("conversation complete")
			return &Result{Answer: answer, Rounds: round, Usage: usage, Duration: time.Since(start)}, nil
		}

		uses := resp.ToolUses()
		use := uses[0]
		if len(uses) > 1 {
			// Policy: exactly one tool call per round, first in emission
			// order. The rest are dropped so the conversation stays a strict
			// request/response alternation.
			l.log.Warn().
				Int("requested", len(uses)).
				Str("executing", use.Name).
				Msg("model requested multiple tool calls; executing only the first")
		}

		l.emit(cb, Event{Type: "tool_start", Round: round, Tool: use.Name})
		output := l.dispatch(ctx, use.Name, string(use.Input))
		l.emit(cb, Event{Type: "tool_result", Round: round, Tool: use.Name, Detail: output})

		invocationID := use.ID
		if invocationID == "" {
			invocationID = uuid.NewString()
		}
		msgs = append(msgs, llm.ToolResultMessage(invocationID, output))
	}

	l.log.Warn().Int("maxRounds", l.cfg.MaxRounds).Msg("round bound reached without a final answer")
	l.emit(cb, Event{Type: "done", Round: l.cfg.MaxRounds, Detail: "incomplete"})
	return &Result{
		Answer:     lastText,
		Incomplete: true,
		Rounds:     l.cfg.MaxRounds,
		Usage:      usage,
		Duration:   time.Since(start),
	}, nil
}

// RunPrompt processes a pre-built text-protocol prompt (the RAG path). The
// model has no native tool channel here: it is instructed to emit a single
// {"action","params"} JSON object to request a tool, and anything else is a
// final answer.
func (l *Loop) RunPrompt(ctx context.Context, prompt string) (*Result, error) {
	start := time.Now()
	msgs := []llm.Message{llm.UserText(prompt)}

	var usage llm.Usage
	var lastText string

	for round := 1; round <= l.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := l.client.Complete(ctx, llm.CompletionRequest{
			Model:     l.cfg.Model,
			Messages:  msgs,
			MaxTokens: l.cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("llm completion: %w", err)
		}

		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

		text, ok := resp.FirstText()
		if !ok {
			text = noTextPlaceholder
		}
		lastText = text

		parsed := ParseAction(text)
		if parsed.Call == nil {
			return &Result{Answer: parsed.Final, Rounds: round, Usage: usage, Duration: time.Since(start)}, nil
		}

		input, err := json.Marshal(parsed.Call.Params)
		if err != nil {
			input = []byte("{}")
		}
		output := l.dispatch(ctx, parsed.Call.Action, string(input))
		msgs = append(msgs, llm.UserText(fmt.Sprintf("Result of %s:\n%s", parsed.Call.Action, output)))
	}

	l.log.Warn().Int("maxRounds", l.cfg.MaxRounds).Msg("round bound reached without a final answer")
	return &Result{
		Answer:     lastText,
		Incomplete: true,
		Rounds:     l.cfg.MaxRounds,
		Usage:      usage,
		Duration:   time.Since(start),
	}, nil
}

// dispatch invokes a tool and always returns text. The only channel back to
// the LLM is text, so unknown tools, backend failures, and timeouts all
// surface as descriptive output for the next turn.
func (l *Loop) dispatch(ctx context.Context, name, input string) string {
	toolCtx, cancel := context.WithTimeout(ctx, l.cfg.ToolTimeout)
	defer cancel()

	l.log.Debug().Str("tool", name).Msg("executing tool")
	output, err := l.tools.Invoke(toolCtx, name, input)
	if err != nil {
		l.log.Warn().Str("tool", name).Err(err).Msg("tool execution failed")
		if errors.Is(err, ErrUnknownTool) {
			return fmt.Sprintf("Unknown tool %q. Available tools: %s.", name, strings.Join(l.tools.Names(), ", "))
		}
		return fmt.Sprintf("Tool %s failed: %v", name, err)
	}
	return output
}

func (l *Loop) emit(cb EventCallback, evt Event) {
	if cb != nil {
		cb(evt)
	}
}
