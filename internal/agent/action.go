package agent

import (
	"encoding/json"
	"strings"
)

// ToolCall is a structured tool invocation parsed from model output text.
type ToolCall struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// ParsedAction is the outcome of inspecting model output text. Exactly one
// of the two variants holds: Call is non-nil for a tool invocation, otherwise
// Final carries the original text verbatim.
type ParsedAction struct {
	Call  *ToolCall
	Final string
}

// ParseAction decides whether raw model text is a tool call or a final
// answer. The text protocol expects a single JSON object of the shape
// {"action": <name>, "params": {...}}. Any parse or shape failure means the
// text is a final answer, never an error: model output is an untrusted
// external protocol and a non-conforming response is simply "not a tool call".
func ParseAction(text string) ParsedAction {
	trimmed := strings.TrimSpace(text)

	var raw struct {
		Action string          `json:"action"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return ParsedAction{Final: text}
	}
	if raw.Action == "" || !isJSONObject(raw.Params) {
		return ParsedAction{Final: text}
	}

	params := map[string]any{}
	if err := json.Unmarshal(raw.Params, &params); err != nil {
		return ParsedAction{Final: text}
	}

	return ParsedAction{Call: &ToolCall{Action: raw.Action, Params: params}}
}

// isJSONObject reports whether the raw message is a JSON object. Unmarshal
// into a map accepts null as a silent no-op, so the shape has to be checked
// on the raw bytes.
func isJSONObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}
