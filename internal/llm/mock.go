package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

func (m *MockClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{
		Content:    []ContentBlock{{Type: BlockText, Text: "mock response"}},
		StopReason: "end_turn",
	}, nil
}

// TextResponse builds a final-answer response for tests.
func TextResponse(text string) *CompletionResponse {
	return &CompletionResponse{
		Content:    []ContentBlock{{Type: BlockText, Text: text}},
		StopReason: "end_turn",
	}
}

// ToolUseResponse builds a tool-invocation response for tests.
func ToolUseResponse(id, name, input string) *CompletionResponse {
	return &CompletionResponse{
		Content: []ContentBlock{
			{Type: BlockToolUse, ID: id, Name: name, Input: []byte(input)},
		},
		StopReason: StopReasonToolUse,
	}
}
