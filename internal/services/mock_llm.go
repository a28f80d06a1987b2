package services

import (
	"context"
	"sync"
)

// MockDialogueGenerator is a mock implementation of DialogueGenerator
// for testing.
type MockDialogueGenerator struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	GenerateFunc  func(ctx context.Context, req DialogueRequest) (*DialogueResponse, error)

	// Track calls for testing
	InitModelCalls []string
	GenerateCalls  []DialogueRequest

	mu sync.Mutex // protects all fields above
}

var _ DialogueGenerator = (*MockDialogueGenerator)(nil)

// NewMockDialogueGenerator creates a new mock generator.
func NewMockDialogueGenerator() *MockDialogueGenerator {
	return &MockDialogueGenerator{
		InitModelCalls: make([]string, 0),
		GenerateCalls:  make([]DialogueRequest, 0),
	}
}

// InitModel mocks model initialization.
func (m *MockDialogueGenerator) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Generate mocks dialogue/decision generation. The default behavior
// picks the first option for decisions and returns canned dialogue
// otherwise.
func (m *MockDialogueGenerator) Generate(ctx context.Context, req DialogueRequest) (*DialogueResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, req)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	if req.ResponseType == ResponseTypeDecision {
		selected := ""
		if len(req.Options) > 0 {
			selected = req.Options[0]
		}
		return &DialogueResponse{
			SelectedOption: selected,
			Reasoning:      "Mock reasoning",
		}, nil
	}

	resp := &DialogueResponse{Text: "Mock dialogue"}
	if req.IncludeEmotion {
		resp.Emotion = "neutral"
	}
	return resp, nil
}
