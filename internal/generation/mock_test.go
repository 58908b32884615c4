package generation

import (
	"context"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/cv-builder/internal/llm"
)

// MockLLMClient is a mock implementation of llm.Client for testing.
type MockLLMClient struct {
	GenerateContentFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc       func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateStructuredFunc func(ctx context.Context, prompt string, schema *genai.Schema, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	calls   int
	prompts []string
	tiers   []llm.ModelTier
}

func (m *MockLLMClient) record(prompt string, tier llm.ModelTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.tiers = append(m.tiers, tier)
}

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockLLMClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt, tier)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt, tier)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, tier llm.ModelTier) (string, error) {
	m.record(prompt, tier)
	if m.GenerateStructuredFunc != nil {
		return m.GenerateStructuredFunc(ctx, prompt, schema, tier)
	}
	return "[]", nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	return "mock-" + string(tier)
}

func (m *MockLLMClient) Close() error {
	return nil
}

func respondJSON(body string) func(context.Context, string, llm.ModelTier) (string, error) {
	return func(context.Context, string, llm.ModelTier) (string, error) { return body, nil }
}

func respondStructured(body string) func(context.Context, string, *genai.Schema, llm.ModelTier) (string, error) {
	return func(context.Context, string, *genai.Schema, llm.ModelTier) (string, error) { return body, nil }
}
