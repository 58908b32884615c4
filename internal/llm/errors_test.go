package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestAsStatusError_GoogleAPIError(t *testing.T) {
	upstream := &googleapi.Error{Code: 429, Message: "Resource has been exhausted (e.g. check quota)."}

	got := AsStatusError(fmt.Errorf("call failed: %w", upstream))

	require.NotNil(t, got)
	assert.Equal(t, 429, got.StatusCode)
	assert.Equal(t, "Resource has been exhausted (e.g. check quota).", got.Message)
	assert.True(t, errors.Is(got, upstream))
	assert.Contains(t, got.Error(), "429")
}

func TestAsStatusError_Deadline(t *testing.T) {
	got := AsStatusError(context.DeadlineExceeded)

	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, "request timed out", got.Message)
	assert.Contains(t, got.Error(), "call failed")
}

func TestAsStatusError_PassThrough(t *testing.T) {
	orig := &StatusError{StatusCode: 500, Message: "boom"}
	assert.Same(t, orig, AsStatusError(fmt.Errorf("wrapped: %w", orig)))
	assert.Nil(t, AsStatusError(nil))
}

func TestAsStatusError_PlainError(t *testing.T) {
	got := AsStatusError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, "dial tcp: connection refused", got.Message)
}

func TestExtractTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")}}},
		},
	}

	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", text)
}

func TestExtractTextFromResponse_Empty(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = extractTextFromResponse(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "other"}, "key")
	assert.Error(t, err)
}
