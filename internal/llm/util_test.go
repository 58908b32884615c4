package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"jobTitle\": \"Developer\"}\n```",
			expected: `{"jobTitle": "Developer"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"jobTitle\": \"Developer\"}\n```",
			expected: `{"jobTitle": "Developer"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n[\"Go\", \"SQL\"]\n```",
			expected: `["Go", "SQL"]`,
		},
		{
			name:     "plain JSON",
			input:    `{"summary": "text"}`,
			expected: `{"summary": "text"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestCleanJSONBlock_SurroundingText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before object",
			input:    "Here is the entry:\n{\"degree\": \"BSc\"}",
			expected: `{"degree": "BSc"}`,
		},
		{
			name:     "preamble before array",
			input:    "Suggested skills:\n[\"Kubernetes\", \"Terraform\"]",
			expected: `["Kubernetes", "Terraform"]`,
		},
		{
			name:     "trailing text",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
		},
		{
			name:     "escaped quotes",
			input:    "Result: {\"message\": \"He said \\\"hello\\\"\"}",
			expected: `{"message": "He said \"hello\""}`,
		},
		{
			name:     "prose without JSON is returned unchanged",
			input:    "Python, JavaScript, SQL",
			expected: "Python, JavaScript, SQL",
		},
		{
			name:     "unbalanced JSON is returned unchanged",
			input:    `{"jobTitle": "Dev"`,
			expected: `{"jobTitle": "Dev"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "Go, Rust", StripCodeFence("```\nGo, Rust\n```"))
	assert.Equal(t, "Intro: [\"a\"]", StripCodeFence("  Intro: [\"a\"]  "))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple object", input: `{"key": "value"}`, expected: `{"key": "value"}`},
		{name: "nested objects", input: `{"outer": {"inner": "value"}}`, expected: `{"outer": {"inner": "value"}}`},
		{name: "trailing text", input: `{"key": "value"} and more`, expected: `{"key": "value"}`},
		{name: "braces inside string", input: `{"template": "Hello {name}!"}`, expected: `{"template": "Hello {name}!"}`},
		{name: "empty input", input: "", expected: ""},
		{name: "not starting with brace", input: "not json", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple array", input: `["a", "b", "c"]`, expected: `["a", "b", "c"]`},
		{name: "nested arrays", input: `[[1, 2], [3, 4]]`, expected: `[[1, 2], [3, 4]]`},
		{name: "array of objects", input: `[{"id": 1}, {"id": 2}]`, expected: `[{"id": 1}, {"id": 2}]`},
		{name: "bracket inside string", input: `["a]", "b"] tail`, expected: `["a]", "b"]`},
		{name: "empty input", input: "", expected: ""},
		{name: "not starting with bracket", input: "not array", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONArray(tt.input))
		})
	}
}
