package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/ingestion"
)

func TestReadInput(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"joins args", []string{"Senior", "Go", "Engineer"}, "", "Senior Go Engineer"},
		{"no args", nil, "ignored", ""},
		{"dash reads stdin", []string{"-"}, "  Led a team of five\n", "Led a team of five"},
		{"dash among args is literal", []string{"a", "-"}, "ignored", "a -"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readInput(tt.args, strings.NewReader(tt.stdin))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJobDescription(t *testing.T) {
	ctx := context.Background()
	loader := ingestion.NewLoader()

	t.Run("inline text is cleaned", func(t *testing.T) {
		got, err := jobDescription(ctx, loader, "", "", "  We are hiring   a Go engineer.  ")
		require.NoError(t, err)
		assert.Contains(t, got, "We are hiring")
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, "job.txt", "Backend Engineer\n\nBuild APIs in Go.")
		got, err := jobDescription(ctx, loader, "", path, "")
		require.NoError(t, err)
		assert.Contains(t, got, "Build APIs in Go.")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := jobDescription(ctx, loader, "", "/nonexistent/job.txt", "")
		assert.Error(t, err)
	})

	t.Run("sources are exclusive", func(t *testing.T) {
		_, err := jobDescription(ctx, loader, "https://example.com/job", "", "inline")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("nothing given", func(t *testing.T) {
		got, err := jobDescription(ctx, loader, "", "", "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestContextArg(t *testing.T) {
	raw, err := contextArg(` {"targetId":"exp-1"} `)
	require.NoError(t, err)
	assert.JSONEq(t, `{"targetId":"exp-1"}`, string(raw))

	path := writeFile(t, "ctx.json", `{"jobTitle":"Engineer"}`)
	raw, err = contextArg("@" + path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobTitle":"Engineer"}`, string(raw))

	_, err = contextArg("@/nonexistent/ctx.json")
	assert.Error(t, err)
}
