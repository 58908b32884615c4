package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubRenderer struct {
	html  string
	err   error
	calls int
}

func (s *stubRenderer) Render(context.Context, string) (string, error) {
	s.calls++
	return s.html, s.err
}

func servePage(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func longPosting() string {
	return `<html><head><title>Platform Engineer</title></head><body>
		<nav>Jobs</nav>
		<main><h1>Platform Engineer</h1><p>` + strings.Repeat("Operate Kubernetes clusters. ", 30) + `</p>
		<ul><li>Go</li><li>Terraform</li></ul></main>
		<footer>© Acme</footer></body></html>`
}

func TestLoader_FromURL(t *testing.T) {
	server := servePage(t, http.StatusOK, longPosting())
	renderer := &stubRenderer{}
	loader := NewLoader(WithRenderer(renderer), WithLogger(zaptest.NewLogger(t)))

	posting, err := loader.FromURL(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, posting.Text, "Platform Engineer")
	assert.Contains(t, posting.Text, "Go\nTerraform")
	assert.NotContains(t, posting.Text, "Jobs")
	assert.NotContains(t, posting.Text, "© Acme")
	assert.Equal(t, server.URL, posting.Metadata.URL)
	assert.Equal(t, "Platform Engineer", posting.Metadata.Title)
	assert.Equal(t, "generic", posting.Metadata.Site)
	assert.Len(t, posting.Metadata.Hash, 64)
	assert.False(t, posting.Metadata.Rendered)
	assert.Equal(t, 0, renderer.calls)
}

func TestLoader_FromURL_BrowserFallback(t *testing.T) {
	server := servePage(t, http.StatusOK, `<html><body><div id="root"></div><p>Loading</p></body></html>`)
	renderer := &stubRenderer{html: longPosting()}
	loader := NewLoader(WithRenderer(renderer))

	posting, err := loader.FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
	assert.True(t, posting.Metadata.Rendered)
	assert.Contains(t, posting.Text, "Operate Kubernetes clusters.")
}

func TestLoader_FromURL_BrowserFailureKeepsHTTPText(t *testing.T) {
	server := servePage(t, http.StatusOK, `<html><body><p>Short posting</p></body></html>`)
	renderer := &stubRenderer{err: errors.New("chrome not installed")}

	posting, err := NewLoader(WithRenderer(renderer)).FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Short posting", posting.Text)
	assert.False(t, posting.Metadata.Rendered)
}

func TestLoader_FromURL_Errors(t *testing.T) {
	loader := NewLoader()

	_, err := loader.FromURL(context.Background(), "not-a-url")
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)

	server := servePage(t, http.StatusInternalServerError, "boom")
	_, err = loader.FromURL(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
	assert.Contains(t, err.Error(), "500")

	empty := servePage(t, http.StatusOK, `<html><body><script>x()</script></body></html>`)
	_, err = loader.FromURL(context.Background(), empty.URL)
	assert.ErrorIs(t, err, ErrEmptyJobDescription)
}

func TestLoader_FetchJobDescription(t *testing.T) {
	server := servePage(t, http.StatusOK, `<html><body><main>Backend role</main></body></html>`)
	text, err := NewLoader().FetchJobDescription(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Backend role", text)
}

func TestLoader_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("# SRE\n\n\n\n• On-call\n"), 0644))

	posting, err := NewLoader().FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# SRE\n\n- On-call", posting.Text)
	assert.Empty(t, posting.Metadata.URL)

	_, err = NewLoader().FromFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "file not found")
}

func TestLoader_FromText_Truncates(t *testing.T) {
	posting, err := NewLoader(WithLimit(20)).FromText(strings.Repeat("word ", 40))
	require.NoError(t, err)
	assert.True(t, posting.Metadata.Truncated)
	assert.LessOrEqual(t, len([]rune(posting.Text)), 20)

	_, err = NewLoader().FromText("   ")
	assert.ErrorIs(t, err, ErrEmptyJobDescription)
}
