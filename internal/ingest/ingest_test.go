package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFirstURL(t *testing.T) {
	assert.Equal(t, "https://example.com/jobs/1",
		ExtractFirstURL("apply here: https://example.com/jobs/1, thanks"))
	assert.Equal(t, "", ExtractFirstURL("no links here"))
}

func TestExtractPostingText_PrefersJobSelectors(t *testing.T) {
	html := `<html><body>
		<nav>Home | Jobs | About</nav>
		<div class="job-description">Senior PM role at Acme. Requirements: 5 years.</div>
		<footer>© Acme</footer>
	</body></html>`

	text, err := ExtractPostingText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Senior PM role at Acme")
	assert.NotContains(t, text, "Home | Jobs")
	assert.NotContains(t, text, "© Acme")
}

func TestFetchURLText(t *testing.T) {
	body := "<html><body><main>" + strings.Repeat("A long and detailed job description paragraph. ", 20) + "</main></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	text, err := FetchURLText(context.Background(), srv.URL, &Options{DisableBrowser: true})
	require.NoError(t, err)
	assert.Contains(t, text, "job description paragraph")
}

func TestFetchURLText_TooLittleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>tiny</main></body></html>"))
	}))
	defer srv.Close()

	_, err := FetchURLText(context.Background(), srv.URL, &Options{DisableBrowser: true})
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Message, "characters")
}

func TestFetchURLText_BrowserFallbackUsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// SPA shell with almost no server-rendered text.
		_, _ = w.Write([]byte(`<html><body><div id="root">loading</div></body></html>`))
	}))
	defer srv.Close()

	rendered := "<html><body><main>" + strings.Repeat("Rendered posting content with requirements. ", 20) + "</main></body></html>"
	called := false
	opts := &Options{
		Render: func(ctx context.Context, url string, timeout time.Duration) (string, error) {
			called = true
			return rendered, nil
		},
	}

	text, err := FetchURLText(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, text, "Rendered posting content")
}

func TestFetchURLText_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchURLText(context.Background(), srv.URL, &Options{DisableBrowser: true})
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Message, "404")
}

func TestFetchURLText_InvalidURL(t *testing.T) {
	_, err := FetchURLText(context.Background(), "not-a-url", &Options{DisableBrowser: true})
	assert.Error(t, err)
}
