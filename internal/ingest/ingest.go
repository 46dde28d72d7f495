// Package ingest turns a job-posting URL into usable text. Plain HTTP fetch
// with goquery extraction first; headless-browser rendering as a fallback
// for JavaScript-heavy boards.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a single HTTP fetch.
	DefaultTimeout = 30 * time.Second

	// MinUsableChars is the floor below which extracted text cannot drive
	// JD extraction at all.
	MinUsableChars = 120

	// BrowserFallbackThreshold: extracted text shorter than this suggests a
	// JavaScript-rendered page worth a headless-browser retry.
	BrowserFallbackThreshold = 500

	defaultUserAgent = "Mozilla/5.0 (compatible; InboxAgent/1.0)"
)

// FetchError reports a failed URL ingestion.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// RenderFunc renders a page in a browser and returns its HTML. Injectable
// so tests never need Chrome.
type RenderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Options configures ingestion.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Render overrides the browser fallback; nil uses RenderWithBrowser.
	// Set DisableBrowser to skip the fallback entirely.
	Render         RenderFunc
	DisableBrowser bool
}

func (o *Options) withDefaults() Options {
	opts := Options{Timeout: DefaultTimeout, UserAgent: defaultUserAgent}
	if o != nil {
		if o.Timeout > 0 {
			opts.Timeout = o.Timeout
		}
		if o.UserAgent != "" {
			opts.UserAgent = o.UserAgent
		}
		opts.Render = o.Render
		opts.DisableBrowser = o.DisableBrowser
	}
	if opts.Render == nil {
		opts.Render = RenderWithBrowser
	}
	return opts
}

var urlRe = regexp.MustCompile(`https?://[^\s<>"']+`)

// ExtractFirstURL returns the first http(s) URL in text, or "".
func ExtractFirstURL(text string) string {
	return strings.TrimRight(urlRe.FindString(text), ".,;)")
}

// FetchURLText fetches a posting URL and extracts its main text. When the
// plain fetch yields suspiciously little text the page is re-rendered in a
// headless browser before giving up. Text below MinUsableChars after both
// attempts is an error.
func FetchURLText(ctx context.Context, urlStr string, opts *Options) (string, error) {
	o := opts.withDefaults()

	html, err := fetchHTML(ctx, urlStr, o)
	if err != nil {
		return "", err
	}
	text, err := ExtractPostingText(html)
	if err != nil {
		return "", &FetchError{URL: urlStr, Message: "failed to extract text", Cause: err}
	}

	if len(strings.TrimSpace(text)) < BrowserFallbackThreshold && !o.DisableBrowser {
		rendered, renderErr := o.Render(ctx, urlStr, o.Timeout)
		if renderErr == nil {
			if renderedText, err := ExtractPostingText(rendered); err == nil &&
				len(strings.TrimSpace(renderedText)) > len(strings.TrimSpace(text)) {
				text = renderedText
			}
		}
	}

	if len(strings.TrimSpace(text)) < MinUsableChars {
		return "", &FetchError{URL: urlStr, Message: fmt.Sprintf("page yielded only %d characters of text", len(strings.TrimSpace(text)))}
	}
	return text, nil
}

func fetchHTML(ctx context.Context, urlStr string, o Options) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &FetchError{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: o.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", &FetchError{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", o.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: urlStr, Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return string(body), nil
}

// postingSelectors are tried in order; job boards vary wildly in markup.
var postingSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// ExtractPostingText parses HTML and returns the main posting text with
// navigation and chrome stripped.
func ExtractPostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .ads, .sidebar, .cookie-banner, .popup").Remove()

	var main *goquery.Selection
	for _, selector := range postingSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}
	return cleanWhitespace(main.Text()), nil
}

func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
