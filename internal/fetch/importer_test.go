package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longDescription = strings.Repeat("Build and operate Go services for payments. ", 20)

func jobPage(title, body string) string {
	return `<html><head><title>Careers</title></head><body>
		<nav>Jobs home</nav>
		<h1>` + title + `</h1>
		<div class="job-description"><p>` + body + `</p></div>
		<form id="application-form">Upload your resume</form>
	</body></html>`
}

func serve(t *testing.T, status int, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func countingRenderer(html string, err error) (RenderFunc, *int32) {
	var calls int32
	return func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return html, err
	}, &calls
}

func TestImport_PlainHTTP(t *testing.T) {
	server := serve(t, http.StatusOK, jobPage("Senior Go Engineer", longDescription))
	render, calls := countingRenderer("", errors.New("unused"))

	job, err := NewImporter(WithRenderer(render)).Import(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", job.Title)
	assert.Equal(t, PlatformUnknown, job.Platform)
	assert.Contains(t, job.Text, "Go services for payments")
	assert.NotContains(t, job.Text, "Upload your resume")
	assert.NotContains(t, job.Text, "Jobs home")
	assert.False(t, job.Rendered)
	assert.Equal(t, int32(0), *calls)
}

func TestImport_FallsBackToBrowser(t *testing.T) {
	server := serve(t, http.StatusOK, `<html><body><div id="root">Loading...</div></body></html>`)
	render, calls := countingRenderer(jobPage("Platform Engineer", longDescription), nil)

	job, err := NewImporter(WithRenderer(render)).Import(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, job.Rendered)
	assert.Equal(t, "Platform Engineer", job.Title)
	assert.Contains(t, job.Text, "payments")
	assert.Equal(t, int32(1), *calls)
}

func TestImport_BrowserFailureKeepsPlainText(t *testing.T) {
	server := serve(t, http.StatusOK, jobPage("SRE", "Keep the lights on."))
	render, _ := countingRenderer("", errors.New("chrome not installed"))

	job, err := NewImporter(WithRenderer(render)).Import(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, job.Rendered)
	assert.Contains(t, job.Text, "Keep the lights on.")
}

func TestImport_HTTPErrorUsesBrowser(t *testing.T) {
	server := serve(t, http.StatusForbidden, "blocked")
	render, _ := countingRenderer(jobPage("Data Engineer", longDescription), nil)

	job, err := NewImporter(WithRenderer(render)).Import(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, job.Rendered)
}

func TestImport_HTTPErrorWithoutBrowser(t *testing.T) {
	server := serve(t, http.StatusNotFound, "")

	_, err := NewImporter(WithRenderer(nil)).Import(context.Background(), server.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestImport_EmptyPage(t *testing.T) {
	server := serve(t, http.StatusOK, "<html><body></body></html>")

	_, err := NewImporter(WithRenderer(nil)).Import(context.Background(), server.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "no job description")
}

func TestImport_InvalidURL(t *testing.T) {
	render, calls := countingRenderer("", nil)
	for _, url := range []string{"", "ftp://example.com/job", "/jobs/1"} {
		_, err := NewImporter(WithRenderer(render)).Import(context.Background(), url)
		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr, url)
	}
	assert.Equal(t, int32(0), *calls)
}

func TestImport_TruncatesLongText(t *testing.T) {
	server := serve(t, http.StatusOK, jobPage("Writer", strings.Repeat("word ", MaxDescriptionLength)))

	job, err := NewImporter(WithRenderer(nil)).Import(context.Background(), server.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(job.Text), MaxDescriptionLength)
}
