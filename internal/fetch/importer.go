package fetch

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxDescriptionLength caps imported description text.
const MaxDescriptionLength = 20000

// ImportedJob is a job description extracted from a job board page.
type ImportedJob struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text"`
	Rendered bool     `json:"rendered"`
}

// Importer turns a job posting URL into plain description text.
type Importer struct {
	options *Options
	render  RenderFunc
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithOptions sets the HTTP fetch options.
func WithOptions(opts *Options) ImporterOption {
	return func(i *Importer) {
		i.options = opts
	}
}

// WithRenderer sets the browser fallback. A nil RenderFunc disables it.
func WithRenderer(render RenderFunc) ImporterOption {
	return func(i *Importer) {
		i.render = render
	}
}

// NewImporter creates an Importer that falls back to headless Chrome.
func NewImporter(opts ...ImporterOption) *Importer {
	i := &Importer{
		options: DefaultOptions(),
		render:  ChromeRenderer(DefaultRenderTimeout),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import fetches url and extracts the job description. Pages whose text is
// too short over plain HTTP are rendered in the browser when one is configured.
func (i *Importer) Import(ctx context.Context, url string) (*ImportedJob, error) {
	if err := ValidateURL(url); err != nil {
		return nil, err
	}
	platform := DetectPlatform(url)

	var (
		job      *ImportedJob
		fetchErr error
	)
	result, err := URL(ctx, url, i.options)
	switch {
	case err == nil:
		job, err = extractJob(result.HTML, url, platform)
		if err != nil {
			return nil, err
		}
		if !ShouldUseBrowser(job.Text) {
			return job, nil
		}
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		fetchErr = err
	}

	if i.render == nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return finish(job)
	}

	log.Printf("[fetch] plain fetch of %s insufficient, trying browser", url)
	html, err := i.render(ctx, url)
	if err != nil {
		if job != nil && job.Text != "" {
			log.Printf("[fetch] browser render failed for %s, keeping plain text: %v", url, err)
			return job, nil
		}
		return nil, &Error{URL: url, Message: "browser rendering failed", Cause: errors.Join(fetchErr, err)}
	}
	rendered, err := extractJob(html, url, platform)
	if err != nil {
		return nil, err
	}
	rendered.Rendered = true
	if job != nil && len(job.Text) > len(rendered.Text) {
		return job, nil
	}
	return finish(rendered)
}

func finish(job *ImportedJob) (*ImportedJob, error) {
	if job == nil || job.Text == "" {
		url := ""
		if job != nil {
			url = job.URL
		}
		return nil, &Error{URL: url, Message: "no job description found on page"}
	}
	return job, nil
}

func extractJob(html, url string, platform Platform) (*ImportedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: url, Message: "failed to parse HTML", Cause: err}
	}
	title := pageTitle(doc)
	text := mainText(doc, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform))
	if len(text) > MaxDescriptionLength {
		text = strings.TrimSpace(strings.ToValidUTF8(text[:MaxDescriptionLength], ""))
	}
	return &ImportedJob{URL: url, Platform: platform, Title: title, Text: text}, nil
}
