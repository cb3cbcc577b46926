// Package webscraper extracts launch rows from the wiki launch-list
// tables, independently of the API pipeline.
package webscraper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"spacey-pipeline/lib/source"
	"spacey-pipeline/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/webscraper")

const (
	// pinned revision so the extracted table is reproducible
	DefaultPageUrl     = "https://en.wikipedia.org/w/index.php?title=List_of_Falcon_9_and_Falcon_Heavy_launches&oldid=1027686922"
	DefaultFallbackUrl = "https://en.wikipedia.org/wiki/List_of_Falcon_9_and_Falcon_Heavy_launches"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
)

type PageOptions struct {
	// pinned-revision page url, tried first
	Url string `json:"url"`
	// live page url, tried when the pinned revision is refused
	FallbackUrl string `json:"fallback_url"`
	// per-request deadline in seconds
	TimeoutSeconds int `json:"timeout_seconds"`
}

func newPageClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("User-Agent", defaultUserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	telemetry.InstrumentResty(client, "services/webscraper/http")
	return client
}

// FetchPage retrieves the launch-list page and parses it into a
// document. The pinned revision is tried first; any refusal (403 from
// the revision endpoint included) falls through to the live page. Both
// failing returns a *source.UnavailableError.
func FetchPage(ctx context.Context, opts PageOptions) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()

	if opts.Url == "" {
		opts.Url = DefaultPageUrl
	}
	if opts.FallbackUrl == "" {
		opts.FallbackUrl = DefaultFallbackUrl
	}
	if opts.TimeoutSeconds == 0 {
		opts.TimeoutSeconds = 30
	}

	client := newPageClient(time.Second * time.Duration(opts.TimeoutSeconds))
	fetch := func(url string) func(ctx context.Context) ([]byte, error) {
		return func(ctx context.Context) ([]byte, error) {
			res, err := client.R().SetContext(ctx).Get(url)
			if err != nil {
				return nil, err
			}
			if !res.IsSuccess() {
				return nil, fmt.Errorf("unexpected status %d from %s", res.StatusCode(), url)
			}
			return res.Body(), nil
		}
	}

	body, err := source.First(ctx, []source.Attempt[[]byte]{
		{Name: opts.Url, Fetch: fetch(opts.Url)},
		{Name: opts.FallbackUrl, Fetch: fetch(opts.FallbackUrl)},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}
