package spacexapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spacey-pipeline/lib/source"
	"spacey-pipeline/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/spacexapi")

const (
	DefaultBaseUrl     = "https://api.spacexdata.com/v4"
	DefaultSnapshotUrl = "https://cf-courses-data.s3.us.cloud-object-storage.appdomain.cloud/IBM-DS0321EN-SkillsNetwork/datasets/API_call_spacex_api.json"
)

type Options struct {
	// base url of the live API, {base}/{kind}/{id} for entity lookups
	// and {base}/launches/past for the launch listing
	BaseUrl string `json:"base_url"`
	// static snapshot of the launch listing, preferred over the live
	// API for reproducibility
	SnapshotUrl string `json:"snapshot_url"`
	// per-request deadline in seconds
	TimeoutSeconds int `json:"timeout_seconds"`
}

type Client struct {
	http    *resty.Client
	baseUrl string
	snapUrl string
}

func NewClient(opts Options) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.SnapshotUrl == "" {
		opts.SnapshotUrl = DefaultSnapshotUrl
	}
	if opts.TimeoutSeconds == 0 {
		opts.TimeoutSeconds = 20
	}

	client := resty.New()
	client.SetTimeout(time.Second * time.Duration(opts.TimeoutSeconds))
	telemetry.InstrumentResty(client, "lib/spacexapi/http")

	return &Client{
		http:    client,
		baseUrl: opts.BaseUrl,
		snapUrl: opts.SnapshotUrl,
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("unexpected status %d from %s", res.StatusCode(), url)
	}
	return res.Body(), nil
}

func (c *Client) getJson(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// getJsonObject decodes an entity response, rejecting any body that is
// not a JSON object. The API answers unknown ids with a literal null,
// which unmarshals into a struct as a no-op and would otherwise pass
// for a resolved zero-valued entity.
func (c *Client) getJsonObject(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	body = bytes.TrimLeft(body, " \t\r\n")
	if len(body) == 0 || body[0] != '{' {
		return fmt.Errorf("expected a JSON object from %s", url)
	}
	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) fetchLaunchList(ctx context.Context, url string) ([]RawLaunch, error) {
	var launches []RawLaunch
	err := c.getJson(ctx, url, &launches)
	if err != nil {
		return nil, err
	}
	if len(launches) == 0 {
		return nil, fmt.Errorf("empty launch list from %s", url)
	}
	return launches, nil
}

// FetchLaunches retrieves the past launch listing, preferring the static
// snapshot and falling back to the live API. Both failing is fatal: the
// returned error is a *source.UnavailableError naming the attempted
// urls.
func (c *Client) FetchLaunches(ctx context.Context) ([]RawLaunch, error) {
	ctx, span := tracer.Start(ctx, "FetchLaunches")
	defer span.End()

	pastUrl := fmt.Sprintf("%s/launches/past", c.baseUrl)
	launches, err := source.First(ctx, []source.Attempt[[]RawLaunch]{
		{Name: c.snapUrl, Fetch: func(ctx context.Context) ([]RawLaunch, error) {
			return c.fetchLaunchList(ctx, c.snapUrl)
		}},
		{Name: pastUrl, Fetch: func(ctx context.Context) ([]RawLaunch, error) {
			return c.fetchLaunchList(ctx, pastUrl)
		}},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("launches", len(launches)))
	return launches, nil
}
