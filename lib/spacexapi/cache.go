package spacexapi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Cache memoizes entity lookups for the duration of one pipeline run.
// Each distinct (kind, id) pair is fetched from the network at most
// once; failed lookups are not cached so a later call with the same id
// gets a fresh attempt. Not safe for concurrent use: the pipeline is
// strictly sequential, so there is nothing to lock.
type Cache struct {
	client   *Client
	throttle time.Duration

	rockets    map[string]Rocket
	launchpads map[string]Launchpad
	payloads   map[string]Payload
	cores      map[string]Core

	fetches int
	misses  int
}

type CacheOptions struct {
	// pause after every successful network fetch, keeps the request
	// rate polite; never applied to cache hits
	Throttle time.Duration
}

func NewCache(client *Client, opts CacheOptions) *Cache {
	if opts.Throttle == 0 {
		opts.Throttle = 50 * time.Millisecond
	}
	return &Cache{
		client:     client,
		throttle:   opts.Throttle,
		rockets:    map[string]Rocket{},
		launchpads: map[string]Launchpad{},
		payloads:   map[string]Payload{},
		cores:      map[string]Core{},
	}
}

// Fetches reports how many network lookups the cache has performed.
func (c *Cache) Fetches() int { return c.fetches }

// Misses reports how many lookups came back unresolved (absent id,
// failed fetch, malformed payload).
func (c *Cache) Misses() int { return c.misses }

func (c *Cache) Rocket(ctx context.Context, id string) (Rocket, bool) {
	return lookup(ctx, c, c.rockets, "rockets", id)
}

func (c *Cache) Launchpad(ctx context.Context, id string) (Launchpad, bool) {
	return lookup(ctx, c, c.launchpads, "launchpads", id)
}

func (c *Cache) Payload(ctx context.Context, id string) (Payload, bool) {
	return lookup(ctx, c, c.payloads, "payloads", id)
}

func (c *Cache) Core(ctx context.Context, id string) (Core, bool) {
	return lookup(ctx, c, c.cores, "cores", id)
}

// one retry after a short pause, making the source's implicit
// retry-on-next-call behavior an explicit bounded one
const fetchAttempts = 2
const retryBackoff = 250 * time.Millisecond

func lookup[T any](ctx context.Context, c *Cache, store map[string]T, kind, id string) (T, bool) {
	var zero T
	if id == "" {
		c.misses++
		return zero, false
	}
	if cached, ok := store[id]; ok {
		return cached, true
	}

	span := trace.SpanFromContext(ctx)
	span.AddEvent("entity fetch", trace.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("id", id),
	))

	url := fmt.Sprintf("%s/%s/%s", c.client.baseUrl, kind, id)
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoff)
		}

		var entity T
		err := c.client.getJsonObject(ctx, url, &entity)
		if err != nil {
			lastErr = err
			continue
		}

		store[id] = entity
		c.fetches++
		time.Sleep(c.throttle)
		return entity, true
	}

	slog.WarnContext(ctx, "entity unresolvable", "kind", kind, "id", id, "err", lastErr)
	c.misses++
	return zero, false
}
