// Package request is the HTTP layer shared by every upstream client. Each
// call makes exactly one attempt; failures come back wrapping
// ErrSourceUnavailable or ErrMalformedResponse.
package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/tastes/limiter"
	"github.com/amonks/tastes/readthrough"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSourceUnavailable means the upstream could not be reached, or
	// answered with a non-2xx status.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedResponse means the upstream answered, but not with
	// something we could parse.
	ErrMalformedResponse = errors.New("malformed response")
)

const maxBodyBytes = 32 << 20

type Options struct {
	Timeout   time.Duration
	UserAgent string

	// When set, successful JSON responses are cached and replayed.
	Cache *readthrough.ReadThrough
}

type Client struct {
	http      *http.Client
	userAgent string
	cache     *readthrough.ReadThrough
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: opts.UserAgent,
		cache:     opts.Cache,
	}
}

// URL joins a base URL and a query.
func URL(baseURL string, query url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("bad url '%s': %w", baseURL, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// GetJSON does a GET on baseURL with the given query, waiting on lim
// first, and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, lim *limiter.Limiter, baseURL string, query url.Values, header http.Header, v any) error {
	target, err := URL(baseURL, query)
	if err != nil {
		return err
	}

	if c.cache != nil {
		if bs, err := c.cache.Get(target); err == nil {
			if err := json.Unmarshal(bs, v); err == nil {
				log.Debug().Str("url", target).Msg("cache hit")
				return nil
			}
		}
	}

	resp, err := c.get(ctx, lim, target, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bs, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: error reading body from '%s': %w", ErrSourceUnavailable, target, err)
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return fmt.Errorf("%w: error decoding json from '%s': %w", ErrMalformedResponse, target, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(target, bs); err != nil {
			log.Warn().Err(err).Str("url", target).Msg("error caching response")
		}
	}

	return nil
}

// FetchHTML does a GET on the given URL, then parses the response as HTML.
func (c *Client) FetchHTML(ctx context.Context, lim *limiter.Limiter, target string) (*goquery.Document, error) {
	resp, err := c.get(ctx, lim, target, http.Header{"Accept": {"text/html"}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/html" {
		return nil, fmt.Errorf("%w: expected an html response at '%s', but got '%s'", ErrMalformedResponse, target, mediaType)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: error parsing html from '%s': %w", ErrMalformedResponse, target, err)
	}

	return doc, nil
}

func (c *Client) get(ctx context.Context, lim *limiter.Limiter, target string, header http.Header) (*http.Response, error) {
	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: error fetching '%s': %w", ErrSourceUnavailable, target, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		if lim != nil {
			lim.SetNextAt(resp.Header.Get("Retry-After"))
		}
		return nil, fmt.Errorf("%w: rate limited by '%s'", ErrSourceUnavailable, target)
	}
	body := resp.Body
	if err := Error(resp); err != nil {
		body.Close()
		return nil, fmt.Errorf("unexpected status from '%s': %w", target, err)
	}

	return resp, nil
}

// Error checks the given http response for an error code, and, if one is
// present, reads the body and returns a friendly error.
func Error(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body = io.NopCloser(io.LimitReader(resp.Body, 4096))
		bs, err := httputil.DumpResponse(resp, true)
		if err != nil {
			return fmt.Errorf("%w: http status code %d; error decoding body: %w", ErrSourceUnavailable, resp.StatusCode, err)
		} else {
			return fmt.Errorf("%w: http status code %d:\n%s", ErrSourceUnavailable, resp.StatusCode, string(bs))
		}
	}
	return nil
}
