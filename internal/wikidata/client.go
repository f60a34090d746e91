// Package wikidata fetches element and nuclide records from the Wikidata API
// and the Wikidata SPARQL query service.
package wikidata

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/raphaelgruber/wdtable/internal/metrics"
)

// Default endpoints and cache sizing.
const (
	DefaultAPIURL    = "https://www.wikidata.org/w/api.php"
	DefaultSPARQLURL = "https://query.wikidata.org/sparql"
	DefaultUserAgent = "wdtable/1.0 (https://github.com/raphaelgruber/wdtable)"
	DefaultCacheTTL  = 6 * time.Hour

	apiCacheSize    = 200
	sparqlCacheSize = 50

	// APILimit is the maximum number of ids per wbgetentities call.
	APILimit = 50
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	APIURL    string
	SPARQLURL string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// Client talks to the Wikidata API and SPARQL endpoint. Response
// bodies are cached by request, so repeated table builds within the TTL do
// not hit upstream. A Client is safe for concurrent use.
type Client struct {
	apiURL     string
	sparqlURL  string
	userAgent  string
	httpClient *http.Client

	apiCache    *expirable.LRU[string, []byte]
	sparqlCache *expirable.LRU[string, []byte]

	metrics  *metrics.Collector
	registry *metrics.Registry
}

// New creates a Wikidata client. collector and registry may be nil.
func New(opts Options, collector *metrics.Collector, registry *metrics.Registry) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute // SPARQL queries over all isotopes are slow
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Client{
		apiURL:      cmp.Or(opts.APIURL, DefaultAPIURL),
		sparqlURL:   cmp.Or(opts.SPARQLURL, DefaultSPARQLURL),
		userAgent:   cmp.Or(opts.UserAgent, DefaultUserAgent),
		httpClient:  &http.Client{Timeout: timeout},
		apiCache:    expirable.NewLRU[string, []byte](apiCacheSize, nil, ttl),
		sparqlCache: expirable.NewLRU[string, []byte](sparqlCacheSize, nil, ttl),
		metrics:     collector,
		registry:    registry,
	}
}

// api POSTs a form-encoded API call and decodes the JSON response into result.
func (c *Client) api(ctx context.Context, params url.Values, result any) error {
	params.Set("format", "json")
	body := params.Encode()

	data, err := c.cached(ctx, c.apiCache, metrics.OpWikidataAPI, body, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return err
	}

	var apiErr struct {
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != nil {
		return fmt.Errorf("wikidata api error: %s - %s", apiErr.Error.Code, apiErr.Error.Info)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// sparql GETs a SPARQL query and decodes the JSON response into result.
func (c *Client) sparql(ctx context.Context, query string, result any) error {
	params := url.Values{"query": {query}, "format": {"json"}}.Encode()

	data, err := c.cached(ctx, c.sparqlCache, metrics.OpWikidataSPARQL, params, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sparqlURL+"?"+params, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/sparql-results+json")
		return req, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// cached returns the body for key from cache or executes the request built
// by newRequest. Only successful responses are cached.
func (c *Client) cached(ctx context.Context, cache *expirable.LRU[string, []byte], op, key string, newRequest func() (*http.Request, error)) ([]byte, error) {
	endpoint := strings.TrimPrefix(op, "wikidata_")
	if data, ok := cache.Get(key); ok {
		c.metrics.RecordCache(op, true)
		if c.registry != nil {
			c.registry.RecordUpstream(endpoint, true)
		}
		return data, nil
	}
	c.metrics.RecordCache(op, false)
	if c.registry != nil {
		c.registry.RecordUpstream(endpoint, false)
	}

	req, err := newRequest()
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.RecordTiming(op, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server error: %s - %s", resp.Status, truncate(string(data), 200))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cache.Add(key, data)
	return data, nil
}

// Purge drops every cached response.
func (c *Client) Purge() {
	c.apiCache.Purge()
	c.sparqlCache.Purge()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
