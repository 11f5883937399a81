// Package musicbrainz looks up recordings on MusicBrainz and front covers on
// the Cover Art Archive.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/config"
)

const (
	rateLimitDur = time.Second // MusicBrainz allows one request per second
	searchLimit  = 10

	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

// Client provides access to the MusicBrainz search API.
type Client struct {
	cfg        config.MusicBrainzConfig
	httpClient *http.Client
	log        logrus.FieldLogger

	interval    time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a client. The user agent is expected to be set by the
// transport of httpClient.
func NewClient(cfg config.MusicBrainzConfig, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient, log: log, interval: rateLimitDur}
}

// search runs a Lucene query against an entity ("recording", "release")
// and decodes the reply into v.
func (c *Client) search(ctx context.Context, entity, query string, v any) error {
	c.waitForRateLimit()

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", strconv.Itoa(searchLimit))
	reqURL := fmt.Sprintf("%s/%s?%s", c.cfg.APIURL, entity, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.interval {
		time.Sleep(c.interval - elapsed)
	}
	c.lastRequest = time.Now()
}

// doRequestWithRetry retries server errors and network errors with
// exponential backoff. It gives up early when the request context ends.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, maxDelay)
			c.waitForRateLimit()
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if resp.StatusCode < 500 {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries+1, lastErr)
}

// quote builds a Lucene phrase for field.
func quote(field, value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return field + `:"` + value + `"`
}

func buildQuery(terms ...[2]string) string {
	var parts []string
	for _, t := range terms {
		if t[1] != "" {
			parts = append(parts, quote(t[0], t[1]))
		}
	}
	return strings.Join(parts, " AND ")
}

func extractArtist(credits []artistCredit) string {
	var b strings.Builder
	for _, c := range credits {
		name := c.Name
		if name == "" {
			name = c.Artist.Name
		}
		b.WriteString(name + c.JoinPhrase)
	}
	return b.String()
}

func extractYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
