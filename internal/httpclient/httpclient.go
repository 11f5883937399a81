// Package httpclient builds the HTTP client shared by the cover art
// providers from composable round tripper middleware.
package httpclient

import (
	"net/http"
	"sync"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const cacheClearInterval = 5 * time.Minute

type Middleware func(http.RoundTripper) http.RoundTripper

func Chain(middlewares ...Middleware) Middleware {
	if len(middlewares) == 0 {
		return Passthrough
	}
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	return func(final http.RoundTripper) http.RoundTripper {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// WithCache honours HTTP caching headers using an in-memory store that is
// cleared periodically.
func WithCache(cache httpcache.Cache) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		transport := httpcache.NewTransport(cache)
		transport.Transport = next
		return transport
	}
}

func WithRateLimit(interval time.Duration) Middleware {
	if interval == 0 {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		limiter := rate.NewLimiter(rate.Every(interval), 1)
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

func WithLogging(log logrus.FieldLogger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			fields := logrus.Fields{
				"method":   r.Method,
				"url":      r.URL.Redacted(),
				"duration": time.Since(start).Truncate(time.Millisecond),
			}
			if err != nil {
				log.WithFields(fields).WithError(err).Debug("http request failed")
				return nil, err
			}
			fields["status"] = resp.StatusCode
			fields["cached"] = resp.Header.Get(httpcache.XFromCache) != ""
			log.WithFields(fields).Debug("http response")
			return resp, nil
		})
	}
}

func WithUserAgent(userAgent string) Middleware {
	if userAgent == "" {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			r.Header.Set("User-Agent", userAgent)
			return next.RoundTrip(r)
		})
	}
}

func Passthrough(next http.RoundTripper) http.RoundTripper {
	return next
}

type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func Wrap(c *http.Client, mw Middleware) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	c.Transport = mw(c.Transport)
	return c
}

// Options configures New.
type Options struct {
	UserAgent string
	RateLimit time.Duration
	Timeout   time.Duration
	Log       logrus.FieldLogger
}

// New returns a client with user agent, rate limiting, caching and request
// logging applied in that order.
func New(opts Options) *http.Client {
	mws := []Middleware{
		WithUserAgent(opts.UserAgent),
		WithRateLimit(opts.RateLimit),
		WithCache(NewMemoryCache(cacheClearInterval)),
	}
	if opts.Log != nil {
		mws = append(mws, WithLogging(opts.Log))
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return Wrap(&http.Client{Timeout: timeout}, Chain(mws...))
}

type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryCache returns a cache that drops every entry each interval. A zero
// interval keeps entries forever.
func NewMemoryCache(interval time.Duration) *MemoryCache {
	cache := &MemoryCache{items: map[string][]byte{}}
	if interval <= 0 {
		return cache
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for range t.C {
			cache.mu.Lock()
			clear(cache.items)
			cache.mu.Unlock()
		}
	}()
	return cache
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resp, ok := c.items[key]
	return resp, ok
}

func (c *MemoryCache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}
