package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/util"
	"golang.org/x/time/rate"
)

// Fetcher retrieves remote case documents over HTTP. It honors
// robots.txt, caps body size and redirects, and rate limits per host so
// that a batch of documents from one source does not hammer it.
type Fetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    *hostLimiter
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a fetcher from the HTTP and rate-limit configuration
func NewFetcher(httpCfg model.HTTPConfig, rateCfg model.RateLimitConfig) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: httpCfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    util.NewRobotsChecker(httpCfg.UserAgent, httpCfg.Timeout),
		limiter:   newHostLimiter(rateCfg.RequestsPerSecond, rateCfg.BurstSize),
		userAgent: httpCfg.UserAgent,
		maxBytes:  httpCfg.MaxBodyBytes,
	}
}

// Fetch retrieves one remote document
func (f *Fetcher) Fetch(ctx context.Context, ref model.DocumentRef) (model.Document, error) {
	allowed, err := f.robots.CanFetch(ctx, ref.Address)
	if err != nil {
		return model.Document{}, fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return model.Document{}, fmt.Errorf("fetch %s: disallowed by robots.txt", ref.Address)
	}

	if err := f.limiter.Wait(ctx, ref.Address); err != nil {
		return model.Document{}, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.Address, nil)
	if err != nil {
		return model.Document{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return model.Document{}, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Document{}, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return model.Document{}, fmt.Errorf("read body: %w", err)
	}

	return model.Document{
		Ref:         ref,
		Content:     string(body),
		ContentType: resp.Header.Get("Content-Type"),
		RetrievedAt: time.Now(),
	}, nil
}

// hostLimiter applies a per-host token bucket to outbound fetches
type hostLimiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

func newHostLimiter(requestsPerSecond float64, burst int) *hostLimiter {
	if burst <= 0 {
		burst = 5
	}

	return &hostLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the host's rate limit clears
func (l *hostLimiter) Wait(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return l.getLimiter(parsed.Host).Wait(ctx)
}

func (l *hostLimiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter

	return limiter
}
