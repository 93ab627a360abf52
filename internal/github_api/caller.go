// Package githubapi runs GraphQL queries against the GitHub API and decodes the
// paged connections the crawler reads.

package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/limiter"
	"github.com/thep200/git2neo/pkg/log"
)

var ErrRateLimited = errors.New("github api rate limit exceeded")

type Caller struct {
	Logger  log.Logger
	Config  *cfg.Config
	Limiter *limiter.RateLimiter
	client  *http.Client
}

func NewCaller(logger log.Logger, config *cfg.Config, rateLimiter *limiter.RateLimiter) *Caller {
	timeout := time.Duration(config.GithubApi.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Caller{
		Logger:  logger,
		Config:  config,
		Limiter: rateLimiter,
		client:  &http.Client{Timeout: timeout},
	}
}

// AuthHeaders builds the Authorization header for a personal access token.
func AuthHeaders(token string) map[string]string {
	if token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "token " + token}
}

// HandleRateLimit reports an exhausted rate limit as an error. No waiting is done
// here: the current unit fails and the crawl moves on.
func (c *Caller) HandleRateLimit(ctx context.Context, resp *http.Response) (bool, error) {
	rateRemaining := resp.Header.Get("X-RateLimit-Remaining")
	limited := resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && rateRemaining == "0")
	if !limited {
		return false, nil
	}

	resetTimeInt, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		c.Logger.Warn(ctx, "Rate limit hit! Reset time unknown")
		return true, ErrRateLimited
	}

	resetTime := time.Unix(resetTimeInt, 0)
	c.Logger.Warn(ctx, "Rate limit hit! Resets in %v at %v",
		time.Until(resetTime).Round(time.Second), resetTime.Format(time.RFC3339))
	return true, fmt.Errorf("%w, reset at %s", ErrRateLimited, resetTime.Format(time.RFC3339))
}

// Execute posts one GraphQL query and returns the raw JSON document.
func (c *Caller) Execute(ctx context.Context, query string, headers map[string]string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.GithubApi.GraphqlUrl, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send request: %w", err)
	}
	defer resp.Body.Close()

	c.Logger.Debug(ctx, "Rate limit remaining: %s", resp.Header.Get("X-RateLimit-Remaining"))

	// Kiểm tra rate limit
	if isRateLimited, rateLimitErr := c.HandleRateLimit(ctx, resp); isRateLimited {
		return nil, rateLimitErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query failed with status %s: %s", resp.Status, truncate(body, 200))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
