// Package upstream wraps the two HTTP calls the ingestion pipeline makes
// against the third-party game API: club resolution and match listing.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"clubarchive/ingestion/internal/cache"
	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
)

// ErrorKind classifies an upstream failure so callers can decide whether
// a fetch is retryable, permanent, or merely produced no data.
type ErrorKind string

const (
	ErrKindNetwork     ErrorKind = "network"
	ErrKindRateLimited ErrorKind = "rate_limited"
	ErrKindUpstream5xx ErrorKind = "upstream_5xx"
	ErrKindPermanent   ErrorKind = "permanent"
	ErrKindDecode      ErrorKind = "decode"
)

// Error is a tagged upstream failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36"

// Client is the upstream game API client: club resolution and match
// listing, with retry/backoff and a club external-id resolution cache.
type Client struct {
	baseURL    string
	platform   string
	matchKind  string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration

	clubCache *cache.ClubCache
}

// NewClient builds an upstream client for the given base URL, platform
// tag, and match kind, with the supplied per-call timeout. clubCache
// backs ResolveClub's lookups so a resolved id survives a worker
// restart and is shared across processes reading the same cache.
func NewClient(baseURL, platform, matchKind string, timeout time.Duration, clubCache *cache.ClubCache) *Client {
	return &Client{
		baseURL:    baseURL,
		platform:   platform,
		matchKind:  matchKind,
		maxRetries: 3,
		baseDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		clubCache: clubCache,
	}
}

// rawClubResult mirrors one entry of the club-search response.
type rawClubResult struct {
	ClubID json.Number `json:"clubId"`
}

// ResolveClub returns the external numeric club id for a human club
// name, consulting and populating the injected (name, platform) cache
// before making an upstream request.
func (c *Client) ResolveClub(ctx context.Context, name string) (string, error) {
	if id, ok := c.clubCache.Get(ctx, name, c.platform); ok {
		return id, nil
	}

	params := url.Values{
		"clubName":       {name},
		"platform":       {c.platform},
		"maxResultCount": {"5"},
	}

	body, err := c.get(ctx, "resolve-club", "/clubs/search", params)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", nil
	}

	var results []rawClubResult
	if err := json.Unmarshal(body, &results); err != nil {
		log.Warn().Err(err).Str("club_name", name).Msg("upstream club-search response not decodable, treating as empty")
		return "", nil
	}
	if len(results) == 0 {
		return "", nil
	}

	id := results[0].ClubID.String()
	if id == "" {
		return "", nil
	}

	c.clubCache.Set(ctx, name, c.platform, id)

	return id, nil
}

// ListMatches fetches the most recent matches for one club. A malformed
// or empty body is treated as no matches, never as an error.
func (c *Client) ListMatches(ctx context.Context, externalClubID string) ([]models.RawMatch, error) {
	params := url.Values{
		"matchType": {c.matchKind},
		"platform":  {c.platform},
		"clubIds":   {externalClubID},
	}

	body, err := c.get(ctx, "list-matches", "/clubs/matches", params)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(body, &rawItems); err != nil {
		log.Warn().Err(err).Str("club_id", externalClubID).Msg("upstream matches response not decodable, treating as empty")
		return nil, nil
	}

	matches := make([]models.RawMatch, 0, len(rawItems))
	for _, item := range rawItems {
		var m models.RawMatch
		if err := json.Unmarshal(item, &m); err != nil {
			log.Warn().Err(err).Msg("skipping one undecodable match entry")
			continue
		}
		if m.MatchID == "" {
			continue
		}
		m.Raw = item
		matches = append(matches, m)
	}

	return matches, nil
}

// get performs one upstream GET with retry/backoff. Network errors and
// 5xx are retried with exponential backoff starting at baseDelay; 429 is
// retried with a longer floor; any other 4xx fails immediately as
// permanent.
func (c *Client) get(ctx context.Context, op, path string, params url.Values) (body []byte, err error) {
	start := time.Now()
	defer func() {
		kind := "ok"
		if err != nil {
			var upErr *Error
			if errors.As(err, &upErr) {
				kind = string(upErr.Kind)
			} else {
				kind = "unknown"
			}
		}
		metrics.RecordUpstreamCall(op, kind, time.Since(start).Seconds())
	}()

	fullURL := c.baseURL + path

	var lastErr *Error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseDelay * time.Duration(1<<uint(attempt-1))
			if lastErr != nil && lastErr.Kind == ErrKindRateLimited && backoff < 5*time.Second {
				backoff = 5 * time.Second
			}
			log.Info().Str("op", op).Int("attempt", attempt).Dur("backoff", backoff).Msg("retrying upstream request")
			select {
			case <-ctx.Done():
				return nil, newError(ErrKindNetwork, op, ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, newError(ErrKindPermanent, op, err)
		}
		req.URL.RawQuery = params.Encode()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = newError(ErrKindNetwork, op, err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = newError(ErrKindNetwork, op, err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = newError(ErrKindRateLimited, op, fmt.Errorf("status 429: %s", body))
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		case resp.StatusCode >= 500:
			lastErr = newError(ErrKindUpstream5xx, op, fmt.Errorf("status %d: %s", resp.StatusCode, body))
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		default:
			return nil, newError(ErrKindPermanent, op, fmt.Errorf("status %d: %s", resp.StatusCode, body))
		}
	}

	return nil, lastErr
}
