package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_sentiment/internal/engine"
	"github.com/anatolykoptev/go_sentiment/internal/engine/comments"
	"golang.org/x/time/rate"
)

// YouTube Data API v3: shared client, request plumbing and error mapping.

const ytDataAPIBase = "https://www.googleapis.com/youtube/v3"

// APIError is a non-2xx answer from the Data API, mapped onto one of the
// comments.Err* classes so callers can use errors.Is.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
	class      error
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube data API %d %s: %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube data API %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.class }

type ytErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

// decodeAPIError returns the first reason and the message of a Google error
// body. Both are empty when body is not one.
func decodeAPIError(body []byte) (reason, message string) {
	var parsed ytErrorBody
	if json.Unmarshal(body, &parsed) != nil {
		return "", ""
	}
	if len(parsed.Error.Errors) > 0 {
		reason = parsed.Error.Errors[0].Reason
	}
	return reason, parsed.Error.Message
}

// parseAPIError builds an APIError from a failed response body.
func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	if reason, msg := decodeAPIError(body); msg != "" {
		e.Reason, e.Message = reason, msg
	}
	e.Message = engine.TruncateRunes(e.Message, 300, "...")
	e.class = classifyAPIError(status, e.Reason, e.Message)
	return e
}

// retryableResponse is the RetryPolicy for the Data API: 429 and 5xx, plus
// the short-window rate limits Google reports as 403. Daily quota
// exhaustion is final and goes to key fallback instead.
func retryableResponse(status int, body []byte) bool {
	if engine.RetryOnStatus(status, body) {
		return true
	}
	if status != http.StatusForbidden {
		return false
	}
	switch reason, _ := decodeAPIError(body); reason {
	case "rateLimitExceeded", "userRateLimitExceeded":
		return true
	}
	return false
}

func classifyAPIError(status int, reason, message string) error {
	switch reason {
	case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
		return comments.ErrQuotaExceeded
	case "commentsDisabled":
		return comments.ErrCommentsDisabled
	case "videoNotFound", "notFound":
		return comments.ErrVideoNotFound
	case "keyInvalid", "keyExpired", "accessNotConfigured", "unauthorized", "authError":
		return comments.ErrInvalidCredential
	case "backendError", "internalError":
		return comments.ErrTransient
	}
	switch {
	case status == http.StatusUnauthorized:
		return comments.ErrInvalidCredential
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "api key"):
		return comments.ErrInvalidCredential
	case status == http.StatusNotFound:
		return comments.ErrVideoNotFound
	case status == http.StatusTooManyRequests, status >= 500:
		return comments.ErrTransient
	}
	return fmt.Errorf("unexpected youtube data API response (%d)", status)
}

// YouTubeClient talks to the Data API with key fallback, retries and a
// request-rate limit shared by every call made through it.
type YouTubeClient struct {
	base    string
	keys    []string
	http    *http.Client
	limiter *rate.Limiter
	retry   engine.RetryConfig
}

// NewYouTubeClient builds a client from engine configuration.
func NewYouTubeClient(c *engine.Config) *YouTubeClient {
	base := c.YouTubeAPIBase
	if base == "" {
		base = ytDataAPIBase
	}
	var keys []string
	for _, k := range []string{c.YouTubeAPIKey, c.YouTubeAPIKeyFallback} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	limit := rate.Inf
	if c.YouTubeRPS > 0 {
		limit = rate.Limit(c.YouTubeRPS)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &YouTubeClient{
		base:    strings.TrimRight(base, "/"),
		keys:    keys,
		http:    hc,
		limiter: rate.NewLimiter(limit, 1),
		retry:   engine.DefaultRetryConfig,
	}
}

// getJSON calls endpoint with params and decodes the body into out.
// Quota and credential failures on the primary key fall through to the fallback key.
func (c *YouTubeClient) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if len(c.keys) == 0 {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "no API key configured", class: comments.ErrInvalidCredential}
	}
	var lastErr error
	for i, key := range c.keys {
		err := c.getJSONWithKey(ctx, endpoint, params, key, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, comments.ErrQuotaExceeded) {
			engine.IncrYouTubeQuotaError()
		}
		if !errors.Is(err, comments.ErrQuotaExceeded) && !errors.Is(err, comments.ErrInvalidCredential) {
			return err
		}
		if i < len(c.keys)-1 {
			slog.Debug("youtube data API key failed, trying fallback", slog.Any("err", err))
		}
	}
	return lastErr
}

func (c *YouTubeClient) getJSONWithKey(ctx context.Context, endpoint string, params url.Values, key string, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", key)
	apiURL := c.base + endpoint + "?" + q.Encode()

	resp, err := engine.RetryHTTP(ctx, c.retry, retryableResponse, func() (*http.Response, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	})
	if err != nil {
		var se *engine.StatusError
		switch {
		case ctx.Err() != nil:
			return fmt.Errorf("youtube data API %s: %w", endpoint, err)
		case errors.As(err, &se):
			// retries ran out; the last body still says why
			return fmt.Errorf("youtube data API %s after retries: %w", endpoint, parseAPIError(se.StatusCode, se.Body))
		}
		return fmt.Errorf("youtube data API %s: %w: %w", endpoint, comments.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return fmt.Errorf("read youtube data API %s: %w: %w", endpoint, comments.ErrTransient, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube data API %s: %w", endpoint, parseAPIError(resp.StatusCode, body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode youtube data API %s: %w: %w", endpoint, comments.ErrMalformedResponse, err)
	}
	return nil
}
