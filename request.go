package kickapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kickwire/kickapi/internal/telemetry"
)

// maxRetries bounds retries of rate-limited requests.
const maxRetries = 3

// defaultRetryAfter is used when a 429 response omits the Retry-After header.
const defaultRetryAfter = time.Second

// do sends one API request. Request bodies are JSON; success bodies are
// decoded into out when out is non-nil. Rate-limited requests are retried
// up to maxRetries times, honoring Retry-After. Non-2xx responses become
// *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	requestID := uuid.NewString()
	telemetry.IncAPIRequest()

	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, method, u, requestID, payload)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending %s %s: %w", method, path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			resp.Body.Close()
			delay := retryAfter(resp)
			telemetry.IncAPIRetry()
			c.log.Debug("Rate limited, retrying",
				"method", method, "path", path, "attempt", attempt+1, "delay", delay)

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return c.handleResponse(resp, method, path, out)
	}
}

func (c *Client) newRequest(ctx context.Context, method, u, requestID string, payload []byte) (*http.Request, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) handleResponse(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s %s response: %w", method, path, err)
	}
	return nil
}

// dataEnvelope is the {"data": ...} wrapper most endpoints use.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// doData sends a request and unwraps the data envelope of the response.
func doData[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var env dataEnvelope[T]
	err := c.do(ctx, method, path, query, body, &env)
	return env.Data, err
}

// errorMessage extracts the server error message from a response body,
// falling back to the trimmed body text.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}

// retryAfter parses the Retry-After header of a rate-limited response.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}
