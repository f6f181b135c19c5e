package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tastac/bfj-client/pkg/cache"
)

// maxErrorBody caps how much of a non-2xx body is kept on StatusError.
const maxErrorBody = 4 << 10

// encodedJSON is a JSON response body as kept in the cache.
type encodedJSON []byte

// GetJSON requests endpoint and decodes the JSON object or array into T.
// The cache keeps the response body and each hit decodes it afresh, so
// callers never share a decoded value.
func GetJSON[T any](c *Client, endpoint string, query url.Values) *Future[T] {
	fetch := func(ctx context.Context) (fetched[T], error) {
		var result fetched[T]

		body, err := c.get(ctx, endpoint, query, "application/json")
		if err != nil {
			return result, err
		}
		if result.value, err = decodeJSON[T](endpoint, body); err != nil {
			return result, err
		}
		result.cached = encodedJSON(body)
		return result, nil
	}

	load := func(raw any) (T, bool) {
		body, ok := raw.(encodedJSON)
		if !ok {
			var zero T
			return zero, false
		}
		value, err := decodeJSON[T](endpoint, body)
		return value, err == nil
	}

	return dispatch(c, cache.NewKey(endpoint, query), fetch, load)
}

// GetBytes requests endpoint and returns the raw response body.
func GetBytes(c *Client, endpoint string, query url.Values) *Future[[]byte] {
	return Request(c, cache.NewKey(endpoint, query), FetchBytes(c, endpoint, query))
}

// GetText requests endpoint and returns the trimmed response body.
func GetText(c *Client, endpoint string, query url.Values) *Future[string] {
	return Request(c, cache.NewKey(endpoint, query), FetchText(c, endpoint, query))
}

// FetchJSON returns a Fetcher that decodes a JSON response into T.
func FetchJSON[T any](c *Client, endpoint string, query url.Values) Fetcher[T] {
	return func(ctx context.Context) (T, error) {
		body, err := c.get(ctx, endpoint, query, "application/json")
		if err != nil {
			var zero T
			return zero, err
		}
		return decodeJSON[T](endpoint, body)
	}
}

func decodeJSON[T any](endpoint string, body []byte) (T, error) {
	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return result, &ParseError{Endpoint: strings.Trim(endpoint, "/"), Err: err}
	}
	return result, nil
}

// FetchBytes returns a Fetcher for binary payloads such as textures.
func FetchBytes(c *Client, endpoint string, query url.Values) Fetcher[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, endpoint, query, "*/*")
	}
}

// FetchText returns a Fetcher for plain-text payloads such as hashes.
func FetchText(c *Client, endpoint string, query url.Values) Fetcher[string] {
	return func(ctx context.Context) (string, error) {
		body, err := c.get(ctx, endpoint, query, "text/plain")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(body)), nil
	}
}

// URL builds the absolute URL for endpoint and query.
func (c *Client) URL(endpoint string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Trim(endpoint, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// get performs a blocking GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, accept string) ([]byte, error) {
	endpoint = strings.Trim(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(endpoint, query), nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", accept)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", req.URL.String()).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		httpResponsesTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	httpResponsesTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("API request error")
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read response body: %w", err)}
	}
	return body, nil
}
