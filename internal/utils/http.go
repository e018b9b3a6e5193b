package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/aibridge/providers/observability"
)

// HeaderOption is an additional header applied to an outbound request.
// Providers use it for vendor-specific auth schemes (x-goog-api-key,
// x-api-key + anthropic-version) instead of the default Bearer token.
type HeaderOption struct {
	Key   string
	Value string
}

// HTTPStatusError carries the status code and body of a non-2xx reply so
// callers can classify the failure without string-matching. The body is
// truncated for readability.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateStringDefault(e.Body))
}

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes
// the JSON response into OutputStruct.
//
// Error handling strategy:
//   - Context errors (timeout, cancellation) are propagated immediately.
//   - Non-2xx statuses return an *HTTPStatusError carrying code and body.
//   - Response body close errors are logged but never override the primary error.
//   - JSON decode errors include a response preview for debugging.
//
// When apiKey is non-empty it is sent as "Authorization: Bearer <key>";
// vendor-specific auth goes through headers instead.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, "POST"),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	res, err := doAndRead(httpClient, req, span, url)
	if err != nil {
		return res.response, nil, err
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(res.body, &resStruct); err != nil {
		return res.response, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s",
			res.response.StatusCode, err, TruncateStringDefault(string(res.body)))
	}

	return res.response, &resStruct, nil
}

// DoGetSync performs a synchronous HTTP GET and decodes the JSON response
// into OutputStruct. Providers use it for model-list endpoints; the error
// handling strategy matches [DoPostSync].
func DoGetSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	res, err := doAndRead(httpClient, req, span, url)
	if err != nil {
		return res.response, nil, err
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(res.body, &resStruct); err != nil {
		return res.response, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s",
			res.response.StatusCode, err, TruncateStringDefault(string(res.body)))
	}

	return res.response, &resStruct, nil
}

// DoPostRaw performs a synchronous HTTP POST with a JSON body and returns
// the raw response bytes. Used for endpoints that return binary payloads
// (e.g. speech synthesis) where JSON decoding does not apply.
func DoPostRaw(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, []byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	res, err := doAndRead(httpClient, req, span, url)
	if err != nil {
		return res.response, nil, err
	}
	return res.response, res.body, nil
}

// readResult pairs a response with its fully read body.
type readResult struct {
	response *http.Response
	body     []byte
}

func doAndRead(client *http.Client, req *http.Request, span observability.Span, url string) (readResult, error) {
	requestStart := time.Now()
	res, err := client.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return readResult{response: res}, fmt.Errorf("error sending request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			// Log the close error, but don't override the main error.
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return readResult{response: res}, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readResult{response: res}, &HTTPStatusError{StatusCode: res.StatusCode, Body: string(respBody)}
	}

	return readResult{response: res, body: respBody}, nil
}
