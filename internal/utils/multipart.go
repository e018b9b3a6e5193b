package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/leofalp/aibridge/providers/observability"
)

// MultipartFile is one file part of a multipart upload.
type MultipartFile struct {
	FieldName string
	FileName  string
	Data      []byte
}

// DoPostMultipart performs a multipart/form-data POST (the shape used by
// transcription endpoints: one file part plus plain form fields) and decodes
// the JSON response into OutputStruct. Auth and error handling follow the
// same strategy as [DoPostSync].
func DoPostMultipart[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, file MultipartFile, fields map[string]string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(file.FieldName, file.FileName)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating form file: %w", err)
	}
	if _, err = part.Write(file.Data); err != nil {
		return nil, nil, fmt.Errorf("error writing form file: %w", err)
	}
	for key, value := range fields {
		if err = writer.WriteField(key, value); err != nil {
			return nil, nil, fmt.Errorf("error writing form field %q: %w", key, err)
		}
	}
	if err = writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("error finalizing multipart body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, "POST"),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, buf.Len()),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
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
