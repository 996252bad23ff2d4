// Package api implements the client for the remote document indexing and
// query service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production endpoint for the docdash backend.
	DefaultBaseURL = "https://api.docdash.dev"

	// DefaultTimeout bounds a single index or query request.
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps response bodies so a misbehaving server cannot
	// exhaust memory.
	maxResponseSize = 10 * 1024 * 1024

	// FallbackAnswer is shown when a query response carries no usable field.
	FallbackAnswer = "I couldn't find a suitable answer in the indexed documents."
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("server returned HTTP %d", e.Status)
}

// File is a document to upload for indexing.
type File struct {
	Name    string
	Content []byte
}

// IndexResponse is the backend's reply to an index request.
type IndexResponse struct {
	Message      string   `json:"message"`
	Documents    []string `json:"documents"`
	IndexedCount int      `json:"indexed_count"`
}

// QueryResponse is the loosely typed reply to a query. Which field carries
// the answer varies by backend version, so every candidate is optional.
type QueryResponse struct {
	Answer   string          `json:"answer"`
	Response string          `json:"response"`
	Result   string          `json:"result"`
	Data     json.RawMessage `json:"data"`
}

// ExtractAnswer returns the display text for the response, trying the known
// fields in priority order: answer, response, result, then a string-typed
// data field. Structured data is serialized for display. FallbackAnswer is
// returned when nothing yields content.
func (r *QueryResponse) ExtractAnswer() string {
	if r.Answer != "" {
		return r.Answer
	}
	if r.Response != "" {
		return r.Response
	}
	if r.Result != "" {
		return r.Result
	}
	if len(r.Data) > 0 && string(r.Data) != "null" {
		var s string
		if err := json.Unmarshal(r.Data, &s); err == nil {
			if s != "" {
				return s
			}
			return FallbackAnswer
		}
		// Structured payload: show it as formatted JSON.
		var v interface{}
		if err := json.Unmarshal(r.Data, &v); err == nil {
			if formatted, err := json.MarshalIndent(v, "", "  "); err == nil {
				return string(formatted)
			}
		}
		return string(r.Data)
	}
	return FallbackAnswer
}

// Client talks to the remote index/query service. Remote failures are
// terminal for the operation that hit them; the client never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. An empty baseURL uses
// DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Index uploads the given files as one multipart request to the index
// endpoint.
func (c *Client) Index(ctx context.Context, files []File) (*IndexResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/index", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var indexResp IndexResponse
	if err := json.Unmarshal(body, &indexResp); err != nil {
		return nil, fmt.Errorf("failed to parse index response: %w", err)
	}
	return &indexResp, nil
}

// Query posts a question to the query endpoint.
func (c *Client) Query(ctx context.Context, question string) (*QueryResponse, error) {
	payload, err := json.Marshal(map[string]string{"query": question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var queryResp QueryResponse
	if err := json.Unmarshal(body, &queryResp); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	return &queryResp, nil
}

// do executes the request and returns the response body, mapping non-2xx
// statuses to *APIError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
