package highlights

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/decoder"
	"golang.org/x/time/rate"
)

// defaultRate bounds outgoing calls so bursts of UI interaction do not
// hammer the annotation service.
var defaultRate = rate.NewLimiter(rate.Limit(20), 40)

// Client talks to the annotation persistence API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a client for the API at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    defaultRate,
	}
}

// SetLimiter overrides the client's rate limiter.
func (c *Client) SetLimiter(l *rate.Limiter) { c.limiter = l }

// sendRequest sends an HTTP request to the given URL and returns the
// response body. Statuses >= 300 become errors carrying the body.
func (c *Client) sendRequest(ctx context.Context, method, requestURL string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading http response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return respBody, fmt.Errorf("received non-OK status %d from %s: %s", resp.StatusCode, requestURL, string(respBody))
	}
	return respBody, nil
}

// List fetches all highlight records for a document.
func (c *Client) List(ctx context.Context, documentID string) ([]Highlight, error) {
	if documentID == "" {
		return nil, fmt.Errorf("empty document id")
	}
	listURL, err := url.JoinPath(c.baseURL, "highlight", documentID)
	if err != nil {
		return nil, fmt.Errorf("creating highlight list URL: %w", err)
	}

	respBody, err := c.sendRequest(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("listing highlights: %w", err)
	}

	var out []Highlight
	if err := decoder.NewStreamDecoder(bytes.NewReader(respBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing highlight list response: %w", err)
	}
	return out, nil
}

// Create stores a new highlight record and returns it with its
// server-assigned id. On failure no local state should change; the
// caller paints only the returned record.
func (c *Client) Create(ctx context.Context, req CreateHighlightRequest) (*Highlight, error) {
	if req.DocumentID == "" {
		return nil, fmt.Errorf("empty document id")
	}
	createURL, err := url.JoinPath(c.baseURL, "highlight")
	if err != nil {
		return nil, fmt.Errorf("creating highlight URL: %w", err)
	}

	reqBody, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling highlight request: %w", err)
	}

	respBody, err := c.sendRequest(ctx, http.MethodPost, createURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating highlight: %w", err)
	}

	var created Highlight
	if err := sonic.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("parsing created highlight: %w", err)
	}
	return &created, nil
}

// Delete removes a highlight record. The caller strips local visual
// state only after Delete returns nil.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("empty highlight id")
	}
	deleteURL, err := url.JoinPath(c.baseURL, "highlight", id)
	if err != nil {
		return fmt.Errorf("creating highlight delete URL: %w", err)
	}

	if _, err := c.sendRequest(ctx, http.MethodDelete, deleteURL, nil); err != nil {
		return fmt.Errorf("deleting highlight: %w", err)
	}
	return nil
}
