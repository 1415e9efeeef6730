package create

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const DefaultTimeout = 30 * time.Second

// Result is the normalized outcome of the creation call. Success false with a
// nil error means the endpoint answered but declined; the raw body is kept for
// the diagnostic message.
type Result struct {
	Success bool
	ID      string
	Raw     string
}

type Creator interface {
	Create(ctx context.Context, customerName, industryName string) (*Result, error)
}

// Client performs the side-effecting "create instance" call. A returned error
// is a transport failure; callers must not retry automatically.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

type createRequest struct {
	CustomerName string `json:"customer_name"`
	IndustryName string `json:"industry_name,omitempty"`
}

// createResponse tolerates both success shapes the endpoint has been seen to
// produce: a boolean flag and a status string.
type createResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	ID      any    `json:"id"`
}

func (c *Client) Create(ctx context.Context, customerName, industryName string) (*Result, error) {
	body, err := sonic.Marshal(createRequest{
		CustomerName: customerName,
		IndustryName: industryName,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal create payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read create response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("create endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed createResponse
	if err := sonic.Unmarshal(raw, &parsed); err != nil {
		// Well-formed transport, unreadable business payload: not a success.
		return &Result{Success: false, Raw: string(raw)}, nil
	}

	result := &Result{
		Success: parsed.Success || parsed.Status == "success",
		Raw:     string(raw),
	}
	if parsed.ID != nil {
		result.ID = strings.TrimSpace(fmt.Sprint(parsed.ID))
	}
	return result, nil
}
