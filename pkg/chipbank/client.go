package chipbank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a chip bank API client.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new chip bank client.
func NewClient(config *ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// NewClientWithHTTPClient creates a client with a custom HTTP client.
func NewClientWithHTTPClient(config *ClientConfig, httpClient *http.Client) *Client {
	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// doJSON performs a request and decodes the JSON response body. Transport
// failures and undecodable bodies are reported as ErrUnreachable.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, reqBody, result interface{}) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	retryCount := c.config.RetryCount
	if retryCount == 0 {
		retryCount = 1
	}

	var resp *http.Response
	var lastErr error
	for i := 0; i < retryCount; i++ {
		var body io.Reader
		if bodyBytes != nil {
			body = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return fmt.Errorf("%w: request failed after %d attempts: %v", ErrUnreachable, retryCount, lastErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", ErrUnreachable, err)
	}

	return nil
}

// PlaceBet records a settled bet with the chip bank and returns the
// authoritative post-settlement balance. A response with success false or
// absent is a rejection.
func (c *Client) PlaceBet(ctx context.Context, req *PlaceBetRequest) (*BetResult, error) {
	var resp placeBetResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/casino/bet", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, rejectionError(resp.Error)
	}

	return &BetResult{Chips: resp.Chips}, nil
}

// GetBalance queries the authoritative balance for a user.
func (c *Client) GetBalance(ctx context.Context, userID string) (*BalanceResult, error) {
	endpoint := "/api/v1/casino/balance/" + url.PathEscape(userID)

	var resp balanceResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, rejectionError(resp.Error)
	}

	return &BalanceResult{Chips: resp.Chips}, nil
}
