package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultAPIURL = "https://slack.com/api"

// Client is a minimal Web API client covering the chat.unfurl call.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	userAgent  string
}

func NewClient(httpClient *http.Client, token, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		apiURL:     defaultAPIURL,
		token:      token,
		userAgent:  userAgent,
	}
}

// SetAPIURL overrides the Web API base URL.
func (c *Client) SetAPIURL(apiURL string) {
	c.apiURL = apiURL
}

type UnfurlRequest struct {
	Channel  string  `json:"channel,omitempty"`
	TS       string  `json:"ts,omitempty"`
	UnfurlID string  `json:"unfurl_id,omitempty"`
	Source   string  `json:"source,omitempty"`
	Unfurls  Unfurls `json:"unfurls"`
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Unfurl posts the url -> attachment mapping for a previously shared
// message via chat.unfurl.
func (c *Client) Unfurl(ctx context.Context, unfurlReq UnfurlRequest) error {
	payload, err := json.Marshal(unfurlReq)
	if err != nil {
		return fmt.Errorf("failed to marshal unfurl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/chat.unfurl", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call chat.unfurl: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to parse API response: %w", err)
	}

	if !apiResp.OK {
		return fmt.Errorf("chat.unfurl failed: %s", apiResp.Error)
	}

	return nil
}
