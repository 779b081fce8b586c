// Package mem0 is an HTTP client for the vector memory microservice.
package mem0

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
)

// Memory is one stored memory as returned by search. The service has used
// both "text" and "memory" for the content over time.
type Memory struct {
	ID       string                 `json:"id,omitempty"`
	Text     string                 `json:"text,omitempty"`
	Memory   string                 `json:"memory,omitempty"`
	Score    float64                `json:"score,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (m Memory) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Memory
}

type SearchResult struct {
	Results []Memory `json:"results"`
	Data    []Memory `json:"data,omitempty"`
}

// Items returns results, falling back to the legacy "data" field.
func (r *SearchResult) Items() []Memory {
	if r == nil {
		return nil
	}
	if len(r.Results) > 0 {
		return r.Results
	}
	return r.Data
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type addRequest struct {
	Messages []message `json:"messages"`
	UserID   string    `json:"user_id"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Add persists text as a user memory.
func (c *Client) Add(ctx context.Context, text, userID string) (map[string]interface{}, error) {
	body := addRequest{
		Messages: []message{{Role: "user", Content: text}},
		UserID:   userID,
	}
	var out map[string]interface{}
	if err := c.do(ctx, http.MethodPost, "/memories", nil, body, &out); err != nil {
		return nil, fmt.Errorf("add memory: %w", err)
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, query, userID string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("user_id", userID)
	params.Set("k", strconv.Itoa(limit))

	var out SearchResult
	if err := c.do(ctx, http.MethodGet, "/memories/search", params, nil, &out); err != nil {
		return nil, fmt.Errorf("search memory: %w", err)
	}
	return &out, nil
}

// Forget records that a topic is outdated. Memories are append-only on the
// service side so this is a correction note, not a delete.
func (c *Client) Forget(ctx context.Context, topic, userID string) error {
	note := fmt.Sprintf("Update: %s is no longer valid.", strings.TrimSpace(topic))
	_, err := c.Add(ctx, note, userID)
	return err
}

// GetUserContext returns a small window of the user's memories. Failures
// yield an empty window.
func (c *Client) GetUserContext(ctx context.Context, userID string, limit int) []Memory {
	res, err := c.Search(ctx, "*", userID, limit)
	if err != nil {
		return nil
	}
	return res.Items()
}

func (c *Client) Reset(ctx context.Context, userID string) error {
	if err := c.do(ctx, http.MethodPost, "/reset", nil, map[string]string{"user_id": userID}, nil); err != nil {
		return fmt.Errorf("reset memory: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("memory service status %d: %s", resp.StatusCode, string(respBody))
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
