package loadtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/mentor/internal/domain/skill"
)

// Submission results.
const (
	resultSuccess   = "success"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

// Client is a thin JSON client for the mentor API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Submit posts one analysis and classifies the answer.
func (c *Client) Submit(ctx context.Context, sub Submission) (string, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return resultFailed, fmt.Errorf("marshal submission: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/analyses", payload)
	if err != nil {
		return resultFailed, err
	}
	defer resp.Body.Close()

	var ack struct {
		Duplicate bool `json:"duplicate"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resultFailed, fmt.Errorf("read response: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusCreated:
		return resultSuccess, nil
	case http.StatusOK:
		if err := json.Unmarshal(body, &ack); err == nil && !ack.Duplicate {
			return resultFailed, fmt.Errorf("200 without duplicate flag")
		}
		return resultDuplicate, nil
	default:
		return resultFailed, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
}

// Rank fetches GET /rank/{learner}?skill=.
func (c *Client) Rank(ctx context.Context, skillType skill.Type, learnerID string) (Entry, error) {
	q := url.Values{"skill": {string(skillType)}}
	var entry Entry
	err := c.getJSON(ctx, "/rank/"+url.PathEscape(learnerID)+"?"+q.Encode(), &entry)
	return entry, err
}

// Leaderboard fetches GET /leaderboard?skill=&limit=.
func (c *Client) Leaderboard(ctx context.Context, skillType skill.Type, limit int) ([]Entry, error) {
	q := url.Values{"skill": {string(skillType)}, "limit": {strconv.Itoa(limit)}}
	var board struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.getJSON(ctx, "/leaderboard?"+q.Encode(), &board); err != nil {
		return nil, err
	}
	return board.Entries, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
