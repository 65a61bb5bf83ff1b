// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize calls the summarization service that writes a summary
// and an insight for each article, and merges the answers back by article ID.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/issue-builder/internal/httputil"
	"github.com/pdiddy/issue-builder/pkg/types"
)

const (
	// DefaultTimeout bounds one summarization call. Large groups take minutes.
	DefaultTimeout = 300 * time.Second

	// DefaultOrigin is sent when no client origin is configured.
	DefaultOrigin = "http://localhost:5173"

	// errorBodyLimit caps how much of an error response is kept.
	errorBodyLimit = 2000
)

var (
	// ErrStatus reports a non-2xx reply from the endpoint.
	ErrStatus = errors.New("summarization endpoint error")

	// ErrMalformedResponse reports a reply that is not a summary response.
	ErrMalformedResponse = errors.New("malformed summarization response")
)

// Backend produces analyses for a batch of articles. Tests supply fakes.
type Backend interface {
	Summarize(ctx context.Context, req types.SummaryRequest) (types.SummaryResponse, error)
}

// Client posts summary requests to an HTTP endpoint.
type Client struct {
	Endpoint   string
	APIKey     string
	Origin     string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// NewClient builds a Client from configuration. A zero timeout uses
// DefaultTimeout and an empty origin uses DefaultOrigin.
func NewClient(cfg types.SummarizeConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	origin := cfg.Origin
	if origin == "" {
		origin = DefaultOrigin
	}
	return &Client{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		Origin:     origin,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: timeout},
	}
}

// wireResponse keeps "articles" raw so a missing field is distinguishable
// from an empty list.
type wireResponse struct {
	IssueID  string          `json:"issueId"`
	Articles json.RawMessage `json:"articles"`
}

// Summarize posts req and decodes the reply. A non-2xx status wraps
// ErrStatus; a body without an "articles" array wraps ErrMalformedResponse.
func (c *Client) Summarize(ctx context.Context, req types.SummaryRequest) (types.SummaryResponse, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return types.SummaryResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.SummaryResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	httpReq.Header.Set("Origin", c.Origin)
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries)
	if err != nil {
		return types.SummaryResponse{}, fmt.Errorf("calling summarization endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return types.SummaryResponse{}, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, string(body))
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return types.SummaryResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	trimmed := bytes.TrimSpace(wire.Articles)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return types.SummaryResponse{}, fmt.Errorf("%w: missing articles", ErrMalformedResponse)
	}

	out := types.SummaryResponse{IssueID: wire.IssueID}
	if err := json.Unmarshal(trimmed, &out.Articles); err != nil {
		return types.SummaryResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}
