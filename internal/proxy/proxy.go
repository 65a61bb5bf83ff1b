// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package proxy implements the summarization proxy: a thin service that
// checks the caller's origin, turns a batch of articles into a
// chat-completion request, forwards it upstream, and reshapes the model's
// JSON answer into a summary response.
package proxy

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/issue-builder/internal/logging"
	"github.com/pdiddy/issue-builder/pkg/types"
)

const (
	// DefaultUpstreamURL is the chat-completion endpoint used when none is configured.
	DefaultUpstreamURL = "https://api.302.ai/v1/chat/completions"

	// DefaultModel is used when a request names no model.
	DefaultModel = "gemini-2.5-pro"

	// DefaultTimeout bounds one upstream call.
	DefaultTimeout = 120 * time.Second

	// DefaultSystemPrompt asks for strict JSON with one summary and insight per article.
	DefaultSystemPrompt = "你是一名资深财经编辑。基于我提供的每篇 {id,title,content}，为每篇生成 summary(≤200字) 和 insight(≤500字)。" +
		"仅输出严格的 JSON: {\"issueId\":\"...\",\"articles\":[{\"id\":\"...\",\"summary\":\"...\",\"insight\":\"...\"}]}，不要解释。"

	unknownIssue = "unknown-issue"

	allowMethods = "POST, OPTIONS"
	allowHeaders = "Content-Type, Accept"
	maxAge       = "86400"
)

// Request is one call to the proxy, independent of how it arrived.
type Request struct {
	// Origin is the caller's Origin header, "" when absent.
	Origin string
	// Method is the HTTP method. Empty means POST.
	Method string
	// Body is the JSON request body. Empty means "{}".
	Body []byte
}

// Response is what the proxy answers.
type Response struct {
	Status int
	Header map[string]string
	Body   []byte
}

// Service answers proxy requests.
type Service struct {
	upstreamURL  string
	apiKey       string
	defaultModel string
	allowAll     bool
	allowed      map[string]bool
	timeout      time.Duration

	client *http.Client
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService creates a Service from configuration. An empty or "*"
// AllowedOrigins accepts every origin. A zero CacheTTL disables the
// answer cache.
func NewService(cfg types.ProxyConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		upstreamURL:  cfg.UpstreamURL,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		timeout:      cfg.Timeout,
		allowed:      make(map[string]bool),
		logger:       logger,
	}
	if s.upstreamURL == "" {
		s.upstreamURL = DefaultUpstreamURL
	}
	if s.defaultModel == "" {
		s.defaultModel = DefaultModel
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	s.client = &http.Client{Timeout: s.timeout}

	origins := strings.TrimSpace(cfg.AllowedOrigins)
	if origins == "" || origins == "*" {
		s.allowAll = true
	} else {
		for _, o := range strings.Split(origins, ",") {
			s.allowed[strings.TrimSpace(o)] = true
		}
	}

	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

// corsHeaders returns the headers sent with every non-preflight answer.
func corsHeaders(origin string) map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  origin,
		"Access-Control-Allow-Methods": allowMethods,
		"Access-Control-Allow-Headers": allowHeaders,
	}
}

func errorResponse(status int, origin, msg string) Response {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return Response{Status: status, Header: corsHeaders(origin), Body: body}
}

// checkOrigin returns the CORS origin to answer with, or false when the
// origin is not on the allow-list.
func (s *Service) checkOrigin(origin string) (string, bool) {
	if s.allowAll {
		return "*", true
	}
	if !s.allowed[origin] {
		return "", false
	}
	return origin, true
}

// Handle answers one proxy request.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	corsOrigin, ok := s.checkOrigin(req.Origin)
	if !ok {
		s.logger.Warn("origin rejected", "origin", req.Origin)
		echo := req.Origin
		if echo == "" {
			echo = "*"
		}
		return errorResponse(http.StatusForbidden, echo, "Origin not allowed")
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	if method == http.MethodOptions {
		return Response{
			Status: http.StatusOK,
			Header: map[string]string{
				"Access-Control-Allow-Origin":  corsOrigin,
				"Access-Control-Allow-Methods": allowMethods,
				"Access-Control-Allow-Headers": allowHeaders,
				"Access-Control-Max-Age":       maxAge,
			},
		}
	}

	body, err := decodeBody(req.Body)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "*", fmt.Sprintf("Invalid request body JSON: %v", err))
	}

	if s.apiKey == "" {
		return errorResponse(http.StatusInternalServerError, corsOrigin, "API key not configured in environment variables")
	}

	call := buildCall(body, s.defaultModel)
	payload, err := marshalJSON(call.payload)
	if err != nil {
		return errorResponse(http.StatusBadRequest, corsOrigin, fmt.Sprintf("Invalid request body JSON: %v", err))
	}

	key := cacheKey(payload)
	if call.batch && s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.logger.Debug("answer served from cache", "issue", call.issueID)
			return Response{Status: http.StatusOK, Header: corsHeaders(corsOrigin), Body: cached.([]byte)}
		}
	}

	s.logger.Info("calling upstream", "model", call.payload.Model, "messages", len(call.payload.Messages), "batch", call.batch)
	status, respBody, err := s.forward(ctx, payload)
	if err != nil {
		if isTimeout(err) {
			s.logger.Warn("upstream timeout", "error", err)
			return errorResponse(http.StatusGatewayTimeout, corsOrigin,
				fmt.Sprintf("Request timeout after %g seconds", s.timeout.Seconds()))
		}
		s.logger.Error("upstream call failed", "error", err)
		return errorResponse(http.StatusInternalServerError, corsOrigin, fmt.Sprintf("Internal error: %v", err))
	}
	s.logger.Info("upstream answered", "status", status, "bytes", len(respBody))

	if call.batch && status >= 200 && status < 300 {
		if parsed, ok := parseAnswer(respBody, call.issueID); ok {
			out, err := marshalJSON(parsed)
			if err == nil {
				if s.cache != nil {
					s.cache.SetDefault(key, out)
				}
				return Response{Status: http.StatusOK, Header: corsHeaders(corsOrigin), Body: out}
			}
		}
		s.logger.Warn("upstream answer not parseable, passing through", "issue", call.issueID)
	}

	return Response{Status: status, Header: corsHeaders(corsOrigin), Body: respBody}
}

// forward posts payload upstream and returns the status and full body.
func (s *Service) forward(ctx context.Context, payload []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.upstreamURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("creating upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading upstream response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func cacheKey(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
