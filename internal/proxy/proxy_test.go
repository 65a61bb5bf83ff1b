// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/issue-builder/pkg/types"
)

// fakeUpstream records the last chat payload and answers with reply.
type fakeUpstream struct {
	*httptest.Server
	calls atomic.Int32

	mu      sync.Mutex
	payload map[string]any
	auth    string
}

func (u *fakeUpstream) last() (map[string]any, string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.payload, u.auth
}

func newUpstream(t *testing.T, status int, reply string) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		u.mu.Lock()
		u.payload, u.auth = payload, r.Header.Get("Authorization")
		u.mu.Unlock()
		u.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(u.Close)
	return u
}

// completionWith wraps content in a chat-completion reply.
func completionWith(t *testing.T, content string) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	require.NoError(t, err)
	return string(data)
}

const batchBody = `{"issueId":"2025-40","articles":[{"id":"2025-40-0","title":"专栏","content":"正文 <b>"},{"id":7,"title":"封面"}]}`

func newTestService(upstreamURL string, mutate ...func(*types.ProxyConfig)) *Service {
	cfg := types.ProxyConfig{UpstreamURL: upstreamURL, APIKey: "sk-up"}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewService(cfg, nil)
}

func TestHandle_OriginRejected(t *testing.T) {
	s := newTestService("http://unused", func(c *types.ProxyConfig) {
		c.AllowedOrigins = "https://a.example, https://b.example"
	})

	tests := []struct {
		origin   string
		wantCORS string
	}{
		{"https://evil.example", "https://evil.example"},
		{"", "*"},
	}
	for _, tt := range tests {
		resp := s.Handle(context.Background(), Request{Origin: tt.origin, Body: []byte(batchBody)})
		assert.Equal(t, http.StatusForbidden, resp.Status)
		assert.JSONEq(t, `{"error":"Origin not allowed"}`, string(resp.Body))
		assert.Equal(t, tt.wantCORS, resp.Header["Access-Control-Allow-Origin"])
	}
}

func TestHandle_Preflight(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{}`)
	s := newTestService(u.URL, func(c *types.ProxyConfig) { c.AllowedOrigins = "https://b.example" })

	resp := s.Handle(context.Background(), Request{Origin: "https://b.example", Method: "options"})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "https://b.example", resp.Header["Access-Control-Allow-Origin"])
	assert.Equal(t, "POST, OPTIONS", resp.Header["Access-Control-Allow-Methods"])
	assert.Equal(t, "Content-Type, Accept", resp.Header["Access-Control-Allow-Headers"])
	assert.Equal(t, "86400", resp.Header["Access-Control-Max-Age"])
	assert.Zero(t, u.calls.Load())
}

func TestHandle_BadBody(t *testing.T) {
	s := newTestService("http://unused")
	for _, body := range []string{`{"articles":`, `[1,2]`} {
		resp := s.Handle(context.Background(), Request{Body: []byte(body)})
		assert.Equal(t, http.StatusBadRequest, resp.Status, body)
	}
}

func TestHandle_MissingAPIKey(t *testing.T) {
	s := newTestService("http://unused", func(c *types.ProxyConfig) { c.APIKey = "" })
	resp := s.Handle(context.Background(), Request{Body: []byte(batchBody)})
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Contains(t, string(resp.Body), "API key not configured")
}

func TestHandle_BatchParsed(t *testing.T) {
	answer := "```json\n" + `{"issueId":"2025-40","articles":[{"id":"2025-40-0","summary":"摘要","insight":"洞察"},{"id":7,"summary":"s"}]}` + "\n```"
	u := newUpstream(t, http.StatusOK, completionWith(t, answer))
	s := newTestService(u.URL)

	resp := s.Handle(context.Background(), Request{Origin: "https://any.example", Body: []byte(batchBody)})

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "*", resp.Header["Access-Control-Allow-Origin"])
	var got types.SummaryResponse
	require.NoError(t, json.Unmarshal(resp.Body, &got))
	assert.Equal(t, types.SummaryResponse{
		IssueID: "2025-40",
		Articles: []types.ArticleAnalysis{
			{ID: "2025-40-0", Summary: "摘要", Insight: "洞察"},
			{ID: "7", Summary: "s"},
		},
	}, got)

	payload, auth := u.last()
	assert.Equal(t, "Bearer sk-up", auth)
	assert.Equal(t, DefaultModel, payload["model"])
	messages := payload["messages"].([]any)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, DefaultSystemPrompt, system["content"])

	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.JSONEq(t,
		`{"issueId":"2025-40","articles":[{"id":"2025-40-0","title":"专栏","content":"正文 <b>"},{"id":"7","title":"封面","content":""}]}`,
		user["content"].(string))
	assert.Contains(t, user["content"], "<b>")
}

func TestHandle_BatchPromptAndModelOverride(t *testing.T) {
	u := newUpstream(t, http.StatusOK, completionWith(t, `{"articles":[]}`))
	s := newTestService(u.URL)

	resp := s.Handle(context.Background(), Request{
		Body: []byte(`{"articles":[{"id":"a"}],"prompt":"只输出 JSON","model":"gpt-4o"}`),
	})

	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"issueId":"unknown-issue","articles":[]}`, string(resp.Body))
	payload, _ := u.last()
	assert.Equal(t, "gpt-4o", payload["model"])
	system := payload["messages"].([]any)[0].(map[string]any)
	assert.Equal(t, "只输出 JSON", system["content"])
}

func TestHandle_UnparseableAnswerPassesThrough(t *testing.T) {
	reply := completionWith(t, "抱歉，我无法完成。")
	u := newUpstream(t, http.StatusOK, reply)
	s := newTestService(u.URL)

	resp := s.Handle(context.Background(), Request{Body: []byte(batchBody)})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, reply, string(resp.Body))
}

func TestHandle_UpstreamErrorPassesThrough(t *testing.T) {
	u := newUpstream(t, http.StatusTooManyRequests, `{"error":"quota"}`)
	s := newTestService(u.URL)

	resp := s.Handle(context.Background(), Request{Body: []byte(batchBody)})

	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	assert.Equal(t, `{"error":"quota"}`, string(resp.Body))
}

func TestHandle_LegacyMessages(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[]}`)
	s := newTestService(u.URL)

	resp := s.Handle(context.Background(), Request{
		Body: []byte(`{"messages":[{"role":"user","content":"你好"}],"model":"m1"}`),
	})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, `{"choices":[]}`, string(resp.Body))
	payload, _ := u.last()
	assert.Equal(t, "m1", payload["model"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "你好"}}, payload["messages"])
}

func TestHandle_EmptyBodyForwardsNoMessages(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{}`)
	s := newTestService(u.URL)

	resp := s.Handle(context.Background(), Request{})

	assert.Equal(t, http.StatusOK, resp.Status)
	payload, _ := u.last()
	assert.Equal(t, []any{}, payload["messages"])
}

func TestHandle_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	s := newTestService(slow.URL, func(c *types.ProxyConfig) { c.Timeout = 50 * time.Millisecond })

	resp := s.Handle(context.Background(), Request{Body: []byte(batchBody)})

	assert.Equal(t, http.StatusGatewayTimeout, resp.Status)
	assert.Contains(t, string(resp.Body), "Request timeout after 0.05 seconds")
}

func TestHandle_UnreachableUpstream(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()
	s := newTestService(url)

	resp := s.Handle(context.Background(), Request{Body: []byte(batchBody)})

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Contains(t, string(resp.Body), "Internal error")
}

func TestHandle_CachesParsedAnswers(t *testing.T) {
	u := newUpstream(t, http.StatusOK, completionWith(t, `{"articles":[{"id":"2025-40-0","summary":"s","insight":"i"}]}`))
	s := newTestService(u.URL, func(c *types.ProxyConfig) { c.CacheTTL = time.Minute })

	first := s.Handle(context.Background(), Request{Body: []byte(batchBody)})
	second := s.Handle(context.Background(), Request{Body: []byte(batchBody)})

	assert.Equal(t, int32(1), u.calls.Load())
	assert.Equal(t, first.Body, second.Body)

	s.Handle(context.Background(), Request{Body: []byte(`{"issueId":"other","articles":[{"id":"x"}]}`)})
	assert.Equal(t, int32(2), u.calls.Load())
}
