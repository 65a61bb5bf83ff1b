// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/issue-builder/pkg/types"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model    string `json:"model"`
	Messages any    `json:"messages"`
}

// batchArticle is one article as the model sees it.
type batchArticle struct {
	ID      string `json:"id"`
	Title   any    `json:"title"`
	Content any    `json:"content"`
}

type batchInput struct {
	IssueID  string         `json:"issueId"`
	Articles []batchArticle `json:"articles"`
}

// upstreamCall is the chat-completion request derived from a proxy body.
type upstreamCall struct {
	payload chatPayload
	// batch is true when the body carried a non-empty articles list.
	batch   bool
	issueID string
}

// decodeBody parses a request body into a JSON object. An empty body is
// an empty object.
func decodeBody(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("body is not a JSON object")
	}
	return obj, nil
}

// buildCall turns a request body into the upstream payload. A body with
// an articles list becomes a system prompt plus one user message holding
// the articles as JSON; any other body forwards its messages unchanged.
func buildCall(body map[string]any, defaultModel string) upstreamCall {
	model := defaultModel
	if m, ok := body["model"].(string); ok && m != "" {
		model = m
	}

	issueID := stringify(body["issueId"])
	articles, _ := body["articles"].([]any)
	if len(articles) == 0 {
		messages, ok := body["messages"]
		if !ok || messages == nil {
			messages = []any{}
		}
		return upstreamCall{payload: chatPayload{Model: model, Messages: messages}, issueID: issueID}
	}

	if issueID == "" {
		issueID = unknownIssue
	}
	system := DefaultSystemPrompt
	if p, ok := body["prompt"].(string); ok && p != "" {
		system = p
	}

	input := batchInput{IssueID: issueID, Articles: make([]batchArticle, 0, len(articles))}
	for _, item := range articles {
		a, _ := item.(map[string]any)
		input.Articles = append(input.Articles, batchArticle{
			ID:      stringify(a["id"]),
			Title:   valueOr(a, "title", ""),
			Content: valueOr(a, "content", ""),
		})
	}
	user, _ := marshalJSON(input)

	return upstreamCall{
		payload: chatPayload{
			Model: model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: string(user)},
			},
		},
		batch:   true,
		issueID: issueID,
	}
}

type completion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// parseAnswer extracts the model's JSON answer from a chat completion and
// normalizes it to a summary response. It reports false when the answer
// is not a JSON object with an articles list.
func parseAnswer(raw []byte, issueID string) (types.SummaryResponse, bool) {
	var c completion
	if err := json.Unmarshal(raw, &c); err != nil || len(c.Choices) == 0 {
		return types.SummaryResponse{}, false
	}

	content := stripFences(c.Choices[0].Message.Content)
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil {
		return types.SummaryResponse{}, false
	}
	items, ok := parsed["articles"].([]any)
	if !ok {
		return types.SummaryResponse{}, false
	}

	out := types.SummaryResponse{
		IssueID:  stringify(parsed["issueId"]),
		Articles: make([]types.ArticleAnalysis, 0, len(items)),
	}
	if out.IssueID == "" {
		out.IssueID = issueID
	}
	if out.IssueID == "" {
		out.IssueID = unknownIssue
	}
	for _, item := range items {
		it, _ := item.(map[string]any)
		out.Articles = append(out.Articles, types.ArticleAnalysis{
			ID:      stringify(it["id"]),
			Summary: stringify(it["summary"]),
			Insight: stringify(it["insight"]),
		})
	}
	return out, true
}

// stripFences removes a ```json or ``` opening fence and a closing ```
// around a model answer.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func valueOr(m map[string]any, key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// marshalJSON encodes v without HTML escaping and without the trailing newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
