// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// envelope is the function-gateway event: request headers, the HTTP
// method under requestContext, and the body as a JSON string or object.
type envelope struct {
	Headers        map[string]any `json:"headers"`
	RequestContext struct {
		HTTP struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
	Body json.RawMessage `json:"body"`
}

// DecodeEvent unwraps a gateway event into a Request. The origin header
// is matched case-insensitively.
func DecodeEvent(data []byte) (Request, error) {
	var ev envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		return Request{}, err
	}

	req := Request{Method: ev.RequestContext.HTTP.Method}
	for k, v := range ev.Headers {
		if strings.EqualFold(k, "origin") {
			if s, ok := v.(string); ok {
				req.Origin = s
				break
			}
		}
	}

	raw := bytes.TrimSpace(ev.Body)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		req.Body = []byte("{}")
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Request{}, err
		}
		req.Body = []byte(s)
	default:
		req.Body = raw
	}
	return req, nil
}

// HandleEvent answers a raw gateway event.
func (s *Service) HandleEvent(ctx context.Context, data []byte) Response {
	req, err := DecodeEvent(data)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "*", fmt.Sprintf("Invalid event JSON: %v", err))
	}
	return s.Handle(ctx, req)
}
