package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/frontdesk/internal/llm/contract"
)

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_Content(t *testing.T) {
	var captured map[string]interface{}

	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-abc",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "We open at nine."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`))
	})

	p := New("sk-test", upstream.URL, "gpt-4o-mini", 5*time.Second)

	resp, err := p.Generate(context.Background(), contract.CompletionRequest{
		Messages: []contract.Message{
			{Role: "system", Content: "You answer the phone."},
			{Role: "user", Content: "When do you open?"},
		},
		Tools: []contract.ToolDef{
			{Name: "find_available_slots", Description: "search slots", Parameters: map[string]interface{}{"type": "object"}},
		},
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "We open at nine.", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, 17, resp.Usage.TotalTokens)

	// The outbound request carries the provider model and the tool definitions.
	assert.Equal(t, "gpt-4o-mini", captured["model"])
	tools, ok := captured["tools"].([]interface{})
	require.True(t, ok)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]interface{})["function"].(map[string]interface{})
	assert.Equal(t, "find_available_slots", fn["name"])
}

func TestGenerate_ToolCalls(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-abc",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "book_appointment", "arguments": "{\"customer_name\":\"Pat\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 20, "total_tokens": 60}
		}`))
	})

	p := New("sk-test", upstream.URL, "gpt-4o-mini", 5*time.Second)

	resp, err := p.Generate(context.Background(), contract.CompletionRequest{
		Messages: []contract.Message{{Role: "user", Content: "Book me in."}},
	})
	require.NoError(t, err)

	assert.Equal(t, "tool_calls", resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "book_appointment", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"customer_name":"Pat"}`, resp.ToolCalls[0].Arguments)
}

func TestGenerate_ToolResultMessages(t *testing.T) {
	var captured struct {
		Messages []struct {
			Role       string `json:"role"`
			Content    string `json:"content"`
			ToolCallID string `json:"tool_call_id"`
			ToolCalls  []struct {
				ID string `json:"id"`
			} `json:"tool_calls"`
		} `json:"messages"`
	}

	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Done."}, "finish_reason": "stop"}]
		}`))
	})

	p := New("sk-test", upstream.URL, "gpt-4o-mini", 5*time.Second)

	_, err := p.Generate(context.Background(), contract.CompletionRequest{
		Messages: []contract.Message{
			{Role: "user", Content: "Book me in."},
			{Role: "assistant", ToolCalls: []*contract.ToolCall{{ID: "call_1", Name: "book_appointment", Arguments: `{}`}}},
			{Role: "tool", Name: "book_appointment", ToolCallID: "call_1", Content: `{"success":true}`},
		},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
	require.Len(t, captured.Messages[1].ToolCalls, 1)
	assert.Equal(t, "call_1", captured.Messages[1].ToolCalls[0].ID)
	assert.Equal(t, "tool", captured.Messages[2].Role)
	assert.Equal(t, "call_1", captured.Messages[2].ToolCallID)
}

func TestGenerate_RequestModelOverride(t *testing.T) {
	var captured map[string]interface{}

	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]}`))
	})

	p := New("sk-test", upstream.URL, "gpt-4o-mini", 5*time.Second)

	_, err := p.Generate(context.Background(), contract.CompletionRequest{
		Model:    "gpt-4o",
		Messages: []contract.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", captured["model"])
}

func TestGenerate_UpstreamError(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`))
	})

	p := New("sk-test", upstream.URL, "gpt-4o-mini", 5*time.Second)

	_, err := p.Generate(context.Background(), contract.CompletionRequest{
		Messages: []contract.Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai request failed")
}

func TestGenerate_NoChoices(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	})

	p := New("sk-test", upstream.URL, "gpt-4o-mini", 5*time.Second)

	_, err := p.Generate(context.Background(), contract.CompletionRequest{
		Messages: []contract.Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
