package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frontdeskErrors "github.com/frontdesk-ai/frontdesk/internal/errors"
	"github.com/frontdesk-ai/frontdesk/internal/llm/contract"
)

func postCompletion(t *testing.T, srv *Server, body string) *chatCompletionResponse {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/v1/chat/completions", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatCompletionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Choices, 1)
	return &resp
}

func spokenContent(resp *chatCompletionResponse) string {
	return resp.Choices[0].Message.Content
}

func TestCompletions_EmptyConversationGreets(t *testing.T) {
	completer := &stubCompleter{}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv, `{"model":"gpt-4o-mini","messages":[]}`)

	content := spokenContent(resp)
	assert.Contains(t, content, "Thank you for calling Sunrise Dental")
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, "chat.completion", resp.Object)
	assert.True(t, strings.HasPrefix(resp.ID, "chatcmpl-"))
	assert.Equal(t, 80, resp.Usage.TotalTokens)

	// No upstream round trip for the greeting.
	assert.Empty(t, completer.recorded())
}

func TestCompletions_SentinelSystemMessageGreets(t *testing.T) {
	completer := &stubCompleter{}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv,
		`{"model":"gpt-4o-mini","messages":[{"role":"system","content":"Use external LLM only."}]}`)

	assert.Contains(t, spokenContent(resp), "Thank you for calling Sunrise Dental")
	assert.Empty(t, completer.recorded())
}

func TestCompletions_FirstTurnInjectsSystemPrompt(t *testing.T) {
	completer := &stubCompleter{
		responses: []*contract.CompletionResponse{
			{Content: "We have openings tomorrow.", FinishReason: "stop"},
		},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv,
		`{"model":"gpt-4o-mini","messages":[{"role":"user","content":"Do you have anything tomorrow?"}]}`)

	requests := completer.recorded()
	require.Len(t, requests, 1)

	first := requests[0].Messages[0]
	assert.Equal(t, "system", first.Role)
	assert.Contains(t, first.Content, "Sunrise Dental")
	assert.Contains(t, first.Content, "## Business Context (Current Session)")
	assert.Contains(t, first.Content, "Mon-Fri 9am-5pm")
	assert.Contains(t, first.Content, "cleaning, checkup")

	// Tool definitions ride along on every upstream request.
	require.Len(t, requests[0].Tools, 4)

	// The very first spoken exchange leads with the greeting.
	content := spokenContent(resp)
	assert.True(t, strings.HasPrefix(content, "Hello! Thank you for calling Sunrise Dental"))
	assert.Contains(t, content, "We have openings tomorrow.")
}

func TestCompletions_OngoingConversationNotReinjected(t *testing.T) {
	completer := &stubCompleter{
		responses: []*contract.CompletionResponse{
			{Content: "Tomorrow at nine works.", FinishReason: "stop"},
		},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv, `{"model":"gpt-4o-mini","messages":[
		{"role":"user","content":"Do you have anything tomorrow?"},
		{"role":"assistant","content":"Let me check."},
		{"role":"user","content":"Morning preferred."}
	]}`)

	requests := completer.recorded()
	require.Len(t, requests, 1)
	require.Len(t, requests[0].Messages, 3)
	assert.Equal(t, "user", requests[0].Messages[0].Role)

	// No greeting prefix mid-conversation.
	assert.Equal(t, "Tomorrow at nine works.", spokenContent(resp))
}

func TestCompletions_EmptyUpstreamContentFallsBack(t *testing.T) {
	completer := &stubCompleter{
		responses: []*contract.CompletionResponse{
			{Content: "   ", FinishReason: "stop"},
		},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv, `{"model":"gpt-4o-mini","messages":[
		{"role":"user","content":"hello?"},
		{"role":"assistant","content":"Hi there."},
		{"role":"user","content":"are you still there?"}
	]}`)

	assert.Equal(t, fallbackUtterance, spokenContent(resp))
}

func TestCompletions_ProviderFailureApologizes(t *testing.T) {
	completer := &stubCompleter{
		errs: []error{frontdeskErrors.ProviderUnavailable("upstream down")},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	// Still HTTP 200: a 5xx would drop the live call.
	resp := postCompletion(t, srv,
		`{"model":"gpt-4o-mini","messages":[{"role":"user","content":"hi"}]}`)

	assert.Contains(t, spokenContent(resp), apologyUtterance)
}

func TestCompletions_ToolCallRoundTrip(t *testing.T) {
	completer := &stubCompleter{
		responses: []*contract.CompletionResponse{
			{
				FinishReason: "tool_calls",
				ToolCalls: []*contract.ToolCall{
					{
						ID:        "call_1",
						Name:      "find_available_slots",
						Arguments: `{"service_name":"cleaning","start_date":"2026-09-01","end_date":"2026-09-05"}`,
					},
				},
			},
			{Content: "We have nine, ten thirty, and two.", FinishReason: "stop"},
		},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv, `{"model":"gpt-4o-mini","messages":[
		{"role":"user","content":"Anything next week?"},
		{"role":"assistant","content":"What service?"},
		{"role":"user","content":"A cleaning."}
	]}`)

	requests := completer.recorded()
	require.Len(t, requests, 2)

	// The second round trip carries the assistant tool-call turn plus the
	// tool result message.
	second := requests[1].Messages
	assistantMsg := second[len(second)-2]
	toolMsg := second[len(second)-1]

	assert.Equal(t, "assistant", assistantMsg.Role)
	require.Len(t, assistantMsg.ToolCalls, 1)
	assert.Equal(t, "call_1", assistantMsg.ToolCalls[0].ID)

	assert.Equal(t, "tool", toolMsg.Role)
	assert.Equal(t, "find_available_slots", toolMsg.Name)
	assert.Equal(t, "call_1", toolMsg.ToolCallID)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &result))
	assert.Equal(t, true, result["success"])
	assert.Len(t, result["slots"], 3)

	assert.Equal(t, "We have nine, ten thirty, and two.", spokenContent(resp))
}

func TestCompletions_UnknownToolReportedToModel(t *testing.T) {
	completer := &stubCompleter{
		responses: []*contract.CompletionResponse{
			{
				FinishReason: "tool_calls",
				ToolCalls: []*contract.ToolCall{
					{ID: "call_1", Name: "teleport_customer", Arguments: `{}`},
				},
			},
			{Content: "Sorry, I cannot do that.", FinishReason: "stop"},
		},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv, `{"model":"gpt-4o-mini","messages":[
		{"role":"user","content":"Beam me up."},
		{"role":"assistant","content":"Pardon?"},
		{"role":"user","content":"Never mind."}
	]}`)

	requests := completer.recorded()
	require.Len(t, requests, 2)

	toolMsg := requests[1].Messages[len(requests[1].Messages)-1]
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &result))
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "unknown tool")

	assert.Equal(t, "Sorry, I cannot do that.", spokenContent(resp))
}

func TestCompletions_ProviderFailureAfterToolDispatch(t *testing.T) {
	completer := &stubCompleter{
		responses: []*contract.CompletionResponse{
			{
				FinishReason: "tool_calls",
				ToolCalls: []*contract.ToolCall{
					{
						ID:        "call_1",
						Name:      "find_available_slots",
						Arguments: `{"service_name":"cleaning","start_date":"2026-09-01","end_date":"2026-09-05"}`,
					},
				},
			},
		},
		errs: []error{nil, frontdeskErrors.ProviderUnavailable("upstream down")},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv, `{"model":"gpt-4o-mini","messages":[
		{"role":"user","content":"Anything next week?"},
		{"role":"assistant","content":"What service?"},
		{"role":"user","content":"A cleaning."}
	]}`)

	assert.Contains(t, spokenContent(resp), apologyUtterance)
}

func TestCompletions_BookThenCancelFlow(t *testing.T) {
	completer := &stubCompleter{
		responses: []*contract.CompletionResponse{
			{
				FinishReason: "tool_calls",
				ToolCalls: []*contract.ToolCall{
					{
						ID:        "call_1",
						Name:      "book_appointment",
						Arguments: `{"customer_name":"Pat Smith","customer_phone":"+15551234567","service_name":"cleaning","appointment_datetime":"2026-09-01T09:00:00"}`,
					},
				},
			},
			{Content: "You're booked for nine.", FinishReason: "stop"},
			{
				FinishReason: "tool_calls",
				ToolCalls: []*contract.ToolCall{
					{ID: "call_2", Name: "cancel_appointment", Arguments: `{"customer_phone":"+15551234567"}`},
				},
			},
			{Content: "All cancelled.", FinishReason: "stop"},
		},
	}
	srv := newTestServer(t, completer, &stubCalls{})

	conversation := `{"model":"gpt-4o-mini","messages":[
		{"role":"user","content":"Book me a cleaning."},
		{"role":"assistant","content":"What time?"},
		{"role":"user","content":"Nine on the first, Pat Smith, 555 123 4567."}
	]}`

	resp := postCompletion(t, srv, conversation)
	assert.Equal(t, "You're booked for nine.", spokenContent(resp))

	requests := completer.recorded()
	toolMsg := requests[1].Messages[len(requests[1].Messages)-1]
	var booked map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &booked))
	assert.Equal(t, true, booked["success"])
	assert.Contains(t, booked["appointment_id"], "APT-")

	// The booking persists across proxy calls within the process.
	resp = postCompletion(t, srv, `{"model":"gpt-4o-mini","messages":[
		{"role":"user","content":"Actually cancel it."},
		{"role":"assistant","content":"Sure."},
		{"role":"user","content":"Thanks."}
	]}`)
	assert.Equal(t, "All cancelled.", spokenContent(resp))

	requests = completer.recorded()
	toolMsg = requests[3].Messages[len(requests[3].Messages)-1]
	var cancelled map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &cancelled))
	assert.Equal(t, true, cancelled["success"])
}

func TestCompletions_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{}, &stubCalls{})

	rec := doRequest(t, srv, http.MethodPost, "/v1/chat/completions", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompletions_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{}, &stubCalls{})

	rec := doRequest(t, srv, http.MethodGet, "/v1/chat/completions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCompletions_BarePathAlias(t *testing.T) {
	completer := &stubCompleter{}
	srv := newTestServer(t, completer, &stubCalls{})

	rec := doRequest(t, srv, http.MethodPost, "/chat/completions", `{"model":"gpt-4o-mini","messages":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompletions_EchoesRequestedModel(t *testing.T) {
	completer := &stubCompleter{}
	srv := newTestServer(t, completer, &stubCalls{})

	resp := postCompletion(t, srv, `{"model":"telnyx-portal-model","messages":[]}`)
	assert.Equal(t, "telnyx-portal-model", resp.Model)
}
