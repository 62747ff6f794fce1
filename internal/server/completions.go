package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frontdesk-ai/frontdesk/internal/llm/contract"
	"github.com/frontdesk-ai/frontdesk/internal/logger"
	"github.com/frontdesk-ai/frontdesk/internal/persona"

	"github.com/oklog/ulid/v2"
)

// Telnyx sends this system sentinel before the caller has spoken; it must
// trigger the greeting, not a round trip to the upstream model.
const externalLLMSentinel = "Use external LLM only"

const (
	// Returned in place of empty upstream content: empty content means
	// dead air on a live call.
	fallbackUtterance = "I'm sorry, I didn't catch that. Could you say that again?"

	// Returned on any upstream provider failure, always with HTTP 200. A
	// raw 5xx would make the telephony provider end the call abruptly.
	apologyUtterance = "I do apologize, I'm having a little trouble on my end. Could you say that one more time?"
)

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := logger.WithTraceID(r.Context(), ulid.Make().String())

	var req chatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Invalid chat completion request body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	slog.Info("Received chat completion request",
		"model", req.Model,
		"messages", len(req.Messages),
		"trace_id", logger.GetTraceID(ctx))

	writeJSON(w, http.StatusOK, s.complete(ctx, req))
}

// complete runs the full proxy flow: greeting detection, persona injection,
// upstream forwarding, tool dispatch, and the empty-content guard. It always
// produces a response; failures degrade to spoken fallbacks.
func (s *Server) complete(ctx context.Context, req chatCompletionRequest) *chatCompletionResponse {
	traceID := logger.GetTraceID(ctx)

	userTurns := 0
	assistantTurns := 0
	for _, m := range req.Messages {
		switch m.Role {
		case "user":
			if strings.TrimSpace(m.Content) != "" {
				userTurns++
			}
		case "assistant":
			assistantTurns++
		}
	}

	sentinelOnly := len(req.Messages) == 1 &&
		req.Messages[0].Role == "system" &&
		strings.Contains(req.Messages[0].Content, externalLLMSentinel)

	// Nothing spoken yet: answer with the greeting without a model round trip.
	if userTurns == 0 || sentinelOnly {
		slog.Info("First interaction, responding with greeting", "trace_id", traceID)
		resp := s.newCompletionResponse(req.Model, s.greeting(), "stop", contract.Usage{
			PromptTokens:     50,
			CompletionTokens: 30,
			TotalTokens:      80,
		})
		return resp
	}

	firstTurn := assistantTurns == 0

	messages := make([]contract.Message, 0, len(req.Messages)+1)
	if firstTurn {
		messages = append(messages, contract.Message{
			Role:    "system",
			Content: s.systemPrompt(),
		})
	}
	messages = append(messages, toContractMessages(req.Messages)...)

	creq := contract.CompletionRequest{
		Messages:    messages,
		Tools:       s.registry.Definitions(),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	resp, err := s.completer.Route(ctx, s.cfg.Models.Default, creq)
	if err != nil {
		slog.Error("Upstream completion failed", "error", err, "trace_id", traceID)
		return s.newCompletionResponse(req.Model, apologyUtterance, "stop", contract.Usage{})
	}

	// Tool-call turn: dispatch locally, append the results as tool-role
	// messages, and re-prompt once for the spoken reply.
	if len(resp.ToolCalls) > 0 {
		assistantMsg := contract.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}
		messages = append(messages, assistantMsg)

		for _, tc := range resp.ToolCalls {
			result := s.dispatcher.Dispatch(ctx, tc.Name, json.RawMessage(tc.Arguments))
			messages = append(messages, contract.Message{
				Role:       "tool",
				Content:    string(result),
				Name:       tc.Name,
				ToolCallID: tc.ID,
			})
		}

		creq.Messages = messages
		resp, err = s.completer.Route(ctx, s.cfg.Models.Default, creq)
		if err != nil {
			slog.Error("Upstream completion failed after tool dispatch", "error", err, "trace_id", traceID)
			return s.newCompletionResponse(req.Model, apologyUtterance, "stop", contract.Usage{})
		}
	}

	content := resp.Content
	if strings.TrimSpace(content) == "" {
		slog.Warn("Upstream returned empty content, substituting fallback", "trace_id", traceID)
		content = fallbackUtterance
	}

	// Very first spoken exchange: lead with the greeting.
	if firstTurn && userTurns == 1 {
		content = s.greetingPrefix() + content
	}

	return s.newCompletionResponse(req.Model, content, resp.FinishReason, resp.Usage)
}

func (s *Server) systemPrompt() string {
	info := map[string]string{
		"current_date": s.now().Format("Monday, January 2, 2006"),
		"current_time": s.now().Format("3:04 PM"),
	}
	if s.cfg.Business.Hours != "" {
		info["business_hours"] = s.cfg.Business.Hours
	}
	if len(s.cfg.Business.Services) > 0 {
		info["services"] = strings.Join(s.cfg.Business.Services, ", ")
	}

	return s.personas.SystemPrompt(s.cfg.Persona.Name, persona.BusinessContext{
		Name: s.cfg.Business.Name,
		Info: info,
	})
}

func (s *Server) greeting() string {
	return fmt.Sprintf(
		"Hello! Thank you for calling %s. This is Jordan, your appointment scheduling assistant. How may I help you today?",
		s.cfg.Business.Name)
}

func (s *Server) greetingPrefix() string {
	return fmt.Sprintf(
		"Hello! Thank you for calling %s. This is Jordan, your appointment scheduling assistant. ",
		s.cfg.Business.Name)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	created := s.now().Unix()
	models := s.completer.ListModels()

	data := make([]map[string]interface{}, 0, len(models))
	for _, name := range models {
		data = append(data, map[string]interface{}{
			"id":       name,
			"object":   "model",
			"created":  created,
			"owned_by": "openai",
			"root":     name,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"object": "list",
		"data":   data,
	})
}
