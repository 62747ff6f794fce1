package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/frontdesk-ai/frontdesk/internal/logger"
	"github.com/frontdesk-ai/frontdesk/internal/telnyx"

	"github.com/oklog/ulid/v2"
)

// handleCallControl receives Telnyx call lifecycle events. The handler
// always acknowledges with 200: telephony providers retry aggressively on
// non-2xx, and a retry storm helps nobody. Downstream call-control failures
// are logged and swallowed for the same reason.
func (s *Server) handleCallControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event telnyx.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		slog.Error("Invalid JSON in call control webhook", "error", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{"received": true, "event_type": "unknown"})
		return
	}

	eventType := event.Data.EventType
	if eventType == "" {
		eventType = "unknown"
	}
	payload := event.Data.Payload

	ctx := logger.WithTraceID(r.Context(), ulid.Make().String())
	ctx = logger.WithCallID(ctx, payload.CallControlID)

	slog.Info("Telnyx event received", "event_type", eventType, "call_control_id", payload.CallControlID)

	switch eventType {
	case telnyx.EventCallInitiated:
		slog.Info("New call", "direction", payload.Direction, "from", payload.From, "to", payload.To)

		if err := s.calls.AnswerCall(ctx, payload.CallControlID); err != nil {
			slog.Error("Failed to answer call", "call_control_id", payload.CallControlID, "error", err)
			break
		}
		slog.Info("Call answered", "call_control_id", payload.CallControlID)

		if err := s.calls.StartAIAssistant(ctx, payload.CallControlID); err != nil {
			slog.Error("Failed to start AI assistant", "call_control_id", payload.CallControlID, "error", err)
		}

	case telnyx.EventCallAnswered:
		slog.Info("Call answered", "call_control_id", payload.CallControlID)

	case telnyx.EventCallHangup:
		slog.Info("Call ended", "call_control_id", payload.CallControlID, "cause", payload.HangupCause, "source", payload.HangupSource)

	case telnyx.EventMachineDetectionEnd:
		slog.Info("Machine detection finished", "call_control_id", payload.CallControlID, "result", payload.Result)

	case telnyx.EventAIAssistantStarted, telnyx.EventAIAssistantReady:
		slog.Info("AI assistant activated", "call_control_id", payload.CallControlID)

	case telnyx.EventAIAssistantEnded:
		slog.Info("AI assistant ended", "call_control_id", payload.CallControlID, "reason", payload.Reason)

	case telnyx.EventAIAssistantError:
		slog.Error("AI assistant error", "call_control_id", payload.CallControlID, "code", payload.ErrorCode, "message", payload.ErrorMessage)

	default:
		slog.Info("Unhandled Telnyx event", "event_type", eventType)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"received": true, "event_type": eventType})
}

// handleAIWebhook is the placeholder receiver for Telnyx AI Assistant
// events. Conversational turns arrive on the chat-completion proxy instead;
// this endpoint acknowledges with a canned instruction payload.
func (s *Server) handleAIWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Invalid JSON in AI webhook", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	eventType, _ := payload["event_type"].(string)
	if eventType == "" {
		eventType = "unknown"
	}
	slog.Info("Telnyx AI webhook event received", "event_type", eventType)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"type": "message",
		"role": "assistant",
		"content": []map[string]string{
			{
				"type": "output_text",
				"text": "Hi! I can help you book, reschedule, or cancel an appointment. What service do you need and when?",
			},
		},
	})
}

// handleStatus reports readiness and the active configuration, so webhook
// wiring can be verified from the Telnyx portal side.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"service": "Frontdesk AI Appointment Setter",
		"endpoints": map[string]string{
			"call_control": "/telnyx/call-control",
			"ai_webhook":   "/telnyx/ai",
			"completions":  "/v1/chat/completions",
		},
		"configuration": map[string]interface{}{
			"persona":            s.cfg.Persona.Name,
			"business":           s.cfg.Business.Name,
			"model":              s.cfg.Models.Default,
			"available_personas": s.personas.List(),
		},
	})
}

// handleDiagnostic echoes request metadata back, for debugging what Telnyx
// actually sends.
func (s *Server) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		slog.Error("Diagnostic endpoint failed to read body", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	slog.Info("Diagnostic request received",
		"method", r.Method,
		"path", r.URL.Path,
		"content_type", r.Header.Get("Content-Type"),
		"body_length", len(body))
	slog.Debug("Diagnostic request body", "body", string(body))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"diagnostic":  "received",
		"method":      r.Method,
		"path":        r.URL.Path,
		"body_length": len(body),
	})
}
