package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frontdesk-ai/frontdesk/internal/logger"
)

// Dispatcher maps tool names requested by the LLM to registered tools and
// executes them. Every outcome, including an unknown tool name or a failed
// execution, is returned as a structured result payload: nothing a tool does
// may abort the phone call it was invoked from.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch executes the named tool and always returns a JSON payload. The
// payload carries {"success": false, "error": ...} on any failure.
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, input json.RawMessage) json.RawMessage {
	resolved := NormalizeToolName(toolName)
	traceID := logger.GetTraceID(ctx)

	t, ok := d.registry.Get(resolved)
	if !ok {
		slog.Warn("Unknown tool requested", "tool", resolved, "trace_id", traceID)
		return failureResult(fmt.Sprintf("unknown tool: %s", resolved))
	}

	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	if err := ValidateInput(t.Parameters(), input); err != nil {
		slog.Warn("Tool input validation failed", "tool", resolved, "error", err, "trace_id", traceID)
		return failureResult(fmt.Sprintf("invalid arguments: %v", err))
	}

	start := time.Now()
	slog.Info("Executing tool", "tool", resolved, "trace_id", traceID)

	result, err := t.Execute(ctx, input)

	duration := time.Since(start)
	if err != nil {
		slog.Error("Tool execution failed", "tool", resolved, "error", err, "duration", duration, "trace_id", traceID)
		return failureResult(err.Error())
	}

	slog.Info("Tool execution success", "tool", resolved, "duration", duration, "trace_id", traceID)
	return result
}

func failureResult(reason string) json.RawMessage {
	payload, err := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   reason,
	})
	if err != nil {
		return json.RawMessage(`{"success":false,"error":"internal error"}`)
	}
	return payload
}
