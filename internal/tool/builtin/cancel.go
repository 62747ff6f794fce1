package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frontdesk-ai/frontdesk/internal/appointment"
	toolcore "github.com/frontdesk-ai/frontdesk/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("cancel_appointment", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Book == nil {
			return nil, fmt.Errorf("appointment book is required")
		}
		return &CancelTool{Book: options.Book}, nil
	})
}

// CancelTool cancels an existing mock appointment by customer phone.
type CancelTool struct {
	Book *appointment.Book
}

func (t *CancelTool) Name() string { return "cancel_appointment" }

func (t *CancelTool) Description() string {
	return "Cancel an existing appointment. Requires customer phone number for verification."
}

func (t *CancelTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"customer_phone": map[string]interface{}{
				"type":        "string",
				"description": "Customer's phone number to lookup appointment",
			},
			"appointment_datetime": map[string]interface{}{
				"type":        "string",
				"description": "Optional: specific appointment date/time to cancel if customer has multiple",
			},
			"reason": map[string]interface{}{
				"type":        "string",
				"description": "Optional: reason for cancellation",
			},
		},
		"required": []string{"customer_phone"},
	}
}

func (t *CancelTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	_ = ctx

	var args struct {
		Phone    string `json:"customer_phone"`
		Datetime string `json:"appointment_datetime"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	cancelled, err := t.Book.Cancel(args.Phone, args.Datetime)
	if err != nil {
		return json.Marshal(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}

	return json.Marshal(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Appointment for %s on %s has been cancelled", cancelled.Phone, cancelled.Datetime),
	})
}
