package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frontdesk-ai/frontdesk/internal/appointment"
	toolcore "github.com/frontdesk-ai/frontdesk/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("reschedule_appointment", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Book == nil {
			return nil, fmt.Errorf("appointment book is required")
		}
		return &RescheduleTool{Book: options.Book}, nil
	})
}

// RescheduleTool moves an existing mock appointment to a new time.
type RescheduleTool struct {
	Book *appointment.Book
}

func (t *RescheduleTool) Name() string { return "reschedule_appointment" }

func (t *RescheduleTool) Description() string {
	return "Reschedule an existing appointment to a new date/time."
}

func (t *RescheduleTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"customer_phone": map[string]interface{}{
				"type":        "string",
				"description": "Customer's phone number to lookup appointment",
			},
			"current_datetime": map[string]interface{}{
				"type":        "string",
				"description": "Current appointment date/time (ISO format)",
			},
			"new_datetime": map[string]interface{}{
				"type":        "string",
				"description": "New desired appointment date/time (ISO format)",
			},
		},
		"required": []string{"customer_phone", "current_datetime", "new_datetime"},
	}
}

func (t *RescheduleTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	_ = ctx

	var args struct {
		Phone           string `json:"customer_phone"`
		CurrentDatetime string `json:"current_datetime"`
		NewDatetime     string `json:"new_datetime"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	booking, err := t.Book.Reschedule(args.Phone, args.CurrentDatetime, args.NewDatetime)
	if err != nil {
		return json.Marshal(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}

	return json.Marshal(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Appointment rescheduled to %s", booking.Datetime),
	})
}
